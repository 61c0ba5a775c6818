package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"landlord/internal/syncq"
)

// Profile remembers which slot the CLI plays and where the API lives.
type Profile struct {
	Slot       string `json:"slot"`
	APIBaseURL string `json:"api_base_url,omitempty"`
}

var ErrNoProfile = errors.New("no active game; run `ll new <slot>` or pass --slot")

func profilePath() (string, error) {
	dir, err := syncq.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "profile.json"), nil
}

func SaveProfile(p Profile) error {
	path, err := profilePath()
	if err != nil {
		return err
	}
	body, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o600)
}

func LoadProfile() (Profile, error) {
	path, err := profilePath()
	if err != nil {
		return Profile{}, err
	}
	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Profile{}, ErrNoProfile
		}
		return Profile{}, err
	}
	var p Profile
	if err := json.Unmarshal(body, &p); err != nil {
		return Profile{}, err
	}
	if strings.TrimSpace(p.Slot) == "" {
		return Profile{}, ErrNoProfile
	}
	return p, nil
}

func ClearProfile() error {
	path, err := profilePath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return os.Remove(path)
}
