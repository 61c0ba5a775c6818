package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"landlord/internal/game"
)

// LoadBalance reads a YAML balance file over game.DefaultBalance. An empty
// path returns the defaults. Keys the file omits keep their default value.
func LoadBalance(path string) (game.Balance, error) {
	bal := game.DefaultBalance()
	path = strings.TrimSpace(path)
	if path == "" {
		return bal, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return bal, fmt.Errorf("read balance file: %w", err)
	}
	return ParseBalance(raw)
}

func ParseBalance(raw []byte) (game.Balance, error) {
	bal := game.DefaultBalance()
	if len(bytes.TrimSpace(raw)) == 0 {
		return bal, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&bal); err != nil {
		return game.DefaultBalance(), fmt.Errorf("parse balance file: %w", err)
	}
	return bal.Normalize(), nil
}
