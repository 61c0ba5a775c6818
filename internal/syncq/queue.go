package syncq

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// Command is a game command the CLI could not deliver. `ll sync` replays it
// under the same idempotency key, so a command the API did see is not
// applied twice.
type Command struct {
	Slot           string         `json:"slot"`
	Name           string         `json:"name"`
	Method         string         `json:"method"`
	Path           string         `json:"path"`
	Body           map[string]any `json:"body,omitempty"`
	IdempotencyKey string         `json:"idempotency_key"`
	QueuedAt       time.Time      `json:"queued_at"`
}

// Label names the command the way the player typed it.
func (c Command) Label() string {
	name := c.Name
	if name == "" {
		name = c.Method + " " + c.Path
	}
	if c.Slot == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, c.Slot)
}

// Dir is the per-user state directory shared with the CLI profile.
func Dir() (string, error) {
	dir := os.Getenv("LANDLORD_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".landlord")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

func queuePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "queue.json"), nil
}

func Load() ([]Command, error) {
	path, err := queuePath()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Command{}, nil
		}
		return nil, err
	}
	if len(raw) == 0 {
		return []Command{}, nil
	}
	var out []Command
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("read offline queue: %w", err)
	}
	return out, nil
}

func Save(commands []Command) error {
	path, err := queuePath()
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(commands, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

// Push queues cmd behind everything already waiting. A command whose
// idempotency key is already queued is not added again; Push reports
// whether cmd was added.
func Push(cmd Command) (bool, error) {
	commands, err := Load()
	if err != nil {
		return false, err
	}
	if slices.ContainsFunc(commands, func(c Command) bool { return c.IdempotencyKey == cmd.IdempotencyKey }) {
		return false, nil
	}
	if cmd.QueuedAt.IsZero() {
		cmd.QueuedAt = time.Now().UTC()
	}
	return true, Save(append(commands, cmd))
}

// Pending counts queued commands per slot.
func Pending(commands []Command) map[string]int {
	out := make(map[string]int)
	for _, c := range commands {
		out[c.Slot]++
	}
	return out
}
