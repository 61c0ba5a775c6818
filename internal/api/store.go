package api

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"landlord/internal/db"
	"landlord/internal/game"
)

// Store persists saves and the command journal. *db.Store is the Postgres
// implementation; MemoryStore serves when no database is configured.
type Store interface {
	SaveGame(ctx context.Context, slot string, save game.Save) error
	LoadGame(ctx context.Context, slot string) (game.Save, error)
	ListGames(ctx context.Context) ([]db.GameSummary, error)
	CommandResult(ctx context.Context, slot, key string) (db.CommandRecord, bool, error)
	RecordCommand(ctx context.Context, rec db.CommandRecord, save game.Save) error
}

const memoryJournalLimit = 1024

type memoryGame struct {
	save      game.Save
	updatedAt time.Time
	journal   map[string]db.CommandRecord
	order     []string
}

type MemoryStore struct {
	mu    sync.Mutex
	games map[string]*memoryGame
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: map[string]*memoryGame{}}
}

func (m *MemoryStore) entry(slot string) *memoryGame {
	g, ok := m.games[slot]
	if !ok {
		g = &memoryGame{journal: map[string]db.CommandRecord{}}
		m.games[slot] = g
	}
	return g
}

// copySave keeps callers from sharing slices and maps with the stored copy.
func copySave(save game.Save) (game.Save, error) {
	raw, err := json.Marshal(save)
	if err != nil {
		return game.Save{}, err
	}
	var out game.Save
	if err := json.Unmarshal(raw, &out); err != nil {
		return game.Save{}, err
	}
	return out, nil
}

func (m *MemoryStore) SaveGame(_ context.Context, slot string, save game.Save) error {
	cp, err := copySave(save)
	if err != nil {
		return fmt.Errorf("encode save %s: %w", slot, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.entry(slot)
	g.save = cp
	g.updatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) LoadGame(_ context.Context, slot string) (game.Save, error) {
	m.mu.Lock()
	g, ok := m.games[slot]
	m.mu.Unlock()
	if !ok || g.save.Version == 0 {
		return game.Save{}, fmt.Errorf("%w: %s", db.ErrGameNotFound, slot)
	}
	return copySave(g.save)
}

func (m *MemoryStore) ListGames(context.Context) ([]db.GameSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]db.GameSummary, 0, len(m.games))
	for slot, g := range m.games {
		if g.save.Version == 0 {
			continue
		}
		out = append(out, db.GameSummary{
			Slot:       slot,
			Week:       g.save.State.WeekCount,
			CashPence:  g.save.State.CashPence,
			Reputation: g.save.State.Reputation,
			UpdatedAt:  g.updatedAt,
		})
	}
	slices.SortFunc(out, func(a, b db.GameSummary) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out, nil
}

func (m *MemoryStore) CommandResult(_ context.Context, slot, key string) (db.CommandRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[slot]
	if !ok {
		return db.CommandRecord{}, false, nil
	}
	rec, ok := g.journal[key]
	return rec, ok, nil
}

func (m *MemoryStore) RecordCommand(_ context.Context, rec db.CommandRecord, save game.Save) error {
	cp, err := copySave(save)
	if err != nil {
		return fmt.Errorf("encode save %s: %w", rec.Slot, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.entry(rec.Slot)
	if _, dup := g.journal[rec.Key]; dup {
		return db.ErrDuplicateIdempotency
	}
	rec.CreatedAt = time.Now().UTC()
	g.journal[rec.Key] = rec
	g.order = append(g.order, rec.Key)
	if len(g.order) > memoryJournalLimit {
		delete(g.journal, g.order[0])
		g.order = g.order[1:]
	}
	g.save = cp
	g.updatedAt = rec.CreatedAt
	return nil
}
