package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"sync"
	"time"

	"landlord/internal/db"
	"landlord/internal/game"
	"landlord/internal/syncq"
)

var (
	ErrSlotNotFound = errors.New("game slot not found")
	ErrSlotExists   = errors.New("game slot already exists")
	ErrSlotsFull    = errors.New("no free game slots")
	ErrBadSlot      = errors.New("slot must be 1-63 chars of a-z, 0-9, - or _")
)

var slotPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

// Session is one live game: an engine behind its runner plus the goroutine
// that forwards engine events to the sink.
type Session struct {
	Slot   string
	runner *syncq.Runner
	events chan game.Event
	store  Store
	log    *slog.Logger

	saveTimeout time.Duration
}

// Reply is what a command produced, or the journalled copy of it.
type Reply struct {
	Body     json.RawMessage
	Replayed bool
}

// Exec runs a state-changing command under an idempotency key. A key already
// in the journal returns the stored reply without touching the engine. A
// successful command is journalled together with an autosave.
func (s *Session) Exec(ctx context.Context, name, key string, fn func(*game.Engine) (any, error)) (Reply, error) {
	return syncq.Do(ctx, s.runner, func(e *game.Engine) (Reply, error) {
		if rec, ok, err := s.store.CommandResult(ctx, s.Slot, key); err != nil {
			return Reply{}, fmt.Errorf("journal lookup: %w", err)
		} else if ok {
			return Reply{Body: rec.Response, Replayed: true}, nil
		}

		out, err := fn(e)
		if err != nil {
			return Reply{}, err
		}
		body, err := json.Marshal(out)
		if err != nil {
			return Reply{}, fmt.Errorf("encode reply: %w", err)
		}
		save, err := e.Save()
		if err != nil {
			s.log.Error("autosave snapshot failed", "slot", s.Slot, "command", name, "err", err)
			return Reply{Body: body}, nil
		}

		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.saveTimeout)
		defer cancel()
		rec := db.CommandRecord{Slot: s.Slot, Key: key, Command: name, Status: 200, Response: body}
		switch err := s.store.RecordCommand(saveCtx, rec, save); {
		case err == nil:
		case errors.Is(err, db.ErrDuplicateIdempotency):
			s.log.Warn("idempotency key journalled elsewhere", "slot", s.Slot, "command", name, "key", key)
		default:
			s.log.Error("autosave failed", "slot", s.Slot, "command", name, "err", err)
		}
		return Reply{Body: body}, nil
	})
}

// Query reads from the engine without journalling.
func Query[T any](ctx context.Context, s *Session, fn func(*game.Engine) (T, error)) (T, error) {
	return syncq.Do(ctx, s.runner, fn)
}

func (s *Session) close() {
	s.runner.Close()
	close(s.events)
}

type Sessions struct {
	mu    sync.RWMutex
	slots map[string]*Session

	max         int
	bal         game.Balance
	store       Store
	sink        EventSink
	log         *slog.Logger
	saveTimeout time.Duration
}

type SessionsConfig struct {
	MaxSlots    int
	Balance     game.Balance
	SaveTimeout time.Duration
}

func NewSessions(cfg SessionsConfig, store Store, sink EventSink, logger *slog.Logger) *Sessions {
	if logger == nil {
		logger = slog.Default()
	}
	if store == nil {
		store = NewMemoryStore()
	}
	if sink == nil {
		sink = MultiSink()
	}
	if cfg.MaxSlots <= 0 {
		cfg.MaxSlots = 64
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = 5 * time.Second
	}
	return &Sessions{
		slots:       map[string]*Session{},
		max:         cfg.MaxSlots,
		bal:         cfg.Balance.Normalize(),
		store:       store,
		sink:        sink,
		log:         logger,
		saveTimeout: cfg.SaveTimeout,
	}
}

// Create starts a new game in slot. A zero seed picks a random one.
func (m *Sessions) Create(ctx context.Context, slot string, seed uint64) (*Session, error) {
	if !slotPattern.MatchString(slot) {
		return nil, ErrBadSlot
	}
	if _, err := m.store.LoadGame(ctx, slot); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrSlotExists, slot)
	} else if !errors.Is(err, db.ErrGameNotFound) {
		return nil, err
	}
	if seed == 0 {
		seed = rand.Uint64()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.slots[slot]; ok {
		return nil, fmt.Errorf("%w: %s", ErrSlotExists, slot)
	}
	if len(m.slots) >= m.max {
		return nil, ErrSlotsFull
	}
	e := game.NewEngine(m.bal, seed, m.log.With("slot", slot))
	save, err := e.Save()
	if err != nil {
		return nil, err
	}
	saveCtx, cancel := context.WithTimeout(ctx, m.saveTimeout)
	defer cancel()
	if err := m.store.SaveGame(saveCtx, slot, save); err != nil {
		return nil, fmt.Errorf("save new game: %w", err)
	}
	s := m.attach(slot, e)
	m.log.Info("game created", "slot", slot, "seed", seed)
	return s, nil
}

// Get returns the live session for slot, restoring it from the store when it
// is not loaded yet.
func (m *Sessions) Get(ctx context.Context, slot string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.slots[slot]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}
	if !slotPattern.MatchString(slot) {
		return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, slot)
	}

	save, err := m.store.LoadGame(ctx, slot)
	if err != nil {
		if errors.Is(err, db.ErrGameNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, slot)
		}
		return nil, err
	}
	e, err := game.Restore(save, m.log.With("slot", slot))
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", slot, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.slots[slot]; ok {
		return s, nil
	}
	if len(m.slots) >= m.max {
		return nil, ErrSlotsFull
	}
	m.log.Info("game restored", "slot", slot, "week", save.State.WeekCount)
	return m.attach(slot, e), nil
}

func (m *Sessions) List(ctx context.Context) ([]db.GameSummary, error) {
	return m.store.ListGames(ctx)
}

// attach must be called with m.mu held.
func (m *Sessions) attach(slot string, e *game.Engine) *Session {
	s := &Session{
		Slot:        slot,
		events:      make(chan game.Event, 256),
		store:       m.store,
		log:         m.log,
		saveTimeout: m.saveTimeout,
	}
	e.Subscribe(func(ev game.Event) {
		select {
		case s.events <- ev:
		default:
			m.log.Warn("event queue full, dropping", "slot", slot, "kind", ev.Kind)
		}
	})
	s.runner = syncq.NewRunner(e, 32)
	go func() {
		for ev := range s.events {
			m.sink.Emit(slot, ev)
		}
	}()
	m.slots[slot] = s
	return s
}

// Close stops every runner. Sessions cannot be used afterwards.
func (m *Sessions) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for slot, s := range m.slots {
		s.close()
		delete(m.slots, slot)
	}
}
