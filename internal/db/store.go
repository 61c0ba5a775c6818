package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"landlord/internal/game"
)

var (
	ErrGameNotFound         = errors.New("game not found")
	ErrDuplicateIdempotency = errors.New("duplicate idempotency key")
	ErrTxConflict           = errors.New("transaction conflict, retry")
)

type Store struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: pool, log: logger}
}

type GameSummary struct {
	Slot       string    `json:"slot"`
	Week       int       `json:"week"`
	CashPence  int64     `json:"cash_pence"`
	Reputation int       `json:"reputation"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CommandRecord is the stored response of one keyed command. Replaying the
// same key returns it instead of running the command again.
type CommandRecord struct {
	Slot      string          `json:"slot"`
	Key       string          `json:"key"`
	Command   string          `json:"command"`
	Status    int             `json:"status"`
	Response  json.RawMessage `json:"response"`
	CreatedAt time.Time       `json:"created_at"`
}

type SoakRun struct {
	BatchID        uuid.UUID
	Seed           uint64
	Weeks          int
	Nights         int
	FinalCashPence int64
	DebtPence      int64
	Reputation     int
	CreditScore    int
	PubLevel       int
	InArrears      bool
	Summary        json.RawMessage
}

func (s *Store) SaveGame(ctx context.Context, slot string, save game.Save) error {
	return s.withSerializableTx(ctx, func(tx pgx.Tx) error {
		return upsertGame(ctx, tx, slot, save)
	})
}

func (s *Store) LoadGame(ctx context.Context, slot string) (game.Save, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `
		SELECT save FROM landlord.games WHERE slot = $1
	`, slot).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return game.Save{}, fmt.Errorf("%w: %s", ErrGameNotFound, slot)
		}
		return game.Save{}, err
	}
	var save game.Save
	if err := json.Unmarshal(raw, &save); err != nil {
		return game.Save{}, fmt.Errorf("decode save %s: %w", slot, err)
	}
	return save, nil
}

func (s *Store) ListGames(ctx context.Context) ([]GameSummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT slot, week, cash_pence, reputation, updated_at
		FROM landlord.games
		ORDER BY updated_at DESC
		LIMIT 200
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]GameSummary, 0, 16)
	for rows.Next() {
		var g GameSummary
		if err := rows.Scan(&g.Slot, &g.Week, &g.CashPence, &g.Reputation, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// CommandResult looks up a stored response by idempotency key.
func (s *Store) CommandResult(ctx context.Context, slot, key string) (CommandRecord, bool, error) {
	rec := CommandRecord{Slot: slot, Key: key}
	err := s.db.QueryRow(ctx, `
		SELECT command, status, response, created_at
		FROM landlord.game_commands
		WHERE slot = $1 AND idempotency_key = $2
	`, slot, key).Scan(&rec.Command, &rec.Status, &rec.Response, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CommandRecord{}, false, nil
		}
		return CommandRecord{}, false, err
	}
	return rec, true, nil
}

// RecordCommand journals a command response and autosaves the game in one
// transaction. A key seen before returns ErrDuplicateIdempotency and nothing
// is written.
func (s *Store) RecordCommand(ctx context.Context, rec CommandRecord, save game.Save) error {
	if len(rec.Response) == 0 {
		rec.Response = json.RawMessage("{}")
	}
	return s.withSerializableTx(ctx, func(tx pgx.Tx) error {
		if err := upsertGame(ctx, tx, rec.Slot, save); err != nil {
			return err
		}
		return claimIdempotency(ctx, tx, rec)
	})
}

func (s *Store) RecordSoak(ctx context.Context, runs []SoakRun) error {
	if len(runs) == 0 {
		return nil
	}
	return s.withSerializableTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, r := range runs {
			summary := r.Summary
			if len(summary) == 0 {
				summary = json.RawMessage("{}")
			}
			batch.Queue(`
				INSERT INTO landlord.soak_runs (
					id, batch_id, seed, weeks, nights, final_cash_pence, debt_pence,
					reputation, credit_score, pub_level, in_arrears, summary
				)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			`, uuid.New(), r.BatchID, int64(r.Seed), r.Weeks, r.Nights, r.FinalCashPence, r.DebtPence,
				r.Reputation, r.CreditScore, r.PubLevel, r.InArrears, summary)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func upsertGame(ctx context.Context, tx pgx.Tx, slot string, save game.Save) error {
	raw, err := json.Marshal(save)
	if err != nil {
		return fmt.Errorf("encode save %s: %w", slot, err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO landlord.games (slot, version, week, cash_pence, reputation, save, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (slot) DO UPDATE
		SET version = EXCLUDED.version,
			week = EXCLUDED.week,
			cash_pence = EXCLUDED.cash_pence,
			reputation = EXCLUDED.reputation,
			save = EXCLUDED.save,
			updated_at = now()
	`, slot, save.Version, save.State.WeekCount, save.State.CashPence, save.State.Reputation, raw)
	return err
}

func claimIdempotency(ctx context.Context, tx pgx.Tx, rec CommandRecord) error {
	key := strings.TrimSpace(rec.Key)
	if key == "" {
		return fmt.Errorf("idempotency key is required")
	}
	cmd, err := tx.Exec(ctx, `
		INSERT INTO landlord.game_commands (slot, idempotency_key, command, status, response, tx_group_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (slot, idempotency_key) DO NOTHING
	`, rec.Slot, key, rec.Command, rec.Status, []byte(rec.Response), uuid.New())
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDuplicateIdempotency
	}
	return nil
}

// withSerializableTx runs fn in a serializable transaction, retrying on
// serialization failures with a doubling backoff.
func (s *Store) withSerializableTx(ctx context.Context, fn func(pgx.Tx) error) error {
	const maxAttempts = 8
	retryDelay := 75 * time.Millisecond
	for attempt := 0; attempt < maxAttempts; attempt++ {
		tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
		if err != nil {
			return err
		}
		err = func() error {
			defer tx.Rollback(ctx)
			if err := fn(tx); err != nil {
				return err
			}
			return tx.Commit(ctx)
		}()
		if err == nil {
			return nil
		}
		if !isSerializationError(err) {
			return err
		}
		s.log.Debug("serializable tx conflict", "attempt", attempt+1)
		if attempt == maxAttempts-1 {
			return ErrTxConflict
		}
		if err := sleepWithContext(ctx, retryDelay); err != nil {
			return err
		}
		if retryDelay < 1200*time.Millisecond {
			retryDelay *= 2
		}
	}
	return ErrTxConflict
}

func isSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
