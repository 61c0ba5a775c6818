package soak

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"landlord/internal/game"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPlaySettlesEveryWeek(t *testing.T) {
	res, err := Play(context.Background(), Config{Seed: 11, Weeks: 3, Balance: game.DefaultBalance(), Logger: quiet()})
	require.NoError(t, err)
	require.Equal(t, 3*game.DaysPerWeek, res.Nights)
	require.Len(t, res.WeekLines, 3)
	for i, w := range res.WeekLines {
		require.Equal(t, i+1, w.Week)
		require.GreaterOrEqual(t, w.CashPence, int64(0))
	}
	require.GreaterOrEqual(t, res.CashPence, int64(0))
	require.GreaterOrEqual(t, res.PubLevel, 0)
}

func TestPlayIsDeterministic(t *testing.T) {
	cfg := Config{Seed: 99, Weeks: 2, Balance: game.DefaultBalance(), Logger: quiet()}
	a, err := Play(context.Background(), cfg)
	require.NoError(t, err)
	b, err := Play(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestPlayRejectsZeroWeeks(t *testing.T) {
	_, err := Play(context.Background(), Config{Seed: 1})
	require.Error(t, err)
}

func TestPlayStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Play(ctx, Config{Seed: 1, Weeks: 50, Logger: quiet()})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, res.Nights)
}

func TestRunBatchKeepsSeedOrder(t *testing.T) {
	out, err := RunBatch(context.Background(), BatchConfig{Games: 4, Weeks: 1, Seed: 500, Balance: game.DefaultBalance()}, quiet())
	require.NoError(t, err)
	require.Len(t, out, 4)
	for i, r := range out {
		require.Equal(t, uint64(500+i), r.Seed)
		require.Equal(t, game.DaysPerWeek, r.Nights)
	}
}
