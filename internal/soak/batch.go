package soak

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"landlord/internal/game"
)

type BatchConfig struct {
	Games   int
	Weeks   int
	Seed    uint64
	Balance game.Balance
}

// RunBatch plays cfg.Games games with seeds Seed, Seed+1, ... in parallel.
// Results keep seed order. The first failing game cancels the rest.
func RunBatch(ctx context.Context, cfg BatchConfig, logger *slog.Logger) ([]Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	out := make([]Result, cfg.Games)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range cfg.Games {
		seed := cfg.Seed + uint64(i)
		g.Go(func() error {
			res, err := Play(gctx, Config{Seed: seed, Weeks: cfg.Weeks, Balance: cfg.Balance, Logger: logger})
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
