package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"landlord/internal/api"
	"landlord/internal/config"
	"landlord/internal/db"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	bal, err := config.LoadBalance(cfg.BalanceFile)
	if err != nil {
		return err
	}

	checks := map[string]api.Checker{}
	var store api.Store = api.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer pool.Close()
		if err := db.Migrate(pool); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		store = db.NewStore(pool, logger)
		checks["postgres"] = dbChecker{pool}
		logger.Info("connected to postgres")
	} else {
		logger.Warn("DATABASE_URL not set, games are kept in memory only")
	}

	var publisher api.EventSink
	if cfg.RedisURL != "" {
		rdb, err := api.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		publisher = api.NewRedisPublisher(rdb, logger)
		checks["redis"] = redisChecker{rdb}
		logger.Info("connected to redis")
	}

	g, gctx := errgroup.WithContext(ctx)

	hub := api.NewHub(logger)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	sessions := api.NewSessions(api.SessionsConfig{
		MaxSlots:    cfg.MaxSlots,
		Balance:     bal,
		SaveTimeout: cfg.SaveTimeout,
	}, store, api.MultiSink(hub, publisher), logger)
	defer sessions.Close()

	server := api.New(cfg, logger, sessions, hub, checks)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info("landlord api listening", "addr", cfg.Addr, "max_slots", cfg.MaxSlots)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

type dbChecker struct{ pool *pgxpool.Pool }

func (d dbChecker) Check(ctx context.Context) error { return d.pool.Ping(ctx) }

type redisChecker struct{ client *redis.Client }

func (r redisChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }
