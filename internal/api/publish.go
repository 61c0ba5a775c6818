package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"landlord/internal/game"
)

// EventSink receives every event a game slot emits.
type EventSink interface {
	Emit(slot string, ev game.Event)
}

type sinks []EventSink

func (s sinks) Emit(slot string, ev game.Event) {
	for _, sink := range s {
		sink.Emit(slot, ev)
	}
}

// MultiSink emits to each non-nil sink in order.
func MultiSink(all ...EventSink) EventSink {
	out := make(sinks, 0, len(all))
	for _, s := range all {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func EventChannel(slot string) string {
	return "landlord:events:" + slot
}

// RedisPublisher forwards events to other processes over Redis pub/sub.
type RedisPublisher struct {
	rdb     *redis.Client
	log     *slog.Logger
	timeout time.Duration
}

func NewRedisPublisher(rdb *redis.Client, logger *slog.Logger) *RedisPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisPublisher{rdb: rdb, log: logger, timeout: 2 * time.Second}
}

func (p *RedisPublisher) Emit(slot string, ev game.Event) {
	raw, err := json.Marshal(Message{Type: string(ev.Kind), Slot: slot, Payload: ev})
	if err != nil {
		p.log.Error("encode event", "err", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.rdb.Publish(ctx, EventChannel(slot), raw).Err(); err != nil {
		p.log.Warn("publish event failed", "slot", slot, "kind", ev.Kind, "err", err)
	}
}

func OpenRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
