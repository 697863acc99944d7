package redistools

import (
	"context"
	"fmt"
	"time"

	"github.com/Leopold1975/stackit/internal/pkg/config"
	"github.com/redis/go-redis/v9"
)

const maxPingDelay = 10 * time.Second

// NewClient builds a client from config and waits until it answers PING.
func NewClient(ctx context.Context, cfg config.RedisCache) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{ //nolint:exhaustruct
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := Connect(ctx, rdb); err != nil {
		rdb.Close()

		return nil, fmt.Errorf("connect error: %w", err)
	}

	return rdb, nil
}

// Connect pings rdb, waiting one second longer after every failure, and gives up once
// the delay would exceed maxPingDelay or ctx is done.
func Connect(ctx context.Context, rdb *redis.Client) error {
	for delay := time.Second; ; delay += time.Second {
		err := rdb.Ping(ctx).Err()
		if err == nil {
			return nil
		}

		if delay > maxPingDelay {
			return fmt.Errorf("cannot ping redis session store error: %w", err)
		}

		t := time.NewTimer(delay)

		select {
		case <-ctx.Done():
			t.Stop()

			return fmt.Errorf("context error: %w", ctx.Err())
		case <-t.C:
		}
	}
}
