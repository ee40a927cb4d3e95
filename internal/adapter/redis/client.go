// Package redis carries live session samples between instances and caches the rider standing.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Config interface {
	GetAddr() string
	GetPassword() string
	GetDB() int
}

// Connect returns nil when no address is configured.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.GetAddr() == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetAddr(),
		Password: cfg.GetPassword(),
		DB:       cfg.GetDB(),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
