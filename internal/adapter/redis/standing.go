package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
)

const standingKey = "govv:standing"

// StandingCache stores the derived standing as JSON with a TTL.
type StandingCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStandingCache(client *redis.Client, ttl time.Duration) *StandingCache {
	return &StandingCache{redis: client, ttl: ttl}
}

func (c *StandingCache) Get(ctx context.Context) (*models.Standing, error) {
	data, err := c.redis.Get(ctx, standingKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("standing cache get: %w", err)
	}

	var st models.Standing
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("standing cache decode: %w", err)
	}
	return &st, nil
}

func (c *StandingCache) Set(ctx context.Context, st *models.Standing) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("standing cache encode: %w", err)
	}
	if err := c.redis.Set(ctx, standingKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("standing cache set: %w", err)
	}
	return nil
}

func (c *StandingCache) Invalidate(ctx context.Context) error {
	if err := c.redis.Del(ctx, standingKey).Err(); err != nil {
		return fmt.Errorf("standing cache del: %w", err)
	}
	return nil
}
