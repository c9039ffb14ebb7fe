package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/helpdesk-triage/internal/repository"
)

// TicketQuota limits how many tickets a user may file per window.
type TicketQuota interface {
	Allow(ctx context.Context, userID string) (bool, error)
}

type redisTicketQuota struct {
	client *redis.Client
	max    int
	window time.Duration
}

// NewRedisTicketQuota builds a Redis-backed quota with a rolling daily
// window.
func NewRedisTicketQuota(client *redis.Client, max int, window time.Duration) TicketQuota {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &redisTicketQuota{client: client, max: max, window: window}
}

// ResolveQuotaLimit reads the per-user ticket limit from the stored
// triage configuration, falling back when the row is absent or unset.
func ResolveQuotaLimit(ctx context.Context, configs repository.ConfigRepository, fallback int) int {
	cfg, err := configs.Get(ctx)
	if err != nil || cfg.MaxTicketsPerUser <= 0 {
		return fallback
	}
	return cfg.MaxTicketsPerUser
}

func (q *redisTicketQuota) Allow(ctx context.Context, userID string) (bool, error) {
	key := fmt.Sprintf("helpdesk:quota:tickets:%s", userID)
	count, err := q.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		_ = q.client.Expire(ctx, key, q.window).Err()
	}
	return count <= int64(q.max), nil
}
