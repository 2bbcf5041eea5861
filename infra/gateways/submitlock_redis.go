package gateways

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	submitLockPrefix = "submit:lock:"
	// TTL bounds how long a crashed instance can keep a session locked.
	submitLockTTL = 2 * time.Minute
)

type SubmitLockRedis struct {
	client *redis.Client
}

func NewSubmitLockRedis(client *redis.Client) *SubmitLockRedis {
	return &SubmitLockRedis{client: client}
}

func (l *SubmitLockRedis) key(sessionID string) string {
	return submitLockPrefix + sessionID
}

func (l *SubmitLockRedis) Acquire(ctx context.Context, sessionID string) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	_, err := l.client.SetArgs(ctx, l.key(sessionID), "1", redis.SetArgs{Mode: "NX", TTL: submitLockTTL}).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis set: %w", err)
	}
	return true, nil
}

func (l *SubmitLockRedis) Release(ctx context.Context, sessionID string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return l.client.Del(ctx, l.key(sessionID)).Err()
}
