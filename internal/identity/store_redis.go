// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/identra/internal/platform/constants"
)

// # Redis Login Throttle

// RedisLoginThrottle counts failed login attempts per account in Redis.
//
// Counters live under a keyspace prefix and expire on their own, so a stale
// counter never blocks an account forever even if Reset is missed.
type RedisLoginThrottle struct {
	client *redis.Client
}

// NewRedisLoginThrottle creates a throttle backed by the given Redis client.
func NewRedisLoginThrottle(client *redis.Client) *RedisLoginThrottle {
	return &RedisLoginThrottle{client: client}
}

// TooManyAttempts reports whether the account has exhausted its failure budget.
func (t *RedisLoginThrottle) TooManyAttempts(ctx context.Context, key string) (bool, int, error) {
	attempts, err := t.client.Get(ctx, t.redisKey(key)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("login_throttle_get_failed: %w", err)
	}

	if attempts < MaxLoginAttempts {
		return false, 0, nil
	}

	ttl, err := t.client.TTL(ctx, t.redisKey(key)).Result()
	if err != nil {
		return true, int(LoginAttemptWindow.Seconds()), nil
	}

	return true, int(ttl.Seconds()), nil
}

// RecordFailure increments the failure counter, starting the expiry window on
// the first failure.
func (t *RedisLoginThrottle) RecordFailure(ctx context.Context, key string) error {
	redisKey := t.redisKey(key)

	attempts, err := t.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return fmt.Errorf("login_throttle_incr_failed: %w", err)
	}

	// Only the first failure sets the TTL; later ones ride the same window.
	if attempts == 1 {
		if err := t.client.Expire(ctx, redisKey, LoginAttemptWindow).Err(); err != nil {
			return fmt.Errorf("login_throttle_expire_failed: %w", err)
		}
	}

	return nil
}

// Reset drops the failure counter after a successful login.
func (t *RedisLoginThrottle) Reset(ctx context.Context, key string) error {
	if err := t.client.Del(ctx, t.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("login_throttle_del_failed: %w", err)
	}
	return nil
}

func (t *RedisLoginThrottle) redisKey(key string) string {
	return constants.RedisPrefixLoginAttempts + strings.ToLower(key)
}
