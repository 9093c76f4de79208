package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"marketplace-portal/backend/internal/ratelimit/domain"
	"marketplace-portal/backend/internal/ratelimit/repository"
)

// Counter reports how many lockout-relevant failures an identifier has in the current window.
// Observe is fed every logged attempt so counters kept outside the attempt trail stay in sync.
type Counter interface {
	Failures(ctx context.Context, identifier string) (int, error)
	Observe(ctx context.Context, a *domain.LoginAttempt) error
}

// StoreCounter counts failures straight from the login attempt trail over a sliding window.
// A successful attempt resets the count.
type StoreCounter struct {
	attempts repository.Repository
	window   time.Duration
	now      func() time.Time
}

// NewStoreCounter returns a Counter backed by the attempt repository.
func NewStoreCounter(attempts repository.Repository, window time.Duration) *StoreCounter {
	return &StoreCounter{attempts: attempts, window: window, now: func() time.Time { return time.Now().UTC() }}
}

// Failures counts failures within the window since the last success.
func (c *StoreCounter) Failures(ctx context.Context, identifier string) (int, error) {
	return c.attempts.CountFailuresSince(ctx, identifier, c.now().Add(-c.window))
}

// Observe is a no-op; the attempt row itself is the record.
func (c *StoreCounter) Observe(ctx context.Context, a *domain.LoginAttempt) error {
	return nil
}

// ErrRedisUnavailable wraps Redis failures from RedisCounter.
var ErrRedisUnavailable = errors.New("redis unavailable")

// RedisCounter keeps a fixed-window failure counter per portal and identifier in Redis.
// The first failure in a window sets the key's TTL in the same transaction as the increment; a success
// deletes the key.
type RedisCounter struct {
	client redis.UniversalClient
	prefix string
	window time.Duration
}

// NewRedisCounter returns a Counter backed by Redis. portal namespaces the keys.
func NewRedisCounter(client redis.UniversalClient, portal string, window time.Duration) *RedisCounter {
	return &RedisCounter{client: client, prefix: "login:fail:" + portal + ":", window: window}
}

// Failures returns the counter for identifier; a missing key is zero.
func (c *RedisCounter) Failures(ctx context.Context, identifier string) (int, error) {
	n, err := c.client.Get(ctx, c.prefix+identifier).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n, nil
}

// Observe increments the counter on a lockout-relevant failure and clears it on success.
func (c *RedisCounter) Observe(ctx context.Context, a *domain.LoginAttempt) error {
	key := c.prefix + a.Email
	if a.Success {
		if err := c.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		return nil
	}
	if !a.CountsTowardLockout() {
		return nil
	}
	// EXPIRE NX only sets a TTL on a key that has none, so the window starts at the first failure
	// and a key left without a TTL picks one up on the next failure.
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, c.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

const defaultRedisTimeout = 5 * time.Second

// ConnectRedis opens a Redis client and verifies it with a ping.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, defaultRedisTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
