package redis

import (
	"context"
	"time"
)

// Counter is the subset of RedisClient the limiter needs.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Decision is the outcome of one limiter hit.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Duration // time until the current window ends
}

// RateLimiter is a fixed-window counter: the first hit in a window sets the expiry.
type RateLimiter struct {
	client Counter
}

func NewRateLimiter(client Counter) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return Decision{}, err
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, window); err != nil {
			return Decision{}, err
		}
	}

	reset, err := r.client.TTL(ctx, key)
	if err != nil {
		return Decision{}, err
	}
	if reset <= 0 {
		// expiry lost (e.g. Expire failed on an earlier hit); restart the window
		if err := r.client.Expire(ctx, key, window); err != nil {
			return Decision{}, err
		}
		reset = window
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: remaining,
		Reset:     reset,
	}, nil
}

// ClientKey scopes the counter to one client address.
func ClientKey(ip string) string {
	return "rate_limit:api:" + ip
}
