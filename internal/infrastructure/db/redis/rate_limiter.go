package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "ratelimit"

// RateLimiterStore is a fixed-window request counter shared by every gateway
// instance. It satisfies echo's middleware.RateLimiterStore.
//
// Key format: ratelimit:<identifier>:<window_start_unix>
type RateLimiterStore struct {
	client  *redis.Client
	limit   int64
	window  time.Duration
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// NewRateLimiterStore allows limit requests per identifier in each window.
func NewRateLimiterStore(client *redis.Client, limit int, window time.Duration, log zerolog.Logger) *RateLimiterStore {
	return &RateLimiterStore{
		client:  client,
		limit:   int64(limit),
		window:  window,
		timeout: time.Second,
		now:     time.Now,
		log:     log,
	}
}

// Allow counts one request for identifier. Redis failures let the request
// through and are logged.
func (s *RateLimiterStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	key := s.key(identifier, s.now())

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, s.window)
		return nil
	})
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, allowing request")
		return true, nil
	}

	return incr.Val() <= s.limit, nil
}

func (s *RateLimiterStore) key(identifier string, at time.Time) string {
	start := at.Truncate(s.window).Unix()
	return fmt.Sprintf("%s:%s:%d", keyPrefix, identifier, start)
}
