/**
 * @description
 * Distributed rate limiting for the administrative adjustment endpoint, backed
 * by Redis. A single Lua script increments the window counter and sets its
 * expiry atomically so concurrent admin calls across instances share one
 * budget. A nil limiter or nil client disables limiting entirely.
 */

package app

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var adjustRateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// RedisAdjustRateLimiter limits how often an actor may issue point adjustments.
type RedisAdjustRateLimiter struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisAdjustRateLimiter creates a limiter with the given key prefix.
func NewRedisAdjustRateLimiter(client redis.UniversalClient, prefix string) *RedisAdjustRateLimiter {
	trimmed := strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if trimmed == "" {
		trimmed = "core:rate_limit"
	}
	return &RedisAdjustRateLimiter{client: client, prefix: trimmed}
}

// Consume counts one call for subject and reports whether the limit is
// exceeded and how long until the window resets. Limiting is a no-op when the
// limiter, client, limit, or window is unset.
func (r *RedisAdjustRateLimiter) Consume(ctx context.Context, subject string, limit int, window time.Duration) (exceeded bool, retryAfterSeconds int, err error) {
	if r == nil || r.client == nil || limit <= 0 || window <= 0 {
		return false, 0, nil
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return false, 0, nil
	}

	windowMs := window.Milliseconds()
	if windowMs < 1000 {
		windowMs = 1000
	}

	key := fmt.Sprintf("%s:adjust:%s", r.prefix, subject)
	raw, err := adjustRateLimitScript.Run(ctx, r.client, []string{key}, windowMs).Result()
	if err != nil {
		return false, 0, err
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return false, 0, fmt.Errorf("unexpected redis limiter response shape: %T", raw)
	}
	count, ok := values[0].(int64)
	if !ok {
		return false, 0, fmt.Errorf("unexpected redis limiter count type: %T", values[0])
	}
	ttlMs, ok := values[1].(int64)
	if !ok {
		return false, 0, fmt.Errorf("unexpected redis limiter ttl type: %T", values[1])
	}
	if ttlMs < 0 {
		ttlMs = windowMs
	}

	return count > int64(limit), int(math.Ceil(float64(ttlMs) / 1000.0)), nil
}
