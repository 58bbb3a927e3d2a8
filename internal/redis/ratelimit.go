package redisclient

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// FixedWindowLimiter counts requests per key in fixed windows shared by every
// api-server instance.
type FixedWindowLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

func NewFixedWindowLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *FixedWindowLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	if prefix == "" {
		prefix = "rl"
	}
	return &FixedWindowLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
	}
}

// Allow records one hit for key and reports whether it is within the limit.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.incr(ctx, l.prefix+":"+key)
	if err != nil {
		return false, err
	}
	return count <= int64(l.limit), nil
}

func (l *FixedWindowLimiter) incr(ctx context.Context, key string) (int64, error) {
	res, err := fixedWindowScript.Run(ctx, l.client, []string{key}, l.window.Milliseconds()).Result()
	if err != nil {
		return 0, fmt.Errorf("rate limit incr: %w", err)
	}
	return toCount(res)
}

func toCount(res any) (int64, error) {
	switch v := res.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("rate limit count %q: %w", v, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected redis script result type %T", res)
	}
}
