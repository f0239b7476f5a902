package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"vidtube/internal/models"
	"vidtube/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when Redis cannot be reached.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed answers 503.
	FailClosed
)

var errNoRateStore = errors.New("rate limit store not configured")

func rateLimitDisabled() bool {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development":
		return true
	}
	return false
}

// windowKey names the counter for the fixed window containing now.
func windowKey(resource, id string, window time.Duration, now time.Time) string {
	bucket := now.UnixNano() / int64(window)
	return fmt.Sprintf("rl:%s:%s:%d", resource, id, bucket)
}

// hit counts one request against the current window and returns the total so far.
func hit(ctx context.Context, rdb *redis.Client, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, window)
		return nil
	})
	if err != nil {
		observability.RedisErrorRate.WithLabelValues("ratelimit").Inc()
		return 0, err
	}
	return incr.Val(), nil
}

// CheckRateLimit reports whether id may make another request to resource in
// the current window. Outside production-like environments it always allows.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if rateLimitDisabled() {
		return true, nil
	}
	if rdb == nil {
		return false, errNoRateStore
	}
	n, err := hit(ctx, rdb, windowKey(resource, id, window, time.Now()), window)
	if err != nil {
		return false, err
	}
	return n <= int64(limit), nil
}

// RateLimit allows limit requests per window for each caller, failing open.
// Authenticated callers are keyed by user id, anonymous ones by IP.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy is RateLimit with an explicit FailPolicy.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resource := c.Path()
		if len(name) > 0 && name[0] != "" {
			resource = name[0]
		}
		caller := "ip:" + c.IP()
		if uid, ok := CurrentUserID(c); ok {
			caller = "user:" + uid.String()
		}

		allowed, err := CheckRateLimit(c.UserContext(), rdb, resource, caller, limit, window)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "rate limit store unavailable",
				slog.String("resource", resource),
				slog.String("error", err.Error()),
			)
			if policy == FailClosed {
				return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
					Error: "Rate limiting unavailable",
					Code:  models.CodeInternal,
				})
			}
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		if !allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests",
				Code:  "RATE_LIMITED",
			})
		}
		return c.Next()
	}
}
