package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerWindow int           // Number of requests allowed per window
	Window            time.Duration // Time window for rate limiting
	KeyPrefix         string        // Redis key prefix, one per limited route group
}

// clientKey identifies the caller: the admin when authenticated, otherwise
// the remote IP without its port
func clientKey(r *http.Request) string {
	if admin, ok := GetAdmin(r.Context()); ok {
		return "admin:" + strconv.FormatInt(admin.ID, 10)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// windowHit counts one request against key and reports the count so far
// and the time left in the window. The counter and its TTL are read in a
// single round trip; a counter without TTL gets one.
func windowHit(ctx context.Context, client redis.UniversalClient, key string, window time.Duration) (int64, time.Duration, error) {
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	left := ttl.Val()
	if left < 0 {
		if err := client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, err
		}
		left = window
	}
	return incr.Val(), left, nil
}

func setLimitHeaders(w http.ResponseWriter, limit, remaining int, reset time.Duration) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(reset).Unix(), 10))
}

// RateLimitMiddleware implements fixed-window rate limiting using Redis.
// Redis failures let the request through.
func RateLimitMiddleware(redisClient redis.UniversalClient, config RateLimitConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := clientKey(r)
			key := config.KeyPrefix + ":" + clientID

			count, left, err := windowHit(r.Context(), redisClient, key, config.Window)
			if err != nil {
				logger.Error("Rate limit counter unavailable",
					zap.Error(err),
					zap.String("key", key),
				)
				next.ServeHTTP(w, r)
				return
			}

			if count > int64(config.RequestsPerWindow) {
				logger.Warn("Rate limit exceeded",
					zap.String("client_id", clientID),
					zap.String("key_prefix", config.KeyPrefix),
					zap.Int64("count", count),
					zap.Int("limit", config.RequestsPerWindow),
				)

				setLimitHeaders(w, config.RequestsPerWindow, 0, left)
				w.Header().Set("Retry-After", strconv.Itoa(int(left.Seconds())))
				RespondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			setLimitHeaders(w, config.RequestsPerWindow, config.RequestsPerWindow-int(count), left)
			next.ServeHTTP(w, r)
		})
	}
}
