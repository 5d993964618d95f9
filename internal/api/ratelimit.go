// Rate limiting for the public analysis API. Fixed one-minute windows
// counted in redis, falling back to local in-process counters when
// redis is unavailable so limits degrade rather than vanish.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Adahandles/ledgertrace/internal/config"
)

// RateLimiter enforces per-client, per-endpoint request limits.
type RateLimiter struct {
	redis    *redis.Client
	logger   *zap.Logger
	config   config.RateLimitConfig
	observer RateLimitObserver

	mu    sync.Mutex
	local map[string]*localWindow
}

// RateLimitObserver counts rejected requests for metrics.
type RateLimitObserver interface {
	ObserveRateLimitRejection(endpoint string)
}

type localWindow struct {
	count   int
	resetAt time.Time
}

// RateLimitResult contains the outcome of one limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int
	Limit      int
	ResetAt    time.Time
	RetryAfter time.Duration
}

var incrWithExpiry = redis.NewScript(`
	local current = redis.call('INCR', KEYS[1])
	if current == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return current
`)

// NewRateLimiter creates a rate limiter. redisClient may be nil; the
// limiter then uses local counters only.
func NewRateLimiter(redisClient *redis.Client, cfg config.RateLimitConfig, logger *zap.Logger, observer RateLimitObserver) *RateLimiter {
	return &RateLimiter{
		redis:    redisClient,
		logger:   logger,
		config:   cfg,
		observer: observer,
		local:    make(map[string]*localWindow),
	}
}

// Check counts one request for the client/endpoint pair against the
// per-minute limit.
func (rl *RateLimiter) Check(ctx context.Context, clientID, endpoint string, limit int) RateLimitResult {
	if limit <= 0 {
		return RateLimitResult{Allowed: true, Remaining: -1}
	}

	now := time.Now()
	var count int
	var resetAt time.Time

	if rl.redis != nil {
		key := fmt.Sprintf("ledgertrace:ratelimit:%s:%s:minute", clientID, endpoint)
		n, err := incrWithExpiry.Run(ctx, rl.redis, []string{key}, 60000).Int()
		if err != nil {
			if rl.logger != nil {
				rl.logger.Warn("redis rate limit check failed, using local counter", zap.Error(err))
			}
			count, resetAt = rl.localCount(clientID, endpoint, now)
		} else {
			count = n
			ttl, _ := rl.redis.TTL(ctx, key).Result()
			resetAt = now.Add(ttl)
		}
	} else {
		count, resetAt = rl.localCount(clientID, endpoint, now)
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	result := RateLimitResult{
		Allowed:   count <= limit,
		Remaining: remaining,
		Limit:     limit,
		ResetAt:   resetAt,
	}
	if !result.Allowed {
		result.RetryAfter = time.Until(resetAt)
		if result.RetryAfter < 0 {
			result.RetryAfter = 0
		}
	}
	return result
}

// localCount increments the in-process fixed window for the pair.
func (rl *RateLimiter) localCount(clientID, endpoint string, now time.Time) (int, time.Time) {
	key := clientID + "|" + endpoint
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.local[key]
	if !ok || now.After(w.resetAt) {
		w = &localWindow{resetAt: now.Add(time.Minute)}
		rl.local[key] = w
	}
	w.count++
	return w.count, w.resetAt
}

// Middleware limits requests to one endpoint at the given per-minute
// rate, keyed by client IP.
func (rl *RateLimiter) Middleware(endpoint string, perMinute int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.config.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			result := rl.Check(r.Context(), clientIP(r), endpoint, perMinute)

			if rl.config.IncludeHeaders && result.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
			}

			if !result.Allowed {
				if rl.observer != nil {
					rl.observer.ObserveRateLimitRejection(endpoint)
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprintf(w, `{"error":"rate_limit_exceeded","retry_after":%d}`,
					int(result.RetryAfter.Seconds()))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
