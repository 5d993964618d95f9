// Package cache provides a redis-backed cache for gathered signal
// bundles. Public-record data moves slowly, so repeat lookups for the
// same entity within the TTL reuse the previous gather. The cache
// fails open: any redis error is logged and treated as a miss.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Adahandles/ledgertrace/internal/entity"
)

const keyPrefix = "ledgertrace:signals:"

// DefaultTTL is used when the configured TTL is zero.
const DefaultTTL = 1 * time.Hour

// SignalCache caches signal bundles in redis.
type SignalCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a signal cache. A nil client yields a disabled cache
// whose Get always misses.
func New(client *redis.Client, ttl time.Duration, logger *zap.Logger) *SignalCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SignalCache{client: client, ttl: ttl, logger: logger}
}

// Key derives the cache key for an analysis input. Name and address
// both participate: a changed address must not reuse stale property
// signals.
func Key(in *entity.Input) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(in.Name))))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(strings.TrimSpace(in.Address))))
	h.Write([]byte{0})
	for _, o := range in.Officers {
		h.Write([]byte(strings.ToLower(strings.TrimSpace(o))))
		h.Write([]byte{0})
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil)[:16])
}

// Get returns the cached bundle for the key, or (nil, false) on a miss
// or any redis failure.
func (c *SignalCache) Get(ctx context.Context, key string) (*entity.SignalBundle, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("signal cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var bundle entity.SignalBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		if c.logger != nil {
			c.logger.Warn("signal cache entry corrupt, dropping", zap.String("key", key), zap.Error(err))
		}
		c.client.Del(ctx, key)
		return nil, false
	}
	return &bundle, true
}

// Set stores the bundle under the key for the cache TTL. Failures are
// logged and ignored.
func (c *SignalCache) Set(ctx context.Context, key string, bundle *entity.SignalBundle) {
	if c == nil || c.client == nil || bundle == nil {
		return
	}
	data, err := json.Marshal(bundle)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil && c.logger != nil {
		c.logger.Warn("signal cache write failed", zap.Error(err))
	}
}
