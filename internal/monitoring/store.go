package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "ledgertrace:monitor:"
	// maxStoredSnapshots bounds per-entity history in redis.
	maxStoredSnapshots = 100
)

// RedisStore keeps snapshot history in a redis list per entity, newest
// first.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a redis-backed snapshot store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(entityName string) string {
	return redisKeyPrefix + strings.ToLower(strings.TrimSpace(entityName))
}

// Append pushes a snapshot onto the entity's history and trims it.
func (s *RedisStore) Append(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	key := redisKey(snap.EntityName)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, maxStoredSnapshots-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append snapshot: %w", err)
	}
	return nil
}

// History returns up to limit snapshots for the entity, newest first.
func (s *RedisStore) History(ctx context.Context, entityName string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = maxStoredSnapshots
	}
	raw, err := s.client.LRange(ctx, redisKey(entityName), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read snapshot history: %w", err)
	}
	snaps := make([]Snapshot, 0, len(raw))
	for _, item := range raw {
		var snap Snapshot
		if err := json.Unmarshal([]byte(item), &snap); err != nil {
			continue // skip corrupt entries
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// MemoryStore is the in-process fallback used when redis is not
// configured. Suitable for tests and single-instance demo deployments.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]Snapshot
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string][]Snapshot)}
}

// Append prepends a snapshot to the entity's history.
func (s *MemoryStore) Append(_ context.Context, snap Snapshot) error {
	key := redisKey(snap.EntityName)
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append([]Snapshot{snap}, s.snapshots[key]...)
	if len(history) > maxStoredSnapshots {
		history = history[:maxStoredSnapshots]
	}
	s.snapshots[key] = history
	return nil
}

// History returns up to limit snapshots for the entity, newest first.
func (s *MemoryStore) History(_ context.Context, entityName string, limit int) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.snapshots[redisKey(entityName)]
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	out := make([]Snapshot, len(history))
	copy(out, history)
	return out, nil
}
