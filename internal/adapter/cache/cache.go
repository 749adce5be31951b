// Package cache provides the key/value store backing the marine data
// client. It prefers Redis and degrades to a per-process in-memory store
// when Redis is unreachable, so a cache outage never surfaces as an
// ingestion failure.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/couchcryptid/beach-safety-ingest/internal/observability"
)

const redisTimeout = 2 * time.Second

// Cache is a TTL key/value store. All methods are best-effort: failures are
// counted and logged, never returned.
type Cache struct {
	client  *redis.Client
	memory  *memoryStore
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New builds a Cache. With an empty addr the cache is memory-only;
// otherwise Redis is probed once with a short timeout and the in-memory
// store takes over when the probe fails.
func New(addr, password string, db int, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Cache {
	c := &Cache{
		memory:  newMemoryStore(clock),
		metrics: metrics,
		logger:  logger,
	}

	if addr == "" {
		logger.Info("cache using in-memory store")
		return c
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  redisTimeout,
		ReadTimeout:  redisTimeout,
		WriteTimeout: redisTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, falling back to in-memory cache", "addr", addr, "error", err)
		_ = client.Close()
		return c
	}

	logger.Info("cache using redis", "addr", addr, "db", db)
	c.client = client
	return c
}

// Get returns the cached value and whether it was present.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c.client != nil {
		value, err := c.client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			c.metrics.CacheLookups.WithLabelValues("hit").Inc()
			return value, true
		case errors.Is(err, redis.Nil):
			// Not cached in Redis; the memory store may still hold it
			// from an earlier fallback write.
		default:
			c.metrics.CacheFallbacks.Inc()
			c.logger.Warn("redis get failed, using in-memory cache", "key", key, "error", err)
		}
	}

	value, ok := c.memory.get(key)
	if ok {
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return value, true
	}
	c.metrics.CacheLookups.WithLabelValues("miss").Inc()
	return nil, false
}

// Set stores a value with a TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c.client != nil {
		err := c.client.Set(ctx, key, value, ttl).Err()
		if err == nil {
			return
		}
		c.metrics.CacheFallbacks.Inc()
		c.logger.Warn("redis set failed, using in-memory cache", "key", key, "error", err)
	}
	c.memory.set(key, value, ttl)
}

// Delete removes a key from both stores.
func (c *Cache) Delete(ctx context.Context, key string) {
	if c.client != nil {
		if err := c.client.Del(ctx, key).Err(); err != nil {
			c.metrics.CacheFallbacks.Inc()
			c.logger.Warn("redis del failed", "key", key, "error", err)
		}
	}
	c.memory.delete(key)
}

// Close releases the Redis connection, if any.
func (c *Cache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// memoryStore is a mutex-guarded map with lazy expiry: entries are checked
// against the clock at read time and dropped when stale.
type memoryStore struct {
	clock   clockwork.Clock
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func newMemoryStore(clock clockwork.Clock) *memoryStore {
	return &memoryStore{
		clock:   clock,
		entries: make(map[string]memoryEntry),
	}
}

func (s *memoryStore) get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.clock.Now().After(entry.expiresAt) {
		delete(s.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (s *memoryStore) set(key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{value: value, expiresAt: s.clock.Now().Add(ttl)}
}

func (s *memoryStore) delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}
