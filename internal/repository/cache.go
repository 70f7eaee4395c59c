package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache abstracts the key/value operations used by the repository.
type Cache interface {
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
}

// RedisCache is a Cache backed by go-redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache constructs a new Redis-backed cache adapter.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Set writes a value to Redis.
func (c *RedisCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return c.client.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a cached value from Redis, mapping redis.Nil to ErrCacheMiss.
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return value, err
}

const (
	// DefaultMemoryCacheEntries bounds a MemoryCache created by NewMemoryCache.
	DefaultMemoryCacheEntries = 10000
	memorySweepInterval       = time.Minute
)

// MemoryCache is an in-process Cache used when no Redis address is configured.
// Expired entries are swept at most once per minute, or earlier when the cache is
// full. A full cache with nothing expired evicts an arbitrary entry.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	lastSweep  time.Time
	now        func() time.Time
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// NewMemoryCache returns an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string]memoryEntry),
		maxEntries: DefaultMemoryCacheEntries,
		lastSweep:  time.Now(),
		now:        time.Now,
	}
}

// Set stores value until expiration elapses; a non-positive expiration never expires.
func (c *MemoryCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	_, exists := c.entries[key]
	full := !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries
	if full || now.Sub(c.lastSweep) >= memorySweepInterval {
		c.sweepLocked(now)
	}
	if full && len(c.entries) >= c.maxEntries {
		for victim := range c.entries {
			delete(c.entries, victim)
			break
		}
	}

	entry := memoryEntry{value: value}
	if expiration > 0 {
		entry.expires = now.Add(expiration)
	}
	c.entries[key] = entry
	return nil
}

// Len reports the number of stored entries, including expired ones not yet swept.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Get returns the stored value or ErrCacheMiss.
func (c *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", ErrCacheMiss
	}
	if !entry.expires.IsZero() && !c.now().Before(entry.expires) {
		delete(c.entries, key)
		return "", ErrCacheMiss
	}
	return entry.value, nil
}

func (c *MemoryCache) sweepLocked(now time.Time) {
	c.lastSweep = now
	for key, entry := range c.entries {
		if !entry.expires.IsZero() && !now.Before(entry.expires) {
			delete(c.entries, key)
		}
	}
}
