package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/i474232898/agro-weather/internal/weather"
)

type cacheEntry struct {
	forecast weather.ProviderForecast
	storedAt time.Time
}

// MemoryCache is a concurrency-safe in-memory forecast cache.
type MemoryCache struct {
	mu sync.RWMutex

	// key: location key
	data map[string]cacheEntry

	// retention configuration
	maxEntries int           // max number of cached locations
	maxAge     time.Duration // entries older than this are misses

	now func() time.Time
}

// NewMemoryCache creates a new MemoryCache with optional limits.
// If maxEntries or maxAge is <= 0, it is treated as unlimited.
func NewMemoryCache(maxEntries int, maxAge time.Duration) *MemoryCache {
	return &MemoryCache{
		data:       make(map[string]cacheEntry),
		maxEntries: maxEntries,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Get returns the cached forecast for a location if it is still fresh.
func (c *MemoryCache) Get(_ context.Context, loc weather.Location) (weather.ProviderForecast, bool, error) {
	key := loc.Key()

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[key]
	if !ok {
		return weather.ProviderForecast{}, false, nil
	}
	if c.maxAge > 0 && c.now().Sub(entry.storedAt) > c.maxAge {
		return weather.ProviderForecast{}, false, nil
	}
	return entry.forecast, true, nil
}

// Put stores a forecast and enforces retention.
func (c *MemoryCache) Put(_ context.Context, loc weather.Location, f weather.ProviderForecast) error {
	key := loc.Key()
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = cacheEntry{forecast: f, storedAt: now}

	// Enforce retention by age.
	if c.maxAge > 0 {
		cutoff := now.Add(-c.maxAge)
		for k, e := range c.data {
			if e.storedAt.Before(cutoff) {
				delete(c.data, k)
			}
		}
	}

	// Enforce retention by count, dropping the oldest entries.
	for c.maxEntries > 0 && len(c.data) > c.maxEntries {
		var oldestKey string
		var oldest time.Time
		for k, e := range c.data {
			if oldestKey == "" || e.storedAt.Before(oldest) {
				oldestKey, oldest = k, e.storedAt
			}
		}
		delete(c.data, oldestKey)
	}
	return nil
}

// Len returns the number of cached locations.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// RedisCache stores forecasts as JSON values with a TTL.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: "agro-weather:forecast:", ttl: ttl}
}

func (c *RedisCache) key(loc weather.Location) string {
	return c.prefix + loc.Key()
}

func (c *RedisCache) Get(ctx context.Context, loc weather.Location) (weather.ProviderForecast, bool, error) {
	raw, err := c.client.Get(ctx, c.key(loc)).Bytes()
	if errors.Is(err, redis.Nil) {
		return weather.ProviderForecast{}, false, nil
	}
	if err != nil {
		return weather.ProviderForecast{}, false, fmt.Errorf("redis get: %w", err)
	}

	var f weather.ProviderForecast
	if err := json.Unmarshal(raw, &f); err != nil {
		return weather.ProviderForecast{}, false, fmt.Errorf("decode cached forecast: %w", err)
	}
	return f, true, nil
}

func (c *RedisCache) Put(ctx context.Context, loc weather.Location, f weather.ProviderForecast) error {
	raw, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode forecast: %w", err)
	}
	if err := c.client.Set(ctx, c.key(loc), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// ConnectRedis parses a redis:// URL and pings the server.
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opt.MaxRetries = 3

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("INFO: Redis connected (%s)", opt.Addr)
	return client, nil
}
