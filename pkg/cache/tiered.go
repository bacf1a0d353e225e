package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// TieredCache layers an in-memory cache in front of an optional Redis
// layer. Reads check memory first and promote Redis hits; writes go to
// both layers.
type TieredCache struct {
	memory *MemoryCache
	redis  redisLayer
	ttl    time.Duration
}

// redisLayer is the slice of the Redis cache the tiered cache relies on.
type redisLayer interface {
	GetWithTTL(ctx context.Context, key string) ([]byte, time.Duration, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// TieredConfig configures the tiered cache.
type TieredConfig struct {
	MaxEntries int
	TTL        time.Duration

	RedisEnabled  bool
	RedisHost     string
	RedisPassword string
	RedisDB       int
}

// NewTieredCache builds the cache layers. A Redis connection failure is
// logged and the cache continues memory-only.
func NewTieredCache(cfg TieredConfig) *TieredCache {
	tc := &TieredCache{
		memory: NewMemoryCache(cfg.MaxEntries, cfg.TTL),
		ttl:    cfg.TTL,
	}

	log.Info().
		Int("max_entries", cfg.MaxEntries).
		Dur("ttl", cfg.TTL).
		Msg("Memory cache initialized")

	if cfg.RedisEnabled {
		rc, err := NewRedisCache(cfg.RedisHost, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing with memory-only")
		} else {
			tc.redis = rc
		}
	}

	return tc
}

// Get retrieves a value, memory first, then Redis.
func (t *TieredCache) Get(ctx context.Context, key string) ([]byte, error) {
	if data, err := t.memory.Get(ctx, key); err == nil {
		return data, nil
	}

	if t.redis != nil {
		if data, remaining, err := t.redis.GetWithTTL(ctx, key); err == nil {
			// Promote with the remaining lifetime so the entry cannot
			// outlive its original expiry.
			if remaining > 0 {
				_ = t.memory.Set(ctx, key, data, remaining)
			}
			return data, nil
		}
	}

	return nil, ErrCacheMiss
}

// Set stores a value in every layer. A zero ttl uses the configured
// default, so the Redis layer never stores entries without expiry.
func (t *TieredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = t.ttl
	}

	if err := t.memory.Set(ctx, key, value, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to set memory cache")
	}

	if t.redis != nil {
		if err := t.redis.Set(ctx, key, value, ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to set Redis cache")
		}
	}

	return nil
}

// Delete removes a value from every layer.
func (t *TieredCache) Delete(ctx context.Context, key string) error {
	_ = t.memory.Delete(ctx, key)
	if t.redis != nil {
		_ = t.redis.Delete(ctx, key)
	}
	return nil
}

// Clear empties every layer.
func (t *TieredCache) Clear(ctx context.Context) error {
	_ = t.memory.Clear(ctx)
	if t.redis != nil {
		_ = t.redis.Clear(ctx)
	}
	return nil
}

// Stats returns the memory-layer counters, which see every lookup.
func (t *TieredCache) Stats() Stats {
	return t.memory.Stats()
}

// Close releases cache resources.
func (t *TieredCache) Close() error {
	_ = t.memory.Close()
	if t.redis != nil {
		return t.redis.Close()
	}
	return nil
}
