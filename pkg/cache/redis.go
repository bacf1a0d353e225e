package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisCache is a distributed cache layer backed by Redis. It is optional:
// the service runs fine on the in-memory layer alone.
type RedisCache struct {
	client *redis.Client

	mu    sync.Mutex
	stats Stats
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(host, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         host,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().
		Str("host", host).
		Int("db", db).
		Msg("Redis cache initialized")

	return &RedisCache{client: client}, nil
}

// Get retrieves a value from Redis.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		r.count(func(s *Stats) { s.Misses++ })
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	r.count(func(s *Stats) { s.Hits++ })
	return val, nil
}

// GetWithTTL retrieves a value together with its remaining lifetime, so
// callers layering another cache on top can carry the expiry over. A zero
// lifetime means Redis reported no expiry for the key.
func (r *RedisCache) GetWithTTL(ctx context.Context, key string) ([]byte, time.Duration, error) {
	pipe := r.client.Pipeline()
	getCmd := pipe.Get(ctx, key)
	ttlCmd := pipe.TTL(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, err
	}

	val, err := getCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		r.count(func(s *Stats) { s.Misses++ })
		return nil, 0, ErrCacheMiss
	}
	if err != nil {
		return nil, 0, err
	}

	remaining := ttlCmd.Val()
	if remaining < 0 {
		remaining = 0
	}

	r.count(func(s *Stats) { s.Hits++ })
	return val, remaining, nil
}

// Set stores a value in Redis.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return err
	}

	r.count(func(s *Stats) { s.Sets++ })
	return nil
}

// Delete removes a value from Redis.
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return err
	}

	r.count(func(s *Stats) { s.Deletes++ })
	return nil
}

// Clear flushes the selected database.
func (r *RedisCache) Clear(ctx context.Context) error {
	return r.client.FlushDB(ctx).Err()
}

// Stats returns a snapshot of the counters.
func (r *RedisCache) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Close closes the underlying connection.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

func (r *RedisCache) count(fn func(*Stats)) {
	r.mu.Lock()
	fn(&r.stats)
	r.mu.Unlock()
}
