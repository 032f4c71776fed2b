// Package cache holds the Redis-backed view cache for campaign lists and
// lead statistics.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/JonMunkholm/LeadTracker/internal/core"
)

// DefaultPrefix namespaces every key written by RedisViewCache.
const DefaultPrefix = "leadtracker:view:"

const scanCount = 200

// Options configures a RedisViewCache.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// RedisViewCache implements core.ViewCache. Values are stored as JSON under
// Prefix+key and expire after TTL.
type RedisViewCache struct {
	c      *redis.Client
	prefix string
	ttl    time.Duration
}

var _ core.ViewCache = (*RedisViewCache)(nil)

// NewClient creates a go-redis client from opts.
func NewClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// New wraps an existing client.
func New(c *redis.Client, opts Options) *RedisViewCache {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisViewCache{c: c, prefix: prefix, ttl: opts.TTL}
}

func (r *RedisViewCache) Load(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.c.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

func (r *RedisViewCache) Store(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return r.c.Set(ctx, r.prefix+key, data, r.ttl).Err()
}

// Invalidate deletes every key under the prefix.
func (r *RedisViewCache) Invalidate(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := r.c.Scan(ctx, cursor, r.prefix+"*", scanCount).Result()
		if err != nil {
			return fmt.Errorf("cache scan: %w", err)
		}
		if len(keys) > 0 {
			if err := r.c.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache delete: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Ping checks the Redis connection.
func (r *RedisViewCache) Ping(ctx context.Context) error {
	return r.c.Ping(ctx).Err()
}

func (r *RedisViewCache) Close() error {
	return r.c.Close()
}
