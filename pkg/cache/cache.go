package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/frahmantamala/school-store/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

// Cache is a JSON value cache over Redis. A nil *Cache, or one built without
// a client, behaves as an always-missing cache so callers never branch on it.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Connect dials Redis and verifies the connection.
func Connect(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return New(client, ttl), nil
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// Get decodes the value stored under key into dest and reports whether it was found.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if !c.enabled() {
		return false
	}

	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheMisses.WithLabelValues(key).Inc()
		}
		return false
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return false
	}

	metrics.CacheHits.WithLabelValues(key).Inc()
	return true
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}) error {
	if !c.enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *Cache) Ping(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if !c.enabled() {
		return nil
	}
	return c.client.Close()
}
