package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"greenmart/internal/infra"
)

type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) key(k string) string { return c.prefix + k }

// Get decodes the cached JSON into dest and reports whether the key existed.
func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	b, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), data, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	return c.client.Del(ctx, full...).Err()
}

func (c *RedisCache) SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, c.key(key), 1, ttl).Result()
}

// NopCache never stores anything; it stands in when Redis is not configured.
type NopCache struct{}

func (NopCache) Get(context.Context, string, any) (bool, error)             { return false, nil }
func (NopCache) Set(context.Context, string, any, time.Duration) error      { return nil }
func (NopCache) Delete(context.Context, ...string) error                    { return nil }
func (NopCache) SetNX(context.Context, string, time.Duration) (bool, error) { return true, nil }

var (
	_ infra.CacheInterface = (*RedisCache)(nil)
	_ infra.CacheInterface = NopCache{}
)
