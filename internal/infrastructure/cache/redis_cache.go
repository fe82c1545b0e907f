package cache

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v9"
	"github.com/pkg/errors"

	"petadopt/internal/domain/service"
	"petadopt/pkg/logger"
)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type redisProvider struct {
	client *redis.Client
	prefix string
}

// NewRedisProvider connects and pings the server so misconfiguration fails at boot.
func NewRedisProvider(ctx context.Context, opts RedisOptions) (service.CacheProvider, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "failed to connect to redis at %s", opts.Addr)
	}

	return NewRedisProviderFromClient(client, opts.Prefix), nil
}

func NewRedisProviderFromClient(client *redis.Client, prefix string) service.CacheProvider {
	return &redisProvider{client: client, prefix: prefix}
}

func (p *redisProvider) Scope(scope string) service.KeyValueCache {
	return &redisCache{client: p.client, prefix: scopePrefix(p.prefix, scope)}
}

func (p *redisProvider) Close() error {
	return p.client.Close()
}

type redisCache struct {
	client *redis.Client
	prefix string
}

func (c *redisCache) Get(ctx context.Context, key string, dst interface{}) bool {
	cached, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Error("Cache get failed, key: %s, err: %v", c.prefix+key, err)
		}
		return false
	}

	if err := json.Unmarshal([]byte(cached), dst); err != nil {
		logger.Warn("Cache value unparseable, key: %s, err: %v", c.prefix+key, err)
		return false
	}
	return true
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		logger.Error("Cache value unserializable, key: %s, err: %v", c.prefix+key, err)
		return
	}

	if err := c.client.Set(ctx, c.prefix+key, raw, 0).Err(); err != nil {
		logger.Error("Cache set failed, key: %s, err: %v", c.prefix+key, err)
	}
}

func (c *redisCache) Remove(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		logger.Error("Cache remove failed, key: %s, err: %v", c.prefix+key, err)
	}
}

// Clear deletes every key of the scope. Keys of other scopes are untouched.
func (c *redisCache) Clear(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Error("Cache scan failed, prefix: %s, err: %v", c.prefix, err)
		return
	}
	if len(keys) == 0 {
		return
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Error("Cache clear failed, prefix: %s, err: %v", c.prefix, err)
	}
}

func scopePrefix(prefix, scope string) string {
	if prefix == "" {
		return scope + ":"
	}
	return prefix + ":" + scope + ":"
}
