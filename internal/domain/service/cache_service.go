package service

import "context"

// KeyValueCache is a best-effort local store. Failures are logged by implementations,
// so a failed Get reads as a miss.
type KeyValueCache interface {
	Get(ctx context.Context, key string, dst interface{}) bool
	Set(ctx context.Context, key string, value interface{})
	Remove(ctx context.Context, key string)
	Clear(ctx context.Context)
}

// CacheProvider hands out caches isolated by scope, one per signed-in user.
type CacheProvider interface {
	Scope(scope string) KeyValueCache
	Close() error
}
