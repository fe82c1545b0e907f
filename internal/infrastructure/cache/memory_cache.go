package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"petadopt/internal/domain/service"
	"petadopt/pkg/logger"
)

// memoryProvider keeps serialized values in process memory, so values behave like the
// redis variant: callers never share pointers with the cache.
type memoryProvider struct {
	mu     sync.RWMutex
	values map[string][]byte
	prefix string
}

func NewMemoryProvider(prefix string) service.CacheProvider {
	return &memoryProvider{
		values: make(map[string][]byte),
		prefix: prefix,
	}
}

func (p *memoryProvider) Scope(scope string) service.KeyValueCache {
	return &memoryCache{provider: p, prefix: scopePrefix(p.prefix, scope)}
}

func (p *memoryProvider) Close() error {
	return nil
}

// SetRaw stores bytes verbatim, used to simulate corrupt entries.
func SetRaw(provider service.CacheProvider, scope, key string, raw []byte) {
	p, ok := provider.(*memoryProvider)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[scopePrefix(p.prefix, scope)+key] = raw
}

type memoryCache struct {
	provider *memoryProvider
	prefix   string
}

func (c *memoryCache) Get(ctx context.Context, key string, dst interface{}) bool {
	c.provider.mu.RLock()
	raw, ok := c.provider.values[c.prefix+key]
	c.provider.mu.RUnlock()
	if !ok {
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		logger.Warn("Cache value unparseable, key: %s, err: %v", c.prefix+key, err)
		return false
	}
	return true
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		logger.Error("Cache value unserializable, key: %s, err: %v", c.prefix+key, err)
		return
	}

	c.provider.mu.Lock()
	c.provider.values[c.prefix+key] = raw
	c.provider.mu.Unlock()
}

func (c *memoryCache) Remove(ctx context.Context, key string) {
	c.provider.mu.Lock()
	delete(c.provider.values, c.prefix+key)
	c.provider.mu.Unlock()
}

func (c *memoryCache) Clear(ctx context.Context) {
	c.provider.mu.Lock()
	defer c.provider.mu.Unlock()

	for key := range c.provider.values {
		if strings.HasPrefix(key, c.prefix) {
			delete(c.provider.values, key)
		}
	}
}
