package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

func init() {
	Register("memory", newMemoryCache)
}

// memoryCache keeps entries in a process-local expirable LRU.
type memoryCache struct {
	entries *lru.LRU[string, []byte]
}

func newMemoryCache(cfg ProviderConfig) (Cache, error) {
	return &memoryCache{
		entries: lru.NewLRU[string, []byte](cfg.Size, func(key string, _ []byte) {
			EvictionsTotal.WithLabelValues(groupOrDefault(cfg.Group)).Inc()
		}, cfg.TTL),
	}, nil
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	return m.entries.Get(key)
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte) {
	m.entries.Add(key, value)
}

func (m *memoryCache) Len(_ context.Context) int {
	return m.entries.Len()
}

func (m *memoryCache) Close() error {
	return nil
}
