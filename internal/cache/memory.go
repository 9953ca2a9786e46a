package cache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
)

const (
	defaultNumCounters = 1e6
	defaultMaxCost     = 64 << 20
	defaultBufferItems = 64
)

// MemoryCache is an in-process cache backed by ristretto.
type MemoryCache struct {
	cache *ristretto.Cache
}

func NewMemoryCache(maxCostBytes int64) (*MemoryCache, error) {
	if maxCostBytes <= 0 {
		maxCostBytes = defaultMaxCost
	}

	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: defaultNumCounters,
		MaxCost:     maxCostBytes,
		BufferItems: defaultBufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &MemoryCache{cache: c}, nil
}

func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, found := m.cache.Get(key)
	if !found {
		return nil, false, nil
	}
	data, ok := value.([]byte)
	if !ok {
		return nil, false, nil
	}
	return data, true, nil
}

func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.cache.SetWithTTL(key, value, int64(len(value)), ttl)
	return nil
}

// Wait flushes pending async writes; used by tests.
func (m *MemoryCache) Wait() {
	m.cache.Wait()
}

func (m *MemoryCache) Close() error {
	m.cache.Close()
	return nil
}
