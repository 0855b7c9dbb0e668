package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is a process local cache. Values are stored encoded so callers
// never share a pointer with the cache.
type Memory struct {
	store *gocache.Cache
}

func NewMemory(defaultTTL, cleanupInterval time.Duration) *Memory {
	return &Memory{store: gocache.New(defaultTTL, cleanupInterval)}
}

func (m *Memory) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, found := m.store.Get(key)
	if !found {
		return false, nil
	}

	data, ok := raw.([]byte)
	if !ok {
		m.store.Delete(key)
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return true, nil
}

func (m *Memory) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.store.Set(key, data, ttl)
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.store.Delete(key)
	return nil
}

func (m *Memory) Close() error {
	m.store.Flush()
	return nil
}
