package service

import (
	"context"
	"sync"
)

// SettingsStore persists application settings.
type SettingsStore interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}

// SettingsCache caches application settings in memory. One instance is owned
// by main and injected into handlers; Invalidate is callable from a different
// request than the one that populated it.
type SettingsCache struct {
	store SettingsStore

	mu     sync.RWMutex
	loaded bool
	values map[string]string
}

// NewSettingsCache creates a new SettingsCache.
func NewSettingsCache(store SettingsStore) *SettingsCache {
	return &SettingsCache{store: store}
}

// Get returns the cached settings, loading them on first use.
func (c *SettingsCache) Get(ctx context.Context) (map[string]string, error) {
	c.mu.RLock()
	if c.loaded {
		out := copyMap(c.values)
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return copyMap(c.values), nil
	}
	values, err := c.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	c.values = values
	c.loaded = true
	return copyMap(c.values), nil
}

// Invalidate clears the cache; the next Get reloads from the store.
func (c *SettingsCache) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.values = nil
	c.mu.Unlock()
}

// Update writes settings through to the store and invalidates the cache.
func (c *SettingsCache) Update(ctx context.Context, changes map[string]string) error {
	for k, v := range changes {
		if err := c.store.Set(ctx, k, v); err != nil {
			return err
		}
	}
	c.Invalidate()
	return nil
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
