package asr

import (
	"fmt"
	"sync"
)

// Cache shares loaded engines between pipeline stages. Transcription and
// translation of the same model must not load it twice; the cache hands out
// the existing engine and refcounts it so the model is released only when
// the last user is done.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	engine Engine
	refs   int
}

// NewCache returns an empty engine cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*cacheEntry)}
}

// Acquire returns the engine cached under key, loading it with load on
// first use. Every successful Acquire must be paired with one Release.
func (c *Cache) Acquire(key string, load func() (Engine, error)) (Engine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.refs++
		return e.engine, nil
	}

	engine, err := load()
	if err != nil {
		return nil, err
	}
	c.entries[key] = &cacheEntry{engine: engine, refs: 1}
	return engine, nil
}

// Release drops one reference to the engine under key, closing it when the
// count reaches zero. Releasing an unknown key is an error.
func (c *Cache) Release(key string) error {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("asr: release of unknown engine %q", key)
	}
	e.refs--
	if e.refs > 0 {
		c.mu.Unlock()
		return nil
	}
	delete(c.entries, key)
	c.mu.Unlock()

	return e.engine.Close()
}

// Len reports the number of distinct engines currently loaded.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
