package engine

import (
	"sync"

	"soundstage/pkg/config"
	"soundstage/pkg/synth"
)

// bedCache stores synthesized beds per theme
type bedCache struct {
	mu    sync.RWMutex
	store map[config.Theme]*synth.Bed
}

func newBedCache() *bedCache {
	return &bedCache{store: make(map[config.Theme]*synth.Bed)}
}

// get returns the cached bed or builds one. Failed builds are not cached.
func (c *bedCache) get(theme config.Theme, build func() (*synth.Bed, error)) (*synth.Bed, error) {
	c.mu.RLock()
	if bed, ok := c.store[theme]; ok {
		c.mu.RUnlock()
		return bed, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if bed, ok := c.store[theme]; ok {
		return bed, nil
	}

	bed, err := build()
	if err != nil {
		return nil, err
	}
	c.store[theme] = bed
	return bed, nil
}

func (c *bedCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
