package cache

import (
	"sync"
)

// entry is the last computation recorded for one owner.
type entry[K comparable, V any] struct {
	generation uint64
	input      K
	value      V
}

// LastResult remembers the most recent (input, value) pair per owner.
// An entry is only served back while the owner's generation is unchanged.
type LastResult[K comparable, V any] struct {
	mu     sync.RWMutex
	memory map[uint64]entry[K, V] // owner id → last result
	hits   uint64
	misses uint64
}

// NewLastResult creates an empty cache.
func NewLastResult[K comparable, V any]() *LastResult[K, V] {
	return &LastResult[K, V]{
		memory: make(map[uint64]entry[K, V]),
	}
}

// Get returns the cached value if owner's last input at generation equals input.
func (c *LastResult[K, V]) Get(owner, generation uint64, input K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.memory[owner]
	if ok && e.generation == generation && e.input == input {
		c.hits++
		return e.value, true
	}
	c.misses++
	var zero V
	return zero, false
}

// Set records value as owner's last result, replacing any previous one.
func (c *LastResult[K, V]) Set(owner, generation uint64, input K, value V) {
	c.mu.Lock()
	c.memory[owner] = entry[K, V]{generation: generation, input: input, value: value}
	c.mu.Unlock()
}

// GetOrCompute returns the cached value or computes, stores and returns it.
func (c *LastResult[K, V]) GetOrCompute(owner, generation uint64, input K, compute func() V) V {
	if v, ok := c.Get(owner, generation, input); ok {
		return v
	}
	v := compute()
	c.Set(owner, generation, input, v)
	return v
}

// Invalidate drops owner's entry.
func (c *LastResult[K, V]) Invalidate(owner uint64) {
	c.mu.Lock()
	delete(c.memory, owner)
	c.mu.Unlock()
}

// Stats returns hit and miss counts.
func (c *LastResult[K, V]) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Len returns the number of owners with a cached entry.
func (c *LastResult[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memory)
}
