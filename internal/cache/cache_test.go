package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLastResult(t *testing.T) {
	c := NewLastResult[string, int]()

	_, ok := c.Get(1, 1, "a")
	assert.False(t, ok)

	c.Set(1, 1, "a", 10)
	v, ok := c.Get(1, 1, "a")
	assert.True(t, ok)
	assert.Equal(t, 10, v)

	_, ok = c.Get(1, 1, "b")
	assert.False(t, ok, "different input")
	_, ok = c.Get(1, 2, "a")
	assert.False(t, ok, "newer generation")
	_, ok = c.Get(2, 1, "a")
	assert.False(t, ok, "other owner")

	c.Set(1, 1, "b", 20)
	_, ok = c.Get(1, 1, "a")
	assert.False(t, ok, "only the last input is kept")

	hits, misses := c.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(5), misses)

	c.Invalidate(1)
	assert.Equal(t, 0, c.Len())
}

func TestLastResult_GetOrCompute(t *testing.T) {
	c := NewLastResult[string, string]()
	calls := 0
	compute := func() string {
		calls++
		return "value"
	}

	assert.Equal(t, "value", c.GetOrCompute(7, 3, "in", compute))
	assert.Equal(t, "value", c.GetOrCompute(7, 3, "in", compute))
	assert.Equal(t, 1, calls)

	c.GetOrCompute(7, 4, "in", compute)
	assert.Equal(t, 2, calls)
}
