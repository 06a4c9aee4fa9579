package lang

import (
	"fmt"
	"sort"
)

// Catalog maps keys to values. It is immutable once built.
type Catalog struct {
	values map[string]*Value
	keys   []string
}

// NewCatalog indexes values by key. A later value replaces an earlier one
// with the same key.
func NewCatalog(values ...*Value) *Catalog {
	c := &Catalog{values: make(map[string]*Value, len(values))}
	for _, v := range values {
		c.values[v.Key()] = v
	}
	c.keys = make([]string, 0, len(c.values))
	for k := range c.values {
		c.keys = append(c.keys, k)
	}
	sort.Strings(c.keys)
	return c
}

// ParseCatalog parses every source string into a root value.
func ParseCatalog(sources map[string]string) *Catalog {
	values := make([]*Value, 0, len(sources))
	for key, src := range sources {
		values = append(values, ParseValue(key, src))
	}
	return NewCatalog(values...)
}

// Get returns the value stored under key.
func (c *Catalog) Get(key string) (*Value, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.keys) }

// Keys returns all keys in sorted order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Values returns all values in key order.
func (c *Catalog) Values() []*Value {
	out := make([]*Value, len(c.keys))
	for i, k := range c.keys {
		out[i] = c.values[k]
	}
	return out
}

// Raw returns the entries whose source violated the template grammar.
func (c *Catalog) Raw() []*Value {
	var out []*Value
	for _, k := range c.keys {
		if v := c.values[k]; v.IsRaw() {
			out = append(out, v)
		}
	}
	return out
}

// Filter returns the sub-catalog of keys accepted by keep.
func (c *Catalog) Filter(keep func(key string) bool) *Catalog {
	sub := &Catalog{values: make(map[string]*Value)}
	for _, k := range c.keys {
		if keep(k) {
			sub.values[k] = c.values[k]
			sub.keys = append(sub.keys, k)
		}
	}
	return sub
}

// Bind applies b to every entry.
func (c *Catalog) Bind(b Binding) (*Catalog, error) {
	if b.Len() == 0 {
		return c, nil
	}
	out := &Catalog{values: make(map[string]*Value, len(c.values)), keys: c.keys}
	for _, k := range c.keys {
		v, err := c.values[k].BindAll(b)
		if err != nil {
			return nil, fmt.Errorf("bind catalog: %w", err)
		}
		out.values[k] = v
	}
	return out, nil
}
