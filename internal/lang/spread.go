package lang

import "fmt"

// Spread is a finite, non-empty, ordered set of candidate datums for one variable.
type Spread struct {
	items []Datum
}

// NewSpread builds a Spread. It fails with ErrEmptySpread on no items.
func NewSpread(items ...Datum) (Spread, error) {
	if len(items) == 0 {
		return Spread{}, ErrEmptySpread
	}
	out := make([]Datum, len(items))
	copy(out, items)
	return Spread{items: out}, nil
}

// MustSpread is NewSpread for statically known items. It panics on an empty list.
func MustSpread(items ...Datum) Spread {
	s, err := NewSpread(items...)
	if err != nil {
		panic(err)
	}
	return s
}

// IntRange spreads the integers lo, lo+1, ..., hi-1.
func IntRange(lo, hi int) (Spread, error) {
	if hi <= lo {
		return Spread{}, fmt.Errorf("range [%d, %d): %w", lo, hi, ErrEmptySpread)
	}
	items := make([]Datum, 0, hi-lo)
	for n := lo; n < hi; n++ {
		items = append(items, Int(n))
	}
	return Spread{items: items}, nil
}

// Strings spreads text datums.
func Strings(items ...string) (Spread, error) {
	ds := make([]Datum, len(items))
	for i, s := range items {
		ds[i] = Str(s)
	}
	return NewSpread(ds...)
}

// CatalogSpread spreads every entry of a sub-catalog as a KeyText, in key order.
func CatalogSpread(c *Catalog) (Spread, error) {
	ds := make([]Datum, 0, c.Len())
	for _, key := range c.keys {
		ds = append(ds, KeyText{Key: key, Text: c.values[key].String()})
	}
	if len(ds) == 0 {
		return Spread{}, fmt.Errorf("catalog spread: %w", ErrEmptySpread)
	}
	return Spread{items: ds}, nil
}

var (
	sexes    = MustSpread(Male, Female)
	branches = MustSpread(True, False)
)

// Items returns the datums in order. The slice must not be modified.
func (s Spread) Items() []Datum { return s.items }

// Len returns the number of datums.
func (s Spread) Len() int { return len(s.items) }

// SpreadEntry pairs a variable with its spread.
type SpreadEntry struct {
	Var    Var
	Spread Spread
}

// Spreading declares which variables of a catalog entry are enumerated and
// in which order. The zero value is empty.
type Spreading struct {
	entries []SpreadEntry
}

// EmptySpreading enumerates nothing.
var EmptySpreading = Spreading{}

// NewSpreading keeps the given order. A repeated variable replaces the
// earlier spread at its original position.
func NewSpreading(entries ...SpreadEntry) Spreading {
	out := make([]SpreadEntry, 0, len(entries))
	pos := make(map[Var]int, len(entries))
	for _, e := range entries {
		if i, ok := pos[e.Var]; ok {
			out[i] = e
			continue
		}
		pos[e.Var] = len(out)
		out = append(out, e)
	}
	return Spreading{entries: out}
}

// Entries returns the declared entries in order.
func (s Spreading) Entries() []SpreadEntry { return s.entries }

// Len returns the number of declared variables.
func (s Spreading) Len() int { return len(s.entries) }

// Vars returns the declared variables in order.
func (s Spreading) Vars() []Var {
	out := make([]Var, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Var
	}
	return out
}

// Get returns the spread declared for v.
func (s Spreading) Get(v Var) (Spread, bool) {
	for _, e := range s.entries {
		if e.Var == v {
			return e.Spread, true
		}
	}
	return Spread{}, false
}

// Expand applies step to every seed and concatenates the results in order.
// Chaining Expand calls yields the cross product of the steps.
func Expand[T any](seeds []T, step func(T) ([]T, error)) ([]T, error) {
	var out []T
	for _, seed := range seeds {
		next, err := step(seed)
		if err != nil {
			return nil, err
		}
		out = append(out, next...)
	}
	return out, nil
}

// Spread binds x to every datum of s. When x does not occur in the current
// template the result is v alone.
func (v *Value) Spread(x Var, s Spread) ([]*Value, error) {
	if !v.Variables().Has(x) {
		return []*Value{v}, nil
	}
	out := make([]*Value, 0, s.Len())
	for _, d := range s.items {
		bound, err := v.Bind(x, d)
		if err != nil {
			return nil, fmt.Errorf("spread %s: %w", x, err)
		}
		out = append(out, bound)
	}
	return out, nil
}

// SpreadAll enumerates the cross product of every spread in sp, in declared order.
func (v *Value) SpreadAll(sp Spreading) ([]*Value, error) {
	values := []*Value{v}
	for _, e := range sp.entries {
		var err error
		values, err = Expand(values, func(val *Value) ([]*Value, error) {
			return val.Spread(e.Var, e.Spread)
		})
		if err != nil {
			return nil, err
		}
	}
	return values, nil
}

// PurgeSpread enumerates every literal rendering reachable without knowing
// any variable: plain variables become empty, SexVar takes both sexes and
// every condition takes both branches.
func (v *Value) PurgeSpread() ([]*Value, error) {
	vars, conds := v.Variables(), v.Conditions()

	var empty Binding
	for _, x := range vars.Sorted() {
		if x.IsSex() || conds.Has(x) {
			continue
		}
		empty = empty.With(x, Str(""))
	}
	purged, err := v.BindAll(empty)
	if err != nil {
		return nil, fmt.Errorf("purge %s: %w", v.key, err)
	}

	entries := []SpreadEntry{{Var: SexVar, Spread: sexes}}
	for _, c := range conds.Sorted() {
		entries = append(entries, SpreadEntry{Var: c, Spread: branches})
	}
	out, err := purged.SpreadAll(NewSpreading(entries...))
	if err != nil {
		return nil, fmt.Errorf("purge %s: %w", v.key, err)
	}
	return out, nil
}
