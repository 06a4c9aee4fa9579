package lang

import (
	"fmt"
	"sync"

	"lang-resolver/internal/interpolation"
)

// Value is a catalog entry's template, possibly specialized by a Binding.
//
// A root value comes straight from the catalog. Binding a root produces a
// bound value that remembers the root as its origin; further binds layer on
// the same origin and only ever grow the accumulated Binding.
type Value struct {
	key     string
	interp  *interpolation.Interpolation
	binding Binding
	origin  *Value

	once  sync.Once
	vars  VarSet
	conds VarSet
}

// NewValue wraps a parsed template as a root value.
func NewValue(key string, in *interpolation.Interpolation) *Value {
	return &Value{key: key, interp: in}
}

// ParseValue parses source and wraps it as a root value.
func ParseValue(key, source string) *Value {
	return NewValue(key, interpolation.Parse(source))
}

// Key returns the catalog key.
func (v *Value) Key() string { return v.key }

// Interpolation returns the current, possibly partially substituted, template.
func (v *Value) Interpolation() *interpolation.Interpolation { return v.interp }

// Binding returns everything bound so far. It is empty for a root value.
func (v *Value) Binding() Binding { return v.binding }

// Origin returns the unbound root value.
func (v *Value) Origin() *Value {
	if v.origin == nil {
		return v
	}
	return v.origin
}

// IsBound reports whether v was produced by a bind.
func (v *Value) IsBound() bool { return v.origin != nil }

// IsRaw reports whether the underlying source fell back to raw text.
func (v *Value) IsRaw() bool { return v.Origin().interp.IsRaw() }

// String renders the current template.
func (v *Value) String() string { return v.interp.String() }

// Variables returns every variable still present in the template, including
// conditions and SexVar.
func (v *Value) Variables() VarSet {
	v.once.Do(v.collect)
	return v.vars
}

// Conditions returns the variables used as conditional selectors.
func (v *Value) Conditions() VarSet {
	v.once.Do(v.collect)
	return v.conds
}

func (v *Value) collect() {
	v.vars, v.conds = VarSet{}, VarSet{}
	collectVars(v.interp, v.vars, v.conds)
}

func collectVars(in *interpolation.Interpolation, vars, conds VarSet) {
	for _, it := range in.Items() {
		switch it := it.(type) {
		case interpolation.Variable:
			vars[NewVar(it.Name)] = struct{}{}
		case interpolation.Gendered:
			vars[SexVar] = struct{}{}
		case interpolation.Conditional:
			c := NewVar(it.Cond)
			vars[c] = struct{}{}
			conds[c] = struct{}{}
			collectVars(it.True, vars, conds)
			collectVars(it.False, vars, conds)
		}
	}
}

// Equal reports whether both values have the same key, text and binding.
func (v *Value) Equal(other *Value) bool {
	if v == other {
		return true
	}
	if v == nil || other == nil {
		return false
	}
	return v.key == other.key && v.String() == other.String() && v.binding.Equal(other.binding)
}

// Bind substitutes d for x. It returns v itself when x does not occur in the
// origin template or is already bound to d.
func (v *Value) Bind(x Var, d Datum) (*Value, error) {
	return v.BindAll(Bind(x, d))
}

// BindAll applies every entry of b in one pass. Entries for variables that
// the origin template never mentions are ignored; if none apply, v itself is
// returned. Binding a variable that already holds a different datum fails
// with a *RebindConflictError.
func (v *Value) BindAll(b Binding) (*Value, error) {
	origin := v.Origin()
	var applied Binding
	for _, x := range b.vars {
		d := b.data[x]
		if cur, ok := v.binding.Get(x); ok {
			if cur != d {
				return nil, &RebindConflictError{Key: v.key, Var: x, Bound: cur, Requested: d}
			}
			continue
		}
		if !origin.Variables().Has(x) {
			continue
		}
		if x.IsSex() {
			if s, ok := d.(Sex); !ok || (s != Male && s != Female) {
				return nil, fmt.Errorf("%s: %w, got %T(%v)", v.key, ErrInvalidSex, d, d)
			}
		}
		applied = applied.With(x, d)
	}
	if applied.Len() == 0 {
		return v, nil
	}

	in := v.interp
	for _, x := range applied.vars {
		if v.Variables().Has(x) {
			in = substitute(v.interp, applied)
			break
		}
	}
	return &Value{
		key:     v.key,
		interp:  in,
		binding: v.binding.Merge(applied),
		origin:  origin,
	}, nil
}

// substitute replaces bound fields and merges the resulting literals.
func substitute(in *interpolation.Interpolation, b Binding) *interpolation.Interpolation {
	return interpolation.Compress(substituteParts(in, b))
}

// substituteParts walks one template level. A conditional on a bound
// variable is replaced inline by its chosen branch, which is left
// uncompressed so the outermost call merges everything at once.
func substituteParts(in *interpolation.Interpolation, b Binding) []interpolation.Part {
	parts := make([]interpolation.Part, 0, in.Len())
	for _, it := range in.Items() {
		switch it := it.(type) {
		case interpolation.Variable:
			if d, ok := b.Get(NewVar(it.Name)); ok {
				parts = append(parts, interpolation.Part{Item: interpolation.Literal{Text: d.String()}})
				continue
			}
		case interpolation.Gendered:
			if d, ok := b.Get(SexVar); ok {
				text := it.Left
				if d.(Sex) == Female {
					text = it.Right
				}
				parts = append(parts, interpolation.Part{Item: interpolation.Literal{Text: text}})
				continue
			}
		case interpolation.Conditional:
			if d, ok := b.Get(NewVar(it.Cond)); ok {
				branch := it.False
				if d.Truthy() {
					branch = it.True
				}
				parts = append(parts, interpolation.Part{Inline: substituteParts(branch, b)})
				continue
			}
			parts = append(parts, interpolation.Part{Item: interpolation.Conditional{
				Cond:  it.Cond,
				True:  substitute(it.True, b),
				False: substitute(it.False, b),
			}})
			continue
		}
		parts = append(parts, interpolation.Part{Item: it})
	}
	return parts
}
