package lang

import "strings"

// Binding is an immutable variable → datum mapping. Iteration follows
// insertion order. The zero value is an empty binding.
type Binding struct {
	vars []Var
	data map[Var]Datum
}

// EmptyBinding binds nothing.
var EmptyBinding = Binding{}

// Bind returns a single-entry binding.
func Bind(v Var, d Datum) Binding {
	return EmptyBinding.With(v, d)
}

// With returns a copy of b with v bound to d. An existing entry for v is
// replaced in place.
func (b Binding) With(v Var, d Datum) Binding {
	out := Binding{
		vars: make([]Var, len(b.vars), len(b.vars)+1),
		data: make(map[Var]Datum, len(b.data)+1),
	}
	copy(out.vars, b.vars)
	for k, val := range b.data {
		out.data[k] = val
	}
	if _, exists := out.data[v]; !exists {
		out.vars = append(out.vars, v)
	}
	out.data[v] = d
	return out
}

// Merge returns b extended by other. Entries of other win on collision.
func (b Binding) Merge(other Binding) Binding {
	if other.Len() == 0 {
		return b
	}
	if b.Len() == 0 {
		return other
	}
	out := b
	for _, v := range other.vars {
		out = out.With(v, other.data[v])
	}
	return out
}

// Get returns the datum bound to v.
func (b Binding) Get(v Var) (Datum, bool) {
	d, ok := b.data[v]
	return d, ok
}

// Has reports whether v is bound.
func (b Binding) Has(v Var) bool {
	_, ok := b.data[v]
	return ok
}

// Len returns the number of bound variables.
func (b Binding) Len() int { return len(b.vars) }

// Vars returns the bound variables in insertion order.
func (b Binding) Vars() []Var {
	out := make([]Var, len(b.vars))
	copy(out, b.vars)
	return out
}

// Equal reports whether both bindings hold the same entries, ignoring order.
func (b Binding) Equal(other Binding) bool {
	if b.Len() != other.Len() {
		return false
	}
	for v, d := range b.data {
		od, ok := other.data[v]
		if !ok || od != d {
			return false
		}
	}
	return true
}

// Strings flattens the binding for persistence, keyed by variable name.
func (b Binding) Strings() map[string]string {
	out := make(map[string]string, len(b.vars))
	for _, v := range b.vars {
		out[v.String()] = Describe(b.data[v])
	}
	return out
}

func (b Binding) String() string {
	parts := make([]string, len(b.vars))
	for i, v := range b.vars {
		parts[i] = v.String() + "=" + Describe(b.data[v])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
