// Package lang implements bound catalog values: substitution of known
// variables into parsed templates, enumeration of their possible renderings,
// and candidate models grouping catalog keys for fuzzy resolution.
package lang

import (
	"sort"
	"strings"
)

type varKind uint8

const (
	namedVar varKind = iota
	sexVar
)

// Var identifies a template variable. It is either a named identifier or the
// reserved sex variable that selects between the halves of a gendered pair.
// Vars are comparable and usable as map keys.
type Var struct {
	kind varKind
	name string
}

// SexVar is the reserved variable bound by gendered {left/right} fields.
var SexVar = Var{kind: sexVar}

// PlayerNameVar holds the player's display name.
var PlayerNameVar = NewVar("playername")

// NewVar returns the named variable.
func NewVar(name string) Var {
	return Var{kind: namedVar, name: name}
}

// IsSex reports whether v is the reserved sex variable.
func (v Var) IsSex() bool { return v.kind == sexVar }

// Name returns the identifier of a named variable and "" for SexVar.
func (v Var) Name() string { return v.name }

func (v Var) String() string {
	if v.IsSex() {
		return "<sex>"
	}
	return v.name
}

// VarSet is an immutable set of variables.
type VarSet map[Var]struct{}

// Has reports membership.
func (s VarSet) Has(v Var) bool {
	_, ok := s[v]
	return ok
}

// Len returns the set size.
func (s VarSet) Len() int { return len(s) }

// Sorted returns the members in a stable order: named variables by name,
// followed by SexVar.
func (s VarSet) Sorted() []Var {
	out := make([]Var, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].kind != out[j].kind {
			return out[i].kind < out[j].kind
		}
		return out[i].name < out[j].name
	})
	return out
}

func (s VarSet) String() string {
	vars := s.Sorted()
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.String()
	}
	return "{" + strings.Join(names, ", ") + "}"
}
