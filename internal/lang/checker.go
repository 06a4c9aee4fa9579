package lang

import (
	"fmt"
	"regexp"
	"strings"
)

type checkerKind uint8

const (
	checkNone checkerKind = iota
	checkLiteral
	checkAny
	checkPredicate
	checkFilter
)

// Checker classifies catalog keys. Build one with Literal, Any, Predicate,
// Pattern or Filter; the zero Checker matches nothing.
type Checker struct {
	kind checkerKind

	key string // Literal

	members []Checker // Any

	name string // Predicate
	pred func(key string) bool

	inner *Checker // Filter
	allow *Checker
	deny  *Checker
}

// Literal matches exactly one key.
func Literal(key string) Checker {
	return Checker{kind: checkLiteral, key: key}
}

// Literals matches any of the given keys.
func Literals(keys ...string) Checker {
	cs := make([]Checker, len(keys))
	for i, k := range keys {
		cs[i] = Literal(k)
	}
	return Any(cs...)
}

// Any matches a key accepted by at least one member.
func Any(members ...Checker) Checker {
	cs := make([]Checker, len(members))
	copy(cs, members)
	return Checker{kind: checkAny, members: cs}
}

// Predicate matches keys accepted by fn. name is used for display only.
func Predicate(name string, fn func(key string) bool) Checker {
	return Checker{kind: checkPredicate, name: name, pred: fn}
}

// Pattern matches keys against a regular expression.
func Pattern(re *regexp.Regexp) Checker {
	return Predicate("/"+re.String()+"/", re.MatchString)
}

// Filter narrows inner: a key must also match allow (when non-nil) and must
// not match deny (when non-nil).
func Filter(inner Checker, allow, deny *Checker) Checker {
	return Checker{kind: checkFilter, inner: &inner, allow: allow, deny: deny}
}

// Match reports whether key is accepted.
func (c Checker) Match(key string) bool {
	switch c.kind {
	case checkLiteral:
		return c.key == key
	case checkAny:
		for _, m := range c.members {
			if m.Match(key) {
				return true
			}
		}
		return false
	case checkPredicate:
		return c.pred(key)
	case checkFilter:
		if c.allow != nil && !c.allow.Match(key) {
			return false
		}
		if c.deny != nil && c.deny.Match(key) {
			return false
		}
		return c.inner.Match(key)
	default:
		return false
	}
}

// Select returns the sub-catalog of matching keys.
func (c Checker) Select(cat *Catalog) *Catalog {
	return cat.Filter(c.Match)
}

func (c Checker) String() string {
	switch c.kind {
	case checkLiteral:
		return fmt.Sprintf("%q", c.key)
	case checkAny:
		parts := make([]string, len(c.members))
		for i, m := range c.members {
			parts[i] = m.String()
		}
		return "any(" + strings.Join(parts, ", ") + ")"
	case checkPredicate:
		return c.name
	case checkFilter:
		s := "filter(" + c.inner.String()
		if c.allow != nil {
			s += ", allow=" + c.allow.String()
		}
		if c.deny != nil {
			s += ", deny=" + c.deny.String()
		}
		return s + ")"
	default:
		return "none"
	}
}
