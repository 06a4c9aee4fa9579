// Package interpolation parses catalog template strings into an immutable AST.
//
// A template is a run of literal text and brace-delimited fields:
//
//	As you wish, {sire/my lady}. {reg6?I:{reg7?You:{s11}}} will be the new {reg3?lady:lord} of {s1}.
//
// A field holds one of three expressions: a variable ({s1}), a gendered pair
// ({sire/my lady}) or a conditional ({reg3?lady:lord}) whose branches are
// themselves templates.
package interpolation

import "strings"

// Item is one element of an Interpolation: a Literal or an expression.
type Item interface {
	// Source returns the item exactly as it appears in template source.
	Source() string
	item() // marker method to restrict implementation
}

// Literal is plain text between fields.
type Literal struct {
	Text string
}

// Variable is a bare identifier field, e.g. {s1}.
type Variable struct {
	Name string
}

// Gendered is a {left/right} field selected by the player's sex.
type Gendered struct {
	Left  string
	Right string
}

// Conditional is a {cond?true:false} field. Both branches are nested templates.
type Conditional struct {
	Cond  string
	True  *Interpolation
	False *Interpolation
}

func (Literal) item()     {}
func (Variable) item()    {}
func (Gendered) item()    {}
func (Conditional) item() {}

func (l Literal) Source() string  { return l.Text }
func (v Variable) Source() string { return "{" + v.Name + "}" }
func (g Gendered) Source() string { return "{" + g.Left + "/" + g.Right + "}" }

func (c Conditional) Source() string {
	return "{" + c.Cond + "?" + c.True.String() + ":" + c.False.String() + "}"
}

// Interpolation is the parsed form of one catalog line. It is never mutated
// after construction.
type Interpolation struct {
	items []Item
	raw   bool
	diag  string
}

// New builds a non-raw Interpolation from items. Empty literals are dropped.
func New(items ...Item) *Interpolation {
	kept := make([]Item, 0, len(items))
	for _, it := range items {
		if l, ok := it.(Literal); ok && l.Text == "" {
			continue
		}
		kept = append(kept, it)
	}
	return &Interpolation{items: kept}
}

// Raw wraps source as a single opaque literal. diag records why parsing was skipped.
func Raw(source, diag string) *Interpolation {
	in := &Interpolation{raw: true, diag: diag}
	if source != "" {
		in.items = []Item{Literal{Text: source}}
	}
	return in
}

// Items returns the top-level items. The slice must not be modified.
func (in *Interpolation) Items() []Item { return in.items }

// Len returns the number of top-level items.
func (in *Interpolation) Len() int { return len(in.items) }

// IsRaw reports whether the source violated the grammar and was kept verbatim.
func (in *Interpolation) IsRaw() bool { return in.raw }

// Diagnostic returns the grammar violation that caused a raw fallback.
func (in *Interpolation) Diagnostic() string { return in.diag }

// IsLiteral reports whether the template contains no fields.
func (in *Interpolation) IsLiteral() bool {
	for _, it := range in.items {
		if _, ok := it.(Literal); !ok {
			return false
		}
	}
	return true
}

// String serializes the template back to source form.
func (in *Interpolation) String() string {
	if in == nil {
		return ""
	}
	switch len(in.items) {
	case 0:
		return ""
	case 1:
		return in.items[0].Source()
	}
	var sb strings.Builder
	for _, it := range in.items {
		sb.WriteString(it.Source())
	}
	return sb.String()
}

// Compress merges adjacent literals, flattening any nested Interpolation
// produced by substitution into its parent.
func Compress(parts []Part) *Interpolation {
	var (
		out []Item
		buf strings.Builder
	)
	flush := func() {
		if buf.Len() > 0 {
			out = append(out, Literal{Text: buf.String()})
			buf.Reset()
		}
	}
	var walk func(parts []Part)
	walk = func(parts []Part) {
		for _, p := range parts {
			switch {
			case p.Inline != nil:
				walk(p.Inline)
			case p.Item == nil:
			default:
				if l, ok := p.Item.(Literal); ok {
					buf.WriteString(l.Text)
					continue
				}
				flush()
				out = append(out, p.Item)
			}
		}
	}
	walk(parts)
	flush()
	return &Interpolation{items: out}
}

// Part is an intermediate substitution result: either a single item or an
// inlined sequence of parts that has not been compressed yet.
type Part struct {
	Item   Item
	Inline []Part
}
