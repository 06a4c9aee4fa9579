package interpolation

import (
	"errors"
	"strings"
)

// Parse parses a catalog source string. It never fails: a source that
// violates the grammar comes back as a raw Interpolation carrying the
// violation in Diagnostic.
func Parse(source string) *Interpolation {
	in, err := ParseStrict(source)
	if err != nil {
		return Raw(source, err.Error())
	}
	return in
}

// ParseStrict parses source and returns a *GrammarError on any violation.
func ParseStrict(source string) (*Interpolation, error) {
	return parseInterpolation(source, 0)
}

// parseInterpolation splits src into literal runs and fields. offset is the
// position of src inside the outermost source, for diagnostics.
func parseInterpolation(src string, offset int) (*Interpolation, error) {
	var items []Item
	depth, prev := 0, 0

	// Delimiters are ASCII, so byte indexing is safe for UTF-8 text.
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '{':
			if depth == 0 && prev != i {
				items = append(items, Literal{Text: src[prev:i]})
				prev = i
			}
			depth++
		case '}':
			depth--
			if depth < 0 {
				return nil, newGrammarError(offset+i, "unmatched '}'")
			}
			if depth == 0 {
				expr, err := parseField(src[prev+1:i], offset+prev+1)
				if err != nil {
					return nil, err
				}
				items = append(items, expr)
				prev = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, newGrammarError(offset+prev, "unclosed '{'")
	}
	if prev < len(src) {
		items = append(items, Literal{Text: src[prev:]})
	}
	return &Interpolation{items: items}, nil
}

// parseField interprets a field body, trying identifier, then gendered pair,
// then conditional.
func parseField(body string, pos int) (Item, error) {
	if isIdentifier(body) {
		return Variable{Name: body}, nil
	}
	if g, ok := parseGendered(body); ok {
		return g, nil
	}
	c, err := parseConditional(body, pos)
	if err == nil {
		return c, nil
	}
	var ge *GrammarError
	if errors.As(err, &ge) {
		return nil, err
	}
	return nil, newGrammarError(pos, "unrecognized field {%s}", body)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func parseGendered(body string) (Gendered, bool) {
	if strings.ContainsAny(body, "{}") || strings.Count(body, "/") != 1 {
		return Gendered{}, false
	}
	left, right, _ := strings.Cut(body, "/")
	return Gendered{Left: left, Right: right}, true
}

var errNotConditional = errors.New("not a conditional")

// parseConditional handles cond?true:false. The separating ':' is the first
// one found at brace depth 0 after the '?'.
func parseConditional(body string, pos int) (Conditional, error) {
	cond, tail, ok := strings.Cut(body, "?")
	if !ok || !isIdentifier(cond) {
		return Conditional{}, errNotConditional
	}
	tailPos := pos + len(cond) + 1

	depth, colon := 0, -1
scan:
	for i := 0; i < len(tail); i++ {
		switch tail[i] {
		case ':':
			if depth == 0 {
				colon = i
				break scan
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return Conditional{}, newGrammarError(tailPos+i, "unmatched '}' in condition on %s", cond)
			}
		}
	}
	if colon < 0 {
		return Conditional{}, newGrammarError(pos, "condition on %s has no ':' branch separator", cond)
	}

	truePart, err := parseInterpolation(tail[:colon], tailPos)
	if err != nil {
		return Conditional{}, err
	}
	falsePart, err := parseInterpolation(tail[colon+1:], tailPos+colon+1)
	if err != nil {
		return Conditional{}, err
	}
	return Conditional{Cond: cond, True: truePart, False: falsePart}, nil
}
