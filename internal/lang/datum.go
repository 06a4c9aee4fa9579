package lang

import (
	"fmt"
	"strconv"
	"strings"
)

// Datum is a concrete value bound to a variable. The implementations are
// comparable so two datums can be checked with ==.
type Datum interface {
	// String is the text substituted for a variable field.
	String() string
	// Truthy selects the branch of a conditional field.
	Truthy() bool
	datum()
}

// Str is a text datum. It is truthy when non-empty.
type Str string

// Int is a numeric datum. It is truthy when non-zero.
type Int int

// Bool is the true/false sentinel used to enumerate conditional branches.
// It renders as empty text.
type Bool bool

// Sex selects the left (Male) or right (Female) half of a gendered pair.
type Sex uint8

const (
	Male Sex = iota + 1
	Female
)

// True and False are the sentinels tried for every condition by PurgeSpread.
const (
	True  = Bool(true)
	False = Bool(false)
)

// KeyText is an item of a sub-catalog spread: it renders the catalog text and
// remembers which key produced it.
type KeyText struct {
	Key  string
	Text string
}

func (s Str) String() string { return string(s) }
func (s Str) Truthy() bool   { return s != "" }
func (Str) datum()           {}

func (n Int) String() string { return strconv.Itoa(int(n)) }
func (n Int) Truthy() bool   { return n != 0 }
func (Int) datum()           {}

func (Bool) String() string { return "" }
func (b Bool) Truthy() bool { return bool(b) }
func (Bool) datum()         {}

func (k KeyText) String() string { return k.Text }
func (k KeyText) Truthy() bool   { return k.Text != "" }
func (KeyText) datum()           {}

func (s Sex) String() string {
	switch s {
	case Male:
		return "male"
	case Female:
		return "female"
	default:
		return fmt.Sprintf("Sex(%d)", uint8(s))
	}
}
func (Sex) Truthy() bool { return true }
func (Sex) datum()       {}

// ParseSex accepts "male"/"m" and "female"/"f", case-insensitively. The
// boolean is false for an empty or unknown value.
func ParseSex(s string) (Sex, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return Male, true
	case "female", "f":
		return Female, true
	default:
		return 0, false
	}
}

// Describe renders a datum for logs and persisted bindings. Unlike String it
// distinguishes sentinels and sexes.
func Describe(d Datum) string {
	switch v := d.(type) {
	case Bool:
		return strconv.FormatBool(bool(v))
	case Sex:
		return v.String()
	case KeyText:
		return v.Key
	case nil:
		return ""
	default:
		return d.String()
	}
}
