package interpolation

import (
	"errors"
	"fmt"
)

// ErrGrammar matches every GrammarError via errors.Is.
var ErrGrammar = errors.New("grammar violation")

// GrammarError describes why a template source could not be parsed.
type GrammarError struct {
	// Pos is the 0-based byte offset in the outermost source.
	Pos int
	Msg string
}

func newGrammarError(pos int, format string, args ...any) *GrammarError {
	return &GrammarError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Pos, e.Msg)
}

func (e *GrammarError) Is(target error) bool { return target == ErrGrammar }
