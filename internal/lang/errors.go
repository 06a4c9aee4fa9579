package lang

import (
	"errors"
	"fmt"
)

var (
	// ErrRebindConflict is returned when a variable already holds a different datum.
	ErrRebindConflict = errors.New("rebind conflict")
	// ErrInvalidSex is returned when the sex variable is bound to something other than a Sex.
	ErrInvalidSex = errors.New("sex variable requires a Sex datum")
	// ErrEmptySpread is returned when a Spread is built from no items.
	ErrEmptySpread = errors.New("empty spread")
	// ErrOverlappingTitles is returned when two dialog title checkers select the same key.
	ErrOverlappingTitles = errors.New("overlapping dialog titles")
)

// RebindConflictError describes a conflicting bind on one value.
type RebindConflictError struct {
	Key       string
	Var       Var
	Bound     Datum
	Requested Datum
}

func (e *RebindConflictError) Error() string {
	return fmt.Sprintf("%s: rebind %s from %q to %q", e.Key, e.Var, Describe(e.Bound), Describe(e.Requested))
}

func (e *RebindConflictError) Is(target error) bool { return target == ErrRebindConflict }
