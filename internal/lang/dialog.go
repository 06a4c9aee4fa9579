package lang

import (
	"fmt"
	"sort"
	"strings"
)

// DialogBodies maps a dialog title key to the model that resolves the
// dialog's body text.
type DialogBodies struct {
	bodies map[string]*Model
}

// NewDialogBodies returns an empty mapping.
func NewDialogBodies() *DialogBodies {
	return &DialogBodies{bodies: make(map[string]*Model)}
}

// Add registers body for every key of c selected by title. It fails with
// ErrOverlappingTitles if any such key already has a body.
func (d *DialogBodies) Add(c *Catalog, title Checker, body *Model) error {
	sub := title.Select(c)
	var clash []string
	for _, key := range sub.keys {
		if _, ok := d.bodies[key]; ok {
			clash = append(clash, key)
		}
	}
	if len(clash) > 0 {
		return fmt.Errorf("%w: %s selects %s", ErrOverlappingTitles, title, strings.Join(clash, ", "))
	}
	for _, key := range sub.keys {
		d.bodies[key] = body
	}
	return nil
}

// Body returns the body model registered for a title key.
func (d *DialogBodies) Body(titleKey string) (*Model, bool) {
	m, ok := d.bodies[titleKey]
	return m, ok
}

// Titles returns the registered title keys in sorted order.
func (d *DialogBodies) Titles() []string {
	out := make([]string, 0, len(d.bodies))
	for k := range d.bodies {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered title keys.
func (d *DialogBodies) Len() int { return len(d.bodies) }
