package lang

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Group selects catalog keys with a Checker and declares how their
// variables are enumerated.
type Group struct {
	Name      string
	Checker   Checker
	Spreading Spreading
}

type modelOptions struct {
	playerName *string
	playerSex  Sex
	symbols    *string
}

// ModelOption configures NewModel.
type ModelOption func(*modelOptions)

// WithPlayerName binds PlayerNameVar in every selected entry.
func WithPlayerName(name string) ModelOption {
	return func(o *modelOptions) { o.playerName = &name }
}

// WithPlayerSex binds SexVar in every selected entry.
func WithPlayerSex(s Sex) ModelOption {
	return func(o *modelOptions) { o.playerSex = s }
}

// WithSymbols overrides the computed OCR symbol whitelist.
func WithSymbols(symbols string) ModelOption {
	return func(o *modelOptions) { o.symbols = &symbols }
}

func (o modelOptions) binding() Binding {
	var b Binding
	if o.playerName != nil {
		b = b.With(PlayerNameVar, Str(*o.playerName))
	}
	if o.playerSex == Male || o.playerSex == Female {
		b = b.With(SexVar, o.playerSex)
	}
	return b
}

var modelSeq atomic.Uint64

// Model is a set of candidate catalog entries for one resolution context,
// each with its Spreading, plus the precomputed purge spread of all of them.
//
// A Model is rebuilt in place when the catalog changes; every rebuild bumps
// its generation so caches keyed by (ID, Generation) go stale.
type Model struct {
	id     uint64
	groups []Group
	opts   modelOptions

	mu    sync.RWMutex
	state *Snapshot
}

// Snapshot is one immutable build of a Model.
type Snapshot struct {
	ModelID    uint64
	Generation uint64

	spreadings map[string]Spreading
	language   *Catalog
	purge      []*Value
	symbols    string
	overlaps   []string
}

// NewModel selects entries of c with each group's checker and binds the
// configured player name and sex into them. When two groups select the same
// key the later group wins; see Overlaps.
func NewModel(c *Catalog, groups []Group, opts ...ModelOption) (*Model, error) {
	m := &Model{
		id:     modelSeq.Add(1),
		groups: append([]Group(nil), groups...),
	}
	for _, opt := range opts {
		opt(&m.opts)
	}
	if err := m.Rebuild(c); err != nil {
		return nil, err
	}
	return m, nil
}

// Rebuild recomputes the model from a new catalog and bumps the generation.
// On error the previous build stays in place.
func (m *Model) Rebuild(c *Catalog) error {
	st, err := m.build(c)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	st.Generation = 1
	if m.state != nil {
		st.Generation = m.state.Generation + 1
	}
	m.state = st
	return nil
}

func (m *Model) build(c *Catalog) (*Snapshot, error) {
	st := &Snapshot{
		ModelID:    m.id,
		spreadings: make(map[string]Spreading),
	}

	owner := make(map[string]int)
	selected := make(map[string]*Value)
	var symbolSpreads []Spread
	for gi, g := range m.groups {
		sub := g.Checker.Select(c)
		if sub.Len() > 0 {
			for _, e := range g.Spreading.Entries() {
				symbolSpreads = append(symbolSpreads, e.Spread)
			}
		}
		for _, key := range sub.keys {
			if prev, ok := owner[key]; ok && prev != gi {
				st.overlaps = append(st.overlaps, key)
			}
			owner[key] = gi
			st.spreadings[key] = g.Spreading
			selected[key] = sub.values[key]
		}
	}
	sort.Strings(st.overlaps)

	values := make([]*Value, 0, len(selected))
	for _, v := range selected {
		values = append(values, v)
	}
	bound, err := NewCatalog(values...).Bind(m.opts.binding())
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}
	st.language = bound

	for _, v := range bound.Values() {
		purged, err := v.PurgeSpread()
		if err != nil {
			return nil, fmt.Errorf("build model: %w", err)
		}
		st.purge = append(st.purge, purged...)
	}

	if m.opts.symbols != nil {
		st.symbols = *m.opts.symbols
	} else {
		st.symbols = collectSymbols(st.purge, symbolSpreads)
	}
	return st, nil
}

func collectSymbols(purge []*Value, spreads []Spread) string {
	set := make(map[rune]struct{})
	for _, v := range purge {
		for _, r := range v.String() {
			set[r] = struct{}{}
		}
	}
	for _, s := range spreads {
		for _, d := range s.items {
			for _, r := range d.String() {
				set[r] = struct{}{}
			}
		}
	}
	runes := make([]rune, 0, len(set))
	for r := range set {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	var sb strings.Builder
	for _, r := range runes {
		sb.WriteRune(r)
	}
	return sb.String()
}

// Snapshot returns the current build.
func (m *Model) Snapshot() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// ID identifies the model for its whole lifetime.
func (m *Model) ID() uint64 { return m.id }

// Generation increases with every Rebuild.
func (m *Model) Generation() uint64 { return m.Snapshot().Generation }

// Groups returns the groups the model was declared with.
func (m *Model) Groups() []Group { return m.groups }

func (m *Model) Len() int                               { return m.Snapshot().Len() }
func (m *Model) Keys() []string                         { return m.Snapshot().Keys() }
func (m *Model) Value(key string) (*Value, bool)        { return m.Snapshot().Value(key) }
func (m *Model) Spreading(key string) (Spreading, bool) { return m.Snapshot().Spreading(key) }
func (m *Model) PurgeSpread() []*Value                  { return m.Snapshot().PurgeSpread() }
func (m *Model) Symbols() string                        { return m.Snapshot().Symbols() }
func (m *Model) Overlaps() []string                     { return m.Snapshot().Overlaps() }

// Len returns the number of selected keys.
func (s *Snapshot) Len() int { return s.language.Len() }

// Keys returns the selected keys in sorted order.
func (s *Snapshot) Keys() []string { return s.language.Keys() }

// Language returns the selected entries with player bindings applied.
func (s *Snapshot) Language() *Catalog { return s.language }

// Value returns the player-bound value for key.
func (s *Snapshot) Value(key string) (*Value, bool) { return s.language.Get(key) }

// Spreading returns the spreading declared for key.
func (s *Snapshot) Spreading(key string) (Spreading, bool) {
	sp, ok := s.spreadings[key]
	return sp, ok
}

// PurgeSpread returns every purge rendering of every selected entry.
func (s *Snapshot) PurgeSpread() []*Value { return s.purge }

// Symbols returns the sorted set of characters the model can render.
func (s *Snapshot) Symbols() string { return s.symbols }

// Overlaps lists keys selected by more than one group.
func (s *Snapshot) Overlaps() []string { return s.overlaps }
