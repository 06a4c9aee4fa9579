// Package catalog loads localization catalogs from language directories.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"lang-resolver/internal/filewalker"
	"lang-resolver/internal/lang"
	"lang-resolver/internal/parser"
	"lang-resolver/internal/worker"

	"github.com/rs/zerolog/log"
)

// SpecialSource labels entries supplied in code rather than read from a file.
const SpecialSource = "special_language:"

// ErrNoFiles is returned by LoadDir when a directory holds no catalog file.
var ErrNoFiles = errors.New("no catalog files found")

// Report summarizes a load.
type Report struct {
	Files      int
	Entries    int
	Discarded  int
	Duplicates int
	Raw        int
	// Sources maps every loaded key to "path:line" or SpecialSource.
	Sources map[string]string
}

// Loader reads catalog files in parallel and merges them in argument order.
type Loader struct {
	walker  *filewalker.Walker
	workers int
}

// NewLoader creates a Loader parsing up to workers files at once.
func NewLoader(workers int) *Loader {
	return &Loader{walker: filewalker.NewWalker(), workers: workers}
}

// LoadDir loads every catalog file directly inside dirs.
func (l *Loader) LoadDir(ctx context.Context, special map[string]string, dirs ...string) (*lang.Catalog, *Report, error) {
	entries, err := l.walker.Walk(dirs...)
	if err != nil {
		return nil, nil, err
	}
	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("%w in %v", ErrNoFiles, dirs)
	}
	return l.load(ctx, special, entries)
}

// LoadFiles loads the given files. Entries in special are loaded first and
// so take precedence; after that the first occurrence of a key wins.
func (l *Loader) LoadFiles(ctx context.Context, special map[string]string, paths ...string) (*lang.Catalog, *Report, error) {
	entries := make([]filewalker.FileEntry, 0, len(paths))
	for _, p := range paths {
		e, err := l.walker.Entry(p)
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, e)
	}
	return l.load(ctx, special, entries)
}

func (l *Loader) load(ctx context.Context, special map[string]string, files []filewalker.FileEntry) (*lang.Catalog, *Report, error) {
	pool := worker.NewPool[filewalker.FileEntry, *parser.ParseResult](l.workers,
		func(_ context.Context, e filewalker.FileEntry) (*parser.ParseResult, error) {
			return l.walker.ParseFile(e)
		})
	results, err := pool.Map(ctx, files)
	if err != nil {
		return nil, nil, fmt.Errorf("parse catalog files: %w", err)
	}

	rep := &Report{Files: len(files), Sources: make(map[string]string)}
	values := make(map[string]*lang.Value)
	var order []*lang.Value
	dups := make(map[string]bool)

	add := func(key, src, source string) {
		v := lang.ParseValue(key, src)
		if v.IsRaw() {
			rep.Raw++
			log.Warn().
				Str("source", source).
				Str("key", key).
				Str("value", src).
				Str("error", v.Interpolation().Diagnostic()).
				Msg("Parser error, using raw value")
		}
		values[key] = v
		order = append(order, v)
		rep.Sources[key] = source
	}

	for _, key := range sortedKeys(special) {
		if key == "" {
			rep.Discarded++
			log.Warn().Str("source", SpecialSource).Str("value", special[key]).Msg("Empty key, line discarded")
			continue
		}
		add(key, special[key], SpecialSource)
	}

	for _, res := range results {
		for _, d := range res.Discarded {
			rep.Discarded++
			log.Warn().
				Str("source", fmt.Sprintf("%s:%d", res.FilePath, d.Line)).
				Str("reason", d.Reason).
				Str("line", d.Text).
				Msg("Line discarded")
		}
		for _, e := range res.Entries {
			source := fmt.Sprintf("%s:%d", res.FilePath, e.Line)
			if prev, ok := values[e.Key]; ok {
				if !dups[e.Key] {
					dups[e.Key] = true
					log.Warn().
						Str("source", rep.Sources[e.Key]).
						Str("key", e.Key).
						Str("value", prev.String()).
						Msg("Duplicated key")
				}
				rep.Duplicates++
				log.Warn().Str("source", source).Str("key", e.Key).Str("value", e.Value).Msg("Not unique key, line discarded")
				continue
			}
			add(e.Key, e.Value, source)
		}
	}
	rep.Entries = len(order)

	log.Info().
		Int("files", rep.Files).
		Int("entries", rep.Entries).
		Int("discarded", rep.Discarded).
		Int("duplicates", rep.Duplicates).
		Int("raw", rep.Raw).
		Msg("Catalog loaded")
	return lang.NewCatalog(order...), rep, nil
}
