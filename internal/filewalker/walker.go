package filewalker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"lang-resolver/internal/parser"

	"github.com/rs/zerolog/log"
)

// Walker finds catalog files in language directories and dispatches them to
// the matching parser.
type Walker struct {
	parsers []parser.Parser
}

// NewWalker creates a Walker with default parsers.
func NewWalker() *Walker {
	return &Walker{
		parsers: []parser.Parser{
			parser.NewCSVParser(),
		},
	}
}

// FileEntry represents a discovered file ready for processing.
type FileEntry struct {
	Path   string
	Ext    string
	Parser parser.Parser
}

// Walk lists supported files directly inside each directory. Subdirectories
// are not descended into; a language directory is flat. Files are ordered by
// directory argument, then by name.
func (w *Walker) Walk(dirs ...string) ([]FileEntry, error) {
	var entries []FileEntry
	for _, dir := range dirs {
		found, err := w.walkDir(dir)
		if err != nil {
			return nil, err
		}
		entries = append(entries, found...)
	}
	log.Info().Int("count", len(entries)).Strs("dirs", dirs).Msg("Discovered files")
	return entries, nil
}

func (w *Walker) walkDir(dir string) ([]FileEntry, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve dir path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}

	items, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name() < items[j].Name() })

	var entries []FileEntry
	for _, item := range items {
		if !item.Type().IsRegular() {
			continue
		}
		path := filepath.Join(root, item.Name())
		if p, ext, ok := w.match(path); ok {
			entries = append(entries, FileEntry{Path: path, Ext: ext, Parser: p})
		}
	}
	return entries, nil
}

// Supported reports whether some parser handles path.
func (w *Walker) Supported(path string) bool {
	_, _, ok := w.match(path)
	return ok
}

func (w *Walker) match(path string) (parser.Parser, string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, p := range w.parsers {
		if p.CanParse(ext) {
			return p, ext, true
		}
	}
	return nil, ext, false
}

// Entry builds a FileEntry for a single explicitly named file.
func (w *Walker) Entry(path string) (FileEntry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return FileEntry{}, fmt.Errorf("resolve file path: %w", err)
	}
	p, ext, ok := w.match(abs)
	if !ok {
		return FileEntry{}, fmt.Errorf("unsupported file type %q: %s", ext, abs)
	}
	return FileEntry{Path: abs, Ext: ext, Parser: p}, nil
}

// ParseFile parses a single file using the appropriate parser.
func (w *Walker) ParseFile(entry FileEntry) (*parser.ParseResult, error) {
	return entry.Parser.Parse(entry.Path)
}
