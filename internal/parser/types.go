package parser

// Entry is one key|value line of a catalog file.
type Entry struct {
	Key   string
	Value string
	// Line is the 1-based line number in the source file.
	Line int
}

// Discard reasons.
const (
	ReasonNoSplitter = "absent splitter"
	ReasonEmptyKey   = "empty key"
)

// Discarded is a line that could not become an Entry.
type Discarded struct {
	Line   int
	Text   string
	Reason string
}

// ParseResult holds parsing output for a single file.
type ParseResult struct {
	// FilePath is the absolute path to the parsed file.
	FilePath string
	// Entries in file order. Keys may repeat; deduplication is the loader's job.
	Entries []Entry
	// Discarded lines in file order.
	Discarded []Discarded
}

// Parser is the interface for catalog file formats.
type Parser interface {
	// CanParse returns true if this parser handles the given file extension.
	CanParse(ext string) bool
	// Parse extracts entries from a file.
	Parse(filePath string) (*ParseResult, error)
}
