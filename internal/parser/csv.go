package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Splitter separates key from value on a catalog line.
const Splitter = "|"

// CSVParser reads game language files: one key|value pair per line. Only the
// first splitter counts; the value may contain more.
type CSVParser struct{}

func NewCSVParser() *CSVParser { return &CSVParser{} }

func (p *CSVParser) CanParse(ext string) bool {
	return strings.EqualFold(ext, ".csv")
}

func (p *CSVParser) Parse(filePath string) (*ParseResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open csv file: %w", err)
	}
	defer file.Close()

	result, err := p.ParseReader(file)
	if err != nil {
		return nil, fmt.Errorf("scan csv file %s: %w", filePath, err)
	}
	result.FilePath = filePath
	return result, nil
}

// ParseReader parses catalog lines from r.
func (p *CSVParser) ParseReader(r io.Reader) (*ParseResult, error) {
	result := &ParseResult{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	number := 0
	for scanner.Scan() {
		number++
		line := strings.TrimSuffix(scanner.Text(), "\r")

		key, value, ok := strings.Cut(line, Splitter)
		switch {
		case !ok:
			result.Discarded = append(result.Discarded, Discarded{Line: number, Text: line, Reason: ReasonNoSplitter})
		case key == "":
			result.Discarded = append(result.Discarded, Discarded{Line: number, Text: line, Reason: ReasonEmptyKey})
		default:
			result.Entries = append(result.Entries, Entry{Key: key, Value: value, Line: number})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
