package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVParser_ParseReader(t *testing.T) {
	src := strings.Join([]string{
		"k1|Ruler {s1}",
		"no splitter here",
		"|orphan value",
		"k2|a|b\r",
		"",
		"k3|",
	}, "\n")

	res, err := NewCSVParser().ParseReader(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Key: "k1", Value: "Ruler {s1}", Line: 1},
		{Key: "k2", Value: "a|b", Line: 4},
		{Key: "k3", Value: "", Line: 6},
	}, res.Entries)
	assert.Equal(t, []Discarded{
		{Line: 2, Text: "no splitter here", Reason: ReasonNoSplitter},
		{Line: 3, Text: "|orphan value", Reason: ReasonEmptyKey},
		{Line: 5, Text: "", Reason: ReasonNoSplitter},
	}, res.Discarded)
}

func TestCSVParser_Parse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ui.csv")
	require.NoError(t, os.WriteFile(path, []byte("ui_noon|Noon\n"), 0o644))

	p := NewCSVParser()
	assert.True(t, p.CanParse(".CSV"))
	assert.False(t, p.CanParse(".txt"))

	res, err := p.Parse(path)
	require.NoError(t, err)
	assert.Equal(t, path, res.FilePath)
	assert.Equal(t, []Entry{{Key: "ui_noon", Value: "Noon", Line: 1}}, res.Entries)
	assert.Empty(t, res.Discarded)

	_, err = p.Parse(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
