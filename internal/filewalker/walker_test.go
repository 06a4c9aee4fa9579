package filewalker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalker_Walk(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ui.csv"), "ui_noon|Noon\n")
	writeFile(t, filepath.Join(dir, "game_strings.CSV"), "str_a|A\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored\n")
	writeFile(t, filepath.Join(dir, "nested", "deep.csv"), "deep|ignored\n")

	w := NewWalker()
	entries, err := w.Walk(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, filepath.Join(dir, "game_strings.CSV"), entries[0].Path)
	assert.Equal(t, ".csv", entries[0].Ext)
	assert.Equal(t, filepath.Join(dir, "ui.csv"), entries[1].Path)

	res, err := w.ParseFile(entries[1])
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "ui_noon", res.Entries[0].Key)
}

func TestWalker_Errors(t *testing.T) {
	w := NewWalker()

	_, err := w.Walk(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "ui.csv")
	writeFile(t, file, "")
	_, err = w.Walk(file)
	assert.Error(t, err)

	_, err = w.Entry("notes.txt")
	assert.Error(t, err)
	e, err := w.Entry(file)
	require.NoError(t, err)
	assert.Equal(t, file, e.Path)
	assert.True(t, w.Supported("x.csv"))
}
