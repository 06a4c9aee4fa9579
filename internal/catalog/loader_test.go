package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_LoadFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "k1|Ruler {s1}\nbroken line\nk2|first\n|nokey\n")
	b := writeFile(t, dir, "b.csv", "k2|second\nk2|third\nk3|{unclosed\nk4|Greetings\n")

	cat, rep, err := NewLoader(2).LoadFiles(context.Background(), map[string]string{
		"k4": "Special greetings",
		"":   "dropped",
	}, a, b)
	require.NoError(t, err)

	assert.Equal(t, []string{"k1", "k2", "k3", "k4"}, cat.Keys())

	v, ok := cat.Get("k2")
	require.True(t, ok)
	assert.Equal(t, "first", v.String(), "first occurrence wins")

	v, ok = cat.Get("k4")
	require.True(t, ok)
	assert.Equal(t, "Special greetings", v.String(), "special entries load first")
	assert.Equal(t, SpecialSource, rep.Sources["k4"])

	v, ok = cat.Get("k3")
	require.True(t, ok)
	assert.True(t, v.IsRaw())
	assert.Equal(t, "{unclosed", v.String())

	assert.Equal(t, 2, rep.Files)
	assert.Equal(t, 4, rep.Entries)
	assert.Equal(t, 3, rep.Discarded)
	assert.Equal(t, 3, rep.Duplicates)
	assert.Equal(t, 1, rep.Raw)
	assert.Equal(t, a+":1", rep.Sources["k1"])
	assert.Equal(t, a+":3", rep.Sources["k2"])
}

func TestLoader_LoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ui.csv", "ui_noon|Noon\n")
	writeFile(t, dir, "readme.md", "not a catalog")

	cat, rep, err := NewLoader(1).LoadDir(context.Background(), nil, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"ui_noon"}, cat.Keys())
	assert.Equal(t, 1, rep.Files)

	_, _, err = NewLoader(1).LoadDir(context.Background(), nil, t.TempDir())
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestLoader_Unsupported(t *testing.T) {
	_, _, err := NewLoader(1).LoadFiles(context.Background(), nil, "strings.txt")
	assert.Error(t, err)
}
