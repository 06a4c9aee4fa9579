package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"lang-resolver/internal/interpolation"
	"lang-resolver/internal/lang"
	"lang-resolver/internal/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunParse(t *testing.T) {
	var buf bytes.Buffer
	err := runParse(&buf, "Hail {s1}, {reg3?lord:lady} of {s2}")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "variable")
	assert.Contains(t, out, "conditional")
	assert.Contains(t, out, "variables:")
	assert.Contains(t, out, "s1")
	assert.Contains(t, out, "reg3")
}

func TestRunParse_GrammarError(t *testing.T) {
	var buf bytes.Buffer
	err := runParse(&buf, "broken {s1")
	require.Error(t, err)
	assert.ErrorIs(t, err, interpolation.ErrGrammar)
	assert.True(t, strings.HasPrefix(buf.String(), "broken {s1\n"))
	assert.Contains(t, buf.String(), "^")
}

func TestReadLines(t *testing.T) {
	lines, err := readLines(strings.NewReader("first\n\n  second  \r\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, lines)
}

func testModel(t *testing.T) *lang.Model {
	t.Helper()
	names, err := lang.Strings("Harlaus", "Yaroglek")
	require.NoError(t, err)

	cat := lang.ParseCatalog(map[string]string{
		"greet": "Greetings, {s1}",
		"bye":   "Farewell, traveller",
	})
	m, err := lang.NewModel(cat, []lang.Group{
		{Checker: lang.Literal("greet"), Spreading: lang.NewSpreading(lang.SpreadEntry{Var: lang.NewVar("s1"), Spread: names})},
		{Checker: lang.Literal("bye")},
	})
	require.NoError(t, err)
	return m
}

func TestRenderResults(t *testing.T) {
	m := testModel(t)
	r := resolver.New(80)
	texts := []string{"Greetings, Yaroglek", "zzz"}
	results := []resolver.Result{r.Resolve(texts[0], m), r.Resolve(texts[1], m)}

	var buf bytes.Buffer
	renderResults(&buf, texts, results)

	out := buf.String()
	assert.Contains(t, out, "greet")
	assert.Contains(t, out, "s1=Yaroglek")
	assert.Contains(t, out, "100.00")
	assert.Contains(t, out, "zzz")
}

func TestResolveLines(t *testing.T) {
	m := testModel(t)
	r := resolver.New(80)

	var out bytes.Buffer
	in := strings.NewReader("Farewell, traveller\n\nFarewell, traveller\n")
	require.NoError(t, resolveLines(context.Background(), in, &out, r, m))

	assert.Equal(t, 2, strings.Count(out.String(), "bye"))
	hits, misses := r.CacheStats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestRenderShared(t *testing.T) {
	var buf bytes.Buffer
	renderShared(&buf, "k1", map[string][]string{"s1": {"k2", "k3"}})
	assert.Contains(t, buf.String(), "k2, k3")

	buf.Reset()
	renderShared(&buf, "k1", nil)
	assert.Equal(t, "k1 shares no variables\n", buf.String())
}

func TestDialogBody_TrimsTitleColon(t *testing.T) {
	cat := lang.ParseCatalog(map[string]string{
		"dlg_harlaus":   "Lord Harlaus",
		"dlg_yaroglek":  "Lord Yaroglek",
		"body_harlaus":  "What brings you to my hall?",
		"body_yaroglek": "Speak quickly.",
	})

	bodies := lang.NewDialogBodies()
	for _, name := range []string{"harlaus", "yaroglek"} {
		body, err := lang.NewModel(cat, []lang.Group{{Checker: lang.Literal("body_" + name)}})
		require.NoError(t, err)
		require.NoError(t, bodies.Add(cat, lang.Literal("dlg_"+name), body))
	}

	// Without the colon stripped "Lord Harlaus:" scores 96.
	r := resolver.New(99)

	tests := []struct {
		title string
		body  string
	}{
		{"Lord Harlaus:", "body_harlaus"},
		{" Lord Yaroglek： ", "body_yaroglek"},
		{"Lord Harlaus", "body_harlaus"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			m, err := dialogBody(r, cat, bodies, tt.title, nil)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.body}, m.Keys())
		})
	}
}

func TestRenderSpread(t *testing.T) {
	cat := lang.ParseCatalog(map[string]string{"k1": "Abba"})
	m, err := lang.NewModel(cat, []lang.Group{{Checker: lang.Literal("k1")}})
	require.NoError(t, err)

	var buf bytes.Buffer
	renderSpread(&buf, m)

	out := buf.String()
	assert.Contains(t, out, "(1 values)")
	assert.Contains(t, out, `symbols: "Aab"`)
}
