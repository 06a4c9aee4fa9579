package resolver

import (
	"context"
	"testing"

	"lang-resolver/internal/lang"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustModel(t *testing.T, sources map[string]string, groups []lang.Group, opts ...lang.ModelOption) *lang.Model {
	t.Helper()
	m, err := lang.NewModel(lang.ParseCatalog(sources), groups, opts...)
	require.NoError(t, err)
	return m
}

func names(t *testing.T, items ...string) lang.Spread {
	t.Helper()
	s, err := lang.Strings(items...)
	require.NoError(t, err)
	return s
}

func intRange(t *testing.T, lo, hi int) lang.Spread {
	t.Helper()
	s, err := lang.IntRange(lo, hi)
	require.NoError(t, err)
	return s
}

func bound(t *testing.T, v *lang.Value, name string) string {
	t.Helper()
	return v.Binding().Strings()[name]
}

var everything = lang.Predicate("all", func(string) bool { return true })

func rulerModel(t *testing.T) *lang.Model {
	return mustModel(t, map[string]string{"k1": "Ruler {s1}"}, []lang.Group{{
		Name:      "rulers",
		Checker:   lang.Literal("k1"),
		Spreading: lang.NewSpreading(lang.SpreadEntry{Var: lang.NewVar("s1"), Spread: names(t, "Harlaus", "Yaroglek")}),
	}})
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 100},
		{"abc", "abc", 100},
		{"abc", "", 0},
		{"abc", "xyz", 0},
		{"ab", "abcd", 200 * 2.0 / 6},
		{"héllo", "hallo", 200 * 4.0 / 10},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Ratio(tt.a, tt.b), 1e-9, "%q vs %q", tt.a, tt.b)
	}
}

func TestScorerByName(t *testing.T) {
	s, ok := ScorerByName("jaro-winkler")
	require.True(t, ok)
	assert.InDelta(t, 100, s("same", "same"), 1e-9)
	assert.InDelta(t, 0, s("", "x"), 1e-9)

	_, ok = ScorerByName("soundex")
	assert.False(t, ok)
}

func TestResolve_Spread(t *testing.T) {
	res := New(60).Resolve("Ruler Harlaus", rulerModel(t))
	require.False(t, res.NoMatch())
	require.Len(t, res.Matches, 1)
	assert.False(t, res.Ambiguous())
	assert.InDelta(t, 100, res.Score, 1e-9)

	best, ok := res.Best()
	require.True(t, ok)
	assert.Equal(t, "k1", best.Value.Key())
	assert.Equal(t, "Ruler Harlaus", best.Value.String())
	assert.Equal(t, "Harlaus", bound(t, best.Value, "s1"))
}

func TestResolve_NoMatch(t *testing.T) {
	res := New(60).Resolve("zzzz", rulerModel(t))
	assert.True(t, res.NoMatch())
	assert.False(t, res.Ambiguous())
	_, ok := res.Best()
	assert.False(t, ok)
}

func TestResolve_EmptyModel(t *testing.T) {
	m := mustModel(t, map[string]string{"k1": "Ruler"}, []lang.Group{{Checker: lang.Literal("missing")}})
	assert.True(t, New(0).Resolve("Ruler", m).NoMatch())
}

func TestResolve_IdenticalEntries(t *testing.T) {
	m := mustModel(t, map[string]string{
		"a": "Greetings",
		"b": "Greetings",
		"c": "Farewell",
	}, []lang.Group{{Checker: everything}})

	res := New(50).Resolve("Greetings", m)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, []string{"a", "b"}, res.Keys())
	assert.True(t, res.Ambiguous())
}

func TestResolve_DifferentTextsTie(t *testing.T) {
	m := mustModel(t, map[string]string{
		"a": "Ruler {s1}",
		"b": "Ruler {s2}",
	}, []lang.Group{
		{Checker: lang.Literal("a"), Spreading: lang.NewSpreading(lang.SpreadEntry{Var: lang.NewVar("s1"), Spread: names(t, "Harlaus")})},
		{Checker: lang.Literal("b"), Spreading: lang.NewSpreading(lang.SpreadEntry{Var: lang.NewVar("s2"), Spread: names(t, "Graveth")})},
	})

	res := New(50).Resolve("Ruler ", m)
	require.Len(t, res.Matches, 2)
	assert.True(t, res.Ambiguous())
	assert.Equal(t, "Ruler Harlaus", res.Matches[0].Value.String())
	assert.Equal(t, "Ruler Graveth", res.Matches[1].Value.String())
}

func TestResolve_CalendarNarrowing(t *testing.T) {
	m := mustModel(t, map[string]string{
		"str_january_reg1_reg2":  "January {reg1}, {reg2}",
		"str_february_reg1_reg2": "February {reg1}, {reg2}",
	}, []lang.Group{{
		Name:    "dates",
		Checker: lang.Literals("str_january_reg1_reg2", "str_february_reg1_reg2"),
		Spreading: lang.NewSpreading(
			lang.SpreadEntry{Var: lang.NewVar("reg2"), Spread: intRange(t, 1257, 1278)},
			lang.SpreadEntry{Var: lang.NewVar("reg1"), Spread: intRange(t, 1, 32)},
		),
	}})

	res := New(80).Resolve("January 12, 1260", m)
	require.Len(t, res.Matches, 1)
	best := res.Matches[0].Value
	assert.Equal(t, "str_january_reg1_reg2", best.Key())
	assert.Equal(t, "January 12, 1260", best.String())
	assert.Equal(t, "12", bound(t, best, "reg1"))
	assert.Equal(t, "1260", bound(t, best, "reg2"))
}

func TestResolve_SexFromPurge(t *testing.T) {
	m := mustModel(t, map[string]string{"k": "{Sir/Madam}, ruler {s1}"}, []lang.Group{{
		Checker:   lang.Literal("k"),
		Spreading: lang.NewSpreading(lang.SpreadEntry{Var: lang.NewVar("s1"), Spread: names(t, "Harlaus", "Yaroglek")}),
	}})

	res := New(60).Resolve("Madam, ruler Harlaus", m)
	require.Len(t, res.Matches, 1)
	best := res.Matches[0].Value
	assert.Equal(t, "Madam, ruler Harlaus", best.String())
	assert.Equal(t, "female", bound(t, best, "<sex>"))
	assert.Equal(t, "Harlaus", bound(t, best, "s1"))
}

func TestResolve_PlayerSexFixed(t *testing.T) {
	m := mustModel(t, map[string]string{"k": "{Sir/Madam}"}, []lang.Group{{Checker: lang.Literal("k")}},
		lang.WithPlayerSex(lang.Male))

	res := New(0).Resolve("Madam", m)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "Sir", res.Matches[0].Value.String())
}

func TestResolve_Conditional(t *testing.T) {
	m := mustModel(t, map[string]string{"k": "{reg6?Yes:No} and {s1}"}, []lang.Group{{
		Checker:   lang.Literal("k"),
		Spreading: lang.NewSpreading(lang.SpreadEntry{Var: lang.NewVar("s1"), Spread: names(t, "more")}),
	}})

	res := New(60).Resolve("Yes and more", m)
	require.Len(t, res.Matches, 1)
	// The branch is chosen by the purge stage, the value returned unbound on it.
	assert.Equal(t, "k", res.Matches[0].Value.Key())
	assert.Equal(t, "more", bound(t, res.Matches[0].Value, "s1"))
}

func TestResolver_Cached(t *testing.T) {
	m := rulerModel(t)
	r := New(60)

	first := r.Cached("Ruler Harlaus", m)
	second := r.Cached("Ruler Harlaus", m)
	assert.Equal(t, first, second)
	hits, misses := r.CacheStats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)

	// A rebuild against a new catalog invalidates the memo.
	require.NoError(t, m.Rebuild(lang.ParseCatalog(map[string]string{"k1": "Lord {s1}"})))
	third := r.Cached("Ruler Harlaus", m)
	require.False(t, third.NoMatch())
	assert.Equal(t, "Lord Harlaus", third.Matches[0].Value.String())
	_, misses = r.CacheStats()
	assert.Equal(t, uint64(2), misses)
}

func TestResolver_ResolveBatch(t *testing.T) {
	m := rulerModel(t)
	out, err := New(60).ResolveBatch(context.Background(), []string{"Ruler Yaroglek", "zzzz", "Ruler Harlaus"}, m, 2)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "Yaroglek", bound(t, out[0].Matches[0].Value, "s1"))
	assert.True(t, out[1].NoMatch())
	assert.Equal(t, "Harlaus", bound(t, out[2].Matches[0].Value, "s1"))
}

func TestResolver_ResolveBatchCancelled(t *testing.T) {
	m := rulerModel(t)
	texts := make([]string, 200)
	for i := range texts {
		texts[i] = "Ruler Harlaus"
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := New(60).ResolveBatch(ctx, texts, m, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, out)
}

func TestWithTolerance(t *testing.T) {
	m := mustModel(t, map[string]string{"a": "abcd", "b": "abce"}, []lang.Group{{Checker: everything}})
	r := New(0, WithTolerance(100))
	assert.Len(t, r.Resolve("abcd", m).Matches, 2)
	assert.Len(t, New(0).Resolve("abcd", m).Matches, 1)
}
