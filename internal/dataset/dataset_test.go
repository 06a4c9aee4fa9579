package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lang-resolver/internal/lang"
	"lang-resolver/internal/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolved(t *testing.T, observed string) resolver.Result {
	t.Helper()
	names, err := lang.Strings("Harlaus", "Yaroglek")
	require.NoError(t, err)
	m, err := lang.NewModel(lang.ParseCatalog(map[string]string{"k1": "Ruler {s1}"}), []lang.Group{{
		Checker:   lang.Literal("k1"),
		Spreading: lang.NewSpreading(lang.SpreadEntry{Var: lang.NewVar("s1"), Spread: names}),
	}})
	require.NoError(t, err)
	return resolver.New(60).Resolve(observed, m)
}

func openSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s := NewSQLiteStore()
	require.NoError(t, s.Open(context.Background(), filepath.Join(t.TempDir(), "dataset.db")))
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.InitSchema(context.Background()))
	return s
}

func TestFromMatch(t *testing.T) {
	records := FromMatch("Ruler Harlaus", resolved(t, "Ruler Harlaus"))
	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "k1", r.Key)
	assert.Equal(t, "Ruler Harlaus", r.Text)
	assert.Equal(t, "Ruler Harlaus", r.Observed)
	assert.InDelta(t, 100, r.Score, 1e-9)
	assert.Equal(t, map[string]string{"s1": "Harlaus"}, r.Bindings)
	assert.False(t, r.Ambiguous)
	assert.Len(t, r.Hash, 64)

	assert.Nil(t, FromMatch("zzzz", resolved(t, "zzzz")))
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	records := FromMatch("Ruler Harlaus", resolved(t, "Ruler Harlaus"))
	records = append(records, FromMatch("Ruler Yaroglek", resolved(t, "Ruler Yaroglek"))...)

	n, err := s.Save(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.Save(ctx, records[:1])
	require.NoError(t, err)
	assert.Equal(t, 0, n, "known hashes are skipped")

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.NotEmpty(t, all[0].ID)
	assert.Equal(t, "Ruler Harlaus", all[0].Text)
	assert.Equal(t, map[string]string{"s1": "Yaroglek"}, all[1].Bindings)
	assert.True(t, all[0].CreatedAt.Equal(records[0].CreatedAt))
}

func TestSQLiteStore_AllTimeOrder(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	base := time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC)
	records := []Record{
		{Hash: "later", Key: "k1", CreatedAt: base.Add(120 * time.Millisecond)},
		{Hash: "earlier", Key: "k1", CreatedAt: base.Add(100 * time.Millisecond)},
		{Hash: "whole", Key: "k1", CreatedAt: base},
	}
	_, err := s.Save(ctx, records)
	require.NoError(t, err)

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"whole", "earlier", "later"}, []string{all[0].Hash, all[1].Hash, all[2].Hash})
	assert.True(t, all[1].CreatedAt.Equal(records[1].CreatedAt))
}

func TestSQLiteStore_NotOpen(t *testing.T) {
	s := NewSQLiteStore()
	assert.ErrorIs(t, s.InitSchema(context.Background()), ErrNotOpen)
	_, err := s.All(context.Background())
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.NoError(t, s.Close())
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, []Record{{
		ID:       "id-1",
		Key:      "k1",
		Text:     "Ruler\tHarlaus",
		Observed: "Ruler Harlaus",
		Score:    97.5,
		Bindings: map[string]string{"s1": "Harlaus", "<sex>": "male"},
	}}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id\tkey\ttext\tobserved\tscore\tbindings\tambiguous", lines[0])
	assert.Equal(t, "id-1\tk1\tRuler\\tHarlaus\tRuler Harlaus\t97.50\t<sex>=male;s1=Harlaus\tfalse", lines[1])
}

func TestExportJSON(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	_, err := s.Save(ctx, FromMatch("Ruler Harlaus", resolved(t, "Ruler Harlaus")))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, ExportJSON(ctx, s, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []Record
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "k1", got[0].Key)

	path = filepath.Join(t.TempDir(), "dataset.tsv")
	require.NoError(t, ExportTSV(ctx, s, path))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Ruler Harlaus")
}
