// Package dataset persists resolved matches so that OCR captures can be
// turned into labelled training or audit data.
package dataset

import (
	"context"
	"errors"
	"time"

	"lang-resolver/internal/resolver"
	"lang-resolver/internal/textutil"
)

// ErrNotOpen is returned by store operations before Open.
var ErrNotOpen = errors.New("dataset store not opened")

// Record is one resolved (observed text, catalog entry) pair.
type Record struct {
	ID        string            `json:"id"`
	Hash      string            `json:"hash"`
	Key       string            `json:"key"`
	Text      string            `json:"text"`
	Observed  string            `json:"observed"`
	Score     float64           `json:"score"`
	Bindings  map[string]string `json:"bindings"`
	Ambiguous bool              `json:"ambiguous"`
	CreatedAt time.Time         `json:"created_at"`
}

// Store persists records. Save skips records whose Hash is already stored
// and reports how many were inserted.
type Store interface {
	InitSchema(ctx context.Context) error
	Save(ctx context.Context, records []Record) (int, error)
	All(ctx context.Context) ([]Record, error)
	Close() error
}

// FromMatch converts every tied match of res into a record. A NoMatch
// result yields none.
func FromMatch(observed string, res resolver.Result) []Record {
	if res.NoMatch() {
		return nil
	}
	now := time.Now().UTC()
	ambiguous := res.Ambiguous()
	records := make([]Record, 0, len(res.Matches))
	for _, m := range res.Matches {
		text := m.Value.String()
		records = append(records, Record{
			Hash:      textutil.Hash(observed + "\x00" + m.Value.Key() + "\x00" + text),
			Key:       m.Value.Key(),
			Text:      text,
			Observed:  observed,
			Score:     m.Score,
			Bindings:  m.Value.Binding().Strings(),
			Ambiguous: ambiguous,
			CreatedAt: now,
		})
	}
	return records
}
