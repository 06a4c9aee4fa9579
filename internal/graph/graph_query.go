package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// EntryResult is an entry reached through a variable.
type EntryResult struct {
	Key     string
	Text    string
	RelType string
}

// GraphQuerier reads exported model structure back from Neo4j.
type GraphQuerier struct {
	driver neo4j.DriverWithContext
}

// NewGraphQuerier creates a new graph querier.
func NewGraphQuerier(driver neo4j.DriverWithContext) *GraphQuerier {
	return &GraphQuerier{driver: driver}
}

// EntriesUsing lists entries that use, branch on or spread the variable.
func (gq *GraphQuerier) EntriesUsing(ctx context.Context, variable string) ([]EntryResult, error) {
	session := gq.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (e:Entry)-[r]->(v:Variable {name: $name})
		RETURN e.key AS key, e.text AS text, type(r) AS rel_type
		ORDER BY key, rel_type
	`, map[string]any{"name": variable})
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}

	var entries []EntryResult
	for result.Next(ctx) {
		record := result.Record()
		key, _ := record.Get("key")
		text, _ := record.Get("text")
		relType, _ := record.Get("rel_type")

		entries = append(entries, EntryResult{
			Key:     fmt.Sprintf("%v", key),
			Text:    fmt.Sprintf("%v", text),
			RelType: fmt.Sprintf("%v", relType),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}

	log.Debug().Str("variable", variable).Int("entries", len(entries)).Msg("Graph query complete")
	return entries, nil
}

// SharedVariables returns, for key, every other entry that shares at least
// one variable with it, keyed by the shared variable name.
func (gq *GraphQuerier) SharedVariables(ctx context.Context, key string) (map[string][]string, error) {
	session := gq.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (a:Entry {key: $key})-->(v:Variable)<--(b:Entry)
		WHERE b.key <> $key
		RETURN DISTINCT v.name AS name, b.key AS other
		ORDER BY name, other
	`, map[string]any{"key": key})
	if err != nil {
		return nil, fmt.Errorf("query shared variables: %w", err)
	}

	shared := make(map[string][]string)
	for result.Next(ctx) {
		record := result.Record()
		name, _ := record.Get("name")
		other, _ := record.Get("other")
		n := fmt.Sprintf("%v", name)
		shared[n] = append(shared[n], fmt.Sprintf("%v", other))
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read shared variables: %w", err)
	}
	return shared, nil
}
