package graph

import (
	"context"
	"fmt"
	"sort"

	"lang-resolver/internal/lang"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// Relationship types.
const (
	RelUses       = "USES"
	RelBranchesOn = "BRANCHES_ON"
	RelSpreads    = "SPREADS"
)

// EntryNode is a catalog entry selected by a model.
type EntryNode struct {
	Key  string
	Text string
	Raw  bool
}

// VariableNode is a template variable. Condition is set when any entry
// branches on it.
type VariableNode struct {
	Name      string
	Condition bool
}

// Relationship is a directed Entry → Variable edge. Size is the spread
// length for SPREADS edges and zero otherwise.
type Relationship struct {
	Key     string
	RelType string
	Var     string
	Size    int
}

// ModelGraph is the template/variable structure of a candidate model.
type ModelGraph struct {
	Entries       []EntryNode
	Variables     []VariableNode
	Relationships []Relationship
}

// Describe extracts the graph of a model's current build. Entries use the
// unbound catalog template, so player variables still appear.
func Describe(st *lang.Snapshot) ModelGraph {
	var g ModelGraph
	vars := make(map[string]bool)
	note := func(name string, cond bool) {
		vars[name] = vars[name] || cond
	}

	for _, key := range st.Keys() {
		v, _ := st.Value(key)
		root := v.Origin()
		g.Entries = append(g.Entries, EntryNode{Key: key, Text: root.String(), Raw: root.IsRaw()})

		conds := root.Conditions()
		for _, x := range root.Variables().Sorted() {
			rel := RelUses
			if conds.Has(x) {
				rel = RelBranchesOn
			}
			note(x.String(), conds.Has(x))
			g.Relationships = append(g.Relationships, Relationship{Key: key, RelType: rel, Var: x.String()})
		}

		sp, _ := st.Spreading(key)
		for _, e := range sp.Entries() {
			note(e.Var.String(), false)
			g.Relationships = append(g.Relationships, Relationship{
				Key: key, RelType: RelSpreads, Var: e.Var.String(), Size: e.Spread.Len(),
			})
		}
	}

	names := make([]string, 0, len(vars))
	for n := range vars {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		g.Variables = append(g.Variables, VariableNode{Name: n, Condition: vars[n]})
	}
	return g
}

// GraphBuilder writes model structure into Neo4j.
type GraphBuilder struct {
	driver neo4j.DriverWithContext
}

// NewGraphBuilder creates a new graph builder.
func NewGraphBuilder(driver neo4j.DriverWithContext) *GraphBuilder {
	return &GraphBuilder{driver: driver}
}

// EnsureSchema creates constraints and indexes on the Neo4j database.
func (gb *GraphBuilder) EnsureSchema(ctx context.Context) error {
	session := gb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (e:Entry) REQUIRE e.key IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (v:Variable) REQUIRE v.name IS UNIQUE",
	}

	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Graph schema ensured")
	return nil
}

// ExportModel merges the model's entries, variables and edges into the graph.
func (gb *GraphBuilder) ExportModel(ctx context.Context, m *lang.Model) (ModelGraph, error) {
	g := Describe(m.Snapshot())

	session := gb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	for _, e := range g.Entries {
		_, err := session.Run(ctx, `
			MERGE (e:Entry {key: $key})
			SET e.text = $text,
			    e.raw = $raw
		`, map[string]any{
			"key":  e.Key,
			"text": e.Text,
			"raw":  e.Raw,
		})
		if err != nil {
			return g, fmt.Errorf("upsert entry %s: %w", e.Key, err)
		}
	}

	for _, v := range g.Variables {
		_, err := session.Run(ctx, `
			MERGE (v:Variable {name: $name})
			SET v.condition = coalesce(v.condition, false) OR $condition
		`, map[string]any{
			"name":      v.Name,
			"condition": v.Condition,
		})
		if err != nil {
			return g, fmt.Errorf("upsert variable %s: %w", v.Name, err)
		}
	}

	log.Info().Int("entries", len(g.Entries)).Int("variables", len(g.Variables)).Msg("Exported model nodes")

	for _, r := range g.Relationships {
		_, err := session.Run(ctx, fmt.Sprintf(`
			MATCH (e:Entry {key: $key})
			MATCH (v:Variable {name: $var})
			MERGE (e)-[r:%s]->(v)
			SET r.size = $size
		`, r.RelType), map[string]any{
			"key":  r.Key,
			"var":  r.Var,
			"size": r.Size,
		})
		if err != nil {
			log.Warn().Err(err).
				Str("key", r.Key).
				Str("var", r.Var).
				Str("rel", r.RelType).
				Msg("Failed to create relationship")
		}
	}

	log.Info().Int("relationships", len(g.Relationships)).Msg("Exported model relationships")
	return g, nil
}
