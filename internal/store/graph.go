package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"

	"github.com/devq-ai/ptolemies-sub002/internal/engine"
)

const graphResultLimit = 25

// GraphStore is the graph backend over bolt, compatible with Memgraph and
// Neo4j. Documents are :Document nodes linked to :Concept topic nodes.
type GraphStore struct {
	driver neo4j.DriverWithContext
	log    zerolog.Logger
}

func NewGraphStore(ctx context.Context, uri, username, password string, log zerolog.Logger) (*GraphStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, err
	}

	log.Info().Str("uri", uri).Msg("connected to graph store")
	return &GraphStore{driver: driver, log: log}, nil
}

func (g *GraphStore) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}

func (g *GraphStore) execute(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, g.driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

// BuildIndices creates the lookup indices; failures are logged and skipped
// since the index may already exist.
func (g *GraphStore) BuildIndices(ctx context.Context) error {
	queries := []string{
		"CREATE INDEX ON :Document(id);",
		"CREATE INDEX ON :Concept(name);",
	}

	for _, q := range queries {
		if _, err := g.execute(ctx, q, nil); err != nil {
			g.log.Warn().Err(err).Str("query", q).Msg("failed to create index")
		}
	}
	return nil
}

// Search implements engine.GraphSearcher. kind selects the match mode:
// "concept" walks the concept neighborhood up to maxDepth, anything else
// matches document fields directly.
func (g *GraphStore) Search(ctx context.Context, queryText, kind string, maxDepth int) (engine.GraphResult, error) {
	terms := searchTerms(queryText)
	if len(terms) == 0 {
		return engine.GraphResult{Nodes: []engine.GraphNode{}, Relationships: []engine.GraphRelationship{}}, nil
	}

	cypher := documentSearchQuery
	if kind == "concept" {
		if maxDepth < 1 {
			maxDepth = 1
		}
		if maxDepth > 3 {
			maxDepth = 3
		}
		cypher = fmt.Sprintf(conceptSearchQueryFmt, maxDepth-1)
	}

	params := map[string]interface{}{
		"terms": terms,
		"limit": graphResultLimit,
	}

	result, err := g.execute(ctx, cypher, params)
	if err != nil {
		return engine.GraphResult{}, err
	}

	gr := engine.GraphResult{
		Nodes:         []engine.GraphNode{},
		Relationships: []engine.GraphRelationship{},
	}

	for _, record := range result.Records {
		node := engine.GraphNode{
			ID:        stringValue(record, "id"),
			Name:      stringValue(record, "title"),
			Content:   stringValue(record, "content"),
			Source:    stringValue(record, "source_name"),
			SourceURL: stringValue(record, "source_url"),
			Topics:    stringListValue(record, "topics"),
			Weight:    floatValue(record, "weight"),
		}
		gr.Nodes = append(gr.Nodes, node)

		// Topic links come back as relationships so the engine can surface
		// related concepts without a second round trip.
		for _, topic := range node.Topics {
			gr.Relationships = append(gr.Relationships, engine.GraphRelationship{
				From:     node.ID,
				To:       topic,
				Type:     "has_topic",
				Strength: 1.0,
			})
		}
		for _, concept := range stringListValue(record, "matched_concepts") {
			gr.Relationships = append(gr.Relationships, engine.GraphRelationship{
				From:     node.ID,
				To:       concept,
				Type:     "matched_concept",
				Strength: 0.8,
			})
		}
	}

	return gr, nil
}

// Upsert writes the document node and its topic concepts.
func (g *GraphStore) Upsert(ctx context.Context, docs []Document) error {
	for _, doc := range docs {
		topics := doc.Topics
		if topics == nil {
			topics = []string{}
		}
		params := map[string]interface{}{
			"id":          doc.ID,
			"title":       doc.Title,
			"content":     doc.Content,
			"source_name": doc.SourceName,
			"source_url":  doc.SourceURL,
			"topics":      topics,
			"weight":      doc.Weight,
		}
		if _, err := g.execute(ctx, upsertDocumentQuery, params); err != nil {
			return fmt.Errorf("upsert document %s: %w", doc.ID, err)
		}
	}
	return nil
}

// RelateConcepts records a weighted edge between two topic concepts.
func (g *GraphStore) RelateConcepts(ctx context.Context, from, to string, strength float64) error {
	params := map[string]interface{}{
		"from":     from,
		"to":       to,
		"strength": strength,
	}
	_, err := g.execute(ctx, relateConceptsQuery, params)
	return err
}

// searchTerms keeps lowercase tokens long enough to be selective.
func searchTerms(queryText string) []string {
	terms := []string{}
	for _, tok := range strings.Fields(strings.ToLower(queryText)) {
		tok = strings.Trim(tok, ".,?!")
		if len(tok) < 3 {
			continue
		}
		terms = append(terms, tok)
	}
	return terms
}

func stringValue(record *neo4j.Record, key string) string {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func stringListValue(record *neo4j.Record, key string) []string {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return []string{}
	}
	raw, ok := v.([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func floatValue(record *neo4j.Record, key string) float64 {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return 0
	}
}
