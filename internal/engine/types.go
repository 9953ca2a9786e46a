package engine

import (
	"context"

	"github.com/devq-ai/ptolemies-sub002/internal/query"
)

// Found-via markers. A result always carries at least one.
const (
	FoundViaSemantic  = "semantic"
	FoundViaGraph     = "graph"
	FoundViaExpansion = "expansion"
)

// SemanticHit is one raw hit from the vector store.
type SemanticHit struct {
	ID        string
	Title     string
	Content   string
	Source    string
	SourceURL string
	Topics    []string
	Score     float64
}

// SemanticSearcher is the narrow view of the vector store the engine needs.
type SemanticSearcher interface {
	Search(ctx context.Context, queryText string, limit int) ([]SemanticHit, error)
}

type GraphNode struct {
	ID        string
	Name      string
	Content   string
	Source    string
	SourceURL string
	Topics    []string
	Weight    float64
}

type GraphRelationship struct {
	From     string
	To       string
	Type     string
	Strength float64
}

type GraphResult struct {
	Nodes         []GraphNode
	Relationships []GraphRelationship
}

// GraphSearcher is the narrow view of the graph store the engine needs.
type GraphSearcher interface {
	Search(ctx context.Context, queryText, kind string, maxDepth int) (GraphResult, error)
}

// Result is one fused document hit. Scores from a backend that did not
// surface the item are zero.
type Result struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	SourceName      string   `json:"source_name"`
	SourceURL       string   `json:"source_url"`
	SemanticScore   float64  `json:"semantic_score"`
	GraphScore      float64  `json:"graph_score"`
	CombinedScore   float64  `json:"combined_score"`
	Rank            int      `json:"rank"`
	FoundVia        []string `json:"found_via"`
	Topics          []string `json:"topics"`
	RelatedConcepts []string `json:"related_concepts"`
}

// Metrics is per-request telemetry. Stages a strategy never ran report zero.
type Metrics struct {
	TotalTimeMs       int64          `json:"total_time_ms"`
	SemanticTimeMs    int64          `json:"semantic_time_ms"`
	GraphTimeMs       int64          `json:"graph_time_ms"`
	FusionTimeMs      int64          `json:"fusion_time_ms"`
	SemanticResults   int            `json:"semantic_results"`
	GraphResults      int            `json:"graph_results"`
	OverlapCount      int            `json:"overlap_count"`
	ConceptExpansions int            `json:"concept_expansions"`
	Strategy          query.Strategy `json:"strategy"`
	Confidence        float64        `json:"confidence"`
	DegradedBackends  []string       `json:"degraded_backends"`
}
