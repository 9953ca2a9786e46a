package query

// Intent is the coarse classification of what the user wants.
type Intent string

const (
	IntentSearch       Intent = "search"
	IntentExplain      Intent = "explain"
	IntentCompare      Intent = "compare"
	IntentAnalyze      Intent = "analyze"
	IntentSummarize    Intent = "summarize"
	IntentTutorial     Intent = "tutorial"
	IntentTroubleshoot Intent = "troubleshoot"
	IntentDefinition   Intent = "definition"
	IntentExample      Intent = "example"
	IntentUnknown      Intent = "unknown"
)

// Complexity buckets a query by how much work answering it likely takes.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
	ComplexityCompound Complexity = "compound"
)

// Strategy is the backend-execution plan chosen for a query: which stores to
// hit, in what order, and with what fusion weights.
type Strategy string

const (
	StrategySemanticOnly      Strategy = "semantic_only"
	StrategyGraphOnly         Strategy = "graph_only"
	StrategyHybridBalanced    Strategy = "hybrid_balanced"
	StrategySemanticThenGraph Strategy = "semantic_then_graph"
	StrategyGraphThenSemantic Strategy = "graph_then_semantic"
	StrategyConceptExpansion  Strategy = "concept_expansion"
)

// EntityType tags a recognized vocabulary term.
type EntityType string

const (
	EntityTechnology EntityType = "technology"
	EntityConcept    EntityType = "concept"
	EntityFramework  EntityType = "framework"
	EntityLanguage   EntityType = "language"
	EntityTool       EntityType = "tool"
)

type Entity struct {
	Type       EntityType `json:"type"`
	Value      string     `json:"value"`
	Confidence float64    `json:"confidence"`
}

// ProcessedQuery is the structured form of one raw query. It is derived once
// and never mutated afterwards.
type ProcessedQuery struct {
	OriginalQuery   string     `json:"original_query"`
	NormalizedQuery string     `json:"normalized_query"`
	Intent          Intent     `json:"intent"`
	Complexity      Complexity `json:"complexity"`
	Entities        []Entity   `json:"entities"`
	Keywords        []string   `json:"keywords"`
	Concepts        []string   `json:"concepts"`
	SearchStrategy  Strategy   `json:"search_strategy"`
	ConfidenceScore float64    `json:"confidence_score"`
	SpellCorrected  bool       `json:"spell_corrected"`
	ExpandedQueries []string   `json:"expanded_queries"`
}

// ContextHint is the slice of session state the processor consults when
// nudging strategy selection for follow-up queries.
type ContextHint struct {
	PreviousQueries int
	Preferences     map[string]string
}
