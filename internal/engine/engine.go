package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"

	"github.com/devq-ai/ptolemies-sub002/internal/query"
)

// Fusion weight pairs per strategy (semantic, graph).
const (
	balancedWeight = 0.5
	primaryWeight  = 0.7
	boostWeight    = 0.3
)

type Config struct {
	// BackendTimeout bounds each individual store call.
	BackendTimeout time.Duration
	MaxGraphDepth  int
	// PoolSize caps concurrent backend calls across all requests.
	PoolSize int
	// TopK is how many leading hits seed the second call of a staged strategy.
	TopK int
}

// Engine executes a processed query against the semantic and graph stores
// according to its strategy, fuses the two result sets and reports metrics.
//
// A failing backend degrades the request to the surviving backend's results;
// only both failing surfaces an EngineError. The engine never retries, that
// belongs to the backend clients.
type Engine struct {
	semantic SemanticSearcher
	graph    GraphSearcher
	pool     *ants.Pool
	cfg      Config
	log      zerolog.Logger
}

func New(semantic SemanticSearcher, graph GraphSearcher, cfg Config, log zerolog.Logger) (*Engine, error) {
	if cfg.BackendTimeout <= 0 {
		cfg.BackendTimeout = 5 * time.Second
	}
	if cfg.MaxGraphDepth <= 0 {
		cfg.MaxGraphDepth = 2
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 64
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}

	// Nonblocking so a saturated pool rejects the submit instead of parking
	// the caller; submit then falls back to a plain goroutine.
	pool, err := ants.NewPool(cfg.PoolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}

	return &Engine{
		semantic: semantic,
		graph:    graph,
		pool:     pool,
		cfg:      cfg,
		log:      log,
	}, nil
}

func (e *Engine) Close() {
	e.pool.Release()
}

// Execute runs the query's strategy and returns ranked results plus metrics.
func (e *Engine) Execute(ctx context.Context, pq query.ProcessedQuery, limit int) ([]Result, Metrics, error) {
	start := time.Now()
	if limit <= 0 {
		limit = 10
	}

	m := Metrics{
		Strategy:         pq.SearchStrategy,
		Confidence:       pq.ConfidenceScore,
		DegradedBackends: []string{},
	}

	var results []Result
	var err error

	switch pq.SearchStrategy {
	case query.StrategySemanticOnly:
		results, err = e.semanticOnly(ctx, pq.NormalizedQuery, limit, &m)
	case query.StrategyGraphOnly:
		results, err = e.graphOnly(ctx, pq.NormalizedQuery, limit, &m)
	case query.StrategyHybridBalanced:
		results, err = e.hybridBalanced(ctx, pq.NormalizedQuery, limit, &m)
	case query.StrategySemanticThenGraph:
		results, err = e.semanticThenGraph(ctx, pq.NormalizedQuery, limit, &m)
	case query.StrategyGraphThenSemantic:
		results, err = e.graphThenSemantic(ctx, pq.NormalizedQuery, limit, &m)
	case query.StrategyConceptExpansion:
		results, err = e.conceptExpansion(ctx, pq, limit, &m)
	default:
		// An unrecognized strategy degrades to the cheapest plan.
		results, err = e.semanticOnly(ctx, pq.NormalizedQuery, limit, &m)
	}

	m.TotalTimeMs = time.Since(start).Milliseconds()
	if err != nil {
		return []Result{}, m, err
	}
	if results == nil {
		results = []Result{}
	}
	return results, m, nil
}

func (e *Engine) semanticOnly(ctx context.Context, q string, limit int, m *Metrics) ([]Result, error) {
	hits, err := e.runSemantic(ctx, q, limit, m)
	if err != nil {
		return nil, &EngineError{Causes: []error{err}}
	}
	return e.fuseAndRank(hits, GraphResult{}, 1, 0, limit, m), nil
}

func (e *Engine) graphOnly(ctx context.Context, q string, limit int, m *Metrics) ([]Result, error) {
	gr, err := e.runGraph(ctx, q, "document", m)
	if err != nil {
		return nil, &EngineError{Causes: []error{err}}
	}
	return e.fuseAndRank(nil, gr, 0, 1, limit, m), nil
}

// hybridBalanced fans both calls out concurrently and joins them, each under
// its own timeout.
func (e *Engine) hybridBalanced(ctx context.Context, q string, limit int, m *Metrics) ([]Result, error) {
	var wg sync.WaitGroup
	var hits []SemanticHit
	var gr GraphResult
	var semErr, graphErr error

	wg.Add(2)
	e.submit(func() {
		defer wg.Done()
		hits, semErr = e.runSemantic(ctx, q, limit, m)
	})
	e.submit(func() {
		defer wg.Done()
		gr, graphErr = e.runGraph(ctx, q, "document", m)
	})
	wg.Wait()

	if semErr != nil && graphErr != nil {
		return nil, &EngineError{Causes: []error{semErr, graphErr}}
	}
	if semErr != nil {
		e.degrade(m, "semantic", semErr)
		hits = nil
	}
	if graphErr != nil {
		e.degrade(m, "graph", graphErr)
		gr = GraphResult{}
	}

	return e.fuseAndRank(hits, gr, balancedWeight, balancedWeight, limit, m), nil
}

// semanticThenGraph queries the vector store first and scopes the graph call
// to the concepts carried by the leading hits.
func (e *Engine) semanticThenGraph(ctx context.Context, q string, limit int, m *Metrics) ([]Result, error) {
	hits, semErr := e.runSemantic(ctx, q, limit, m)
	if semErr != nil {
		e.degrade(m, "semantic", semErr)
		gr, graphErr := e.runGraph(ctx, q, "concept", m)
		if graphErr != nil {
			return nil, &EngineError{Causes: []error{semErr, graphErr}}
		}
		return e.fuseAndRank(nil, gr, primaryWeight, boostWeight, limit, m), nil
	}

	scope := topicScope(hits, e.cfg.TopK)
	if scope == "" {
		scope = q
	}
	gr, graphErr := e.runGraph(ctx, scope, "concept", m)
	if graphErr != nil {
		e.degrade(m, "graph", graphErr)
		gr = GraphResult{}
	}

	return e.fuseAndRank(hits, gr, primaryWeight, boostWeight, limit, m), nil
}

// graphThenSemantic identifies a concept neighborhood first, then biases the
// semantic query toward it.
func (e *Engine) graphThenSemantic(ctx context.Context, q string, limit int, m *Metrics) ([]Result, error) {
	gr, graphErr := e.runGraph(ctx, q, "concept", m)
	semQuery := q
	if graphErr != nil {
		e.degrade(m, "graph", graphErr)
		gr = GraphResult{}
	} else if hood := nodeScope(gr, e.cfg.TopK); hood != "" {
		semQuery = q + " " + hood
	}

	hits, semErr := e.runSemantic(ctx, semQuery, limit, m)
	if semErr != nil {
		if graphErr != nil {
			return nil, &EngineError{Causes: []error{graphErr, semErr}}
		}
		e.degrade(m, "semantic", semErr)
		hits = nil
	}

	return e.fuseAndRank(hits, gr, boostWeight, primaryWeight, limit, m), nil
}

// conceptExpansion widens the query text with the processed query's concepts
// (or, failing that, related concepts pulled from the graph) and searches the
// vector store with the expanded text.
func (e *Engine) conceptExpansion(ctx context.Context, pq query.ProcessedQuery, limit int, m *Metrics) ([]Result, error) {
	terms := append([]string{}, pq.Concepts...)

	if len(terms) == 0 {
		gr, err := e.runGraph(ctx, pq.NormalizedQuery, "concept", m)
		if err != nil {
			e.degrade(m, "graph", err)
		} else {
			for _, n := range gr.Nodes {
				if len(terms) >= e.cfg.TopK {
					break
				}
				terms = append(terms, n.Name)
			}
		}
	}

	expanded := pq.NormalizedQuery
	if len(terms) > 0 {
		expanded = expanded + " " + strings.Join(terms, " ")
	}
	m.ConceptExpansions = len(terms)

	hits, err := e.runSemantic(ctx, expanded, limit, m)
	if err != nil {
		return nil, &EngineError{Causes: []error{err}}
	}

	results := e.fuseAndRank(hits, GraphResult{}, 1, 0, limit, m)
	if len(terms) > 0 {
		for i := range results {
			results[i].FoundVia = appendUnique(results[i].FoundVia, FoundViaExpansion)
		}
	}
	return results, nil
}

func (e *Engine) runSemantic(ctx context.Context, q string, limit int, m *Metrics) ([]SemanticHit, error) {
	cctx, cancel := context.WithTimeout(ctx, e.cfg.BackendTimeout)
	defer cancel()

	start := time.Now()
	hits, err := e.semantic.Search(cctx, q, limit)
	m.SemanticTimeMs = time.Since(start).Milliseconds()
	if err != nil {
		return nil, &BackendError{Backend: "semantic", Err: err}
	}
	m.SemanticResults = len(hits)
	return hits, nil
}

func (e *Engine) runGraph(ctx context.Context, q, kind string, m *Metrics) (GraphResult, error) {
	cctx, cancel := context.WithTimeout(ctx, e.cfg.BackendTimeout)
	defer cancel()

	start := time.Now()
	gr, err := e.graph.Search(cctx, q, kind, e.cfg.MaxGraphDepth)
	m.GraphTimeMs = time.Since(start).Milliseconds()
	if err != nil {
		return GraphResult{}, &BackendError{Backend: "graph", Err: err}
	}
	m.GraphResults = len(gr.Nodes)
	return gr, nil
}

func (e *Engine) fuseAndRank(hits []SemanticHit, gr GraphResult, semW, graphW float64, limit int, m *Metrics) []Result {
	start := time.Now()
	fused, overlap := fuse(hits, gr, semW, graphW)
	ranked := rank(fused, limit)
	m.FusionTimeMs = time.Since(start).Milliseconds()
	m.OverlapCount = overlap
	return ranked
}

func (e *Engine) degrade(m *Metrics, backend string, err error) {
	e.log.Warn().Err(err).Str("backend", backend).Msg("backend unavailable, degrading to single source")
	m.DegradedBackends = append(m.DegradedBackends, backend)
}

// submit hands the task to the shared pool, falling back to a plain goroutine
// when the pool is saturated or released so the request never blocks on pool
// capacity.
func (e *Engine) submit(task func()) {
	if err := e.pool.Submit(task); err != nil {
		go task()
	}
}

// topicScope joins the topics of the leading semantic hits into one scoping
// query for the follow-up graph call.
func topicScope(hits []SemanticHit, topK int) string {
	seen := map[string]bool{}
	terms := []string{}
	for i, hit := range hits {
		if i >= topK {
			break
		}
		for _, t := range hit.Topics {
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			terms = append(terms, t)
		}
	}
	return strings.Join(terms, " ")
}

// nodeScope joins the names of the leading graph nodes.
func nodeScope(gr GraphResult, topK int) string {
	terms := []string{}
	for i, n := range gr.Nodes {
		if i >= topK {
			break
		}
		if n.Name != "" {
			terms = append(terms, n.Name)
		}
	}
	return strings.Join(terms, " ")
}
