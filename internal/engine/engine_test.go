package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devq-ai/ptolemies-sub002/internal/query"
)

func newTestEngine(t *testing.T, sem SemanticSearcher, graph GraphSearcher) *Engine {
	t.Helper()
	e, err := New(sem, graph, Config{BackendTimeout: time.Second, TopK: 5}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func processed(strategy query.Strategy, concepts ...string) query.ProcessedQuery {
	if concepts == nil {
		concepts = []string{}
	}
	return query.ProcessedQuery{
		NormalizedQuery: "test query",
		SearchStrategy:  strategy,
		Concepts:        concepts,
		ConfidenceScore: 0.5,
	}
}

func TestSemanticOnly(t *testing.T) {
	sem := &mockSemantic{Hits: []SemanticHit{
		{ID: "a", Title: "A", Score: 0.9},
		{ID: "b", Title: "B", Score: 0.5},
	}}
	graph := &mockGraph{}
	e := newTestEngine(t, sem, graph)

	results, m, err := e.Execute(context.Background(), processed(query.StrategySemanticOnly), 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		assert.Zero(t, r.GraphScore)
		assert.Equal(t, r.SemanticScore, r.CombinedScore)
		assert.Equal(t, []string{FoundViaSemantic}, r.FoundVia)
	}
	assert.Equal(t, 0, graph.calls())
	assert.Equal(t, 2, m.SemanticResults)
	assert.Zero(t, m.GraphResults)
	assert.Empty(t, m.DegradedBackends)
}

func TestGraphOnly(t *testing.T) {
	sem := &mockSemantic{}
	graph := &mockGraph{Res: GraphResult{Nodes: []GraphNode{
		{ID: "n1", Name: "Node 1", Weight: 0.8},
		{ID: "n2", Name: "Node 2", Weight: 0.4},
	}}}
	e := newTestEngine(t, sem, graph)

	results, m, err := e.Execute(context.Background(), processed(query.StrategyGraphOnly), 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		assert.Zero(t, r.SemanticScore)
		assert.Equal(t, r.GraphScore, r.CombinedScore)
		assert.Equal(t, []string{FoundViaGraph}, r.FoundVia)
	}
	assert.Equal(t, 0, sem.calls())
	assert.Equal(t, 2, m.GraphResults)
}

func TestHybridBalancedWeights(t *testing.T) {
	sem := &mockSemantic{Hits: []SemanticHit{
		{ID: "a", Score: 0.8},
		{ID: "b", Score: 0.6},
	}}
	graph := &mockGraph{Res: GraphResult{Nodes: []GraphNode{
		{ID: "b", Name: "B", Weight: 0.9},
		{ID: "c", Name: "C", Weight: 0.4},
	}}}
	e := newTestEngine(t, sem, graph)

	results, m, err := e.Execute(context.Background(), processed(query.StrategyHybridBalanced), 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, r := range results {
		assert.InDelta(t, 0.5*r.SemanticScore+0.5*r.GraphScore, r.CombinedScore, 1e-9)
	}

	// b is in both sources and must rank first.
	assert.Equal(t, "b", results[0].ID)
	assert.ElementsMatch(t, []string{FoundViaSemantic, FoundViaGraph}, results[0].FoundVia)
	assert.Equal(t, 1, m.OverlapCount)
	assert.Equal(t, 1, sem.calls())
	assert.Equal(t, 1, graph.calls())
}

func TestRanksStrictlyIncreasingScoresNonIncreasing(t *testing.T) {
	sem := &mockSemantic{Hits: []SemanticHit{
		{ID: "a", Score: 0.3},
		{ID: "b", Score: 0.9},
		{ID: "c", Score: 0.9},
		{ID: "d", Score: 0.1},
	}}
	e := newTestEngine(t, sem, &mockGraph{})

	results, _, err := e.Execute(context.Background(), processed(query.StrategySemanticOnly), 10)
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, r := range results {
		assert.Equal(t, i+1, r.Rank)
		if i > 0 {
			assert.LessOrEqual(t, r.CombinedScore, results[i-1].CombinedScore)
		}
	}

	// Equal scores tie-break by ascending id.
	assert.Equal(t, "b", results[0].ID)
	assert.Equal(t, "c", results[1].ID)
}

func TestDegradedGraphBackend(t *testing.T) {
	sem := &mockSemantic{Hits: []SemanticHit{{ID: "a", Score: 0.7}}}
	graph := &mockGraph{Err: fmt.Errorf("connection refused")}
	e := newTestEngine(t, sem, graph)

	results, m, err := e.Execute(context.Background(), processed(query.StrategyHybridBalanced), 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Zero(t, results[0].GraphScore)
	assert.Equal(t, []string{"graph"}, m.DegradedBackends)
}

func TestDegradedSemanticBackend(t *testing.T) {
	sem := &mockSemantic{Err: fmt.Errorf("timeout")}
	graph := &mockGraph{Res: GraphResult{Nodes: []GraphNode{{ID: "n1", Name: "N", Weight: 0.6}}}}
	e := newTestEngine(t, sem, graph)

	results, m, err := e.Execute(context.Background(), processed(query.StrategyHybridBalanced), 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Zero(t, results[0].SemanticScore)
	assert.Equal(t, []string{"semantic"}, m.DegradedBackends)
}

func TestAllBackendsDown(t *testing.T) {
	sem := &mockSemantic{Err: fmt.Errorf("sem down")}
	graph := &mockGraph{Err: fmt.Errorf("graph down")}
	e := newTestEngine(t, sem, graph)

	for _, strategy := range []query.Strategy{
		query.StrategyHybridBalanced,
		query.StrategySemanticThenGraph,
		query.StrategyGraphThenSemantic,
	} {
		results, _, err := e.Execute(context.Background(), processed(strategy), 10)
		require.Error(t, err, "strategy %s", strategy)

		var engErr *EngineError
		assert.True(t, errors.As(err, &engErr), "strategy %s", strategy)
		assert.Empty(t, results)
	}
}

func TestBackendErrorWrapping(t *testing.T) {
	cause := fmt.Errorf("boom")
	sem := &mockSemantic{Err: cause}
	e := newTestEngine(t, sem, &mockGraph{})

	_, _, err := e.Execute(context.Background(), processed(query.StrategySemanticOnly), 10)
	require.Error(t, err)

	var backendErr *BackendError
	assert.True(t, errors.As(err, &backendErr))
	assert.Equal(t, "semantic", backendErr.Backend)
	assert.True(t, errors.Is(err, cause))
}

func TestSemanticThenGraphScopesGraphCall(t *testing.T) {
	sem := &mockSemantic{Hits: []SemanticHit{
		{ID: "a", Score: 0.8, Topics: []string{"caching", "redis"}},
	}}
	graph := &mockGraph{Res: GraphResult{Nodes: []GraphNode{{ID: "a", Name: "A", Weight: 0.5}}}}
	e := newTestEngine(t, sem, graph)

	results, _, err := e.Execute(context.Background(), processed(query.StrategySemanticThenGraph), 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "caching redis", graph.lastQuery())
	assert.Equal(t, "concept", graph.Kinds[0])
	assert.InDelta(t, 0.7*0.8+0.3*0.5, results[0].CombinedScore, 1e-9)
}

func TestGraphThenSemanticBiasesSemanticQuery(t *testing.T) {
	sem := &mockSemantic{Hits: []SemanticHit{{ID: "a", Score: 0.6}}}
	graph := &mockGraph{Res: GraphResult{Nodes: []GraphNode{{ID: "b", Name: "redis", Weight: 0.9}}}}
	e := newTestEngine(t, sem, graph)

	results, _, err := e.Execute(context.Background(), processed(query.StrategyGraphThenSemantic), 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "test query redis", sem.lastQuery())
	for _, r := range results {
		assert.InDelta(t, 0.3*r.SemanticScore+0.7*r.GraphScore, r.CombinedScore, 1e-9)
	}
}

func TestConceptExpansionUsesConcepts(t *testing.T) {
	sem := &mockSemantic{Hits: []SemanticHit{{ID: "a", Score: 0.7}}}
	graph := &mockGraph{}
	e := newTestEngine(t, sem, graph)

	results, m, err := e.Execute(context.Background(), processed(query.StrategyConceptExpansion, "caching", "performance"), 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "test query caching performance", sem.lastQuery())
	assert.Equal(t, 0, graph.calls())
	assert.Equal(t, 2, m.ConceptExpansions)
	assert.Equal(t, results[0].SemanticScore, results[0].CombinedScore)
	assert.Contains(t, results[0].FoundVia, FoundViaExpansion)
}

func TestConceptExpansionFallsBackToGraph(t *testing.T) {
	sem := &mockSemantic{Hits: []SemanticHit{{ID: "a", Score: 0.7}}}
	graph := &mockGraph{Res: GraphResult{Nodes: []GraphNode{{ID: "c1", Name: "caching", Weight: 0.5}}}}
	e := newTestEngine(t, sem, graph)

	_, m, err := e.Execute(context.Background(), processed(query.StrategyConceptExpansion), 10)
	require.NoError(t, err)

	assert.Equal(t, 1, graph.calls())
	assert.Equal(t, "test query caching", sem.lastQuery())
	assert.Equal(t, 1, m.ConceptExpansions)
}

func TestExecuteIsDeterministic(t *testing.T) {
	sem := &mockSemantic{Hits: []SemanticHit{
		{ID: "a", Score: 0.8},
		{ID: "b", Score: 0.6},
	}}
	graph := &mockGraph{Res: GraphResult{Nodes: []GraphNode{
		{ID: "b", Name: "B", Weight: 0.9},
		{ID: "c", Name: "C", Weight: 0.4},
	}}}
	e := newTestEngine(t, sem, graph)

	first, _, err := e.Execute(context.Background(), processed(query.StrategyHybridBalanced), 10)
	require.NoError(t, err)
	second, _, err := e.Execute(context.Background(), processed(query.StrategyHybridBalanced), 10)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].CombinedScore, second[i].CombinedScore)
		assert.Equal(t, first[i].Rank, second[i].Rank)
	}
}

func TestExecuteCompletesOnSaturatedPool(t *testing.T) {
	sem := &mockSemantic{Hits: []SemanticHit{{ID: "a", Score: 0.8}}}
	graph := &mockGraph{Res: GraphResult{Nodes: []GraphNode{{ID: "b", Name: "B", Weight: 0.6}}}}
	e, err := New(sem, graph, Config{BackendTimeout: time.Second, PoolSize: 1, TopK: 5}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(e.Close)

	// Occupy the pool's only worker so the fan-out must run inline.
	occupied := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, e.pool.Submit(func() {
		close(occupied)
		<-release
	}))
	<-occupied
	defer close(release)

	done := make(chan struct{})
	var results []Result
	var execErr error
	go func() {
		results, _, execErr = e.Execute(context.Background(), processed(query.StrategyHybridBalanced), 10)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("execute blocked on saturated pool")
	}
	require.NoError(t, execErr)
	assert.Len(t, results, 2)
}

func TestLimitTruncation(t *testing.T) {
	hits := make([]SemanticHit, 10)
	for i := range hits {
		hits[i] = SemanticHit{ID: fmt.Sprintf("doc-%02d", i), Score: float64(10-i) / 10}
	}
	sem := &mockSemantic{Hits: hits}
	e := newTestEngine(t, sem, &mockGraph{})

	results, _, err := e.Execute(context.Background(), processed(query.StrategySemanticOnly), 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Equal(t, 3, results[2].Rank)
}
