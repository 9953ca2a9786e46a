package engine

import (
	"context"
	"sync"
)

type mockSemantic struct {
	mu      sync.Mutex
	Hits    []SemanticHit
	Err     error
	Queries []string
}

func (m *mockSemantic) Search(ctx context.Context, queryText string, limit int) ([]SemanticHit, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, queryText)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Hits) > limit {
		return m.Hits[:limit], nil
	}
	return m.Hits, nil
}

func (m *mockSemantic) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Queries)
}

func (m *mockSemantic) lastQuery() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Queries) == 0 {
		return ""
	}
	return m.Queries[len(m.Queries)-1]
}

type mockGraph struct {
	mu      sync.Mutex
	Res     GraphResult
	Err     error
	Queries []string
	Kinds   []string
}

func (m *mockGraph) Search(ctx context.Context, queryText, kind string, maxDepth int) (GraphResult, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, queryText)
	m.Kinds = append(m.Kinds, kind)
	m.mu.Unlock()

	if m.Err != nil {
		return GraphResult{}, m.Err
	}
	return m.Res, nil
}

func (m *mockGraph) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Queries)
}

func (m *mockGraph) lastQuery() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Queries) == 0 {
		return ""
	}
	return m.Queries[len(m.Queries)-1]
}
