package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/devq-ai/ptolemies-sub002/internal/engine"
	"github.com/devq-ai/ptolemies-sub002/internal/query"
)

type mockExecutor struct {
	mu      sync.Mutex
	Results []engine.Result
	Metrics engine.Metrics
	Err     error
	Queries []query.ProcessedQuery
	Limits  []int
}

func (m *mockExecutor) Execute(ctx context.Context, pq query.ProcessedQuery, limit int) ([]engine.Result, engine.Metrics, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, pq)
	m.Limits = append(m.Limits, limit)
	m.mu.Unlock()

	if m.Err != nil {
		return []engine.Result{}, m.Metrics, m.Err
	}
	return append([]engine.Result{}, m.Results...), m.Metrics, nil
}

func (m *mockExecutor) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Queries)
}

type stubSemantic struct {
	hits []engine.SemanticHit
}

func (s *stubSemantic) Search(ctx context.Context, queryText string, limit int) ([]engine.SemanticHit, error) {
	if len(s.hits) > limit {
		return s.hits[:limit], nil
	}
	return s.hits, nil
}

type stubGraph struct {
	res engine.GraphResult
}

func (s *stubGraph) Search(ctx context.Context, queryText, kind string, maxDepth int) (engine.GraphResult, error) {
	return s.res, nil
}

type mockCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	GetErr error
	SetErr error
	Sets   int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	data, ok := m.data[key]
	return data, ok, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.data[key] = value
	m.Sets++
	return nil
}

func (m *mockCache) Close() error {
	return nil
}

func (m *mockCache) seed(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func (m *mockCache) sets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Sets
}
