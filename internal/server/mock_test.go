package server

import (
	"context"

	"github.com/devq-ai/ptolemies-sub002/internal/engine"
	"github.com/devq-ai/ptolemies-sub002/internal/query"
)

type mockExecutor struct {
	Results []engine.Result
	Err     error
}

func (m *mockExecutor) Execute(ctx context.Context, pq query.ProcessedQuery, limit int) ([]engine.Result, engine.Metrics, error) {
	if m.Err != nil {
		return []engine.Result{}, engine.Metrics{}, m.Err
	}
	return append([]engine.Result{}, m.Results...), engine.Metrics{}, nil
}
