package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is the optional envelope cache consumed by the orchestrator. A nil
// Cache simply means every request executes the full pipeline.
//
// Get reports (value, hit, error). Errors are advisory: callers treat them
// as misses per the CacheError contract.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// CacheError wraps a cache backend failure. It is never fatal: the pipeline
// logs it and proceeds as on a miss.
type CacheError struct {
	Op  string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s: %v", e.Op, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}
