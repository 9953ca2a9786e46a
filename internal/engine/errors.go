package engine

import (
	"fmt"
	"strings"
)

// BackendError wraps a failure from one of the two stores.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// EngineError reports that every backend the strategy needed is down.
type EngineError struct {
	Causes []error
}

func (e *EngineError) Error() string {
	msgs := make([]string, 0, len(e.Causes))
	for _, c := range e.Causes {
		msgs = append(msgs, c.Error())
	}
	return "all backends unavailable: " + strings.Join(msgs, "; ")
}

func (e *EngineError) Unwrap() []error {
	return e.Causes
}
