package pipeline

import "fmt"

// ValidationError rejects a request before any processing happens.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s", e.Reason)
}
