package llm

import (
	"context"
)

// EmbedderClient produces embedding vectors for short texts.
type EmbedderClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
