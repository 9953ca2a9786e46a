package store

import (
	"context"
	"fmt"
	"strings"

	chromem "github.com/philippgille/chromem-go"
	"github.com/rs/zerolog"

	"github.com/devq-ai/ptolemies-sub002/internal/engine"
	"github.com/devq-ai/ptolemies-sub002/internal/llm"
)

const collectionName = "documents"

// SemanticStore is the vector backend, an embedded chromem-go collection with
// embeddings supplied by the configured embedder.
type SemanticStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	log        zerolog.Logger
}

func NewSemanticStore(embedder llm.EmbedderClient, log zerolog.Logger) (*SemanticStore, error) {
	db := chromem.NewDB()
	ef := chromem.EmbeddingFunc(func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	})

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &SemanticStore{
		db:         db,
		collection: col,
		log:        log,
	}, nil
}

// Search implements engine.SemanticSearcher.
func (s *SemanticStore) Search(ctx context.Context, queryText string, limit int) ([]engine.SemanticHit, error) {
	if limit <= 0 {
		limit = 10
	}

	// chromem-go rejects nResults larger than the collection.
	count := s.collection.Count()
	if count == 0 {
		return []engine.SemanticHit{}, nil
	}
	if limit > count {
		limit = count
	}

	results, err := s.collection.Query(ctx, queryText, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	hits := make([]engine.SemanticHit, len(results))
	for i, r := range results {
		hits[i] = engine.SemanticHit{
			ID:        r.ID,
			Title:     r.Metadata["title"],
			Content:   r.Content,
			Source:    r.Metadata["source_name"],
			SourceURL: r.Metadata["source_url"],
			Topics:    splitTopics(r.Metadata["topics"]),
			Score:     float64(r.Similarity),
		}
	}
	return hits, nil
}

func (s *SemanticStore) Upsert(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	chromDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		chromDocs[i] = chromem.Document{
			ID:      doc.ID,
			Content: doc.Content,
			Metadata: map[string]string{
				"title":       doc.Title,
				"source_name": doc.SourceName,
				"source_url":  doc.SourceURL,
				"topics":      strings.Join(doc.Topics, ","),
			},
		}
	}

	return s.collection.AddDocuments(ctx, chromDocs, 1)
}

func (s *SemanticStore) Count() int {
	return s.collection.Count()
}

func splitTopics(joined string) []string {
	if joined == "" {
		return []string{}
	}
	return strings.Split(joined, ",")
}
