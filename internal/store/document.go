package store

// Document is the unit of ingestion, written to both backends: full content
// into the vector store, the document node plus its topic concepts into the
// graph.
type Document struct {
	ID         string   `json:"id" binding:"required"`
	Title      string   `json:"title"`
	Content    string   `json:"content" binding:"required"`
	SourceName string   `json:"source_name"`
	SourceURL  string   `json:"source_url"`
	Topics     []string `json:"topics"`
	Weight     float64  `json:"weight"`
}
