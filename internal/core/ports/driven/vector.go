package driven

import "context"

// VectorIndex provides semantic similarity search over stored intelligence.
type VectorIndex interface {
	// Upsert stores the embedding for an intelligence row, replacing any
	// previous vector for the same ID.
	Upsert(ctx context.Context, intelligenceID string, embedding []float32) error

	// Delete removes a vector from the index.
	Delete(ctx context.Context, intelligenceID string) error

	// Search finds the k nearest neighbours to the query vector.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// IntelligenceID is the matched row.
	IntelligenceID string

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}
