package sqlite

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
)

// vectorIndex implements driven.VectorIndex with a brute-force cosine scan
// over embeddings stored as little-endian float32 blobs. At the scale of a
// personal intelligence feed a flat scan outperforms the bookkeeping of an
// approximate index, and it keeps the build pure Go.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Upsert stores the embedding for an intelligence row.
func (v *vectorIndex) Upsert(ctx context.Context, intelligenceID string, embedding []float32) error {
	if len(embedding) == 0 {
		return fmt.Errorf("%w: empty embedding", domain.ErrInvalidInput)
	}

	_, err := v.store.db.ExecContext(ctx, `
		INSERT INTO embeddings (intelligence_id, vector, dimensions)
		VALUES (?, ?, ?)
		ON CONFLICT(intelligence_id) DO UPDATE SET
			vector = excluded.vector,
			dimensions = excluded.dimensions
	`, intelligenceID, float32SliceToBytes(embedding), len(embedding))
	if err != nil {
		return fmt.Errorf("upserting embedding: %w", errors.Join(domain.ErrVectorIndexUnavailable, err))
	}
	return nil
}

// Delete removes a vector from the index.
func (v *vectorIndex) Delete(ctx context.Context, intelligenceID string) error {
	_, err := v.store.db.ExecContext(ctx,
		"DELETE FROM embeddings WHERE intelligence_id = ?", intelligenceID)
	if err != nil {
		return fmt.Errorf("deleting embedding: %w", errors.Join(domain.ErrVectorIndexUnavailable, err))
	}
	return nil
}

// Search finds the k nearest neighbours to the query vector. Vectors with
// mismatched dimensions are skipped rather than failing the search.
func (v *vectorIndex) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = 10
	}

	rows, err := v.store.db.QueryContext(ctx,
		"SELECT intelligence_id, vector FROM embeddings WHERE dimensions = ?", len(query))
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", errors.Join(domain.ErrVectorIndexUnavailable, err))
	}
	defer rows.Close()

	var hits []driven.VectorHit
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		sim := cosineSimilarity(query, bytesToFloat32Slice(blob))
		hits = append(hits, driven.VectorHit{IntelligenceID: id, Similarity: sim})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Similarity > hits[j].Similarity })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Close releases resources. The underlying database is shared and closed
// by the owning Store.
func (v *vectorIndex) Close() error {
	return nil
}

// cosineSimilarity computes the cosine of the angle between two vectors,
// clamped to [0, 1] so opposing vectors rank as unrelated rather than
// negatively related.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	return sim
}
