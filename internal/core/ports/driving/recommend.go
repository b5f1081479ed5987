package driving

import (
	"context"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
)

// RecommendService ranks stored intelligence against a query.
type RecommendService interface {
	// Recommend returns the top-K blended-score results. Vector
	// collaborator outages degrade to metadata-only ranking and are
	// never surfaced as errors.
	Recommend(ctx context.Context, query domain.RecommendationQuery) ([]domain.Recommendation, error)
}
