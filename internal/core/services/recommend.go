package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driving"
	"github.com/devpulse-labs/pulse-cli/internal/logger"
)

// Ensure RecommendService implements the interface.
var _ driving.RecommendService = (*RecommendService)(nil)

// RecommendService ranks stored intelligence by a blend of vector
// similarity, recency and user feedback. The embedding service and vector
// index are optional collaborators; when either is missing or failing the
// engine degrades to metadata-only ranking rather than erroring.
type RecommendService struct {
	intelStore    driven.IntelligenceStore
	signalStore   driven.SignalStore
	feedbackStore driven.FeedbackStore
	embedder      driven.EmbeddingService
	index         driven.VectorIndex
	settings      domain.RecommendSettings
	now           func() time.Time
}

// NewRecommendService creates the recommendation engine. embedder and
// index may be nil.
func NewRecommendService(
	intelStore driven.IntelligenceStore,
	signalStore driven.SignalStore,
	feedbackStore driven.FeedbackStore,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	settings domain.RecommendSettings,
) *RecommendService {
	return &RecommendService{
		intelStore:    intelStore,
		signalStore:   signalStore,
		feedbackStore: feedbackStore,
		embedder:      embedder,
		index:         index,
		settings:      settings,
		now:           time.Now,
	}
}

// Recommend ranks intelligence against the query and returns the top
// results, ordered by blended score with created_at as the deterministic
// tie-break.
func (s *RecommendService) Recommend(ctx context.Context, query domain.RecommendationQuery) ([]domain.Recommendation, error) {
	if err := s.settings.Weights.Validate(); err != nil {
		return nil, err
	}

	text, err := s.queryText(ctx, query)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty recommendation query", domain.ErrInvalidInput)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = s.settings.TopK
	}

	similarities := s.similarities(ctx, text)
	vectorMode := similarities != nil

	// Under vector ranking the candidate set is the index hits themselves,
	// so a strong match is never lost to a recency window. Metadata-only
	// degradation falls back to recent intelligence.
	var candidates []domain.ProcessedIntelligence
	if vectorMode {
		candidates, err = s.vectorCandidates(ctx, similarities)
	} else {
		candidates, err = s.intelStore.Query(ctx, domain.IntelligenceFilter{Limit: limit * 5})
	}
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	now := s.now()
	recs := make([]domain.Recommendation, 0, len(candidates))
	for i := range candidates {
		intel := &candidates[i]
		if query.SignalID != "" && intel.SignalID == query.SignalID {
			// Never recommend the seed signal's own analysis.
			continue
		}

		sim := similarities[intel.ID]
		recency := domain.RecencyDecay(intel.CreatedAt, now, s.settings.HalfLife)
		feedback := s.feedbackWeight(ctx, intel.ID)

		score := s.settings.Weights.Blend(sim, recency, feedback)
		if !vectorMode {
			score = s.settings.Weights.BlendMetadata(recency, feedback)
		}

		rec := domain.Recommendation{
			IntelligenceID: intel.ID,
			SignalID:       intel.SignalID,
			Score:          score,
			Similarity:     sim,
			Reason:         reason(sim, recency, feedback),
			CreatedAt:      intel.CreatedAt,
		}
		if sig, err := s.signalStore.Get(ctx, intel.SignalID); err == nil {
			rec.Title = sig.Title
		}
		recs = append(recs, rec)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})

	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// queryText resolves the effective query text. A signal-seeded query uses
// the stored signal's title and content.
func (s *RecommendService) queryText(ctx context.Context, query domain.RecommendationQuery) (string, error) {
	if query.SignalID == "" {
		return query.Text, nil
	}
	sig, err := s.signalStore.Get(ctx, query.SignalID)
	if err != nil {
		return "", fmt.Errorf("load seed signal %s: %w", query.SignalID, err)
	}
	return sig.Title + "\n" + sig.Content, nil
}

// vectorCandidates loads the intelligence rows behind the index hits at or
// above the similarity floor. A hit whose row has been pruned is skipped.
func (s *RecommendService) vectorCandidates(ctx context.Context, sims map[string]float64) ([]domain.ProcessedIntelligence, error) {
	out := make([]domain.ProcessedIntelligence, 0, len(sims))
	for id, sim := range sims {
		if sim < s.settings.SimilarityFloor {
			continue
		}
		intel, err := s.intelStore.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, *intel)
	}
	return out, nil
}

// similarities embeds the query and searches the vector index. Any outage
// along the way logs a warning and returns an empty map, which ranks every
// candidate on metadata alone.
func (s *RecommendService) similarities(ctx context.Context, text string) map[string]float64 {
	if s.embedder == nil || s.index == nil {
		return nil
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		logger.Warn("Recommend: query embedding failed, ranking on metadata only: %v", err)
		return nil
	}

	hits, err := s.index.Search(ctx, vec, s.settings.TopK*5)
	if err != nil {
		logger.Warn("Recommend: vector search failed, ranking on metadata only: %v", err)
		return nil
	}

	sims := make(map[string]float64, len(hits))
	for _, hit := range hits {
		sims[hit.IntelligenceID] = hit.Similarity
	}
	return sims
}

// feedbackWeight reads the aggregate vote weight, defaulting to the
// neutral 0.5 when the store has nothing or fails.
func (s *RecommendService) feedbackWeight(ctx context.Context, intelligenceID string) float64 {
	if s.feedbackStore == nil {
		return 0.5
	}
	w, err := s.feedbackStore.Weight(ctx, intelligenceID)
	if err != nil {
		logger.Debug("Recommend: feedback weight for %s unavailable: %v", intelligenceID, err)
		return 0.5
	}
	return w
}

func reason(sim, recency, feedback float64) string {
	switch {
	case sim >= 0.6:
		return "strong semantic match"
	case sim > 0:
		return "related topic"
	case recency >= 0.5 && feedback > 0.5:
		return "recent and well rated"
	case recency >= 0.5:
		return "recent"
	default:
		return "metadata match"
	}
}
