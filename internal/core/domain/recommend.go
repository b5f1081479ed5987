package domain

import (
	"fmt"
	"math"
	"time"
)

// RecommendationQuery asks for intelligence related to free text or to a
// previously ingested signal. Queries are ephemeral and recomputed per call.
type RecommendationQuery struct {
	// Text is the free-text query. Ignored when SignalID is set.
	Text string

	// SignalID seeds the query from a stored signal's analysis.
	SignalID string

	// Limit bounds the number of results; 0 means the engine default.
	Limit int
}

// Recommendation is one ranked query result.
type Recommendation struct {
	// IntelligenceID references the recommended analysis.
	IntelligenceID string

	// SignalID references the underlying signal.
	SignalID string

	// Title is the signal headline, carried for display.
	Title string

	// Score is the blended ranking score.
	Score float64

	// Similarity is the raw cosine similarity component, zero under
	// metadata-only ranking.
	Similarity float64

	// Reason is a short human-readable ranking explanation.
	Reason string

	// CreatedAt is the intelligence creation time, used for tie-breaks.
	CreatedAt time.Time
}

// BlendWeights combines vector similarity with structured metadata into a
// single ranking score. Similarity must dominate so semantic relevance is
// never overridden by metadata alone.
type BlendWeights struct {
	// Alpha weights cosine similarity. Must be at least 0.6.
	Alpha float64

	// Beta weights recency decay.
	Beta float64

	// Gamma weights stored user feedback.
	Gamma float64
}

// DefaultBlendWeights are the standard ranking weights.
var DefaultBlendWeights = BlendWeights{Alpha: 0.7, Beta: 0.2, Gamma: 0.1}

// Validate checks that the weights sum to one and similarity dominates.
func (w BlendWeights) Validate() error {
	if sum := w.Alpha + w.Beta + w.Gamma; math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("%w: blend weights must sum to 1, got %.3f", ErrInvalidInput, sum)
	}
	if w.Alpha < 0.6 {
		return fmt.Errorf("%w: similarity weight must be at least 0.6, got %.3f", ErrInvalidInput, w.Alpha)
	}
	return nil
}

// Blend computes the blended score for one candidate.
func (w BlendWeights) Blend(similarity, recency, feedback float64) float64 {
	return w.Alpha*similarity + w.Beta*recency + w.Gamma*feedback
}

// BlendMetadata scores a candidate without a similarity component, with the
// remaining weights renormalised so degraded scores still span [0, 1].
func (w BlendWeights) BlendMetadata(recency, feedback float64) float64 {
	rest := w.Beta + w.Gamma
	if rest <= 0 {
		return 0
	}
	return (w.Beta*recency + w.Gamma*feedback) / rest
}

// RecencyDecay maps the age of an item to (0, 1] using exponential decay:
// an item exactly one half-life old scores 0.5.
func RecencyDecay(createdAt, now time.Time, halfLife time.Duration) float64 {
	if halfLife <= 0 || !createdAt.Before(now) {
		return 1.0
	}
	age := now.Sub(createdAt)
	return math.Exp2(-float64(age) / float64(halfLife))
}

// Feedback is a stored user vote on a piece of intelligence.
type Feedback struct {
	// IntelligenceID references the rated analysis.
	IntelligenceID string

	// Vote is +1 (useful) or -1 (not useful).
	Vote int

	// CreatedAt is when the vote was recorded.
	CreatedAt time.Time
}
