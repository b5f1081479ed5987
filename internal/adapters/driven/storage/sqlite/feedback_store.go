package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
)

// feedbackStore implements driven.FeedbackStore.
type feedbackStore struct {
	store *Store
}

var _ driven.FeedbackStore = (*feedbackStore)(nil)

// Record stores one vote.
func (s *feedbackStore) Record(ctx context.Context, fb domain.Feedback) error {
	if fb.Vote != 1 && fb.Vote != -1 {
		return fmt.Errorf("%w: vote must be +1 or -1, got %d", domain.ErrInvalidInput, fb.Vote)
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO feedback (intelligence_id, vote, created_at)
		VALUES (?, ?, ?)
	`, fb.IntelligenceID, fb.Vote, fb.CreatedAt)
	if err != nil {
		return fmt.Errorf("recording feedback: %w", errors.Join(domain.ErrPersistenceUnavailable, err))
	}
	return nil
}

// Weight returns the aggregate feedback weight normalised into [0, 1].
// The average vote in [-1, 1] maps linearly onto the range, so a row with
// no votes sits at the neutral 0.5.
func (s *feedbackStore) Weight(ctx context.Context, intelligenceID string) (float64, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(vote), 0), COUNT(*)
		FROM feedback WHERE intelligence_id = ?
	`, intelligenceID)

	var sum, count int
	if err := row.Scan(&sum, &count); err != nil {
		return 0, fmt.Errorf("aggregating feedback: %w", err)
	}
	if count == 0 {
		return 0.5, nil
	}
	avg := float64(sum) / float64(count)
	return 0.5 + avg/2, nil
}
