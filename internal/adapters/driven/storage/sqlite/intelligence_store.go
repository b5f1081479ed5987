package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
)

// intelligenceStore implements driven.IntelligenceStore.
type intelligenceStore struct {
	store *Store
}

var _ driven.IntelligenceStore = (*intelligenceStore)(nil)

// Upsert writes intelligence, overwriting an existing row with the same
// (signal_id, agent_name, agent_version) key. The denormalised score
// column serves filtered queries without decoding output JSON.
func (s *intelligenceStore) Upsert(ctx context.Context, intel *domain.ProcessedIntelligence) (string, error) {
	outputJSON, err := json.Marshal(intel.Output)
	if err != nil {
		return "", fmt.Errorf("marshalling output: %w", err)
	}

	if intel.CreatedAt.IsZero() {
		intel.CreatedAt = time.Now().UTC()
	}
	newID := uuid.NewString()

	row := s.store.db.QueryRowContext(ctx, `
		INSERT INTO intelligence (id, signal_id, agent_name, agent_version, output, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(signal_id, agent_name, agent_version) DO UPDATE SET
			output = excluded.output,
			score = excluded.score,
			created_at = excluded.created_at
		RETURNING id
	`, newID, intel.SignalID, intel.AgentName, intel.AgentVersion,
		string(outputJSON), intel.Output.Score, intel.CreatedAt)

	var storedID string
	if err := row.Scan(&storedID); err != nil {
		return "", fmt.Errorf("upserting intelligence: %w", errors.Join(domain.ErrPersistenceUnavailable, err))
	}

	intel.ID = storedID
	return storedID, nil
}

// Get retrieves intelligence by ID.
func (s *intelligenceStore) Get(ctx context.Context, id string) (*domain.ProcessedIntelligence, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, signal_id, agent_name, agent_version, output, created_at
		FROM intelligence WHERE id = ?
	`, id)

	var intel domain.ProcessedIntelligence
	var outputJSON string
	var createdAt sql.NullTime
	if err := row.Scan(&intel.ID, &intel.SignalID, &intel.AgentName, &intel.AgentVersion,
		&outputJSON, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning intelligence: %w", err)
	}
	if err := json.Unmarshal([]byte(outputJSON), &intel.Output); err != nil {
		return nil, fmt.Errorf("unmarshaling output: %w", err)
	}
	if createdAt.Valid {
		intel.CreatedAt = createdAt.Time
	}
	return &intel, nil
}

// Query returns intelligence matching the filter, newest first.
func (s *intelligenceStore) Query(ctx context.Context, filter domain.IntelligenceFilter) ([]domain.ProcessedIntelligence, error) {
	query := `
		SELECT id, signal_id, agent_name, agent_version, output, created_at
		FROM intelligence WHERE 1=1`
	var args []any

	if filter.SignalID != "" {
		query += " AND signal_id = ?"
		args = append(args, filter.SignalID)
	}
	if filter.AgentName != "" {
		query += " AND agent_name = ?"
		args = append(args, filter.AgentName)
	}
	if filter.MinScore > 0 {
		query += " AND score >= ?"
		args = append(args, filter.MinScore)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying intelligence: %w", err)
	}
	defer rows.Close()

	var results []domain.ProcessedIntelligence //nolint:prealloc // size unknown from query
	for rows.Next() {
		var intel domain.ProcessedIntelligence
		var outputJSON string
		var createdAt sql.NullTime
		if err := rows.Scan(&intel.ID, &intel.SignalID, &intel.AgentName, &intel.AgentVersion,
			&outputJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning intelligence: %w", err)
		}
		if err := json.Unmarshal([]byte(outputJSON), &intel.Output); err != nil {
			return nil, fmt.Errorf("unmarshaling output: %w", err)
		}
		if createdAt.Valid {
			intel.CreatedAt = createdAt.Time
		}
		results = append(results, intel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating intelligence: %w", err)
	}
	return results, nil
}
