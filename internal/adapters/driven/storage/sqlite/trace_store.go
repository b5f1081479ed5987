package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
)

// traceStore implements driven.TraceStore.
type traceStore struct {
	store *Store
}

var _ driven.TraceStore = (*traceStore)(nil)

// Append writes a new trace in the running state.
func (s *traceStore) Append(ctx context.Context, trace *domain.Trace) error {
	inputJSON, err := marshalState(trace.InputState)
	if err != nil {
		return fmt.Errorf("marshalling input state: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO traces (run_id, agent_name, step_name, input_state, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, trace.RunID, trace.AgentName, trace.StepName, inputJSON, trace.Status, trace.StartedAt)
	if err != nil {
		return fmt.Errorf("appending trace: %w", errors.Join(domain.ErrPersistenceUnavailable, err))
	}
	return nil
}

// Update transitions the latest still-running trace for the step to its
// terminal state. Terminal traces are never touched again, so a rescored
// step's earlier failed trace survives alongside the retry's.
func (s *traceStore) Update(ctx context.Context, trace *domain.Trace) error {
	outputJSON, err := marshalState(trace.OutputState)
	if err != nil {
		return fmt.Errorf("marshalling output state: %w", err)
	}
	toolCallsJSON, err := json.Marshal(trace.ToolCalls)
	if err != nil {
		return fmt.Errorf("marshalling tool calls: %w", err)
	}

	result, err := s.store.db.ExecContext(ctx, `
		UPDATE traces SET
			output_state = ?,
			tool_calls = ?,
			status = ?,
			error_message = ?,
			latency_ms = ?
		WHERE id = (
			SELECT id FROM traces
			WHERE run_id = ? AND step_name = ? AND status = ?
			ORDER BY id DESC LIMIT 1
		)
	`, outputJSON, string(toolCallsJSON), trace.Status, trace.ErrorMessage, trace.LatencyMS,
		trace.RunID, trace.StepName, domain.StepRunning)
	if err != nil {
		return fmt.Errorf("updating trace: %w", errors.Join(domain.ErrPersistenceUnavailable, err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking trace update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("trace %s/%s: %w", trace.RunID, trace.StepName, domain.ErrNotFound)
	}
	return nil
}

// ListByRun returns all traces for a run in insertion order.
func (s *traceStore) ListByRun(ctx context.Context, runID string) ([]domain.Trace, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT run_id, agent_name, step_name, input_state, output_state, tool_calls,
			status, error_message, latency_ms, started_at
		FROM traces WHERE run_id = ? ORDER BY id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying traces: %w", err)
	}
	defer rows.Close()

	var traces []domain.Trace //nolint:prealloc // size unknown from query
	for rows.Next() {
		var trace domain.Trace
		var inputJSON, outputJSON, toolCallsJSON string
		var startedAt sql.NullTime
		if err := rows.Scan(&trace.RunID, &trace.AgentName, &trace.StepName,
			&inputJSON, &outputJSON, &toolCallsJSON,
			&trace.Status, &trace.ErrorMessage, &trace.LatencyMS, &startedAt); err != nil {
			return nil, fmt.Errorf("scanning trace: %w", err)
		}
		if err := json.Unmarshal([]byte(inputJSON), &trace.InputState); err != nil {
			return nil, fmt.Errorf("unmarshaling input state: %w", err)
		}
		if err := json.Unmarshal([]byte(outputJSON), &trace.OutputState); err != nil {
			return nil, fmt.Errorf("unmarshaling output state: %w", err)
		}
		if err := json.Unmarshal([]byte(toolCallsJSON), &trace.ToolCalls); err != nil {
			return nil, fmt.Errorf("unmarshaling tool calls: %w", err)
		}
		if startedAt.Valid {
			trace.StartedAt = startedAt.Time
		}
		traces = append(traces, trace)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating traces: %w", err)
	}
	return traces, nil
}

// marshalState encodes a state snapshot, mapping nil to an empty object.
func marshalState(state map[string]any) (string, error) {
	if state == nil {
		return "{}", nil
	}
	data, err := json.Marshal(state)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
