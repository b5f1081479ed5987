package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
)

// RecommendInput is the input schema for the recommend tool.
type RecommendInput struct {
	Query    string `json:"query,omitempty" jsonschema:"free-text query to rank intelligence against"`
	SignalID string `json:"signal_id,omitempty" jsonschema:"seed the query from a stored signal instead of free text"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// RecommendOutput is the output schema for the recommend tool.
type RecommendOutput struct {
	Results []RecommendationOutput `json:"results"`
	Count   int                    `json:"count"`
}

// RecommendationOutput represents a single ranked result.
type RecommendationOutput struct {
	IntelligenceID string  `json:"intelligence_id"`
	SignalID       string  `json:"signal_id"`
	Title          string  `json:"title"`
	Score          float64 `json:"score"`
	Similarity     float64 `json:"similarity,omitempty"`
	Reason         string  `json:"reason,omitempty"`
}

// QueryIntelligenceInput is the input schema for the query_intelligence tool.
type QueryIntelligenceInput struct {
	SignalID string  `json:"signal_id,omitempty" jsonschema:"restrict to analyses of one signal"`
	MinScore float64 `json:"min_score,omitempty" jsonschema:"drop analyses scoring below this floor"`
	Limit    int     `json:"limit,omitempty" jsonschema:"maximum number of rows to return (default 10)"`
}

// QueryIntelligenceOutput is the output schema for the query_intelligence tool.
type QueryIntelligenceOutput struct {
	Results []IntelligenceRow `json:"results"`
	Count   int               `json:"count"`
}

// IntelligenceRow represents one stored analysis.
type IntelligenceRow struct {
	ID        string   `json:"id"`
	SignalID  string   `json:"signal_id"`
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points,omitempty"`
	Score     float64  `json:"score"`
	Risk      string   `json:"risk"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt string   `json:"created_at"`
}

// IngestSignalInput is the input schema for the ingest_signal tool.
type IngestSignalInput struct {
	Source     string         `json:"source" jsonschema:"signal source, one of github, arxiv, hackernews"`
	ExternalID string         `json:"external_id" jsonschema:"source-scoped unique identifier"`
	Payload    map[string]any `json:"payload" jsonschema:"raw source-shaped document"`
}

// IngestSignalOutput is the output schema for the ingest_signal tool.
type IngestSignalOutput struct {
	Decision string `json:"decision"`
	SignalID string `json:"signal_id,omitempty"`
	Version  int    `json:"version,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recommend",
		Description: "Rank stored intelligence against a free-text query or a seed signal",
	}, s.handleRecommend)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_intelligence",
		Description: "Query stored signal analyses by signal, score floor and recency",
	}, s.handleQueryIntelligence)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_signal",
		Description: "Admit a raw signal payload into the store with idempotent deduplication",
	}, s.handleIngestSignal)
}

// handleRecommend handles the recommend tool invocation.
func (s *Server) handleRecommend(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecommendInput,
) (*mcp.CallToolResult, RecommendOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	query := domain.RecommendationQuery{
		Text:     input.Query,
		SignalID: input.SignalID,
		Limit:    limit,
	}
	recs, err := s.ports.Recommend.Recommend(ctx, query)
	if err != nil {
		return nil, RecommendOutput{}, err
	}

	output := RecommendOutput{
		Results: make([]RecommendationOutput, len(recs)),
		Count:   len(recs),
	}
	for i := range recs {
		output.Results[i] = RecommendationOutput{
			IntelligenceID: recs[i].IntelligenceID,
			SignalID:       recs[i].SignalID,
			Title:          recs[i].Title,
			Score:          recs[i].Score,
			Similarity:     recs[i].Similarity,
			Reason:         recs[i].Reason,
		}
	}

	return nil, output, nil
}

// handleQueryIntelligence handles the query_intelligence tool invocation.
func (s *Server) handleQueryIntelligence(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryIntelligenceInput,
) (*mcp.CallToolResult, QueryIntelligenceOutput, error) {
	if s.ports.Intel == nil {
		return nil, QueryIntelligenceOutput{}, errors.New("intelligence store is not available")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.ports.Intel.Query(ctx, domain.IntelligenceFilter{
		SignalID: input.SignalID,
		MinScore: input.MinScore,
		Limit:    limit,
	})
	if err != nil {
		return nil, QueryIntelligenceOutput{}, err
	}

	output := QueryIntelligenceOutput{
		Results: make([]IntelligenceRow, len(rows)),
		Count:   len(rows),
	}
	for i := range rows {
		output.Results[i] = intelligenceRow(&rows[i])
	}

	return nil, output, nil
}

// handleIngestSignal handles the ingest_signal tool invocation.
func (s *Server) handleIngestSignal(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestSignalInput,
) (*mcp.CallToolResult, IngestSignalOutput, error) {
	if s.ports.Ingest == nil {
		return nil, IngestSignalOutput{}, errors.New("ingest service is not available")
	}

	source := domain.SourceKind(input.Source)
	result, err := s.ports.Ingest.Ingest(ctx, source, input.ExternalID, input.Payload)
	if err != nil {
		return nil, IngestSignalOutput{}, err
	}

	return nil, IngestSignalOutput{
		Decision: result.Decision.String(),
		SignalID: result.SignalID,
		Version:  result.Version,
	}, nil
}

// intelligenceRow flattens a stored analysis for tool and resource output.
func intelligenceRow(intel *domain.ProcessedIntelligence) IntelligenceRow {
	return IntelligenceRow{
		ID:        intel.ID,
		SignalID:  intel.SignalID,
		Summary:   intel.Output.Summary,
		KeyPoints: intel.Output.KeyPoints,
		Score:     intel.Output.Score,
		Risk:      string(intel.Output.Risk),
		Tags:      intel.Output.Tags,
		CreatedAt: intel.CreatedAt.Format(time.RFC3339),
	}
}
