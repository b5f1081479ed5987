package mcp

import (
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driving"
)

// Ports aggregates all core interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Recommend ranks stored intelligence against queries.
	Recommend driving.RecommendService

	// Ingest admits new signals. Optional; the ingest_signal tool
	// reports unavailability when nil.
	Ingest driving.IngestService

	// Intel backs the query_intelligence tool and intelligence
	// resources. Optional.
	Intel driven.IntelligenceStore

	// Signals backs the signals resource. Optional.
	Signals driven.SignalStore

	// Traces backs the run trace resource. Optional.
	Traces driven.TraceStore
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Recommend == nil {
		return ErrMissingRecommendService
	}
	// The remaining ports are optional; their tools and resources
	// degrade gracefully.
	return nil
}
