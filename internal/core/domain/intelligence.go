package domain

import "time"

// RiskLevel classifies the risk posture of a signal.
type RiskLevel string

// Risk classifications produced by the analyst.
const (
	RiskLow  RiskLevel = "LOW"
	RiskHigh RiskLevel = "HIGH"
)

// Valid reports whether the risk level is a known classification.
func (r RiskLevel) Valid() bool {
	return r == RiskLow || r == RiskHigh
}

// IntelligenceOutput is the structured result of a completed pipeline run.
type IntelligenceOutput struct {
	// Summary is the researcher's condensed description of the signal.
	Summary string `json:"summary"`

	// KeyPoints are bulleted takeaways extracted during research.
	KeyPoints []string `json:"key_points,omitempty"`

	// Score is the relevance score in [0, 100].
	Score float64 `json:"score"`

	// Risk is the risk classification.
	Risk RiskLevel `json:"risk"`

	// Tags are topical labels for filtering.
	Tags []string `json:"tags,omitempty"`

	// Evidence backs the score and risk classification. A HIGH risk or a
	// score above the review threshold must carry evidence.
	Evidence []string `json:"evidence,omitempty"`
}

// ClampScore forces the relevance score into [0, 100].
// Out-of-range model output is clamped rather than propagated.
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ProcessedIntelligence is the agent-derived analysis of exactly one signal
// by one (agent name, agent version) pair. Immutable once written;
// reprocessing under the same key upserts rather than duplicating.
type ProcessedIntelligence struct {
	// ID is the unique identifier assigned at insertion.
	ID string

	// SignalID references the analysed signal (non-owning).
	SignalID string

	// AgentName identifies the producing pipeline.
	AgentName string

	// AgentVersion stamps the pipeline version. Rows from older versions
	// are retained, never deleted.
	AgentVersion string

	// Output is the structured analysis.
	Output IntelligenceOutput

	// CreatedAt is when the row was written.
	CreatedAt time.Time
}

// IntelligenceFilter narrows an intelligence query.
type IntelligenceFilter struct {
	// SignalID restricts to a single signal when non-empty.
	SignalID string

	// AgentName restricts to one pipeline when non-empty.
	AgentName string

	// MinScore drops rows scoring below the floor when > 0.
	MinScore float64

	// Limit bounds the result set; 0 means the store default.
	Limit int
}
