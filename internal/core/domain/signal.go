package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// SourceKind identifies the origin of a signal.
type SourceKind string

// Known signal sources.
const (
	SourceGitHub     SourceKind = "github"
	SourceArxiv      SourceKind = "arxiv"
	SourceHackerNews SourceKind = "hackernews"
)

// Valid reports whether the source kind is a known origin.
func (k SourceKind) Valid() bool {
	switch k {
	case SourceGitHub, SourceArxiv, SourceHackerNews:
		return true
	}
	return false
}

// Signal is a normalised unit of ingested external content.
// It is immutable once created; a re-ingestion with a changed content hash
// produces a new version of the same logical signal.
type Signal struct {
	// ID is the unique identifier assigned at insertion.
	ID string

	// Source is the enumerated origin of the signal.
	Source SourceKind

	// ExternalID is the source-scoped unique key.
	// The pair (Source, ExternalID) is unique.
	ExternalID string

	// Title is the headline used for summaries and display.
	Title string

	// Content is the main body used for analysis.
	Content string

	// URL points at the original resource.
	URL string

	// Payload carries the raw adapter document for downstream enrichment.
	Payload map[string]any

	// ContentHash is the deterministic digest used for deduplication.
	ContentHash string

	// Version is incremented each time the content hash changes for the
	// same (Source, ExternalID) pair.
	Version int

	// IngestedAt is when this version was admitted.
	IngestedAt time.Time
}

// ComputeContentHash returns the deduplication digest for a signal.
// The hash covers only change-relevant fields; volatile fields such as
// fetch timestamps never participate, so a refetch of identical content
// hashes identically.
func ComputeContentHash(source SourceKind, externalID, content string) string {
	canonical, _ := json.Marshal(map[string]string{
		"source":      string(source),
		"external_id": externalID,
		"content":     content,
	})
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// AdmitDecision is the outcome of a dedup membership check.
type AdmitDecision int

const (
	// Admitted means no prior record exists; the caller proceeds to
	// persist and process.
	Admitted AdmitDecision = iota

	// DuplicateUnchanged means a prior record exists with an identical
	// content hash; processing is skipped entirely.
	DuplicateUnchanged

	// DuplicateChanged means a prior record exists with a different
	// content hash; the signal is reprocessed as a new version.
	DuplicateChanged
)

// String returns the decision name for logs and CLI output.
func (d AdmitDecision) String() string {
	switch d {
	case Admitted:
		return "admitted"
	case DuplicateUnchanged:
		return "duplicate_unchanged"
	case DuplicateChanged:
		return "duplicate_changed"
	default:
		return "unknown"
	}
}
