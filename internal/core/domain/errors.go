package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedPayload indicates an adapter payload is missing required
	// fields. Non-retryable; the item is rejected at the normalisation
	// boundary before it enters the pipeline.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrUnsupportedSource indicates no normaliser is registered for a
	// signal source.
	ErrUnsupportedSource = errors.New("unsupported source")

	// ErrDedupUnavailable indicates the dedup store could not be reached.
	// Retryable by the caller with backoff; no partial signal is written.
	ErrDedupUnavailable = errors.New("dedup store unavailable")

	// ErrPersistenceUnavailable indicates the persistence gateway could not
	// be reached. Retryable by the caller with backoff.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")

	// ErrToolUnavailable indicates every configured tool transport failed
	// for a call. Fatal for required lookups, non-fatal for enrichments.
	ErrToolUnavailable = errors.New("tool unavailable")

	// ErrStageFailed indicates a pipeline stage failed terminally.
	// The run halts and no partial intelligence is written.
	ErrStageFailed = errors.New("pipeline stage failed")

	// ErrInconsistentOutput indicates the critic found a contradiction in
	// the analyst output. Resolved by at most one re-score per run.
	ErrInconsistentOutput = errors.New("inconsistent output")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Semantic recommendation degrades to metadata ranking.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrRateLimited indicates an upstream API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
