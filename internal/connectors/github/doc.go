// Package github discovers recently active repositories as raw signals.
// Discovery runs a configurable repository search and optionally fetches
// each repository's README for richer downstream summaries.
package github
