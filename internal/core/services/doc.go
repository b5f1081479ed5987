// Package services implements the core business logic: signal ingestion
// with idempotent deduplication, the three-stage agent pipeline, the
// resilient tool gateway and the recommendation engine.
package services
