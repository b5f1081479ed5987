// Package llm hosts provider adapters implementing driven.LLMService and
// the response handling they share.
package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSON unmarshals a model completion expected to contain a single
// raw JSON object. Markdown code fences are stripped first; some models
// wrap JSON in fenced blocks despite instructions not to.
func DecodeJSON(raw string, out any) error {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	// Tolerate prose around the object
	if start := strings.Index(text, "{"); start > 0 {
		text = text[start:]
	}
	if end := strings.LastIndex(text, "}"); end >= 0 && end < len(text)-1 {
		text = text[:end+1]
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("decode model JSON: %w", err)
	}
	return nil
}
