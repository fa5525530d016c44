package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/scorebook/internal/orchestrator"
)

// marshalSummary converts a run summary to JSON TEXT for storage.
// HTML escaping is disabled so file paths are stored as written.
func marshalSummary(s orchestrator.Summary) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalSummary parses JSON TEXT to a Summary.
func unmarshalSummary(data string) (orchestrator.Summary, error) {
	var s orchestrator.Summary
	if data == "" {
		return s, nil
	}
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return orchestrator.Summary{}, fmt.Errorf("unmarshal summary: %w", err)
	}
	return s, nil
}
