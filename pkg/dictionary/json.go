package dictionary

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// ParseJSON reads a dictionary stored either as an object wrapper
// {"words": [{"word": ..., "definition": ...}]} or as a bare array of entries.
func ParseJSON(data []byte) (Dictionary, error) {
	var wrapped struct {
		Words []Entry `json:"words"`
	}
	// Try parsing as full object wrapper first
	if err := json.Unmarshal(data, &wrapped); err == nil {
		return NewMemory(wrapped.Words), nil
	}

	var entries []Entry
	if err := json.Unmarshal(bytes.TrimSpace(data), &entries); err != nil {
		return nil, fmt.Errorf("parse dictionary as object or array: %w", err)
	}
	return NewMemory(entries), nil
}
