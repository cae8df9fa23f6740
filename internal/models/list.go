package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ListMeta carries pagination info when the server answered with an
// envelope. A bare-array response has no meta.
type ListMeta struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// NormalizeList decodes a list response into out, which must be a
// pointer to a slice. The server answers with either a bare JSON array
// or a {results, count, next, previous} envelope depending on whether
// pagination is enabled for the viewset; anything else decodes to an
// empty list. Callers must not assume one shape.
func NormalizeList(raw json.RawMessage, out interface{}) (*ListMeta, error) {
	trimmed := bytes.TrimSpace(raw)

	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, out); err != nil {
			return nil, fmt.Errorf("parse list: %w", err)
		}
		return nil, nil
	}

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			ListMeta
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err == nil && envelope.Results != nil {
			if err := json.Unmarshal(envelope.Results, out); err != nil {
				return nil, fmt.Errorf("parse list results: %w", err)
			}
			return &envelope.ListMeta, nil
		}
	}

	// Unrecognized shape: empty list
	if err := json.Unmarshal([]byte("[]"), out); err != nil {
		return nil, fmt.Errorf("reset list: %w", err)
	}
	return nil, nil
}
