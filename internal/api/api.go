// Package api contains the typed resource clients. Each method issues
// exactly one HTTP request against a fixed path and performs no
// client-side validation; malformed payloads are forwarded as-is and
// server failures surface as errors from the transport.
package api

import (
	"encoding/json"
	"fmt"
)

func decode(raw json.RawMessage, out interface{}) error {
	if raw == nil {
		return fmt.Errorf("empty response")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
