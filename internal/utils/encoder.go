package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// EncodeJSONBody encodes body without HTML escaping (folder names may
// legitimately contain '<', '>' or '&').
func EncodeJSONBody(body any) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return &buf, nil
}

// DecodeResult turns a fully-read 2xx body into a result map.
//
//   - JSON object: returned as-is.
//   - JSON array: stored under "data".
//   - Anything else (empty, plain text, JSON scalar or null):
//     {"status": status, "message": <raw body>}.
func DecodeResult(body []byte, status int) map[string]any {
	trimmed := strings.TrimSpace(string(body))
	if trimmed != "" && (trimmed[0] == '{' || trimmed[0] == '[') {
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			switch t := v.(type) {
			case map[string]any:
				return t
			case []any:
				return map[string]any{"data": t}
			}
		}
	}
	return map[string]any{
		"status":  status,
		"message": string(body),
	}
}
