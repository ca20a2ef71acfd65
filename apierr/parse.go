package apierr

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Parse builds an *APIError from a non-2xx response.
//
// slurp is the (already size-limited) body and status the HTTP status.
// When the body is JSON it becomes Payload, and a top-level "message" string
// becomes Message verbatim (blank included). Otherwise Message is fallback (the transport-style
// description of the failed exchange), or the status text when fallback is
// empty. The Kind is computed by c from (status, Message); nil c means
// DefaultClassifier.
func Parse(slurp []byte, status int, fallback string, c Classifier) *APIError {
	trimmed := strings.TrimSpace(string(slurp))
	fallback = coalesce(strings.TrimSpace(fallback), http.StatusText(status))

	payload, ok := decodeJSON(trimmed)
	if !ok {
		e := New(status, fallback, nil, c)
		e.Raw = trimmed
		return e
	}

	obj, _ := payload.(map[string]any)
	msg, ok := messageOf(obj)
	if !ok {
		msg = fallback
	}
	reason, _ := getString(obj, "error")

	e := New(status, msg, payload, c)
	e.Reason = reason
	e.Raw = trimmed
	return e
}

func decodeJSON(trimmed string) (any, bool) {
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return nil, false
	}
	return v, true
}

// messageOf extracts "message". A string is returned exactly as sent, even
// when empty. Validation failures sometimes carry a list of strings there;
// those are joined.
func messageOf(obj map[string]any) (string, bool) {
	if s, ok := getString(obj, "message"); ok {
		return s, true
	}
	list, ok := obj["message"].([]any)
	if !ok {
		return "", false
	}
	parts := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			parts = append(parts, strings.TrimSpace(s))
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "; "), true
}

func coalesce(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

func getString(m map[string]any, key string) (string, bool) {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}
