package auth

import (
	"encoding/json"
	"fmt"
	"strings"
)

func readString(metadata map[string]any, keys ...string) string {
	for _, key := range keys {
		value, ok := metadata[key]
		if !ok || value == nil {
			continue
		}
		switch typed := value.(type) {
		case string:
			trimmed := strings.TrimSpace(typed)
			if trimmed != "" {
				return trimmed
			}
		case []byte:
			trimmed := strings.TrimSpace(string(typed))
			if trimmed != "" {
				return trimmed
			}
		case fmt.Stringer:
			trimmed := strings.TrimSpace(typed.String())
			if trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// readNestedString looks for keys at the top level first, then inside the
// given envelope objects.
func readNestedString(payload map[string]any, envelopes []string, keys ...string) string {
	if value := readString(payload, keys...); value != "" {
		return value
	}
	for _, envelope := range envelopes {
		nested, ok := payload[envelope].(map[string]any)
		if !ok {
			continue
		}
		if value := readString(nested, keys...); value != "" {
			return value
		}
	}
	return ""
}

func decodeObject(body []byte) map[string]any {
	if len(body) == 0 {
		return map[string]any{}
	}
	decoded := map[string]any{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return map[string]any{}
	}
	return decoded
}

// detailMessage extracts a server supplied reason ("detail", "message",
// "error") for error metadata.
func detailMessage(payload map[string]any) string {
	if value := readString(payload, "detail", "message", "error_description", "error"); value != "" {
		return value
	}
	if values, ok := payload["non_field_errors"].([]any); ok && len(values) > 0 {
		if text, ok := values[0].(string); ok {
			return strings.TrimSpace(text)
		}
	}
	return ""
}

func cloneMetadata(metadata map[string]any) map[string]any {
	if len(metadata) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(metadata))
	for key, value := range metadata {
		out[key] = value
	}
	return out
}
