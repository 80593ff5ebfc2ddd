package core

import (
	"net/http"
	"strings"
)

const RedactedValue = "[REDACTED]"

// secretFields are the body and header names the session flows carry
// credentials in. Keys are compared after lowercasing with "-" folded to "_".
var secretFields = map[string]struct{}{
	"access":           {},
	"refresh":          {},
	"token":            {},
	"password":         {},
	"re_password":      {},
	"new_password":     {},
	"current_password": {},
	"authorization":    {},
	"cookie":           {},
	"set_cookie":       {},
}

var secretSuffixes = []string{"_token", "_password", "_secret", "_key", "apikey"}

// RedactSensitiveMap returns a copy of metadata with credential fields and
// bearer values replaced by RedactedValue. Nested maps and lists are copied.
func RedactSensitiveMap(metadata map[string]any) map[string]any {
	out := make(map[string]any, len(metadata))
	for key, value := range metadata {
		if isSecretField(key) {
			out[key] = RedactedValue
			continue
		}
		out[key] = redactValue(value)
	}
	return out
}

func redactValue(value any) any {
	switch typed := value.(type) {
	case string:
		if isBearerValue(typed) {
			return RedactedValue
		}
		return typed
	case map[string]any:
		return RedactSensitiveMap(typed)
	case map[string]string:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = item
		}
		return RedactSensitiveMap(out)
	case http.Header:
		out := make(map[string]any, len(typed))
		for key, items := range typed {
			out[key] = strings.Join(items, ", ")
		}
		return RedactSensitiveMap(out)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = redactValue(item)
		}
		return out
	default:
		return value
	}
}

func isSecretField(key string) bool {
	key = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
	if key == "" {
		return false
	}
	if _, ok := secretFields[key]; ok {
		return true
	}
	for _, suffix := range secretSuffixes {
		if strings.HasSuffix(key, suffix) {
			return true
		}
	}
	return false
}

// isBearerValue matches "<scheme> <token>" for the schemes the signer emits.
func isBearerValue(value string) bool {
	scheme, token, ok := strings.Cut(strings.TrimSpace(value), " ")
	if !ok || strings.TrimSpace(token) == "" {
		return false
	}
	return strings.EqualFold(scheme, DefaultAuthScheme) || strings.EqualFold(scheme, "JWT")
}
