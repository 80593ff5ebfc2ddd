package core

import "testing"

func TestRedactSensitiveMapPreservesTraceabilityMetadata(t *testing.T) {
	redacted := RedactSensitiveMap(map[string]any{
		"trace_id":      "trace_1",
		"request_id":    "req_1",
		"refreshed":     true,
		"access_token":  "secret-token",
		"authorization": "Bearer secret-token",
		"password":      "hunter2",
		"nested":        map[string]any{"refresh_token": "refresh", "trace_id": "trace_nested"},
		"events":        []any{map[string]any{"api_key": "key_1"}, map[string]any{"url": "https://api.example.com"}},
	})

	if redacted["trace_id"] != "trace_1" {
		t.Fatalf("expected trace_id to remain visible, got %#v", redacted["trace_id"])
	}
	if redacted["refreshed"] != true {
		t.Fatalf("expected refreshed flag to remain visible, got %#v", redacted["refreshed"])
	}
	for _, key := range []string{"access_token", "authorization", "password"} {
		if redacted[key] != RedactedValue {
			t.Fatalf("expected %s to be redacted, got %#v", key, redacted[key])
		}
	}
	nested, ok := redacted["nested"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested redacted map")
	}
	if nested["refresh_token"] != RedactedValue {
		t.Fatalf("expected nested refresh_token to be redacted, got %#v", nested["refresh_token"])
	}
	if nested["trace_id"] != "trace_nested" {
		t.Fatalf("expected nested trace_id to remain visible, got %#v", nested["trace_id"])
	}
	events, ok := redacted["events"].([]any)
	if !ok || len(events) != 2 {
		t.Fatalf("expected redacted events slice, got %#v", redacted["events"])
	}
	if first := events[0].(map[string]any); first["api_key"] != RedactedValue {
		t.Fatalf("expected api_key to be redacted, got %#v", first["api_key"])
	}
	if second := events[1].(map[string]any); second["url"] != "https://api.example.com" {
		t.Fatalf("expected url to remain visible, got %#v", second["url"])
	}
}

func TestRedactSensitiveMapEmptyInput(t *testing.T) {
	if got := RedactSensitiveMap(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty map, got %#v", got)
	}
}

func TestRedactSensitiveMapMasksBearerValuesAndHeaders(t *testing.T) {
	redacted := RedactSensitiveMap(map[string]any{
		"detail":  "Bearer a1",
		"reason":  "refresh_failed",
		"headers": map[string]string{"X-Api-Key": "k1", "Accept": "application/json"},
		"body":    map[string]any{"email": "ana@example.com", "re_password": "pw", "refresh": "r1"},
	})

	if redacted["detail"] != RedactedValue {
		t.Fatalf("expected bearer value to be redacted, got %#v", redacted["detail"])
	}
	if redacted["reason"] != "refresh_failed" {
		t.Fatalf("expected reason to remain visible, got %#v", redacted["reason"])
	}
	headers, ok := redacted["headers"].(map[string]any)
	if !ok {
		t.Fatalf("expected headers to be copied into a map, got %#v", redacted["headers"])
	}
	if headers["X-Api-Key"] != RedactedValue || headers["Accept"] != "application/json" {
		t.Fatalf("unexpected header redaction: %#v", headers)
	}
	body := redacted["body"].(map[string]any)
	if body["email"] != "ana@example.com" || body["re_password"] != RedactedValue || body["refresh"] != RedactedValue {
		t.Fatalf("unexpected body redaction: %#v", body)
	}
}
