package core

import (
	"testing"
	"time"
)

func TestJSONCredentialCodecRoundTrip(t *testing.T) {
	codec := JSONCredentialCodec{}
	issuedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	encoded, err := codec.Encode(Credential{AccessToken: "a1", RefreshToken: "r1", TokenType: "Bearer", IssuedAt: &issuedAt})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := codec.Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.AccessToken != "a1" || decoded.RefreshToken != "r1" || decoded.TokenType != "Bearer" {
		t.Fatalf("unexpected decoded credential %#v", decoded)
	}
	if decoded.IssuedAt == nil || !decoded.IssuedAt.Equal(issuedAt) {
		t.Fatalf("expected issued_at to survive, got %v", decoded.IssuedAt)
	}
	if codec.Format() != CredentialPayloadFormatJSONV1 || codec.Version() != CredentialPayloadVersionV1 {
		t.Fatalf("unexpected codec identity %s/%d", codec.Format(), codec.Version())
	}
}

func TestJSONCredentialCodecRejectsInvalidPayloads(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{name: "empty", payload: ""},
		{name: "malformed", payload: `{"v":1,`},
		{name: "wrong version", payload: `{"v":2,"access":"a1"}`},
		{name: "missing access", payload: `{"v":1,"refresh":"r1"}`},
	}
	codec := JSONCredentialCodec{}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := codec.Decode([]byte(tc.payload)); err == nil {
				t.Fatalf("expected decode error")
			}
		})
	}
	if _, err := codec.Encode(Credential{RefreshToken: "r1"}); err == nil {
		t.Fatalf("expected encode error without access token")
	}
}
