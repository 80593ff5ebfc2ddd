package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	CredentialPayloadFormatJSONV1 = "session_credential_json"
	CredentialPayloadVersionV1    = 1
)

// CredentialCodec turns a credential into a single string-valued payload so
// key-value backends can store the whole pair with one write.
type CredentialCodec interface {
	Format() string
	Version() int
	Encode(credential Credential) ([]byte, error)
	Decode(payload []byte) (Credential, error)
}

type JSONCredentialCodec struct{}

func (JSONCredentialCodec) Format() string {
	return CredentialPayloadFormatJSONV1
}

func (JSONCredentialCodec) Version() int {
	return CredentialPayloadVersionV1
}

type jsonCredentialPayload struct {
	Version      int        `json:"v"`
	AccessToken  string     `json:"access"`
	RefreshToken string     `json:"refresh,omitempty"`
	TokenType    string     `json:"token_type,omitempty"`
	IssuedAt     *time.Time `json:"issued_at,omitempty"`
}

func (JSONCredentialCodec) Encode(credential Credential) ([]byte, error) {
	credential = normalizeCredential(credential)
	if credential.AccessToken == "" {
		return nil, fmt.Errorf("core: credential payload requires an access token")
	}
	encoded, err := json.Marshal(jsonCredentialPayload{
		Version:      CredentialPayloadVersionV1,
		AccessToken:  credential.AccessToken,
		RefreshToken: credential.RefreshToken,
		TokenType:    credential.TokenType,
		IssuedAt:     credential.IssuedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("core: encode credential payload: %w", err)
	}
	return encoded, nil
}

func (JSONCredentialCodec) Decode(payload []byte) (Credential, error) {
	if len(payload) == 0 {
		return Credential{}, fmt.Errorf("core: credential payload is empty")
	}
	decoded := jsonCredentialPayload{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return Credential{}, fmt.Errorf("core: decode credential payload: %w", err)
	}
	if decoded.Version != CredentialPayloadVersionV1 {
		return Credential{}, fmt.Errorf("core: unsupported credential payload version %d", decoded.Version)
	}
	if strings.TrimSpace(decoded.AccessToken) == "" {
		return Credential{}, fmt.Errorf("core: credential payload is missing the access token")
	}
	return normalizeCredential(Credential{
		AccessToken:  decoded.AccessToken,
		RefreshToken: decoded.RefreshToken,
		TokenType:    decoded.TokenType,
		IssuedAt:     decoded.IssuedAt,
	}), nil
}

func cloneTimePointer(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := value.UTC()
	return &clone
}
