package security

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-session/core"
)

// EnvelopePrefix marks payloads sealed by AppKeySecretProvider.
const EnvelopePrefix = "session.secret.v1:"

const algorithmAES256GCM = "aes-256-gcm"

type Option func(*AppKeySecretProvider)

// AppKeySecretProvider seals stored credential payloads with AES-256-GCM
// under a single application key. The key id and version are bound to the
// ciphertext as additional data.
type AppKeySecretProvider struct {
	aead    cipher.AEAD
	keyID   string
	version int
	random  io.Reader
}

type sealedEnvelope struct {
	KeyID      string `json:"kid"`
	Version    int    `json:"ver"`
	Algorithm  string `json:"alg"`
	Nonce      string `json:"n"`
	Ciphertext string `json:"ct"`
}

func WithKeyID(id string) Option {
	return func(provider *AppKeySecretProvider) {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			provider.keyID = trimmed
		}
	}
}

func WithVersion(version int) Option {
	return func(provider *AppKeySecretProvider) {
		if version > 0 {
			provider.version = version
		}
	}
}

// WithRandom replaces the nonce source.
func WithRandom(random io.Reader) Option {
	return func(provider *AppKeySecretProvider) {
		if random != nil {
			provider.random = random
		}
	}
}

// NewAppKeySecretProvider derives a 256-bit key from keyMaterial. Material
// that is already 32 bytes long is used as is.
func NewAppKeySecretProvider(keyMaterial []byte, opts ...Option) (*AppKeySecretProvider, error) {
	material := []byte(strings.TrimSpace(string(keyMaterial)))
	if len(material) == 0 {
		return nil, securityError("security: key material is required", nil)
	}
	key := material
	if len(key) != 32 {
		sum := sha256.Sum256(material)
		key = sum[:]
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, securityError("security: create cipher", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, securityError("security: create gcm", err)
	}

	provider := &AppKeySecretProvider{
		aead:    aead,
		keyID:   "app-key",
		version: 1,
		random:  rand.Reader,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(provider)
	}
	return provider, nil
}

func NewAppKeySecretProviderFromString(key string, opts ...Option) (*AppKeySecretProvider, error) {
	return NewAppKeySecretProvider([]byte(key), opts...)
}

func (p *AppKeySecretProvider) Encrypt(_ context.Context, plaintext []byte) ([]byte, error) {
	if p == nil || p.aead == nil {
		return nil, securityError("security: secret provider is not configured", nil)
	}
	if len(plaintext) == 0 {
		return nil, securityError("security: plaintext is required", nil)
	}

	nonce := make([]byte, p.aead.NonceSize())
	if _, err := io.ReadFull(p.random, nonce); err != nil {
		return nil, securityError("security: generate nonce", err)
	}
	sealed := p.aead.Seal(nil, nonce, plaintext, additionalData(p.keyID, p.version))

	data, err := json.Marshal(sealedEnvelope{
		KeyID:      p.keyID,
		Version:    p.version,
		Algorithm:  algorithmAES256GCM,
		Nonce:      base64.RawStdEncoding.EncodeToString(nonce),
		Ciphertext: base64.RawStdEncoding.EncodeToString(sealed),
	})
	if err != nil {
		return nil, securityError("security: encode envelope", err)
	}
	return append([]byte(EnvelopePrefix), data...), nil
}

// Decrypt opens a payload produced by Encrypt. Unprefixed payloads and
// envelopes issued under another key id or version are rejected.
func (p *AppKeySecretProvider) Decrypt(_ context.Context, ciphertext []byte) ([]byte, error) {
	if p == nil || p.aead == nil {
		return nil, securityError("security: secret provider is not configured", nil)
	}
	raw, ok := strings.CutPrefix(string(ciphertext), EnvelopePrefix)
	if !ok {
		return nil, securityError("security: payload is not a sealed envelope", nil)
	}

	var parsed sealedEnvelope
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, securityError("security: decode envelope", err)
	}
	if parsed.Algorithm != algorithmAES256GCM {
		return nil, securityError(fmt.Sprintf("security: unsupported algorithm %q", parsed.Algorithm), nil)
	}
	if parsed.KeyID != p.keyID || parsed.Version != p.version {
		return nil, securityError(fmt.Sprintf(
			"security: envelope key %s/%d does not match %s/%d",
			parsed.KeyID, parsed.Version, p.keyID, p.version,
		), nil)
	}

	nonce, err := base64.RawStdEncoding.DecodeString(parsed.Nonce)
	if err != nil || len(nonce) != p.aead.NonceSize() {
		return nil, securityError("security: invalid nonce", err)
	}
	sealed, err := base64.RawStdEncoding.DecodeString(parsed.Ciphertext)
	if err != nil {
		return nil, securityError("security: decode ciphertext", err)
	}
	plaintext, err := p.aead.Open(nil, nonce, sealed, additionalData(parsed.KeyID, parsed.Version))
	if err != nil {
		return nil, securityError("security: open envelope", err)
	}
	return plaintext, nil
}

func (p *AppKeySecretProvider) KeyID() string {
	if p == nil {
		return ""
	}
	return p.keyID
}

func (p *AppKeySecretProvider) Version() int {
	if p == nil {
		return 0
	}
	return p.version
}

func additionalData(keyID string, version int) []byte {
	return []byte(EnvelopePrefix + keyID + "/" + strconv.Itoa(version))
}

func securityError(message string, source error) error {
	if source != nil {
		return goerrors.Wrap(source, goerrors.CategoryInternal, message).
			WithTextCode(core.ErrorInternal)
	}
	return goerrors.New(message, goerrors.CategoryInternal).
		WithTextCode(core.ErrorInternal)
}

var _ core.SecretProvider = (*AppKeySecretProvider)(nil)
