package core

import (
	"context"
	"net/http"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

const (
	DefaultAuthScheme     = "Bearer"
	HeaderAuthorization   = "Authorization"
	HeaderRequestID       = "X-Request-ID"
	HeaderContentType     = "Content-Type"
	ContentTypeJSON       = "application/json"
	DefaultFallbackImage  = "/camera-431119_1280.jpg"
	DefaultBlobURLPrefix  = "blob:"
	defaultStoreNamespace = "default"
)

// Credential is the client-held token pair. The access token is short lived,
// the refresh token outlives it.
type Credential struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	IssuedAt     *time.Time
}

func (c Credential) IsZero() bool {
	return strings.TrimSpace(c.AccessToken) == "" && strings.TrimSpace(c.RefreshToken) == ""
}

// WithAccessToken returns a copy holding the replacement access token. The
// refresh token is kept.
func (c Credential) WithAccessToken(token string, issuedAt time.Time) Credential {
	next := c
	next.AccessToken = strings.TrimSpace(token)
	if !issuedAt.IsZero() {
		ts := issuedAt.UTC()
		next.IssuedAt = &ts
	}
	return next
}

type LoginRequest struct {
	Email    string
	Username string
	Password string
	Metadata map[string]any
}

// RequestDescriptor describes one outbound call. Executors derive copies and
// never mutate the caller's value.
type RequestDescriptor struct {
	Method  string
	URL     string
	Headers map[string]string
	Query   map[string]string
	Body    []byte
	Timeout time.Duration
}

// Clone returns a deep copy so header edits never leak back to the caller.
func (d RequestDescriptor) Clone() RequestDescriptor {
	out := d
	out.Headers = copyStringMap(d.Headers)
	out.Query = copyStringMap(d.Query)
	if d.Body != nil {
		out.Body = append([]byte(nil), d.Body...)
	}
	return out
}

// WithHeader returns a copy with key set to value.
func (d RequestDescriptor) WithHeader(key, value string) RequestDescriptor {
	out := d.Clone()
	if out.Headers == nil {
		out.Headers = map[string]string{}
	}
	key = http.CanonicalHeaderKey(strings.TrimSpace(key))
	for existing := range out.Headers {
		if strings.EqualFold(existing, key) {
			delete(out.Headers, existing)
		}
	}
	out.Headers[key] = value
	return out
}

func (d RequestDescriptor) Header(key string) string {
	for existing, value := range d.Headers {
		if strings.EqualFold(existing, key) {
			return value
		}
	}
	return ""
}

type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

func (r Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// CredentialStore persists the current credential pair. Load reports absent
// instead of failing when the stored value is missing or unreadable.
type CredentialStore interface {
	Save(ctx context.Context, credential Credential) error
	Load(ctx context.Context) (Credential, bool)
	Clear(ctx context.Context) error
}

// TokenRefresher exchanges a refresh token for a new access token with a
// single network call.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// TokenIssuer obtains a fresh credential pair from user credentials.
type TokenIssuer interface {
	Obtain(ctx context.Context, req LoginRequest) (Credential, error)
}

type Transport interface {
	Do(ctx context.Context, req RequestDescriptor) (Response, error)
}

type Signer interface {
	Sign(req RequestDescriptor, credential Credential) (RequestDescriptor, error)
}

type SecretProvider interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

func copyStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func copyAnyMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
