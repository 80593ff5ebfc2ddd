package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-session/core"
)

const KindJWT = "jwt"

var tokenEnvelopes = []string{"data", "tokens"}

type JWTStrategyConfig struct {
	Transport  core.Transport
	LoginURL   string
	RefreshURL string
	Timeout    time.Duration
	Now        func() time.Time
}

// JWTStrategy obtains and refreshes token pairs from a JWT token endpoint
// (djoser style "access"/"refresh" bodies, OAuth style keys accepted too).
type JWTStrategy struct {
	config JWTStrategyConfig
}

func NewJWTStrategy(cfg JWTStrategyConfig) *JWTStrategy {
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &JWTStrategy{
		config: JWTStrategyConfig{
			Transport:  cfg.Transport,
			LoginURL:   strings.TrimSpace(cfg.LoginURL),
			RefreshURL: strings.TrimSpace(cfg.RefreshURL),
			Timeout:    cfg.Timeout,
			Now:        now,
		},
	}
}

// NewJWTStrategyFromConfig resolves the login and refresh endpoints against
// the configured base url.
func NewJWTStrategyFromConfig(cfg core.Config, transport core.Transport) *JWTStrategy {
	return NewJWTStrategy(JWTStrategyConfig{
		Transport:  transport,
		LoginURL:   cfg.ResolveURL(cfg.Endpoints.Login),
		RefreshURL: cfg.ResolveURL(cfg.Endpoints.Refresh),
		Timeout:    cfg.RequestTimeout,
	})
}

func (*JWTStrategy) Type() string {
	return KindJWT
}

func (s *JWTStrategy) Obtain(ctx context.Context, req core.LoginRequest) (core.Credential, error) {
	if s == nil || s.config.Transport == nil {
		return core.Credential{}, core.NewInternalError("auth: jwt strategy requires a transport", nil)
	}
	if s.config.LoginURL == "" {
		return core.Credential{}, core.NewInternalError("auth: jwt login url is required", nil)
	}

	payload := cloneMetadata(req.Metadata)
	if email := strings.TrimSpace(req.Email); email != "" {
		payload["email"] = email
	}
	if username := strings.TrimSpace(req.Username); username != "" {
		payload["username"] = username
	}
	payload["password"] = req.Password

	res, err := s.post(ctx, s.config.LoginURL, payload)
	if err != nil {
		return core.Credential{}, err
	}
	body := decodeObject(res.Body)
	if !res.Success() {
		metadata := map[string]any{"status_code": res.StatusCode}
		if detail := detailMessage(body); detail != "" {
			metadata["detail"] = detail
		}
		if res.StatusCode >= http.StatusInternalServerError {
			return core.Credential{}, core.NewOperationFailedError("auth: login endpoint failed", res.StatusCode, metadata)
		}
		return core.Credential{}, core.NewInvalidCredentialsError("auth: login rejected", metadata)
	}

	access := readNestedString(body, tokenEnvelopes, "access", "access_token", "token")
	refresh := readNestedString(body, tokenEnvelopes, "refresh", "refresh_token")
	if access == "" || refresh == "" {
		return core.Credential{}, core.NewInvalidCredentialsError("auth: login response is missing tokens", map[string]any{
			"status_code": res.StatusCode,
		})
	}

	issuedAt, ok := tokenIssuedAt(access)
	if !ok {
		issuedAt = s.config.Now()
	}
	tokenType := readNestedString(body, tokenEnvelopes, "token_type")
	return core.Credential{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    tokenType,
		IssuedAt:     &issuedAt,
	}, nil
}

// Refresh makes exactly one call to the refresh endpoint. Every failure,
// including transport failures, is reported as RefreshFailed.
func (s *JWTStrategy) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if s == nil || s.config.Transport == nil {
		return "", core.NewRefreshFailedError(nil, "auth: jwt strategy requires a transport", nil)
	}
	if s.config.RefreshURL == "" {
		return "", core.NewRefreshFailedError(nil, "auth: jwt refresh url is required", nil)
	}
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return "", core.NewRefreshFailedError(nil, "auth: refresh token is required", nil)
	}

	res, err := s.post(ctx, s.config.RefreshURL, map[string]any{"refresh": refreshToken})
	if err != nil {
		return "", core.NewRefreshFailedError(err, "", nil)
	}
	body := decodeObject(res.Body)
	if !res.Success() {
		metadata := map[string]any{"status_code": res.StatusCode}
		if detail := detailMessage(body); detail != "" {
			metadata["detail"] = detail
		}
		return "", core.NewRefreshFailedError(nil, "auth: refresh rejected", metadata)
	}
	access := readNestedString(body, tokenEnvelopes, "access", "access_token", "token")
	if access == "" {
		return "", core.NewRefreshFailedError(nil, "auth: refresh response is missing the access token", nil)
	}
	return access, nil
}

func (s *JWTStrategy) post(ctx context.Context, url string, payload map[string]any) (core.Response, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return core.Response{}, core.NewBadInputError("auth: encode request body: "+err.Error(), nil)
	}
	return s.config.Transport.Do(ctx, core.RequestDescriptor{
		Method: http.MethodPost,
		URL:    url,
		Headers: map[string]string{
			core.HeaderContentType: core.ContentTypeJSON,
		},
		Body:    encoded,
		Timeout: s.config.Timeout,
	})
}

var (
	_ core.TokenIssuer    = (*JWTStrategy)(nil)
	_ core.TokenRefresher = (*JWTStrategy)(nil)
)
