package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// readJWTClaims decodes the claims segment of a compact JWT without verifying
// the signature. Only the issuer can verify; the client reads timing claims.
func readJWTClaims(token string) (map[string]any, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("auth: token is not a compact jwt")
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return nil, fmt.Errorf("auth: decode jwt claims: %w", err)
	}
	claims := map[string]any{}
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, fmt.Errorf("auth: unmarshal jwt claims: %w", err)
	}
	return claims, nil
}

func readUnixClaim(claims map[string]any, key string) (time.Time, bool) {
	switch typed := claims[key].(type) {
	case float64:
		if typed <= 0 {
			return time.Time{}, false
		}
		return time.Unix(int64(typed), 0).UTC(), true
	case json.Number:
		value, err := typed.Int64()
		if err != nil || value <= 0 {
			return time.Time{}, false
		}
		return time.Unix(value, 0).UTC(), true
	default:
		return time.Time{}, false
	}
}

// TokenExpiry reports the "exp" claim of a JWT access token.
func TokenExpiry(token string) (time.Time, bool) {
	claims, err := readJWTClaims(token)
	if err != nil {
		return time.Time{}, false
	}
	return readUnixClaim(claims, "exp")
}

func tokenIssuedAt(token string) (time.Time, bool) {
	claims, err := readJWTClaims(token)
	if err != nil {
		return time.Time{}, false
	}
	return readUnixClaim(claims, "iat")
}
