package core

import (
	"errors"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestSessionErrorConstructors(t *testing.T) {
	cases := []struct {
		name     string
		err      *goerrors.Error
		category goerrors.Category
		code     int
		textCode string
	}{
		{name: "unauthenticated", err: NewUnauthenticatedError("", nil), category: goerrors.CategoryAuth, code: http.StatusUnauthorized, textCode: ErrorUnauthenticated},
		{name: "network", err: NewNetworkError(errors.New("dial tcp"), "", nil), category: goerrors.CategoryExternal, code: http.StatusBadGateway, textCode: ErrorNetwork},
		{name: "refresh failed", err: NewRefreshFailedError(nil, "", nil), category: goerrors.CategoryAuth, code: http.StatusUnauthorized, textCode: ErrorRefreshFailed},
		{name: "bad input", err: NewBadInputError("missing", map[string]any{"field": "email"}), category: goerrors.CategoryBadInput, code: http.StatusBadRequest, textCode: ErrorBadInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Category != tc.category {
				t.Fatalf("expected category %s, got %s", tc.category, tc.err.Category)
			}
			if tc.err.Code != tc.code {
				t.Fatalf("expected code %d, got %d", tc.code, tc.err.Code)
			}
			if tc.err.TextCode != tc.textCode {
				t.Fatalf("expected text code %s, got %s", tc.textCode, tc.err.TextCode)
			}
			if tc.err.Message == "" {
				t.Fatalf("expected default message")
			}
		})
	}
}

func TestSessionErrorPredicates(t *testing.T) {
	network := NewNetworkError(errors.New("reset"), "", nil)
	if !IsNetworkError(network) || IsUnauthenticated(network) {
		t.Fatalf("unexpected predicate results for network error")
	}
	wrapped := errors.Join(errors.New("context"), NewUnauthenticatedError("", nil))
	if !IsUnauthenticated(wrapped) {
		t.Fatalf("expected joined unauthenticated error to match")
	}
	invalid := newSessionError("bad password", goerrors.CategoryAuth, http.StatusUnauthorized, ErrorInvalidCredentials, nil)
	if !IsUnauthenticated(invalid) {
		t.Fatalf("expected invalid credentials to count as unauthenticated")
	}
	if IsRefreshFailed(errors.New("plain")) || IsNetworkError(nil) {
		t.Fatalf("plain errors must not match session predicates")
	}
}

func TestSessionErrorMapper(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		textCode string
		code     int
	}{
		{name: "rich error kept", err: NewNetworkError(errors.New("x"), "", nil), textCode: ErrorNetwork, code: http.StatusBadGateway},
		{name: "unauthenticated message", err: errors.New("user is not authenticated"), textCode: ErrorUnauthenticated, code: http.StatusUnauthorized},
		{name: "required message", err: errors.New("email is required"), textCode: ErrorBadInput, code: http.StatusBadRequest},
		{name: "bare category", err: goerrors.New("gone", goerrors.CategoryNotFound), textCode: ErrorNotFound, code: http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := sessionErrorMapper(tc.err)
			if mapped == nil {
				t.Fatalf("expected mapped error")
			}
			if mapped.TextCode != tc.textCode || mapped.Code != tc.code {
				t.Fatalf("expected %s/%d, got %s/%d", tc.textCode, tc.code, mapped.TextCode, mapped.Code)
			}
		})
	}
	if sessionErrorMapper(nil) != nil {
		t.Fatalf("expected nil for nil input")
	}
}

func TestWrappedSessionErrorTakesWrapperCategory(t *testing.T) {
	network := NewNetworkError(errors.New("dial tcp: connection refused"), "", nil)
	refresh := NewRefreshFailedError(network, "core: refresh failed", nil)
	if refresh.Category != goerrors.CategoryAuth || refresh.Code != http.StatusUnauthorized || refresh.TextCode != ErrorRefreshFailed {
		t.Fatalf("unexpected refresh envelope %q %d %q", refresh.Category, refresh.Code, refresh.TextCode)
	}
	if network.Category != goerrors.CategoryExternal {
		t.Fatalf("expected source envelope untouched, got %q", network.Category)
	}
}
