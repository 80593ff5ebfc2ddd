package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/goliatone/go-session/auth"
	"github.com/goliatone/go-session/core"
	"github.com/goliatone/go-session/transport"
)

// fakeBackend emulates a djoser style account API plus the catalog and
// booking resources.
type fakeBackend struct {
	mu            sync.Mutex
	validAccess   string
	refreshCalls  atomic.Int32
	requests      map[string]int
	bookings      []map[string]any
	accountActive bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		validAccess: "a2",
		requests:    map[string]int{},
		bookings: []map[string]any{
			{"id": 10, "service": 1, "date": "2026-07-01", "status": "confirmed"},
		},
		accountActive: true,
	}
}

func (b *fakeBackend) count(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[key]
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.requests[r.Method+" "+r.URL.Path]++
	b.mu.Unlock()

	raw, _ := io.ReadAll(r.Body)
	body := map[string]any{}
	_ = json.Unmarshal(raw, &body)
	authorized := r.Header.Get("Authorization") == "Bearer "+b.validAccess

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/auth/jwt/create/":
		if body["password"] != "pw" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "No active account found with the given credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"access": "a1", "refresh": "r1"})
	case r.Method == http.MethodPost && r.URL.Path == "/auth/jwt/refresh/":
		b.refreshCalls.Add(1)
		if body["refresh"] != "r1" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Token is invalid or expired"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"access": b.validAccess})
	case r.Method == http.MethodPost && r.URL.Path == "/auth/users/":
		if body["email"] == "taken@example.com" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"email": []any{"user with this email already exists."}})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": 7, "email": body["email"], "username": body["username"]})
	case r.Method == http.MethodPost && r.URL.Path == "/auth/users/activation/":
		if body["token"] != "good" {
			writeJSON(w, http.StatusForbidden, map[string]any{"detail": "Stale token for given user."})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodPost && r.URL.Path == "/auth/users/reset_password/":
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodPost && r.URL.Path == "/auth/users/reset_password_confirm/":
		if body["new_password"] != body["re_new_password"] {
			writeJSON(w, http.StatusBadRequest, map[string]any{"non_field_errors": []any{"mismatch"}})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case r.URL.Path == "/auth/users/me/":
		if !authorized {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Given token not valid for any token type"})
			return
		}
		if r.Method == http.MethodDelete {
			if body["current_password"] != "pw" {
				writeJSON(w, http.StatusBadRequest, map[string]any{"current_password": []any{"Invalid password."}})
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": 7, "email": "ana@example.com", "username": "ana", "first_name": "Ana"})
	case r.Method == http.MethodGet && r.URL.Path == "/api/services/":
		writeJSON(w, http.StatusOK, []any{
			map[string]any{"id": 1, "name": "Haircut", "price": "20.00", "image": "blob:local", "images": []any{"https://cdn.example.com/cut.jpg"}},
			map[string]any{"id": 2, "name": "Massage", "price": "45.50"},
		})
	case r.Method == http.MethodGet && r.URL.Path == "/api/services/1/":
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "name": "Haircut", "description": "Classic cut", "logo_url": "https://cdn.example.com/logo.png"})
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/services/"):
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
	case r.Method == http.MethodGet && r.URL.Path == "/api/service-content/":
		if r.URL.Query().Get("service") != "1" {
			writeJSON(w, http.StatusOK, map[string]any{"results": []any{}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"count": 2, "results": []any{
			map[string]any{"id": 100, "title": "Intro", "store": map[string]any{"branding": map[string]any{"logo_url": []any{"a.png"}}}},
			map[string]any{"id": 101, "title": "Draft", "image": "blob:abc"},
		}})
	case r.URL.Path == "/api/bookings/":
		if !authorized {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Given token not valid for any token type"})
			return
		}
		if r.Method == http.MethodPost {
			if body["date"] == "2020-01-01" {
				writeJSON(w, http.StatusBadRequest, map[string]any{"date": []any{"Date is in the past."}})
				return
			}
			created := map[string]any{"id": 11, "service": body["service"], "date": body["date"], "status": "pending", "notes": body["notes"]}
			b.mu.Lock()
			b.bookings = append(b.bookings, created)
			b.mu.Unlock()
			writeJSON(w, http.StatusCreated, created)
			return
		}
		b.mu.Lock()
		list := append([]map[string]any(nil), b.bookings...)
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, list)
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type testEnv struct {
	backend *fakeBackend
	server  *httptest.Server
	session *core.Service
	store   *core.MemoryCredentialStore
	client  *Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := newFakeBackend()
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	cfg := core.DefaultConfig()
	cfg.BaseURL = server.URL
	rest := transport.NewRESTAdapterFromConfig(cfg, server.Client())
	strategy := auth.NewJWTStrategyFromConfig(cfg, rest)
	store := core.NewMemoryCredentialStore()

	session, err := core.NewService(cfg,
		core.WithTransport(rest),
		core.WithTokenIssuer(strategy),
		core.WithTokenRefresher(strategy),
		core.WithCredentialStore(store),
	)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	client, err := NewClient(session, rest)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return &testEnv{backend: backend, server: server, session: session, store: store, client: client}
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	if _, err := e.session.Login(context.Background(), core.LoginRequest{Email: "ana@example.com", Password: "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}
}
