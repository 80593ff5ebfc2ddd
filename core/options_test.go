package core

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type fixedConfigProvider struct {
	cfg Config
}

func (p *fixedConfigProvider) Load(context.Context, Config) (Config, error) {
	return p.cfg, nil
}

type fixedOptionsResolver struct {
	cfg Config
}

func (r *fixedOptionsResolver) Resolve(Config, Config, Config) (Config, error) {
	return r.cfg, nil
}

func TestNewService_DefaultDependencies(t *testing.T) {
	svc, err := NewService(Config{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	deps := svc.Dependencies()
	if deps.Logger == nil {
		t.Fatalf("expected default logger")
	}
	if deps.LoggerProvider == nil {
		t.Fatalf("expected default logger provider")
	}
	if deps.ErrorMapper == nil {
		t.Fatalf("expected default error mapper")
	}
	if deps.ConfigProvider == nil {
		t.Fatalf("expected default config provider")
	}
	if deps.OptionsResolver == nil {
		t.Fatalf("expected default options resolver")
	}
	if _, ok := deps.CredentialStore.(*MemoryCredentialStore); !ok {
		t.Fatalf("expected memory credential store by default, got %T", deps.CredentialStore)
	}
	if signer, ok := deps.Signer.(BearerTokenSigner); !ok || signer.Scheme != DefaultAuthScheme {
		t.Fatalf("expected bearer signer by default, got %#v", deps.Signer)
	}
	if deps.Normalizer == nil || deps.Normalizer.Fallback != DefaultFallbackImage {
		t.Fatalf("expected default normalizer")
	}
	cfg := svc.Config()
	if cfg.ClientName != "session" {
		t.Fatalf("expected default client_name=session, got %q", cfg.ClientName)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("expected default request timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.Endpoints.Refresh != "/auth/jwt/refresh/" {
		t.Fatalf("expected default refresh endpoint, got %q", cfg.Endpoints.Refresh)
	}
}

func TestNewService_WithXOverrides(t *testing.T) {
	customLogger := stubLogger{}
	customProvider := stubLoggerProvider{logger: customLogger}
	sentinel := errors.New("sentinel")
	customMapper := func(error) *goerrors.Error {
		return goerrors.Wrap(sentinel, goerrors.CategoryOperation, "mapped")
	}
	configProvider := &fixedConfigProvider{cfg: Config{ClientName: "from-provider"}}
	optionsResolver := &fixedOptionsResolver{cfg: Config{ClientName: "resolved", AuthScheme: "JWT"}}
	store := NewMemoryCredentialStore()
	issuer := &fakeIssuer{}
	refresher := &fakeRefresher{}
	transport := newScriptedTransport()
	normalizer := &ImageURLNormalizer{Fallback: "/custom.png"}

	svc, err := NewService(Config{ClientName: "runtime"},
		WithLogger(customLogger),
		WithLoggerProvider(customProvider),
		WithErrorMapper(customMapper),
		WithConfigProvider(configProvider),
		WithOptionsResolver(optionsResolver),
		WithCredentialStore(store),
		WithTokenIssuer(issuer),
		WithTokenRefresher(refresher),
		WithTransport(transport),
		WithNormalizer(normalizer),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	deps := svc.Dependencies()
	if deps.Logger != customLogger {
		t.Fatalf("expected custom logger override")
	}
	if resolved := deps.LoggerProvider.GetLogger("session.override"); resolved != customLogger {
		t.Fatalf("expected logger provider to resolve custom logger")
	}
	if deps.ConfigProvider != configProvider {
		t.Fatalf("expected custom config provider override")
	}
	if deps.OptionsResolver != optionsResolver {
		t.Fatalf("expected custom options resolver override")
	}
	if deps.CredentialStore != store || deps.TokenIssuer != issuer || deps.TokenRefresher != refresher || deps.Transport != transport {
		t.Fatalf("expected session collaborators to be injected")
	}
	if deps.Normalizer != normalizer {
		t.Fatalf("expected custom normalizer")
	}
	if signer, ok := deps.Signer.(BearerTokenSigner); !ok || signer.Scheme != "JWT" {
		t.Fatalf("expected signer to follow resolved auth scheme, got %#v", deps.Signer)
	}
	if got := svc.Config().ClientName; got != "resolved" {
		t.Fatalf("expected options resolver output config, got %q", got)
	}
}

func TestNewService_ConfigLayeringPrecedence(t *testing.T) {
	provider := NewCfgxConfigProvider(mapRawLoader{values: map[string]any{
		"client_name": "from-config",
		"base_url":    "https://api.example.com",
		"endpoints": map[string]any{
			"login": "/v2/token/",
		},
		"normalizer": map[string]any{
			"fallback_image": "/config.png",
		},
	}})

	svc, err := NewService(Config{ClientName: "from-runtime", SharedRefresh: true}, WithConfigProvider(provider))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	cfg := svc.Config()
	if cfg.ClientName != "from-runtime" {
		t.Fatalf("expected runtime value to override config/default, got %q", cfg.ClientName)
	}
	if cfg.BaseURL != "https://api.example.com" {
		t.Fatalf("expected config base_url, got %q", cfg.BaseURL)
	}
	if cfg.Endpoints.Login != "/v2/token/" {
		t.Fatalf("expected config login endpoint, got %q", cfg.Endpoints.Login)
	}
	if cfg.Endpoints.Refresh != "/auth/jwt/refresh/" {
		t.Fatalf("expected default refresh endpoint to survive, got %q", cfg.Endpoints.Refresh)
	}
	if cfg.Normalizer.FallbackImage != "/config.png" {
		t.Fatalf("expected config fallback image, got %q", cfg.Normalizer.FallbackImage)
	}
	if !cfg.SharedRefresh {
		t.Fatalf("expected runtime shared_refresh to apply")
	}
	if got := svc.ExtractImageURLs(map[string]any{}); len(got) != 1 || got[0] != "/config.png" {
		t.Fatalf("expected normalizer to use configured fallback, got %#v", got)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "missing client name", mutate: func(c *Config) { c.ClientName = " " }, wantErr: true},
		{name: "missing auth scheme", mutate: func(c *Config) { c.AuthScheme = "" }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.RequestTimeout = -time.Second }, wantErr: true},
		{name: "negative body limit", mutate: func(c *Config) { c.MaxResponseBodyBytes = -1 }, wantErr: true},
		{name: "relative base url", mutate: func(c *Config) { c.BaseURL = "api.example.com" }, wantErr: true},
		{name: "absolute base url", mutate: func(c *Config) { c.BaseURL = "https://api.example.com" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestConfigResolveURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "https://api.example.com/"
	cases := map[string]string{
		"/auth/jwt/create/":          "https://api.example.com/auth/jwt/create/",
		"api/services/":              "https://api.example.com/api/services/",
		"https://other.example.com/": "https://other.example.com/",
		"":                           "https://api.example.com/",
	}
	for endpoint, want := range cases {
		if got := cfg.ResolveURL(endpoint); got != want {
			t.Fatalf("resolve %q: expected %q, got %q", endpoint, want, got)
		}
	}

	cfg.BaseURL = ""
	if got := cfg.ResolveURL("/auth/users/me/"); got != "/auth/users/me/" {
		t.Fatalf("expected relative endpoint without base, got %q", got)
	}
}
