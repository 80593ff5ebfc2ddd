package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	defaultRequestTimeout       = 30 * time.Second
	defaultMaxResponseBodyBytes = 10 << 20 // 10 MiB
)

type EndpointsConfig struct {
	Register             string `koanf:"register" mapstructure:"register"`
	Login                string `koanf:"login" mapstructure:"login"`
	Refresh              string `koanf:"refresh" mapstructure:"refresh"`
	Activation           string `koanf:"activation" mapstructure:"activation"`
	PasswordReset        string `koanf:"password_reset" mapstructure:"password_reset"`
	PasswordResetConfirm string `koanf:"password_reset_confirm" mapstructure:"password_reset_confirm"`
	Profile              string `koanf:"profile" mapstructure:"profile"`
	Services             string `koanf:"services" mapstructure:"services"`
	ServiceContent       string `koanf:"service_content" mapstructure:"service_content"`
	Bookings             string `koanf:"bookings" mapstructure:"bookings"`
}

type NormalizerConfig struct {
	FallbackImage   string   `koanf:"fallback_image" mapstructure:"fallback_image"`
	BlockedPrefixes []string `koanf:"blocked_prefixes" mapstructure:"blocked_prefixes"`
	Paths           []string `koanf:"paths" mapstructure:"paths"`
}

type StorageConfig struct {
	Namespace string `koanf:"namespace" mapstructure:"namespace"`
}

type Config struct {
	ClientName           string           `koanf:"client_name" mapstructure:"client_name"`
	BaseURL              string           `koanf:"base_url" mapstructure:"base_url"`
	AuthScheme           string           `koanf:"auth_scheme" mapstructure:"auth_scheme"`
	RequestTimeout       time.Duration    `koanf:"request_timeout" mapstructure:"request_timeout"`
	MaxResponseBodyBytes int64            `koanf:"max_response_body_bytes" mapstructure:"max_response_body_bytes"`
	SharedRefresh        bool             `koanf:"shared_refresh" mapstructure:"shared_refresh"`
	Endpoints            EndpointsConfig  `koanf:"endpoints" mapstructure:"endpoints"`
	Normalizer           NormalizerConfig `koanf:"normalizer" mapstructure:"normalizer"`
	Storage              StorageConfig    `koanf:"storage" mapstructure:"storage"`
}

func DefaultConfig() Config {
	return Config{
		ClientName:           "session",
		AuthScheme:           DefaultAuthScheme,
		RequestTimeout:       defaultRequestTimeout,
		MaxResponseBodyBytes: defaultMaxResponseBodyBytes,
		Endpoints: EndpointsConfig{
			Register:             "/auth/users/",
			Login:                "/auth/jwt/create/",
			Refresh:              "/auth/jwt/refresh/",
			Activation:           "/auth/users/activation/",
			PasswordReset:        "/auth/users/reset_password/",
			PasswordResetConfirm: "/auth/users/reset_password_confirm/",
			Profile:              "/auth/users/me/",
			Services:             "/api/services/",
			ServiceContent:       "/api/service-content/",
			Bookings:             "/api/bookings/",
		},
		Normalizer: NormalizerConfig{
			FallbackImage:   DefaultFallbackImage,
			BlockedPrefixes: []string{DefaultBlobURLPrefix},
		},
		Storage: StorageConfig{
			Namespace: defaultStoreNamespace,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ClientName) == "" {
		return fmt.Errorf("core: client_name is required")
	}
	if strings.TrimSpace(c.AuthScheme) == "" {
		return fmt.Errorf("core: auth_scheme is required")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("core: request_timeout must be >= 0")
	}
	if c.MaxResponseBodyBytes < 0 {
		return fmt.Errorf("core: max_response_body_bytes must be >= 0")
	}
	if base := strings.TrimSpace(c.BaseURL); base != "" {
		parsed, err := url.Parse(base)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("core: base_url %q is invalid", base)
		}
	}
	return nil
}

// ResolveURL joins an endpoint path onto BaseURL. Absolute endpoints are
// returned unchanged.
func (c Config) ResolveURL(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return strings.TrimSpace(c.BaseURL)
	}
	if parsed, err := url.Parse(endpoint); err == nil && parsed.IsAbs() {
		return endpoint
	}
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return endpoint
	}
	return base + "/" + strings.TrimLeft(endpoint, "/")
}
