package session

import (
	"github.com/goliatone/go-session/api"
	"github.com/goliatone/go-session/auth"
	"github.com/goliatone/go-session/core"
	"github.com/goliatone/go-session/transport"
)

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies
type Credential = core.Credential
type CredentialStore = core.CredentialStore
type TokenIssuer = core.TokenIssuer
type TokenRefresher = core.TokenRefresher
type Transport = core.Transport
type Signer = core.Signer

type LoginRequest = core.LoginRequest

type RequestDescriptor = core.RequestDescriptor

type Response = core.Response

var (
	WithLogger               = core.WithLogger
	WithLoggerProvider       = core.WithLoggerProvider
	WithMetricsRecorder      = core.WithMetricsRecorder
	WithErrorMapper          = core.WithErrorMapper
	WithConfigProvider       = core.WithConfigProvider
	WithOptionsResolver      = core.WithOptionsResolver
	WithCredentialStore      = core.WithCredentialStore
	WithTokenIssuer          = core.WithTokenIssuer
	WithTokenRefresher       = core.WithTokenRefresher
	WithTransport            = core.WithTransport
	WithSigner               = core.WithSigner
	WithNormalizer           = core.WithNormalizer
	WithClock                = core.WithClock
	WithRequestIDGenerator   = core.WithRequestIDGenerator
	IsUnauthenticated        = core.IsUnauthenticated
	IsNetworkError           = core.IsNetworkError
	ExtractImageURLs         = core.ExtractImageURLs
	ExtractImageURLsFromJSON = core.ExtractImageURLsFromJSON
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

// Client is a session service paired with the account and resource API
// client built on top of it.
type Client struct {
	*core.Service
	*api.Client
}

// New builds a Client. Unless overridden through options, requests go over a
// REST adapter and tokens come from the JWT strategy, both configured from the
// resolved Config.
func New(cfg Config, opts ...Option) (*Client, error) {
	probe, err := core.NewService(cfg, opts...)
	if err != nil {
		return nil, err
	}
	resolved := probe.Config()
	deps := probe.Dependencies()

	defaults := []Option{}
	transportAdapter := deps.Transport
	if transportAdapter == nil {
		transportAdapter = transport.NewRESTAdapterFromConfig(resolved, nil)
		defaults = append(defaults, core.WithTransport(transportAdapter))
	}
	if deps.TokenIssuer == nil {
		strategy := auth.NewJWTStrategyFromConfig(resolved, transportAdapter)
		defaults = append(defaults, core.WithTokenIssuer(strategy))
		if deps.TokenRefresher == nil {
			defaults = append(defaults, core.WithTokenRefresher(strategy))
		}
	}

	service := probe
	if len(defaults) > 0 {
		service, err = core.NewService(cfg, append(append([]Option{}, opts...), defaults...)...)
		if err != nil {
			return nil, err
		}
	}
	client, err := api.NewClient(service, transportAdapter)
	if err != nil {
		return nil, err
	}
	return &Client{Service: service, Client: client}, nil
}
