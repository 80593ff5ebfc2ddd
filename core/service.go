package core

import (
	"context"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Service owns the credential lifecycle of one client session and issues
// authenticated requests on its behalf.
type Service struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	credentialStore CredentialStore
	tokenIssuer     TokenIssuer
	tokenRefresher  TokenRefresher
	transport       Transport
	signer          Signer
	normalizer      *ImageURLNormalizer
	executor        *Executor
	nowFn           func() time.Time
}

type ServiceDependencies struct {
	Logger          Logger
	LoggerProvider  LoggerProvider
	MetricsRecorder MetricsRecorder
	ErrorMapper     ErrorMapper
	ConfigProvider  ConfigProvider
	OptionsResolver OptionsResolver
	CredentialStore CredentialStore
	TokenIssuer     TokenIssuer
	TokenRefresher  TokenRefresher
	Transport       Transport
	Signer          Signer
	Normalizer      *ImageURLNormalizer
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("session", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("session"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.nowFn == nil {
		builder.nowFn = func() time.Time { return time.Now().UTC() }
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	if err := finalConfig.Validate(); err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.credentialStore == nil {
		builder.credentialStore = NewMemoryCredentialStore()
	}
	if builder.signer == nil {
		builder.signer = BearerTokenSigner{Scheme: finalConfig.AuthScheme}
	}
	if builder.normalizer == nil {
		builder.normalizer = NewImageURLNormalizer(finalConfig.Normalizer)
	}
	if builder.tokenRefresher == nil {
		if refresher, ok := builder.tokenIssuer.(TokenRefresher); ok {
			builder.tokenRefresher = refresher
		}
	}

	executor := NewExecutor(ExecutorConfig{
		Store:          builder.credentialStore,
		Refresher:      builder.tokenRefresher,
		Transport:      builder.transport,
		Signer:         builder.signer,
		RequestTimeout: finalConfig.RequestTimeout,
		SharedRefresh:  finalConfig.SharedRefresh,
		Now:            builder.nowFn,
		NewRequestID:   builder.requestIDFn,
	})

	return &Service{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorMapper:     builder.errorMapper,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		credentialStore: builder.credentialStore,
		tokenIssuer:     builder.tokenIssuer,
		tokenRefresher:  builder.tokenRefresher,
		transport:       builder.transport,
		signer:          builder.signer,
		normalizer:      builder.normalizer,
		executor:        executor,
		nowFn:           builder.nowFn,
	}, nil
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:          s.logger,
		LoggerProvider:  s.loggerProvider,
		MetricsRecorder: s.metricsRecorder,
		ErrorMapper:     s.errorMapper,
		ConfigProvider:  s.configProvider,
		OptionsResolver: s.optionsResolver,
		CredentialStore: s.credentialStore,
		TokenIssuer:     s.tokenIssuer,
		TokenRefresher:  s.tokenRefresher,
		Transport:       s.transport,
		Signer:          s.signer,
		Normalizer:      s.normalizer,
	}
}

// Login exchanges user credentials for a token pair and persists it. A prior
// session is replaced only when the exchange succeeds.
func (s *Service) Login(ctx context.Context, req LoginRequest) (credential Credential, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"email":    strings.TrimSpace(req.Email),
		"username": strings.TrimSpace(req.Username),
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "login", err, fields)
	}()

	if s == nil {
		return Credential{}, newSessionError(
			"core: service is nil", goerrors.CategoryInternal, http.StatusInternalServerError, ErrorInternal, nil,
		)
	}
	if strings.TrimSpace(req.Email) == "" && strings.TrimSpace(req.Username) == "" {
		return Credential{}, s.mapError(NewBadInputError("core: email or username is required", nil))
	}
	if req.Password == "" {
		return Credential{}, s.mapError(NewBadInputError("core: password is required", nil))
	}
	if s.tokenIssuer == nil {
		return Credential{}, s.mapError(newSessionError(
			"core: token issuer is not configured", goerrors.CategoryInternal, http.StatusInternalServerError, ErrorInternal, nil,
		))
	}

	issued, err := s.tokenIssuer.Obtain(ctx, req)
	if err != nil {
		return Credential{}, s.mapError(err)
	}
	if strings.TrimSpace(issued.AccessToken) == "" || strings.TrimSpace(issued.RefreshToken) == "" {
		return Credential{}, s.mapError(newSessionError(
			"core: token issuer returned an incomplete credential",
			goerrors.CategoryAuth,
			http.StatusUnauthorized,
			ErrorInvalidCredentials,
			nil,
		))
	}
	if issued.IssuedAt == nil {
		issuedAt := s.nowFn()
		issued.IssuedAt = &issuedAt
	}
	if err := s.credentialStore.Save(ctx, issued); err != nil {
		return Credential{}, s.mapError(err)
	}
	return cloneCredential(issued), nil
}

func (s *Service) Logout(ctx context.Context) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observeOperation(ctx, startedAt, "logout", err, nil)
	}()
	if s == nil || s.credentialStore == nil {
		return nil
	}
	if err := s.credentialStore.Clear(ctx); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *Service) Authenticated(ctx context.Context) bool {
	if s == nil || s.credentialStore == nil {
		return false
	}
	credential, ok := s.credentialStore.Load(ctx)
	return ok && strings.TrimSpace(credential.AccessToken) != ""
}

// Execute issues req with the stored access token, refreshing and retrying
// once when the server answers 401.
func (s *Service) Execute(ctx context.Context, req RequestDescriptor) (response Response, err error) {
	startedAt := time.Now().UTC()
	var trace ExecutionTrace
	defer func() {
		fields := map[string]any{
			"request_id":    trace.RequestID,
			"method":        strings.ToUpper(strings.TrimSpace(req.Method)),
			"url":           req.URL,
			"attempts":      trace.Requests,
			"refreshed":     trace.Refreshed,
			"status_code":   response.StatusCode,
			"state_history": strings.Join(trace.States, ">"),
		}
		if trace.Cleared {
			fields["credential_cleared"] = true
		}
		s.observeOperation(ctx, startedAt, "execute", err, fields)
	}()

	if s == nil || s.executor == nil {
		return Response{}, newSessionError(
			"core: service is not initialized", goerrors.CategoryInternal, http.StatusInternalServerError, ErrorInternal, nil,
		)
	}
	response, trace, err = s.executor.ExecuteTraced(ctx, req)
	s.recordRefresh(ctx, trace)
	if trace.SaveError != nil {
		s.logError(ctx, "refreshed credential could not be persisted", map[string]any{
			"request_id": trace.RequestID,
			"error":      trace.SaveError.Error(),
		})
	}
	if trace.ClearError != nil {
		s.logError(ctx, "expired credential could not be cleared", map[string]any{
			"request_id": trace.RequestID,
			"error":      trace.ClearError.Error(),
		})
	}
	if err != nil {
		return Response{}, s.mapError(err)
	}
	return response, nil
}

func (s *Service) ExtractImageURLs(response any) []string {
	if s == nil || s.normalizer == nil {
		return ExtractImageURLs(response)
	}
	return s.normalizer.Extract(response)
}

func (s *Service) ExtractImageURLsFromJSON(payload []byte) []string {
	if s == nil || s.normalizer == nil {
		return ExtractImageURLsFromJSON(payload)
	}
	return s.normalizer.ExtractJSON(payload)
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}
