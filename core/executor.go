package core

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type executionState string

const (
	stateInitial         executionState = "initial"
	stateRequesting      executionState = "requesting"
	stateRefreshing      executionState = "refreshing"
	stateRetryRequesting executionState = "retry_requesting"
	stateDone            executionState = "done"
	stateFailed          executionState = "failed"
)

type ExecutorConfig struct {
	Store          CredentialStore
	Refresher      TokenRefresher
	Transport      Transport
	Signer         Signer
	RequestTimeout time.Duration
	SharedRefresh  bool
	Now            func() time.Time
	NewRequestID   func() string
}

// Executor issues authenticated requests. A 401 triggers at most one refresh
// and at most one retried request per Execute call.
type Executor struct {
	store          CredentialStore
	refresher      TokenRefresher
	transport      Transport
	signer         Signer
	requestTimeout time.Duration
	guard          *refreshGuard
	nowFn          func() time.Time
	requestIDFn    func() string
}

// ExecutionTrace records what a single Execute call did.
type ExecutionTrace struct {
	RequestID    string
	States       []string
	Requests     int
	RefreshCalls int
	Refreshed    bool
	Cleared      bool
	SaveError    error
	ClearError   error
}

func NewExecutor(cfg ExecutorConfig) *Executor {
	signer := cfg.Signer
	if signer == nil {
		signer = BearerTokenSigner{}
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	nextID := cfg.NewRequestID
	if nextID == nil {
		nextID = func() string { return uuid.NewString() }
	}
	executor := &Executor{
		store:          cfg.Store,
		refresher:      cfg.Refresher,
		transport:      cfg.Transport,
		signer:         signer,
		requestTimeout: cfg.RequestTimeout,
		nowFn:          now,
		requestIDFn:    nextID,
	}
	if cfg.SharedRefresh {
		executor.guard = newRefreshGuard()
	}
	return executor
}

func (e *Executor) Execute(ctx context.Context, req RequestDescriptor) (Response, error) {
	response, _, err := e.ExecuteTraced(ctx, req)
	return response, err
}

// ExecuteTraced runs the request state machine and returns the trace alongside
// the outcome.
func (e *Executor) ExecuteTraced(ctx context.Context, req RequestDescriptor) (Response, ExecutionTrace, error) {
	if e == nil {
		return Response{}, ExecutionTrace{}, newSessionError(
			"core: executor is nil", goerrors.CategoryInternal, http.StatusInternalServerError, ErrorInternal, nil,
		)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	run := &execution{
		executor: e,
		request:  e.prepare(req),
		state:    stateInitial,
	}
	run.trace.RequestID = run.request.Header(HeaderRequestID)
	for run.state != stateDone && run.state != stateFailed {
		run.trace.States = append(run.trace.States, string(run.state))
		run.step(ctx)
	}
	run.trace.States = append(run.trace.States, string(run.state))
	if run.state == stateFailed {
		return Response{}, run.trace, run.err
	}
	return run.response, run.trace, nil
}

func (e *Executor) prepare(req RequestDescriptor) RequestDescriptor {
	prepared := req.Clone()
	prepared.Method = strings.ToUpper(strings.TrimSpace(prepared.Method))
	if prepared.Method == "" {
		prepared.Method = http.MethodGet
	}
	if prepared.Timeout <= 0 && e.requestTimeout > 0 {
		prepared.Timeout = e.requestTimeout
	}
	if strings.TrimSpace(prepared.Header(HeaderRequestID)) == "" {
		prepared = prepared.WithHeader(HeaderRequestID, e.requestIDFn())
	}
	return prepared
}

type execution struct {
	executor   *Executor
	request    RequestDescriptor
	state      executionState
	credential Credential
	response   Response
	err        error
	trace      ExecutionTrace
}

func (r *execution) step(ctx context.Context) {
	switch r.state {
	case stateInitial:
		r.loadCredential(ctx)
	case stateRequesting:
		r.send(ctx, stateRefreshing)
	case stateRefreshing:
		r.refresh(ctx)
	case stateRetryRequesting:
		r.send(ctx, stateDone)
	default:
		r.fail(fmt.Errorf("core: unexpected executor state %q", r.state))
	}
}

func (r *execution) loadCredential(ctx context.Context) {
	e := r.executor
	if e.store == nil {
		r.fail(NewUnauthenticatedError("core: credential store is not configured", nil))
		return
	}
	credential, ok := e.store.Load(ctx)
	if !ok || strings.TrimSpace(credential.AccessToken) == "" {
		r.fail(NewUnauthenticatedError("", map[string]any{"reason": "credential_absent"}))
		return
	}
	if e.transport == nil {
		r.fail(newSessionError(
			"core: transport is not configured", goerrors.CategoryInternal, http.StatusInternalServerError, ErrorInternal, nil,
		))
		return
	}
	r.credential = credential
	r.state = stateRequesting
}

// send issues the signed request. onUnauthorized is the next state when the
// server answers 401; after the retry it is stateDone so the response is
// returned as-is.
func (r *execution) send(ctx context.Context, onUnauthorized executionState) {
	e := r.executor
	signed, err := e.signer.Sign(r.request, r.credential)
	if err != nil {
		r.fail(NewUnauthenticatedError(err.Error(), nil))
		return
	}
	r.trace.Requests++
	response, err := e.transport.Do(ctx, signed)
	if err != nil {
		r.fail(asNetworkError(err, signed))
		return
	}
	if response.StatusCode == http.StatusUnauthorized && onUnauthorized != stateDone {
		r.state = onUnauthorized
		return
	}
	r.response = response
	r.state = stateDone
}

func (r *execution) refresh(ctx context.Context) {
	e := r.executor
	refreshToken := strings.TrimSpace(r.credential.RefreshToken)
	if e.refresher == nil || refreshToken == "" {
		r.clearAndFail(ctx, NewRefreshFailedError(nil, "core: no refresh path available", nil))
		return
	}

	var (
		outcome refreshOutcome
		err     error
	)
	if e.guard != nil {
		leader := false
		outcome, err = e.guard.do(refreshToken, func() (refreshOutcome, error) {
			leader = true
			return e.refreshAndSave(ctx, r.credential, true)
		})
		if !leader {
			outcome.called = false
		}
	} else {
		outcome, err = e.refreshAndSave(ctx, r.credential, false)
	}
	if outcome.called {
		r.trace.RefreshCalls++
	}
	if err != nil {
		if !IsRefreshFailed(err) {
			err = NewRefreshFailedError(err, "", nil)
		}
		r.clearAndFail(ctx, err)
		return
	}

	r.credential = outcome.credential
	r.trace.SaveError = outcome.saveErr
	r.trace.Refreshed = true
	r.state = stateRetryRequesting
}

type refreshOutcome struct {
	credential Credential
	called     bool
	saveErr    error
}

// refreshAndSave exchanges the stale credential's refresh token and persists
// the new access token. With reuseNewer set, a credential already replaced in
// the store by a concurrent refresh is returned without another network call.
func (e *Executor) refreshAndSave(ctx context.Context, stale Credential, reuseNewer bool) (refreshOutcome, error) {
	if reuseNewer {
		if current, ok := e.store.Load(ctx); ok && current.AccessToken != "" && current.AccessToken != stale.AccessToken {
			return refreshOutcome{credential: current}, nil
		}
	}
	accessToken, err := e.refresher.Refresh(ctx, strings.TrimSpace(stale.RefreshToken))
	outcome := refreshOutcome{called: true}
	if err == nil && strings.TrimSpace(accessToken) == "" {
		err = NewRefreshFailedError(nil, "core: refresh returned an empty access token", nil)
	}
	if err != nil {
		return outcome, err
	}
	outcome.credential = stale.WithAccessToken(accessToken, e.nowFn())
	outcome.saveErr = e.store.Save(ctx, outcome.credential)
	return outcome, nil
}

func (r *execution) clearAndFail(ctx context.Context, source error) {
	metadata := map[string]any{"reason": "refresh_failed"}
	if err := r.executor.store.Clear(ctx); err != nil {
		r.trace.ClearError = err
		metadata["clear_error"] = err.Error()
	} else {
		r.trace.Cleared = true
	}
	message := "core: session expired, sign in again"
	r.fail(wrapSessionError(source, message, goerrors.CategoryAuth, http.StatusUnauthorized, ErrorUnauthenticated, metadata))
}

func (r *execution) fail(err error) {
	r.err = err
	r.state = stateFailed
}

func asNetworkError(err error, req RequestDescriptor) error {
	if err == nil {
		return nil
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr != nil && strings.TrimSpace(richErr.TextCode) != "" {
		return err
	}
	return NewNetworkError(err, "", map[string]any{
		"method": req.Method,
		"url":    req.URL,
	})
}
