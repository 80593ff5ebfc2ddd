package core

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

type scriptedStep struct {
	status int
	body   string
	err    error
}

type fakeTransport struct {
	mu       sync.Mutex
	steps    []scriptedStep
	requests []RequestDescriptor
	handle   func(req RequestDescriptor) (Response, error)
}

func newScriptedTransport(steps ...scriptedStep) *fakeTransport {
	return &fakeTransport{steps: steps}
}

func (t *fakeTransport) Do(_ context.Context, req RequestDescriptor) (Response, error) {
	t.mu.Lock()
	t.requests = append(t.requests, req.Clone())
	handle := t.handle
	var step scriptedStep
	hasStep := false
	if handle == nil && len(t.steps) > 0 {
		step = t.steps[0]
		t.steps = t.steps[1:]
		hasStep = true
	}
	t.mu.Unlock()

	if handle != nil {
		return handle(req)
	}
	if !hasStep {
		return Response{}, errors.New("fake transport: no scripted response")
	}
	if step.err != nil {
		return Response{}, step.err
	}
	return Response{
		StatusCode: step.status,
		Headers:    map[string]string{HeaderContentType: ContentTypeJSON},
		Body:       []byte(step.body),
	}, nil
}

func (t *fakeTransport) Requests() []RequestDescriptor {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]RequestDescriptor(nil), t.requests...)
}

type fakeRefresher struct {
	calls atomic.Int32
	token string
	err   error
	delay time.Duration
	seen  []string
	mu    sync.Mutex
}

func (r *fakeRefresher) Refresh(_ context.Context, refreshToken string) (string, error) {
	r.calls.Add(1)
	r.mu.Lock()
	r.seen = append(r.seen, refreshToken)
	r.mu.Unlock()
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if r.err != nil {
		return "", r.err
	}
	return r.token, nil
}

type fakeIssuer struct {
	credential Credential
	err        error
	requests   []LoginRequest
}

func (i *fakeIssuer) Obtain(_ context.Context, req LoginRequest) (Credential, error) {
	i.requests = append(i.requests, req)
	if i.err != nil {
		return Credential{}, i.err
	}
	return i.credential, nil
}

type failingSaveStore struct {
	*MemoryCredentialStore
	saveErr error
}

func (s failingSaveStore) Save(context.Context, Credential) error {
	return s.saveErr
}

type failingClearStore struct {
	*MemoryCredentialStore
	clearErr error
}

func (s failingClearStore) Clear(context.Context) error {
	return s.clearErr
}

type recordingLogger struct {
	stubLogger
	mu     sync.Mutex
	errors []string
}

func (l *recordingLogger) Error(message string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, message)
}

func (l *recordingLogger) WithContext(context.Context) Logger {
	return l
}

func (l *recordingLogger) loggedError(message string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, logged := range l.errors {
		if logged == message {
			return true
		}
	}
	return false
}

type metricRecord struct {
	name  string
	value float64
	tags  map[string]string
}

type recordingMetrics struct {
	mu         sync.Mutex
	counters   []metricRecord
	histograms []metricRecord
}

func (m *recordingMetrics) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = append(m.counters, metricRecord{name: name, value: float64(value), tags: tags})
}

func (m *recordingMetrics) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms = append(m.histograms, metricRecord{name: name, value: value, tags: tags})
}

func (m *recordingMetrics) counter(name string) (metricRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.counters {
		if record.name == name {
			return record, true
		}
	}
	return metricRecord{}, false
}

func storeWith(access, refresh string) *MemoryCredentialStore {
	store := NewMemoryCredentialStore()
	_ = store.Save(context.Background(), Credential{AccessToken: access, RefreshToken: refresh})
	return store
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

var ok200 = scriptedStep{status: http.StatusOK, body: `{"ok":true}`}

var unauthorized401 = scriptedStep{status: http.StatusUnauthorized, body: `{"detail":"token expired"}`}

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}
