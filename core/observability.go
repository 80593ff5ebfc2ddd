package core

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"
)

// operationEvent is what one public Service call reports to the logger and
// the metrics recorder.
type operationEvent struct {
	operation string
	method    string
	duration  time.Duration
	err       error
	errorCode string
	fields    map[string]any
}

func (e operationEvent) status() string {
	if e.err != nil {
		return "failure"
	}
	return "success"
}

func newOperationEvent(operation string, startedAt time.Time, err error, fields map[string]any) operationEvent {
	operation = normalizeOperation(operation)
	if operation == "" {
		operation = "unknown"
	}
	event := operationEvent{
		operation: operation,
		duration:  time.Since(startedAt),
		err:       err,
		fields:    fields,
	}
	if method, ok := fields["method"].(string); ok {
		event.method = method
	}
	if err != nil {
		event.errorCode = errorTextCode(err)
	}
	return event
}

// logFields is the redacted field set written with the event.
func (e operationEvent) logFields(clientName string) map[string]any {
	out := RedactSensitiveMap(e.fields)
	out["event_type"] = e.operation
	out["status"] = e.status()
	out["duration_ms"] = e.duration.Milliseconds()
	if clientName != "" {
		out["client_name"] = clientName
	}
	if e.err != nil {
		out["error"] = e.err.Error()
		if e.errorCode != "" {
			out["error_code"] = e.errorCode
		}
	}
	return out
}

func (s *Service) observeOperation(
	ctx context.Context,
	startedAt time.Time,
	operation string,
	err error,
	fields map[string]any,
) {
	if s == nil {
		return
	}
	event := newOperationEvent(operation, startedAt, err, fields)
	s.recordOperation(ctx, event)

	logFields := event.logFields(s.config.ClientName)
	if err != nil {
		s.logError(ctx, event.operation+" failed", logFields)
		return
	}
	s.logInfo(ctx, event.operation+" succeeded", logFields)
}

func (s *Service) logInfo(ctx context.Context, message string, fields map[string]any) {
	if logger, args := s.scopedLogger(ctx, fields); logger != nil {
		logger.Info(message, args...)
	}
}

func (s *Service) logError(ctx context.Context, message string, fields map[string]any) {
	if logger, args := s.scopedLogger(ctx, fields); logger != nil {
		logger.Error(message, args...)
	}
}

// scopedLogger attaches ctx and the fields. Loggers without WithFields get
// the fields back as sorted key/value args instead.
func (s *Service) scopedLogger(ctx context.Context, fields map[string]any) (Logger, []any) {
	if s == nil || s.logger == nil {
		return nil, nil
	}
	logger := s.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok && len(fields) > 0 {
		return fieldsLogger.WithFields(maps.Clone(fields)), nil
	}
	return logger, flattenFields(fields)
}

var sessionTextCodes = []string{
	ErrorUnauthenticated,
	ErrorInvalidCredentials,
	ErrorNetwork,
	ErrorRefreshFailed,
	ErrorBadInput,
	ErrorNotFound,
	ErrorOperationFailed,
	ErrorInternal,
}

func errorTextCode(err error) string {
	for _, code := range sessionTextCodes {
		if HasTextCode(err, code) {
			return code
		}
	}
	return ""
}

// flattenFields turns fields into sorted key/value args.
func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	args := make([]any, 0, len(fields)*2)
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		args = append(args, key, fields[key])
	}
	return args
}

func normalizeOperation(operation string) string {
	return strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(strings.TrimSpace(operation)))
}
