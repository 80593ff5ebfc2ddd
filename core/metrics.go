package core

import (
	"context"
	"maps"
	"strings"
)

// MetricRefreshTotal counts refresh calls made by Execute, tagged with
// outcome=success|failure.
const MetricRefreshTotal = "session.execute.refresh.total"

const metricPrefix = "session."

type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

// OperationCounterName is session.<operation>.total.
func OperationCounterName(operation string) string {
	return metricPrefix + normalizeOperation(operation) + ".total"
}

// OperationDurationName is session.<operation>.duration_ms.
func OperationDurationName(operation string) string {
	return metricPrefix + normalizeOperation(operation) + ".duration_ms"
}

func (s *Service) recordOperation(ctx context.Context, event operationEvent) {
	tags := map[string]string{
		"operation": event.operation,
		"status":    event.status(),
	}
	if method := strings.TrimSpace(event.method); method != "" {
		tags["method"] = method
	}
	if event.errorCode != "" {
		tags["error_code"] = event.errorCode
	}
	s.recordCounter(ctx, OperationCounterName(event.operation), 1, tags)
	s.recordHistogram(ctx, OperationDurationName(event.operation), float64(event.duration.Milliseconds()), tags)
}

func (s *Service) recordRefresh(ctx context.Context, trace ExecutionTrace) {
	if trace.RefreshCalls == 0 {
		return
	}
	outcome := "success"
	if !trace.Refreshed {
		outcome = "failure"
	}
	s.recordCounter(ctx, MetricRefreshTotal, int64(trace.RefreshCalls), map[string]string{"outcome": outcome})
}

func (s *Service) recordCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	if s == nil || s.metricsRecorder == nil {
		return
	}
	s.metricsRecorder.IncCounter(ctx, name, value, maps.Clone(tags))
}

func (s *Service) recordHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	if s == nil || s.metricsRecorder == nil {
		return
	}
	s.metricsRecorder.ObserveHistogram(ctx, name, value, maps.Clone(tags))
}
