package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/V4T54L/docsearch/internal/adapter/metrics"
	"github.com/V4T54L/docsearch/internal/domain"
	"github.com/V4T54L/docsearch/internal/pkg/apperr"
)

// Recorder writes search log events to one sink and counts the outcome.
type Recorder struct {
	name    string
	sink    domain.SearchLogSink
	metrics *metrics.SearchMetrics
}

// NewRecorder creates a Recorder. name labels the sink in metrics and logs.
func NewRecorder(name string, sink domain.SearchLogSink, m *metrics.SearchMetrics) *Recorder {
	return &Recorder{name: name, sink: sink, metrics: m}
}

// Name returns the sink label.
func (r *Recorder) Name() string {
	return r.name
}

// Record appends the event and waits for the result. Failures are returned as
// storage errors; callers decide whether to surface or swallow them.
func (r *Recorder) Record(ctx context.Context, event domain.SearchLogEvent) error {
	ctx, span := otel.Tracer("search-log").Start(ctx, "Record",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("sink", r.name),
			attribute.String("provider", event.Provider),
			attribute.String("status", string(event.Status)),
		),
	)
	defer span.End()

	if err := r.sink.Append(ctx, event); err != nil {
		r.metrics.LogWritesTotal.WithLabelValues(r.name, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "append failed")
		return apperr.StorageError(err.Error(), err)
	}
	r.metrics.LogWritesTotal.WithLabelValues(r.name, "ok").Inc()
	return nil
}

// RecordAsync submits the write to the dispatcher and returns immediately.
// Failures end up in the dispatcher's error log.
func (r *Recorder) RecordAsync(ctx context.Context, d *Dispatcher, event domain.SearchLogEvent) {
	d.Submit(ctx, "search_log_write:"+r.name, func(ctx context.Context) error {
		return r.Record(ctx, event)
	})
}
