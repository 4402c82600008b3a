// Package observe records pipeline metrics through OpenTelemetry and exposes
// them to Prometheus.
//
// Tests should build their own [Metrics] with [NewMetrics] over a
// ManualReader-backed provider.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/maastricht-university/meeting-clarity"

// Pipeline stages reported by StageDuration.
const (
	StageASR     = "asr"
	StageExtract = "extract"
	StageScore   = "score"
	StagePersist = "persist"
)

// Metrics holds every instrument. A nil *Metrics records nothing.
type Metrics struct {
	// Analyses counts finished analyses by status ("ok" or "error").
	Analyses metric.Int64Counter
	// Index is the distribution of clarity indices.
	Index metric.Float64Histogram
	// StageDuration is per-stage latency, attribute "stage".
	StageDuration metric.Float64Histogram
	// ValidationFailures counts rejected reports and inputs by "kind".
	ValidationFailures metric.Int64Counter
	// HTTPRequestDuration is request latency by method, route and status.
	HTTPRequestDuration metric.Float64Histogram
}

var (
	latencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300}
	indexBuckets   = []float64{20, 30, 40, 50, 60, 70, 80, 90, 100}
)

func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Analyses, err = m.Int64Counter("clarity.analyses",
		metric.WithDescription("Finished meeting analyses by status."),
	); err != nil {
		return nil, err
	}
	if met.Index, err = m.Float64Histogram("clarity.index",
		metric.WithDescription("Clarity index of analyzed meetings."),
		metric.WithExplicitBucketBoundaries(indexBuckets...),
	); err != nil {
		return nil, err
	}
	if met.StageDuration, err = m.Float64Histogram("clarity.stage.duration",
		metric.WithDescription("Latency of one pipeline stage."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ValidationFailures, err = m.Int64Counter("clarity.validation.failures",
		metric.WithDescription("Rejected jargon reports and word counts by kind."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("clarity.http.request.duration",
		metric.WithDescription("HTTP request latency by method and route."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	return met, nil
}

func (m *Metrics) RecordAnalysis(ctx context.Context, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Analyses.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func (m *Metrics) RecordIndex(ctx context.Context, idx int) {
	if m == nil {
		return
	}
	m.Index.Record(ctx, float64(idx))
}

// RecordStage records the time elapsed since start for stage.
func (m *Metrics) RecordStage(ctx context.Context, stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attribute.String("stage", stage)))
}

func (m *Metrics) RecordValidationFailure(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.ValidationFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) RecordHTTP(ctx context.Context, method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	))
}
