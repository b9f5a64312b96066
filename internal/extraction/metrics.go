package extraction

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/luachlabs/extractd/internal/extraction"

// Metrics holds extraction instrumentation. A nil *Metrics is valid and
// records nothing, so tests and library callers need no meter provider.
type Metrics struct {
	meter         metric.Meter
	logger        *zap.Logger
	passesTotal   metric.Int64Counter
	modelDuration metric.Float64Histogram
	modelFailures metric.Int64Counter
	mergePicks    metric.Int64Counter
}

// NewMetrics creates extraction metrics on the global meter provider.
func NewMetrics(logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Metrics{
		meter:  otel.Meter(instrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.passesTotal, err = m.meter.Int64Counter(
		"extractd.extraction.passes_total",
		metric.WithDescription("Extraction passes run, labeled by intent and engine (deterministic, model)."),
		metric.WithUnit("{pass}"),
	)
	if err != nil {
		m.logger.Warn("failed to create passes counter", zap.Error(err))
	}

	m.modelDuration, err = m.meter.Float64Histogram(
		"extractd.extraction.model_duration_seconds",
		metric.WithDescription("Model pass duration in seconds, labeled by intent."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		m.logger.Warn("failed to create model duration histogram", zap.Error(err))
	}

	m.modelFailures, err = m.meter.Int64Counter(
		"extractd.extraction.model_failures_total",
		metric.WithDescription("Model passes that produced no entities (provider failure, timeout or unparseable output)."),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		m.logger.Warn("failed to create model failures counter", zap.Error(err))
	}

	m.mergePicks, err = m.meter.Int64Counter(
		"extractd.extraction.merge_picks_total",
		metric.WithDescription("Field-level merge decisions, labeled by field and winning engine."),
		metric.WithUnit("{pick}"),
	)
	if err != nil {
		m.logger.Warn("failed to create merge picks counter", zap.Error(err))
	}
}

func (m *Metrics) recordPass(ctx context.Context, intent Intent, source engineSource) {
	if m == nil || m.passesTotal == nil {
		return
	}
	m.passesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("intent", string(intent)),
		attribute.String("engine", string(source)),
	))
}

func (m *Metrics) recordModelPass(ctx context.Context, intent Intent, d time.Duration, failed bool) {
	if m == nil {
		return
	}
	if m.modelDuration != nil {
		m.modelDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
			attribute.String("intent", string(intent)),
		))
	}
	if failed && m.modelFailures != nil {
		m.modelFailures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("intent", string(intent)),
		))
	}
}

func (m *Metrics) recordMergePick(ctx context.Context, field string, source engineSource) {
	if m == nil || m.mergePicks == nil {
		return
	}
	m.mergePicks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("field", field),
		attribute.String("engine", string(source)),
	))
}
