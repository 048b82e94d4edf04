// Package observe provides observability primitives for the pipeline:
// OpenTelemetry metrics, tracing helpers, and trace-aware logging.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider]. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all metrics.
const meterName = "github.com/Dadangdut33/speech-translate"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms ---

	// RecognitionDuration tracks one Recognize call. Attributes:
	//   backend (native/server), task (transcribe/translate)
	RecognitionDuration metric.Float64Histogram

	// TranslationDuration tracks one text-translation batch. Attribute:
	//   engine (libretranslate/mymemory/google)
	TranslationDuration metric.Float64Histogram

	// FileDuration tracks end-to-end processing of one input file in the
	// batch pipeline.
	FileDuration metric.Float64Histogram

	// --- Counters ---

	// Emissions counts buffer emissions handed to recognition. Attributes:
	//   source (mic/speaker), reason (periodic/max_buffer/silence_tail)
	Emissions metric.Int64Counter

	// CaptureOverruns counts dropped capture windows. Attribute:
	//   source (mic/speaker)
	CaptureOverruns metric.Int64Counter

	// EngineFailures counts recognition/translation/gate engine errors.
	// Attributes: engine, kind
	EngineFailures metric.Int64Counter

	// FilesProcessed counts batch files by terminal status. Attribute:
	//   status (done/failed/canceled)
	FilesProcessed metric.Int64Counter

	// --- Gauges ---

	// ActiveSessions tracks the number of running live sessions.
	ActiveSessions metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// local model inference, which spans tens of milliseconds to tens of
// seconds depending on model and hardware.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.RecognitionDuration, err = m.Float64Histogram("speechtranslate.recognition.duration",
		metric.WithDescription("Latency of one speech recognition call."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranslationDuration, err = m.Float64Histogram("speechtranslate.translation.duration",
		metric.WithDescription("Latency of one text translation batch."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.FileDuration, err = m.Float64Histogram("speechtranslate.file.duration",
		metric.WithDescription("End-to-end processing time of one input file."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.Emissions, err = m.Int64Counter("speechtranslate.emissions",
		metric.WithDescription("Buffer emissions handed to recognition, by source and reason."),
	); err != nil {
		return nil, err
	}
	if met.CaptureOverruns, err = m.Int64Counter("speechtranslate.capture.overruns",
		metric.WithDescription("Capture windows dropped because the pipeline fell behind."),
	); err != nil {
		return nil, err
	}
	if met.EngineFailures, err = m.Int64Counter("speechtranslate.engine.failures",
		metric.WithDescription("Engine errors by engine and kind."),
	); err != nil {
		return nil, err
	}
	if met.FilesProcessed, err = m.Int64Counter("speechtranslate.files.processed",
		metric.WithDescription("Batch files by terminal status."),
	); err != nil {
		return nil, err
	}

	if met.ActiveSessions, err = m.Int64UpDownCounter("speechtranslate.active_sessions",
		metric.WithDescription("Number of running live capture sessions."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordRecognition records one Recognize call with the standard attribute
// set.
func (m *Metrics) RecordRecognition(ctx context.Context, backend, task string, seconds float64) {
	m.RecognitionDuration.Record(ctx, seconds,
		metric.WithAttributes(
			attribute.String("backend", backend),
			attribute.String("task", task),
		),
	)
}

// RecordTranslation records one translation batch.
func (m *Metrics) RecordTranslation(ctx context.Context, engine string, seconds float64) {
	m.TranslationDuration.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("engine", engine)),
	)
}

// RecordEmission counts one buffer emission.
func (m *Metrics) RecordEmission(ctx context.Context, source, reason string) {
	m.Emissions.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("source", source),
			attribute.String("reason", reason),
		),
	)
}

// RecordOverrun counts dropped capture windows for a source.
func (m *Metrics) RecordOverrun(ctx context.Context, source string, dropped int64) {
	m.CaptureOverruns.Add(ctx, dropped,
		metric.WithAttributes(attribute.String("source", source)),
	)
}

// RecordEngineFailure counts one engine error.
func (m *Metrics) RecordEngineFailure(ctx context.Context, engine, kind string) {
	m.EngineFailures.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("engine", engine),
			attribute.String("kind", kind),
		),
	)
}

// RecordFile records one finished batch file.
func (m *Metrics) RecordFile(ctx context.Context, status string, seconds float64) {
	m.FilesProcessed.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
	m.FileDuration.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("status", status)),
	)
}
