package metrics

import (
	"context"
	"time"

	"github.com/kenneth/b64-codec/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/trace"
)

// Operation names used as the "operation" label.
const (
	OpEncode = "encode"
	OpDecode = "decode"
)

// Variant names used as the "variant" label.
const (
	VariantAllocating = "allocating"
	VariantInPlace    = "in_place"
)

// Metrics holds the codec's Prometheus collectors.
type Metrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesTotal        *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
}

// NewMetrics registers the collectors with the default registry.
func NewMetrics(cfg config.MetricsConfig) *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer, cfg)
}

// NewMetricsWithRegistry registers the collectors with reg. Tests use a fresh
// registry per case to avoid duplicate registration panics.
func NewMetricsWithRegistry(reg prometheus.Registerer, cfg config.MetricsConfig) *Metrics {
	factory := promauto.With(reg)
	ns := cfg.Namespace

	return &Metrics{
		operationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "operations_total",
				Help:      "Total number of codec operations",
			},
			[]string{"operation", "variant"},
		),
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "operation_duration_seconds",
				Help:      "Codec operation duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 12),
			},
			[]string{"operation"},
		),
		bytesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "bytes_total",
				Help:      "Total bytes consumed and produced by codec operations",
			},
			[]string{"operation", "direction"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "errors_total",
				Help:      "Total number of failed codec operations by error kind",
			},
			[]string{"operation", "kind"},
		),
	}
}

// RecordOperation records a completed operation with its input and output
// sizes. The duration observation carries a trace exemplar when ctx holds a
// sampled span.
func (m *Metrics) RecordOperation(ctx context.Context, operation, variant string, duration time.Duration, in, out int) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(operation, variant).Inc()
	m.bytesTotal.WithLabelValues(operation, "in").Add(float64(in))
	m.bytesTotal.WithLabelValues(operation, "out").Add(float64(out))

	obs := m.operationDuration.WithLabelValues(operation)
	if labels := getExemplar(ctx); labels != nil {
		if eo, ok := obs.(prometheus.ExemplarObserver); ok {
			eo.ObserveWithExemplar(duration.Seconds(), labels)
			return
		}
	}
	obs.Observe(duration.Seconds())
}

// RecordError records a failed operation.
func (m *Metrics) RecordError(ctx context.Context, operation, kind string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(operation, kind).Inc()
}

func getExemplar(ctx context.Context) prometheus.Labels {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return nil
	}
	return prometheus.Labels{"trace_id": sc.TraceID().String()}
}
