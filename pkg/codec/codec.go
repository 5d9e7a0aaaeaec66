// Package codec wraps the pure Base64 functions in pkg/b64 with structured
// logging, Prometheus metrics and OpenTelemetry spans.
package codec

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kenneth/b64-codec/internal/debug"
	"github.com/kenneth/b64-codec/pkg/b64"
	"github.com/kenneth/b64-codec/pkg/config"
	"github.com/kenneth/b64-codec/pkg/metrics"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Codec is an instrumented Base64 codec. It is safe for concurrent use.
type Codec struct {
	logger  *logrus.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Codec.
type Option func(*codecOptions)

type codecOptions struct {
	tracerProvider trace.TracerProvider
}

// WithTracerProvider sets the provider spans are created from. The global
// provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *codecOptions) {
		o.tracerProvider = tp
	}
}

// New creates a Codec. m may be nil; it is ignored when metrics are disabled
// in cfg. Spans are only produced when tracing is enabled in cfg. A debug log
// level in cfg turns on per-operation debug logging unless DEBUG or LOG_LEVEL
// is set in the environment.
func New(cfg *config.Config, logger *logrus.Logger, m *metrics.Metrics, opts ...Option) *Codec {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = cfg.NewLogger()
	}
	debug.InitFromLogLevel(cfg.LogLevel)

	var o codecOptions
	for _, opt := range opts {
		opt(&o)
	}

	var tp trace.TracerProvider = noop.NewTracerProvider()
	if cfg.Tracing.Enabled {
		tp = o.tracerProvider
		if tp == nil {
			tp = otel.GetTracerProvider()
		}
	}

	if !cfg.Metrics.Enabled {
		m = nil
	}

	return &Codec{
		logger:  logger,
		metrics: m,
		tracer:  tp.Tracer(cfg.Tracing.TracerName),
	}
}

// ApplyConfig re-applies the log settings of cfg to the codec's logger and
// the debug flag. It is meant to be passed to config.NewWatcher. Metrics and
// tracing are fixed at construction.
func (c *Codec) ApplyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	cfg.ApplyLogSettings(c.logger)
	debug.InitFromLogLevel(cfg.LogLevel)
}

// Encode returns the Base64 encoding of src in a new slice.
func (c *Codec) Encode(ctx context.Context, src []byte) []byte {
	ctx, span := c.start(ctx, "b64.Encode", metrics.VariantAllocating, len(src))
	defer span.End()

	start := time.Now()
	out := b64.Encode(src)
	c.succeeded(ctx, span, metrics.OpEncode, metrics.VariantAllocating, time.Since(start), len(src), len(out))
	return out
}

// EncodeTo writes the Base64 encoding of src into dst, which must hold at
// least b64.EncodedLen(len(src)) bytes.
func (c *Codec) EncodeTo(ctx context.Context, dst, src []byte) error {
	ctx, span := c.start(ctx, "b64.EncodeTo", metrics.VariantInPlace, len(src))
	defer span.End()

	start := time.Now()
	n := b64.EncodedLen(len(src))
	if !b64.EncodeTo(dst, src) {
		err := fmt.Errorf("encode: %w (need %d, have %d)", b64.ErrShortBuffer, n, len(dst))
		c.failed(ctx, span, metrics.OpEncode, metrics.VariantInPlace, len(src), err)
		return err
	}
	c.succeeded(ctx, span, metrics.OpEncode, metrics.VariantInPlace, time.Since(start), len(src), n)
	return nil
}

// Decode returns the bytes represented by src in a new slice of
// b64.DecodedLen(len(src)) bytes, padding positions included as zeros.
func (c *Codec) Decode(ctx context.Context, src []byte) ([]byte, error) {
	ctx, span := c.start(ctx, "b64.Decode", metrics.VariantAllocating, len(src))
	defer span.End()

	start := time.Now()
	out, err := b64.Decode(src)
	if err != nil {
		err = fmt.Errorf("decode: %w", err)
		c.failed(ctx, span, metrics.OpDecode, metrics.VariantAllocating, len(src), err)
		return nil, err
	}
	c.succeeded(ctx, span, metrics.OpDecode, metrics.VariantAllocating, time.Since(start), len(src), len(out))
	return out, nil
}

// DecodeTo decodes src into dst, which must hold at least
// b64.DecodedLen(len(src)) bytes. On error dst is undefined.
func (c *Codec) DecodeTo(ctx context.Context, dst, src []byte) error {
	ctx, span := c.start(ctx, "b64.DecodeTo", metrics.VariantInPlace, len(src))
	defer span.End()

	start := time.Now()
	if err := b64.DecodeTo(dst, src); err != nil {
		err = fmt.Errorf("decode: %w", err)
		c.failed(ctx, span, metrics.OpDecode, metrics.VariantInPlace, len(src), err)
		return err
	}
	c.succeeded(ctx, span, metrics.OpDecode, metrics.VariantInPlace, time.Since(start), len(src), b64.DecodedLen(len(src)))
	return nil
}

// DecodePayload decodes src and drops the zero bytes that stand for padding,
// returning exactly the originally encoded data.
func (c *Codec) DecodePayload(ctx context.Context, src []byte) ([]byte, error) {
	out, err := c.Decode(ctx, src)
	if err != nil {
		return nil, err
	}
	return out[:b64.PayloadLen(src)], nil
}

func (c *Codec) start(ctx context.Context, name, variant string, in int) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("b64.variant", variant),
		attribute.Int("b64.input_bytes", in),
	))
}

func (c *Codec) succeeded(ctx context.Context, span trace.Span, op, variant string, d time.Duration, in, out int) {
	span.SetAttributes(attribute.Int("b64.output_bytes", out))
	c.metrics.RecordOperation(ctx, op, variant, d, in, out)

	if debug.Enabled() {
		c.logger.WithFields(logrus.Fields{
			"operation":    op,
			"variant":      variant,
			"input_bytes":  in,
			"output_bytes": out,
			"duration_ns":  d.Nanoseconds(),
		}).Debug("Codec operation completed")
	}
}

func (c *Codec) failed(ctx context.Context, span trace.Span, op, variant string, in int, err error) {
	kind := ErrorKind(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, kind)
	c.metrics.RecordError(ctx, op, kind)

	fields := logrus.Fields{
		"operation":   op,
		"variant":     variant,
		"input_bytes": in,
		"kind":        kind,
	}
	var de *b64.DecodeError
	if errors.As(err, &de) {
		fields["offset"] = de.Offset
	}
	c.logger.WithError(err).WithFields(fields).Warn("Codec operation failed")
}

// ErrorKind maps an error from pkg/b64 to a short label for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, b64.ErrInvalidLength):
		return "invalid_length"
	case errors.Is(err, b64.ErrInvalidCharacter):
		return "invalid_character"
	case errors.Is(err, b64.ErrPaddingViolation):
		return "padding_violation"
	case errors.Is(err, b64.ErrShortBuffer):
		return "short_buffer"
	default:
		return "unknown"
	}
}
