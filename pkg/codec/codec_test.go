package codec

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kenneth/b64-codec/internal/debug"
	"github.com/kenneth/b64-codec/pkg/b64"
	"github.com/kenneth/b64-codec/pkg/config"
	"github.com/kenneth/b64-codec/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type fixture struct {
	codec    *Codec
	reg      *prometheus.Registry
	hook     *logtest.Hook
	recorder *tracetest.SpanRecorder
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Tracing.Enabled = true
	if mutate != nil {
		mutate(cfg)
	}

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	reg := prometheus.NewRegistry()
	m := metrics.NewMetricsWithRegistry(reg, cfg.Metrics)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})

	return &fixture{
		codec:    New(cfg, logger, m, WithTracerProvider(tp)),
		reg:      reg,
		hook:     hook,
		recorder: recorder,
	}
}

const (
	operationsHeader = `
# HELP b64_operations_total Total number of codec operations
# TYPE b64_operations_total counter
`
	bytesHeader = `
# HELP b64_bytes_total Total bytes consumed and produced by codec operations
# TYPE b64_bytes_total counter
`
	errorsHeader = `
# HELP b64_errors_total Total number of failed codec operations by error kind
# TYPE b64_errors_total counter
`
)

func assertMetrics(t *testing.T, reg *prometheus.Registry, expected string, names ...string) {
	t.Helper()
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected), names...)
	assert.NoError(t, err)
}

func TestCodec_EncodeDecode(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	encoded := f.codec.Encode(ctx, []byte("foob"))
	assert.Equal(t, "Zm9vYg==", string(encoded))

	decoded, err := f.codec.Decode(ctx, encoded)
	require.NoError(t, err)
	assert.Equal(t, []byte{'f', 'o', 'o', 'b', 0, 0}, decoded)

	payload, err := f.codec.DecodePayload(ctx, encoded)
	require.NoError(t, err)
	assert.Equal(t, "foob", string(payload))

	assertMetrics(t, f.reg, operationsHeader+`b64_operations_total{operation="decode",variant="allocating"} 2
b64_operations_total{operation="encode",variant="allocating"} 1
`+bytesHeader+`b64_bytes_total{direction="in",operation="decode"} 16
b64_bytes_total{direction="out",operation="decode"} 12
b64_bytes_total{direction="in",operation="encode"} 4
b64_bytes_total{direction="out",operation="encode"} 8
`, "b64_operations_total", "b64_bytes_total")
}

func TestCodec_InPlace(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	src := []byte("foobar")
	enc := make([]byte, b64.EncodedLen(len(src)))
	require.NoError(t, f.codec.EncodeTo(ctx, enc, src))
	assert.Equal(t, "Zm9vYmFy", string(enc))

	dec := make([]byte, b64.DecodedLen(len(enc)))
	require.NoError(t, f.codec.DecodeTo(ctx, dec, enc))
	assert.Equal(t, "foobar", string(dec))

	assertMetrics(t, f.reg, operationsHeader+`b64_operations_total{operation="decode",variant="in_place"} 1
b64_operations_total{operation="encode",variant="in_place"} 1
`, "b64_operations_total")
}

func TestCodec_EncodeTo_ShortBuffer(t *testing.T) {
	f := newFixture(t, nil)

	err := f.codec.EncodeTo(context.Background(), make([]byte, 3), []byte("foo"))
	require.Error(t, err)
	assert.ErrorIs(t, err, b64.ErrShortBuffer)
	assert.Equal(t, "short_buffer", ErrorKind(err))
	assertMetrics(t, f.reg, errorsHeader+`b64_errors_total{kind="short_buffer",operation="encode"} 1
`, "b64_errors_total")
}

func TestCodec_DecodeErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  error
		label string
	}{
		{"Zm9vY", b64.ErrInvalidLength, "invalid_length"},
		{"Zm9!", b64.ErrInvalidCharacter, "invalid_character"},
		{"AB=A", b64.ErrPaddingViolation, "padding_violation"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			f := newFixture(t, nil)

			out, err := f.codec.Decode(context.Background(), []byte(tt.input))
			require.Error(t, err)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.label, ErrorKind(err))

			assertMetrics(t, f.reg, errorsHeader+`b64_errors_total{kind="`+tt.label+`",operation="decode"} 1
`, "b64_errors_total")

			entry := f.hook.LastEntry()
			require.NotNil(t, entry)
			assert.Equal(t, logrus.WarnLevel, entry.Level)
			assert.Equal(t, tt.label, entry.Data["kind"])
			assert.Contains(t, entry.Data, "offset")

			spans := f.recorder.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, "b64.Decode", spans[0].Name())
			assert.Equal(t, codes.Error, spans[0].Status().Code)
		})
	}
}

func TestCodec_DecodeTo_Error(t *testing.T) {
	f := newFixture(t, nil)

	err := f.codec.DecodeTo(context.Background(), make([]byte, 3), []byte("Zm9!"))
	require.Error(t, err)

	var de *b64.DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 3, de.Offset)
	assert.Equal(t, byte('!'), de.Char)
}

func TestCodec_DecodePayload_Error(t *testing.T) {
	f := newFixture(t, nil)

	out, err := f.codec.DecodePayload(context.Background(), []byte("Zg==Zg=="))
	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, b64.ErrPaddingViolation)
}

func TestCodec_Spans(t *testing.T) {
	f := newFixture(t, nil)

	f.codec.Encode(context.Background(), []byte("fo"))

	spans := f.recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "b64.Encode", spans[0].Name())

	attrs := map[string]int64{}
	for _, kv := range spans[0].Attributes() {
		if kv.Value.Type() == attribute.INT64 {
			attrs[string(kv.Key)] = kv.Value.AsInt64()
		}
	}
	assert.Equal(t, int64(2), attrs["b64.input_bytes"])
	assert.Equal(t, int64(4), attrs["b64.output_bytes"])
}

func TestCodec_TracingDisabled(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.Tracing.Enabled = false
	})

	f.codec.Encode(context.Background(), []byte("foo"))
	assert.Empty(t, f.recorder.Ended())
}

func TestCodec_MetricsDisabled(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.Metrics.Enabled = false
	})

	f.codec.Encode(context.Background(), []byte("foo"))
	_, err := f.codec.Decode(context.Background(), []byte("!!!!"))
	require.Error(t, err)

	count, err := testutil.GatherAndCount(f.reg)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCodec_DebugLogging(t *testing.T) {
	f := newFixture(t, nil)
	defer debug.SetEnabled(debug.Enabled())

	debug.SetEnabled(false)
	f.codec.Encode(context.Background(), []byte("foo"))
	assert.Empty(t, f.hook.AllEntries())

	debug.SetEnabled(true)
	f.codec.Encode(context.Background(), []byte("foo"))
	entry := f.hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "encode", entry.Data["operation"])
}

func TestNew_Defaults(t *testing.T) {
	c := New(nil, nil, nil)
	require.NotNil(t, c)

	out, err := c.Decode(context.Background(), c.Encode(context.Background(), []byte("f")))
	require.NoError(t, err)
	assert.Equal(t, []byte{'f', 0, 0}, out)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "", ErrorKind(nil))
	assert.Equal(t, "unknown", ErrorKind(errors.New("boom")))
}

func clearDebugEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"DEBUG", "B64_DEBUG", "LOG_LEVEL", "B64_LOG_LEVEL"} {
		t.Setenv(name, "")
	}
}

func TestNew_DebugLogLevelFromConfigFile(t *testing.T) {
	clearDebugEnv(t)
	defer debug.SetEnabled(debug.Enabled())
	debug.SetEnabled(false)

	path := filepath.Join(t.TempDir(), "codec.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o644))
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	logger, hook := logtest.NewNullLogger()
	cfg.ApplyLogSettings(logger)

	c := New(cfg, logger, nil)
	c.Encode(context.Background(), []byte("foo"))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "Codec operation completed", entry.Message)
}

func TestCodec_ApplyConfigFromWatcher(t *testing.T) {
	clearDebugEnv(t)
	defer debug.SetEnabled(debug.Enabled())

	path := filepath.Join(t.TempDir(), "codec.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o644))
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	logger, hook := logtest.NewNullLogger()
	cfg.ApplyLogSettings(logger)
	c := New(cfg, logger, nil)
	require.False(t, debug.Enabled())

	w, err := config.NewWatcher(path, logger, c.ApplyConfig)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o644))
	require.Eventually(t, func() bool {
		return debug.Enabled() && logger.GetLevel() == logrus.DebugLevel
	}, 5*time.Second, 10*time.Millisecond)

	hook.Reset()
	c.Encode(context.Background(), []byte("foo"))

	var debugEntries int
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.DebugLevel && e.Message == "Codec operation completed" {
			debugEntries++
		}
	}
	assert.Equal(t, 1, debugEntries)
}

func TestCodec_ApplyConfig_Nil(t *testing.T) {
	f := newFixture(t, nil)
	assert.NotPanics(t, func() {
		f.codec.ApplyConfig(nil)
	})
}
