package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func devLogger(t *testing.T) *zap.Logger {
	t.Helper()

	logger, err := NewForEnvironment("development")
	require.NoError(t, err)
	return logger
}

// bufferedLogger writes JSON entries into the returned buffer for content
// assertions.
func bufferedLogger() (*zap.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(&buf),
		zapcore.DebugLevel,
	)
	return zap.New(core), &buf
}

// noopSpanContext starts a span from a noop tracer. Such spans carry an
// invalid SpanContext, which the trace helpers must tolerate.
func noopSpanContext(t *testing.T) (context.Context, trace.Span) {
	t.Helper()

	tracer := noop.NewTracerProvider().Tracer("opas-test")
	return tracer.Start(context.Background(), "list-sellers")
}

func TestWithContext(t *testing.T) {
	logger := devLogger(t)

	ctx := WithContext(context.Background(), logger)

	assert.Equal(t, logger, FromContext(ctx))
}

func TestFromContext_Fallback(t *testing.T) {
	t.Run("empty context yields a usable no-op logger", func(t *testing.T) {
		logger := FromContext(context.Background())
		require.NotNil(t, logger)

		assert.NotPanics(t, func() {
			logger.Info("listing sellers")
			logger.With(zap.String("seller_code", "SL-2026-0001")).Warn("slow query")
		})
	})

	t.Run("wrong value type yields a usable no-op logger", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")
		logger := FromContext(ctx)
		require.NotNil(t, logger)

		assert.NotPanics(t, func() { logger.Info("test") })
	})
}

func TestWithRequestID(t *testing.T) {
	base := devLogger(t)

	ctx, stamped := WithRequestID(context.Background(), base, "req-seller-listing")

	assert.Equal(t, "req-seller-listing", GetRequestID(ctx))
	assert.NotEqual(t, base, stamped)
	assert.Equal(t, stamped, FromContext(ctx), "the stamped logger must replace the one in context")
}

func TestWithRequestID_Override(t *testing.T) {
	base := devLogger(t)

	ctx, _ := WithRequestID(context.Background(), base, "req-first")
	assert.Equal(t, "req-first", GetRequestID(ctx))

	ctx, _ = WithRequestID(ctx, base, "req-second")
	assert.Equal(t, "req-second", GetRequestID(ctx))
}

func TestWithUserID(t *testing.T) {
	base := devLogger(t)

	ctx, stamped := WithUserID(context.Background(), base, "admin-42")

	assert.Equal(t, "admin-42", GetUserID(ctx))
	assert.NotNil(t, stamped)
}

func TestContextChaining(t *testing.T) {
	ctx := context.Background()
	logger := devLogger(t)

	ctx, logger = WithRequestID(ctx, logger, "req-1")
	ctx, logger = WithUserID(ctx, logger, "admin-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "admin-1", GetUserID(ctx))
	assert.NotNil(t, logger)
}

func TestGetRequestID_Absent(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestGetUserID_Absent(t *testing.T) {
	assert.Empty(t, GetUserID(context.Background()))
}

func TestContextKeysAreDistinct(t *testing.T) {
	assert.NotEqual(t, LoggerKey, RequestIDKey)
	assert.NotEqual(t, RequestIDKey, UserIDKey)
	assert.NotEqual(t, LoggerKey, UserIDKey)
}

func TestTraceHelpers_NoSpan(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetSpanID(ctx))

	base := zap.NewNop()
	assert.Equal(t, base, WithTraceContext(ctx, base))
}

func TestTraceHelpers_InvalidSpanContext(t *testing.T) {
	ctx, span := noopSpanContext(t)
	defer span.End()

	require.False(t, trace.SpanFromContext(ctx).SpanContext().IsValid())

	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetSpanID(ctx))

	base := zap.NewNop()
	assert.Equal(t, base, WithTraceContext(ctx, base), "invalid spans must not stamp the logger")
}

func TestL(t *testing.T) {
	t.Run("empty context", func(t *testing.T) {
		cl := L(context.Background())

		require.NotNil(t, cl)
		assert.NotNil(t, cl.ctx)
		assert.NotNil(t, cl.logger)
	})

	t.Run("logger stored in context", func(t *testing.T) {
		logger := devLogger(t)
		ctx := WithContext(context.Background(), logger)

		cl := L(ctx)
		assert.Equal(t, logger, cl.logger)
	})
}

func TestWithLogger(t *testing.T) {
	logger := devLogger(t)

	cl := WithLogger(context.Background(), logger)

	require.NotNil(t, cl)
	assert.Equal(t, logger, cl.logger)
}

func TestContextLogger_With(t *testing.T) {
	base, _ := bufferedLogger()
	ctx := context.Background()

	child := WithLogger(ctx, base).With(zap.String("domain", "pricing"))

	require.NotNil(t, child)
	assert.Equal(t, ctx, child.ctx)
	assert.NotEqual(t, base, child.logger)
}

func TestContextLogger_WithChaining(t *testing.T) {
	cl := WithLogger(context.Background(), zap.NewNop()).
		With(zap.String("domain", "pricing")).
		With(zap.String("product_code", "RICE-5KG"))

	require.NotNil(t, cl)
	assert.NotPanics(t, func() { cl.Info("ceiling updated") })
}

func TestContextLogger_LogLevels(t *testing.T) {
	cl := WithLogger(context.Background(), zap.NewNop())

	assert.NotPanics(t, func() {
		cl.Debug("debug message")
		cl.Info("info message")
		cl.Warn("warn message")
		cl.Error("error message")
	})
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := &ContextLogger{ctx: context.Background()}

	assert.NotPanics(t, func() { cl.Info("test") })
}

func TestContextLogger_Zap(t *testing.T) {
	cl := WithLogger(context.Background(), zap.NewNop())

	zapLogger := cl.Zap()
	require.NotNil(t, zapLogger)
	assert.NotPanics(t, func() { zapLogger.Info("test") })
}

func TestContextLogger_Sugar(t *testing.T) {
	cl := WithLogger(context.Background(), zap.NewNop())

	sugar := cl.Sugar()
	require.NotNil(t, sugar)
	assert.NotPanics(t, func() { sugar.Infof("ceiling %s updated", "RICE-5KG") })
}

func TestContextLogger_InjectsContextFields(t *testing.T) {
	base, buf := bufferedLogger()

	ctx := context.Background()
	ctx, _ = WithRequestID(ctx, base, "req-ceiling-import")
	ctx, _ = WithUserID(ctx, base, "admin-42")
	ctx = WithContext(ctx, base)

	L(ctx).Info("import accepted", zap.String("session_id", "imp-2026-001"))

	output := buf.String()
	assert.Contains(t, output, `"request_id":"req-ceiling-import"`)
	assert.Contains(t, output, `"user_id":"admin-42"`)
	assert.Contains(t, output, `"session_id":"imp-2026-001"`)
	assert.Contains(t, output, `"msg":"import accepted"`)
}

func TestContextLogger_ExplicitLoggerPicksUpContextValues(t *testing.T) {
	base, buf := bufferedLogger()

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-aaa")
	ctx = context.WithValue(ctx, UserIDKey, "admin-ccc")

	WithLogger(ctx, base).Info("test")

	output := buf.String()
	assert.Contains(t, output, `"request_id":"req-aaa"`)
	assert.Contains(t, output, `"user_id":"admin-ccc"`)
}

func TestContextLogger_OmitsEmptyContextFields(t *testing.T) {
	base, buf := bufferedLogger()

	WithLogger(context.Background(), base).Info("test")

	output := buf.String()
	assert.Contains(t, output, `"msg":"test"`)
	assert.NotContains(t, output, `"request_id"`)
	assert.NotContains(t, output, `"user_id"`)
}
