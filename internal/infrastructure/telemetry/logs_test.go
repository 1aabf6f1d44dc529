package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func disabledLogsProvider(t *testing.T) *LoggerProvider {
	t.Helper()

	provider, err := NewLoggerProvider(context.Background(), LogsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "opas-backend",
		Insecure:          true,
	}, zap.NewNop())
	require.NoError(t, err)
	return provider
}

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	provider := disabledLogsProvider(t)

	assert.False(t, provider.IsEnabled())
	assert.Nil(t, provider.GetLoggerProvider())

	assert.NoError(t, provider.Shutdown(ctx))
	assert.NoError(t, provider.Shutdown(ctx), "repeated shutdown must stay safe")
	assert.NoError(t, provider.ForceFlush(ctx))
}

func TestLoggerProvider_GetConfig(t *testing.T) {
	provider := disabledLogsProvider(t)

	cfg := provider.GetConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "localhost:14317", cfg.CollectorEndpoint)
	assert.Equal(t, "opas-backend", cfg.ServiceName)
	assert.True(t, cfg.Insecure)
}

// An enabled provider does not need a reachable collector at construction
// time; the exporter buffers until the endpoint comes up.
func TestNewLoggerProvider_EnabledWithoutCollector(t *testing.T) {
	ctx := context.Background()

	provider, err := NewLoggerProvider(ctx, LogsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:19999",
		ServiceName:       "opas-backend",
		Insecure:          true,
	}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, provider)

	assert.True(t, provider.IsEnabled())
	assert.NotNil(t, provider.GetLoggerProvider())

	assert.NoError(t, provider.Shutdown(ctx))
}

func TestNewZapOTELCore(t *testing.T) {
	t.Run("nil provider yields nop core", func(t *testing.T) {
		core := NewZapOTELCore(ZapBridgeConfig{
			ServiceName: "opas-backend",
			Level:       zapcore.InfoLevel,
		})

		require.NotNil(t, core)
		assert.False(t, core.Enabled(zapcore.InfoLevel))
	})

	t.Run("disabled provider yields nop core", func(t *testing.T) {
		core := NewZapOTELCore(ZapBridgeConfig{
			ServiceName:    "opas-backend",
			LoggerProvider: disabledLogsProvider(t),
			Level:          zapcore.InfoLevel,
		})

		require.NotNil(t, core)
		assert.False(t, core.Enabled(zapcore.InfoLevel))
	})

	t.Run("enabled provider at debug level passes everything", func(t *testing.T) {
		ctx := context.Background()
		provider, err := NewLoggerProvider(ctx, LogsConfig{
			Enabled:           true,
			CollectorEndpoint: "localhost:19999",
			ServiceName:       "opas-backend",
			Insecure:          true,
		}, zap.NewNop())
		require.NoError(t, err)
		defer provider.Shutdown(ctx)

		core := NewZapOTELCore(ZapBridgeConfig{
			ServiceName:    "opas-backend",
			LoggerProvider: provider,
			Level:          zapcore.DebugLevel,
		})

		require.NotNil(t, core)
		assert.True(t, core.Enabled(zapcore.DebugLevel))
		assert.True(t, core.Enabled(zapcore.ErrorLevel))
	})

	t.Run("enabled provider above debug gets a level filter", func(t *testing.T) {
		ctx := context.Background()
		provider, err := NewLoggerProvider(ctx, LogsConfig{
			Enabled:           true,
			CollectorEndpoint: "localhost:19999",
			ServiceName:       "opas-backend",
			Insecure:          true,
		}, zap.NewNop())
		require.NoError(t, err)
		defer provider.Shutdown(ctx)

		core := NewZapOTELCore(ZapBridgeConfig{
			ServiceName:    "opas-backend",
			LoggerProvider: provider,
			Level:          zapcore.WarnLevel,
		})

		_, filtered := core.(*minLevelCore)
		assert.True(t, filtered)

		assert.False(t, core.Enabled(zapcore.DebugLevel))
		assert.False(t, core.Enabled(zapcore.InfoLevel))
		assert.True(t, core.Enabled(zapcore.WarnLevel))
		assert.True(t, core.Enabled(zapcore.ErrorLevel))
	})
}

func TestNewBridgedLogger(t *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.InfoLevel)

	logger := NewBridgedLogger(observedCore, zapcore.NewNopCore(), zap.AddCaller())

	logger.Info("ceiling updated", zap.String("product_code", "RICE-5KG"))
	logger.Debug("below threshold")
	logger.Warn("stock below reorder point")

	logs := observedLogs.All()
	require.Len(t, logs, 2)

	assert.Equal(t, "ceiling updated", logs[0].Message)
	assert.Equal(t, zapcore.InfoLevel, logs[0].Level)
	assert.Contains(t, logs[0].Context, zap.String("product_code", "RICE-5KG"))

	assert.Equal(t, "stock below reorder point", logs[1].Message)
	assert.Equal(t, zapcore.WarnLevel, logs[1].Level)
}

func TestCreateBridgedLoggerFromConfig(t *testing.T) {
	baseConfig := &BaseLoggerConfig{
		Level:      "debug",
		Format:     "json",
		Output:     "stdout",
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}

	logger, err := CreateBridgedLoggerFromConfig(baseConfig, disabledLogsProvider(t), "opas-backend")
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("seller registration accepted",
		zap.String("request_id", "req-seller-listing"),
		zap.String("seller_code", "SLR-2026-00042"),
	)
	logger.Sync()
}

func TestDefaultBaseLoggerConfig(t *testing.T) {
	cfg := DefaultBaseLoggerConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
	assert.NotEmpty(t, cfg.TimeFormat)
}

func TestZapLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}

	for input, want := range cases {
		assert.Equal(t, want, zapLevel(input), "level %q", input)
	}
}

func TestBuildLogEncoder(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		encoder := buildLogEncoder(&BaseLoggerConfig{
			Format:     "json",
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		})

		buf, err := encoder.EncodeEntry(zapcore.Entry{
			Level:   zapcore.InfoLevel,
			Message: "alert raised",
		}, nil)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), `"level":"info"`)
		assert.Contains(t, buf.String(), `"msg":"alert raised"`)
	})

	t.Run("console", func(t *testing.T) {
		encoder := buildLogEncoder(&BaseLoggerConfig{
			Format:     "console",
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		})

		buf, err := encoder.EncodeEntry(zapcore.Entry{
			Level:   zapcore.InfoLevel,
			Message: "alert raised",
		}, nil)
		require.NoError(t, err)
		assert.NotContains(t, buf.String(), `"level"`)
	})
}

func TestLogOutputSyncer(t *testing.T) {
	assert.NotNil(t, logOutputSyncer("stdout"))
	assert.NotNil(t, logOutputSyncer("stderr"))
	// Unsupported outputs fall back to stdout rather than failing.
	assert.NotNil(t, logOutputSyncer("/var/log/opas.log"))
}

func TestBuildBaseCore(t *testing.T) {
	core := buildBaseCore(&BaseLoggerConfig{
		Level:      "info",
		Format:     "json",
		Output:     "stdout",
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	require.NotNil(t, core)

	assert.True(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.WarnLevel))
	assert.False(t, core.Enabled(zapcore.DebugLevel))
}

func TestMinLevelCore(t *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.DebugLevel)

	filtered := &minLevelCore{
		Core:     observedCore,
		minLevel: zapcore.WarnLevel,
	}

	assert.True(t, filtered.Enabled(zapcore.WarnLevel))
	assert.True(t, filtered.Enabled(zapcore.ErrorLevel))
	assert.False(t, filtered.Enabled(zapcore.InfoLevel))
	assert.False(t, filtered.Enabled(zapcore.DebugLevel))

	logger := zap.New(filtered)
	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	logs := observedLogs.All()
	require.Len(t, logs, 2)
	assert.Equal(t, "warn", logs[0].Message)
	assert.Equal(t, "error", logs[1].Message)
}

func TestMinLevelCore_With(t *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.DebugLevel)

	filtered := &minLevelCore{
		Core:     observedCore,
		minLevel: zapcore.WarnLevel,
	}

	childCore := filtered.With([]zapcore.Field{zap.String("domain", "pricing")})

	child, ok := childCore.(*minLevelCore)
	require.True(t, ok, "With must preserve the level filter")
	assert.Equal(t, zapcore.WarnLevel, child.minLevel)

	zap.New(childCore).Warn("ceiling breach detected")

	logs := observedLogs.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "ceiling breach detected", logs[0].Message)
	assert.Contains(t, logs[0].Context, zap.String("domain", "pricing"))
}

func TestLogFieldEncoding(t *testing.T) {
	var buf bytes.Buffer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(&buf),
		zapcore.DebugLevel,
	)

	zap.New(core).Info("stock adjusted",
		zap.String("product_code", "OIL-1L"),
		zap.Int("quantity", 42),
		zap.Bool("below_threshold", true),
		zap.Strings("warehouses", []string{"north", "south"}),
	)

	output := buf.String()
	assert.Contains(t, output, `"product_code":"OIL-1L"`)
	assert.Contains(t, output, `"quantity":42`)
	assert.Contains(t, output, `"below_threshold":true`)
	assert.Contains(t, output, `"warehouses":["north","south"]`)
}
