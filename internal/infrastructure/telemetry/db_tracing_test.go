package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stockRow mimics an inventory table for exercising the callbacks
type stockRow struct {
	ID          uint   `gorm:"primaryKey"`
	ProductCode string `gorm:"size:50"`
	CreatedAt   time.Time
}

func openTracedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&stockRow{}))
	return db
}

func newSpanRecorder() (*trace.TracerProvider, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	return trace.NewTracerProvider(trace.WithSpanProcessor(recorder)), recorder
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL, "full SQL must stay off unless opted in")
	assert.True(t, cfg.WithoutVariables, "bind variables must be stripped by default")
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestDBTracingPlugin_RegisterOtelGorm(t *testing.T) {
	t.Run("disabled is a no-op", func(t *testing.T) {
		cfg := DefaultDBTracingConfig()
		plugin := NewDBTracingPlugin(cfg, zap.NewNop())

		assert.NoError(t, plugin.RegisterOtelGorm(openTracedTestDB(t)))
	})

	t.Run("enabled registers plugin and callbacks", func(t *testing.T) {
		cfg := DBTracingConfig{
			Enabled:          true,
			SlowQueryThresh:  200 * time.Millisecond,
			DBSystem:         "sqlite",
			WithoutVariables: true,
		}
		plugin := NewDBTracingPlugin(cfg, zap.NewNop())

		assert.NoError(t, plugin.RegisterOtelGorm(openTracedTestDB(t)))
	})

	t.Run("full SQL mode registers", func(t *testing.T) {
		cfg := DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      true,
			SlowQueryThresh: 200 * time.Millisecond,
			DBSystem:        "sqlite",
		}
		plugin := NewDBTracingPlugin(cfg, zap.NewNop())

		assert.NoError(t, plugin.RegisterOtelGorm(openTracedTestDB(t)))
	})

	t.Run("second registration fails on duplicate names", func(t *testing.T) {
		cfg := DBTracingConfig{
			Enabled:         true,
			SlowQueryThresh: 200 * time.Millisecond,
			DBSystem:        "sqlite",
		}
		plugin := NewDBTracingPlugin(cfg, zap.NewNop())
		db := openTracedTestDB(t)

		require.NoError(t, plugin.RegisterOtelGorm(db))
		assert.Error(t, plugin.RegisterOtelGorm(db))
	})
}

func TestDBTracingCallback_SpanAnnotations(t *testing.T) {
	t.Run("rows affected recorded", func(t *testing.T) {
		db := openTracedTestDB(t)
		tp, recorder := newSpanRecorder()
		defer func() { _ = tp.Shutdown(context.Background()) }()

		ctx, span := tp.Tracer("test").Start(context.Background(), "receive-stock")
		callback := NewDBTracingCallback(200 * time.Millisecond)

		rows := []stockRow{{ProductCode: "RICE-5KG"}, {ProductCode: "OIL-1L"}, {ProductCode: "FLOUR-2KG"}}
		result := db.WithContext(ctx).Create(&rows)
		require.NoError(t, result.Error)

		callback.AfterCallback(result.Statement.DB)
		span.End()

		spans := recorder.Ended()
		require.NotEmpty(t, spans)

		found := false
		for _, attr := range spans[0].Attributes() {
			if attr.Key == "db.rows_affected" {
				found = true
				assert.Equal(t, int64(3), attr.Value.AsInt64())
			}
		}
		assert.True(t, found, "db.rows_affected attribute missing")
	})

	t.Run("record not found is not a span error", func(t *testing.T) {
		db := openTracedTestDB(t)
		tp, recorder := newSpanRecorder()
		defer func() { _ = tp.Shutdown(context.Background()) }()

		ctx, span := tp.Tracer("test").Start(context.Background(), "lookup-missing")
		callback := NewDBTracingCallback(200 * time.Millisecond)

		var row stockRow
		tx := db.WithContext(ctx).First(&row, 99999)

		callback.AfterCallback(tx)
		span.End()

		spans := recorder.Ended()
		require.NotEmpty(t, spans)
		assert.NotEqual(t, codes.Error, spans[0].Status().Code)
	})

	t.Run("slow query adds warning event", func(t *testing.T) {
		db := openTracedTestDB(t)
		tp, recorder := newSpanRecorder()
		defer func() { _ = tp.Shutdown(context.Background()) }()

		ctx, span := tp.Tracer("test").Start(context.Background(), "slow-lookup")
		ctx = WithQueryStartTime(ctx)
		time.Sleep(time.Millisecond)

		callback := NewDBTracingCallback(time.Nanosecond)
		var row stockRow
		db.WithContext(ctx).First(&row)
		callback.AfterCallback(db.Statement.DB)
		span.End()

		spans := recorder.Ended()
		require.NotEmpty(t, spans)

		foundEvent := false
		for _, event := range spans[0].Events() {
			if event.Name == "slow_query_warning" {
				foundEvent = true
			}
		}
		assert.True(t, foundEvent, "slow_query_warning event missing")
	})

	t.Run("safe without span or context", func(t *testing.T) {
		db := openTracedTestDB(t)
		callback := NewDBTracingCallback(200 * time.Millisecond)

		assert.NotPanics(t, func() {
			callback.AfterCallback(db.WithContext(context.Background()))
		})
		assert.NotPanics(t, func() {
			callback.AfterCallback(db)
		})
	})
}

func TestDBTracingCallback_RegisterCallbacks(t *testing.T) {
	callback := NewDBTracingCallback(200 * time.Millisecond)
	assert.NoError(t, callback.RegisterCallbacks(openTracedTestDB(t)))
}

func TestWithQueryStartTime(t *testing.T) {
	ctx := WithQueryStartTime(context.Background())

	startTime, ok := ctx.Value(queryStartTimeKey).(time.Time)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), startTime, time.Second)
}

func TestDBTracingPlugin_EndToEnd(t *testing.T) {
	db := openTracedTestDB(t)
	tp, recorder := newSpanRecorder()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	cfg := DBTracingConfig{
		Enabled:         true,
		LogFullSQL:      true,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "sqlite",
	}
	plugin := NewDBTracingPlugin(cfg, zap.NewNop())
	require.NoError(t, plugin.RegisterOtelGorm(db))

	ctx, span := tp.Tracer("test").Start(context.Background(), "inventory-roundtrip")

	traced := db.WithContext(ctx)
	require.NoError(t, traced.Create(&stockRow{ProductCode: "BEANS-1KG"}).Error)

	var found stockRow
	require.NoError(t, traced.First(&found, "product_code = ?", "BEANS-1KG").Error)
	assert.Equal(t, "BEANS-1KG", found.ProductCode)

	span.End()
	assert.NotEmpty(t, recorder.Ended())
}
