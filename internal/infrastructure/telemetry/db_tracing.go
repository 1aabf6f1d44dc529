package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls the otelgorm integration.
type DBTracingConfig struct {
	Enabled          bool
	LogFullSQL       bool          // include full SQL in spans; keep off outside development
	SlowQueryThresh  time.Duration // queries above this get a slow_query_warning event
	DBSystem         string
	WithoutVariables bool // strip bind variables from the recorded SQL
}

// DefaultDBTracingConfig returns the disabled, variables-stripped default.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:          false,
		LogFullSQL:       false,
		SlowQueryThresh:  200 * time.Millisecond,
		DBSystem:         "postgresql",
		WithoutVariables: true,
	}
}

type contextKey string

// queryStartTimeKey carries the query start time from the before callback to
// the after callback.
const queryStartTimeKey contextKey = "otel_query_start_time"

// WithQueryStartTime stamps the context with the current time for slow-query
// measurement.
func WithQueryStartTime(ctx context.Context) context.Context {
	return context.WithValue(ctx, queryStartTimeKey, time.Now())
}

// stampStartTime is the shared before callback for every GORM operation.
func stampStartTime(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

// annotateSpan enriches the active span with row counts and table name, marks
// non-not-found errors, and flags queries slower than the threshold.
func annotateSpan(db *gorm.DB, slowThresh time.Duration) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if startTime, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		if elapsed := time.Since(startTime); elapsed > slowThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", slowThresh.Milliseconds()),
			))
		}
	}
}

// registerOnAllOps registers a callback either before or after the core
// callback of each GORM operation type.
func registerOnAllOps(db *gorm.DB, prefix string, after bool, fn func(*gorm.DB)) error {
	for _, op := range []string{"create", "query", "update", "delete", "row", "raw"} {
		anchor := "gorm:" + op
		name := prefix + op

		var err error
		switch {
		case after:
			switch op {
			case "create":
				err = db.Callback().Create().After(anchor).Register(name, fn)
			case "query":
				err = db.Callback().Query().After(anchor).Register(name, fn)
			case "update":
				err = db.Callback().Update().After(anchor).Register(name, fn)
			case "delete":
				err = db.Callback().Delete().After(anchor).Register(name, fn)
			case "row":
				err = db.Callback().Row().After(anchor).Register(name, fn)
			case "raw":
				err = db.Callback().Raw().After(anchor).Register(name, fn)
			}
		default:
			switch op {
			case "create":
				err = db.Callback().Create().Before(anchor).Register(name, fn)
			case "query":
				err = db.Callback().Query().Before(anchor).Register(name, fn)
			case "update":
				err = db.Callback().Update().Before(anchor).Register(name, fn)
			case "delete":
				err = db.Callback().Delete().Before(anchor).Register(name, fn)
			case "row":
				err = db.Callback().Row().Before(anchor).Register(name, fn)
			case "raw":
				err = db.Callback().Raw().Before(anchor).Register(name, fn)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// DBTracingPlugin wires otelgorm spans plus slow-query annotation into a GORM
// instance.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a database tracing plugin.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{
		config: cfg,
		logger: logger,
	}
}

// RegisterOtelGorm installs the otelgorm plugin and the timing callbacks.
// A no-op when tracing is disabled.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBSystem),
	}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	if err := registerOnAllOps(db, "otel_timing:before_", false, stampStartTime); err != nil {
		return err
	}
	if err := registerOnAllOps(db, "otel_slow_query:", true, func(db *gorm.DB) {
		annotateSpan(db, p.config.SlowQueryThresh)
	}); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

// DBTracingCallback is the standalone timing/annotation callback pair for
// setups that bring their own span creation.
type DBTracingCallback struct {
	slowQueryThresh time.Duration
}

// NewDBTracingCallback creates a callback pair with the given slow threshold.
func NewDBTracingCallback(slowQueryThresh time.Duration) *DBTracingCallback {
	return &DBTracingCallback{slowQueryThresh: slowQueryThresh}
}

// BeforeCallback stamps the query start time into the statement context.
func (c *DBTracingCallback) BeforeCallback(db *gorm.DB) {
	stampStartTime(db)
}

// AfterCallback annotates the active span for the finished query.
func (c *DBTracingCallback) AfterCallback(db *gorm.DB) {
	annotateSpan(db, c.slowQueryThresh)
}

// RegisterCallbacks installs both callbacks on every GORM operation type.
func (c *DBTracingCallback) RegisterCallbacks(db *gorm.DB) error {
	if err := registerOnAllOps(db, "otel_timing:before_", false, c.BeforeCallback); err != nil {
		return err
	}
	return registerOnAllOps(db, "otel_timing:after_", true, c.AfterCallback)
}
