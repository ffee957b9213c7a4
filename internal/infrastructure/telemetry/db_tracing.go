package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool          // Enable database tracing
	LogFullSQL      bool          // Include query variables in spans (dev only)
	SlowQueryThresh time.Duration // Threshold for marking queries as slow
	DBSystem        string        // Database system name

	// TracerProvider overrides the global provider, mainly for tests
	TracerProvider trace.TracerProvider
}

// DefaultDBTracingConfig returns default configuration for database tracing.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:         false,
		LogFullSQL:      false,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

// DBTracingPlugin wraps the otelgorm plugin with slow query detection.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin with the given configuration.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{
		config: cfg,
		logger: logger,
	}
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// RegisterOtelGorm registers otelgorm and the slow query callbacks on db.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	// Timing callbacks go first so they wrap the otelgorm span.
	cb := db.Callback()
	steps := []struct {
		name     string
		register func(before bool) error
	}{
		{"create", func(before bool) error {
			if before {
				return cb.Create().Before("gorm:create").Register("otel_timing:before_create", p.before)
			}
			return cb.Create().After("gorm:create").Register("otel_slow_query:create", p.after)
		}},
		{"query", func(before bool) error {
			if before {
				return cb.Query().Before("gorm:query").Register("otel_timing:before_query", p.before)
			}
			return cb.Query().After("gorm:query").Register("otel_slow_query:query", p.after)
		}},
		{"update", func(before bool) error {
			if before {
				return cb.Update().Before("gorm:update").Register("otel_timing:before_update", p.before)
			}
			return cb.Update().After("gorm:update").Register("otel_slow_query:update", p.after)
		}},
		{"delete", func(before bool) error {
			if before {
				return cb.Delete().Before("gorm:delete").Register("otel_timing:before_delete", p.before)
			}
			return cb.Delete().After("gorm:delete").Register("otel_slow_query:delete", p.after)
		}},
		{"row", func(before bool) error {
			if before {
				return cb.Row().Before("gorm:row").Register("otel_timing:before_row", p.before)
			}
			return cb.Row().After("gorm:row").Register("otel_slow_query:row", p.after)
		}},
		{"raw", func(before bool) error {
			if before {
				return cb.Raw().Before("gorm:raw").Register("otel_timing:before_raw", p.before)
			}
			return cb.Raw().After("gorm:raw").Register("otel_slow_query:raw", p.after)
		}},
	}
	for _, step := range steps {
		if err := step.register(true); err != nil {
			return err
		}
		if err := step.register(false); err != nil {
			return err
		}
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBSystem),
		otelgorm.WithoutMetrics(),
	}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if p.config.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(p.config.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

func (p *DBTracingPlugin) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

// after flags slow statements on the current span.
func (p *DBTracingPlugin) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(queryStartTimeKey).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)
	if elapsed <= p.config.SlowQueryThresh {
		return
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
		))
	}
	p.logger.Warn("Slow query",
		zap.String("table", db.Statement.Table),
		zap.Duration("elapsed", elapsed),
	)
}
