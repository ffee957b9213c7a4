package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedSafe struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedSafe{}))
	return db
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()
	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db := setupTestDB(t)
	plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())
	assert.NoError(t, plugin.RegisterOtelGorm(db))
}

func TestDBTracingPlugin_RecordsQuerySpans(t *testing.T) {
	db := setupTestDB(t)
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	plugin := NewDBTracingPlugin(DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: -1,
		DBSystem:        "sqlite",
		TracerProvider:  tp,
	}, zap.NewNop())
	require.NoError(t, plugin.RegisterOtelGorm(db))

	ctx, span := tp.Tracer("test").Start(context.Background(), "parent")
	require.NoError(t, db.WithContext(ctx).Create(&tracedSafe{Name: "Main"}).Error)
	span.End()

	var dbSpan sdktrace.ReadOnlySpan
	slow := false
	for _, s := range sr.Ended() {
		if s.Name() == "gorm.Create" {
			dbSpan = s
		}
		for _, a := range s.Attributes() {
			if a.Key == "db.slow_query" {
				slow = true
			}
		}
	}
	require.NotNil(t, dbSpan)
	got := map[string]interface{}{}
	for _, a := range dbSpan.Attributes() {
		got[string(a.Key)] = a.Value.AsInterface()
	}
	assert.Equal(t, int64(1), got["db.rows_affected"])
	assert.True(t, slow, "a negative threshold flags every statement")
}

func TestDBTracingPlugin_DoubleRegistration(t *testing.T) {
	db := setupTestDB(t)
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.DBSystem = "sqlite"

	require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).RegisterOtelGorm(db))
	assert.Error(t, NewDBTracingPlugin(cfg, zap.NewNop()).RegisterOtelGorm(db))
}
