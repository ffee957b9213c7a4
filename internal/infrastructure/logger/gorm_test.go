package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

const voucherSQL = `SELECT * FROM "receipt_vouchers" WHERE tenant_id = 'a' AND safe_id = 'b'`

func TestNewGormLogger_Options(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Info,
		WithSlowThreshold(500*time.Millisecond),
		WithIgnoreRecordNotFoundError(false),
	)
	assert.Equal(t, gormlogger.Info, gl.logLevel)
	assert.Equal(t, 500*time.Millisecond, gl.slowThreshold)
	assert.False(t, gl.ignoreNotFound)

	switched, ok := gl.LogMode(gormlogger.Warn).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, switched.logLevel)
	assert.Equal(t, gormlogger.Info, gl.logLevel)
}

func TestGormLogger_Trace(t *testing.T) {
	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		opts    []GormLoggerOption
		elapsed time.Duration
		err     error
		wantMsg string
		wantLvl zapcore.Level
	}{
		{"error", gormlogger.Error, nil, 0, errors.New("deadlock detected"), "query failed", zapcore.ErrorLevel},
		{"slow", gormlogger.Warn, []GormLoggerOption{WithSlowThreshold(time.Millisecond)}, time.Second, nil, "slow query", zapcore.WarnLevel},
		{"normal", gormlogger.Info, nil, 0, nil, "query", zapcore.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			gl := NewGormLogger(zap.New(core), tt.level, tt.opts...)

			gl.Trace(context.Background(), time.Now().Add(-tt.elapsed), func() (string, int64) {
				return voucherSQL, 3
			}, tt.err)

			entries := recorded.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantMsg, entries[0].Message)
			assert.Equal(t, tt.wantLvl, entries[0].Level)
			assert.Equal(t, voucherSQL, entries[0].ContextMap()["sql"])
		})
	}
}

func TestGormLogger_Trace_Suppressed(t *testing.T) {
	t.Run("record not found", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Error)
		gl.Trace(context.Background(), time.Now(), func() (string, int64) { return voucherSQL, 0 }, gormlogger.ErrRecordNotFound)
		assert.Zero(t, recorded.Len())
	})

	t.Run("silent", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Silent)
		gl.Trace(context.Background(), time.Now(), func() (string, int64) { return voucherSQL, 0 }, errors.New("ignored"))
		assert.Zero(t, recorded.Len())
	})
}

func TestGormLogger_Trace_RequestScope(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info)

	ctx, l := WithRequestID(context.Background(), zap.NewNop(), "req-1")
	ctx, _ = WithTenantID(ctx, l, "tenant-1")
	gl.Trace(ctx, time.Now(), func() (string, int64) { return voucherSQL, 1 }, nil)

	entries := recorded.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "tenant-1", fields["tenant_id"])
}

func TestGormLogger_Messages(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn)

	gl.Info(context.Background(), "migrated %d tables", 21)
	gl.Warn(context.Background(), "pool at %d%%", 90)
	gl.Error(context.Background(), "connection lost")

	assert.Equal(t, 2, recorded.Len())
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"unknown", gormlogger.Warn},
		{"", gormlogger.Warn},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}

var _ gormlogger.Interface = (*GormLogger)(nil)
