package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/erp/realestate/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("defaults to info on stdout", func(t *testing.T) {
		l, err := New(config.LogConfig{}, "development")
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("honours the configured level", func(t *testing.T) {
		l, err := New(config.LogConfig{Level: "debug"}, "development")
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("writes JSON lines to a file in production", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		l, err := New(config.LogConfig{Level: "info", Output: path}, "production")
		require.NoError(t, err)

		l.Info("voucher posted", zap.String("voucher_number", "RV-000001"))
		Sync(l)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"voucher posted"`)
		assert.Contains(t, string(data), `"voucher_number":"RV-000001"`)
	})

	t.Run("fails when the log file cannot be opened", func(t *testing.T) {
		_, err := New(config.LogConfig{Output: filepath.Join(t.TempDir(), "missing", "app.log")}, "development")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "open log file")
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"verbose", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestOpenSink(t *testing.T) {
	for _, output := range []string{"", "stdout", "STDERR"} {
		w, err := openSink(output)
		require.NoError(t, err)
		assert.NotNil(t, w)
	}
}

func TestNew_ConsoleFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	l, err := New(config.LogConfig{Output: path, Format: "console"}, "production")
	require.NoError(t, err)

	l.Warn("safe balance low")
	Sync(l)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "safe balance low")
	assert.NotContains(t, string(data), `"msg"`)
}
