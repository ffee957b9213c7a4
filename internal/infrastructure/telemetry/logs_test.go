package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerProvider_DisabledIsInert(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{ServiceName: "estate-core"}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())

	base := zap.NewNop()
	assert.Same(t, base, lp.Bridge(base, zapcore.InfoLevel))
	assert.NoError(t, lp.Shutdown(context.Background()))

	var missing *LoggerProvider
	assert.False(t, missing.IsEnabled())
}

func TestAtLeast(t *testing.T) {
	t.Run("raises threshold", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		log := zap.New(atLeast(core, zapcore.WarnLevel))

		log.Info("receipt posted")
		log.Warn("safe balance low")
		log.With(zap.String("tenant_id", "t-1")).Error("audit failed")

		entries := logs.All()
		require.Len(t, entries, 2)
		assert.Equal(t, "safe balance low", entries[0].Message)
		assert.Equal(t, "t-1", entries[1].ContextMap()["tenant_id"])
	})

	t.Run("keeps a stricter core", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		log := zap.New(atLeast(core, zapcore.DebugLevel))

		log.Warn("ignored")
		log.Error("kept")
		assert.Equal(t, 1, logs.Len())
	})
}

func TestServiceResource(t *testing.T) {
	res, err := serviceResource("estate-core", "")
	require.NoError(t, err)

	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "estate-core", attrs["service.name"])
	assert.Equal(t, "dev", attrs["service.version"])
}
