package logger

import (
	"fmt"
	"strings"

	"github.com/erp/realestate/internal/infrastructure/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the service logger from the log section of the configuration.
// JSON is the production default; other environments get colored console
// output unless a format is configured.
func New(cfg config.LogConfig, env string) (*zap.Logger, error) {
	sink, err := openSink(cfg.Output)
	if err != nil {
		return nil, err
	}
	json := strings.EqualFold(cfg.Format, "json") || (cfg.Format == "" && env == "production")

	core := zapcore.NewCore(encoder(json), sink, ParseLevel(cfg.Level))
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// ParseLevel maps a configured level name onto zap, falling back to info
func ParseLevel(level string) zapcore.Level {
	if strings.EqualFold(level, "warning") {
		return zapcore.WarnLevel
	}
	l, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		return zapcore.InfoLevel
	}
	return l
}

func encoder(json bool) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.MillisDurationEncoder
	if json {
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

// openSink accepts stdout, stderr or a file path opened for appending
func openSink(output string) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(output) {
	case "", "stdout":
		output = "stdout"
	case "stderr":
		output = "stderr"
	}
	sink, _, err := zap.Open(output)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", output, err)
	}
	return sink, nil
}

// Sync flushes buffered entries, ignoring the EINVAL returned for terminals
func Sync(l *zap.Logger) {
	_ = l.Sync()
}
