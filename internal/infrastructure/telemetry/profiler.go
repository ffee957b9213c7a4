package telemetry

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// ProfilerConfig holds continuous profiling settings
type ProfilerConfig struct {
	Enabled         bool
	ServerAddress   string
	ApplicationName string
}

// Profiler pushes CPU, allocation and goroutine profiles to Pyroscope
type Profiler struct {
	session  *pyroscope.Profiler
	stopOnce sync.Once
	stopErr  error
}

var errNoProfilingServer = errors.New("profiling enabled without a server address")

// NewProfiler starts pushing profiles. A disabled config yields a profiler
// whose methods do nothing.
func NewProfiler(cfg ProfilerConfig, logger *zap.Logger) (*Profiler, error) {
	if !cfg.Enabled {
		logger.Info("Continuous profiling disabled")
		return &Profiler{}, nil
	}
	if cfg.ServerAddress == "" {
		return nil, errNoProfilingServer
	}

	session, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Logger:          logger.Named("pyroscope").Sugar(),
		Tags:            hostTags(),
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("start pyroscope: %w", err)
	}
	logger.Info("Continuous profiling enabled",
		zap.String("server_address", cfg.ServerAddress),
		zap.String("application_name", cfg.ApplicationName),
	)
	return &Profiler{session: session}, nil
}

func hostTags() map[string]string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return nil
	}
	return map[string]string{"hostname": host}
}

// IsEnabled reports whether profiles are being pushed
func (p *Profiler) IsEnabled() bool {
	return p.session != nil
}

// Stop flushes the last profiles. Later calls return the first result.
func (p *Profiler) Stop() error {
	p.stopOnce.Do(func() {
		if p.session == nil {
			return
		}
		if err := p.session.Stop(); err != nil {
			p.stopErr = fmt.Errorf("stop pyroscope: %w", err)
		}
	})
	return p.stopErr
}

// WithProfilingLabels runs fn with labels attached to every sample it takes.
// Pairs with an empty key or value are dropped.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	var pairs []string
	for _, k := range slices.Sorted(maps.Keys(labels)) {
		if k != "" && labels[k] != "" {
			pairs = append(pairs, k, labels[k])
		}
	}
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}
