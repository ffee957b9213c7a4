package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantProvider lists the tenants the nightly jobs run for
type TenantProvider interface {
	ActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// CronTriggerConfig holds configuration for the cron trigger
type CronTriggerConfig struct {
	Hour          int
	Minute        int
	CheckInterval time.Duration
}

// ParseDailySchedule accepts "M H * * *" and returns the trigger config
func ParseDailySchedule(expr string) (CronTriggerConfig, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return CronTriggerConfig{}, fmt.Errorf("%w: %q needs five fields", ErrInvalidSchedule, expr)
	}
	for _, f := range fields[2:] {
		if f != "*" {
			return CronTriggerConfig{}, fmt.Errorf("%w: %q must run every day", ErrInvalidSchedule, expr)
		}
	}
	minute, err := strconv.Atoi(fields[0])
	if err != nil || minute < 0 || minute > 59 {
		return CronTriggerConfig{}, fmt.Errorf("%w: minute %q", ErrInvalidSchedule, fields[0])
	}
	hour, err := strconv.Atoi(fields[1])
	if err != nil || hour < 0 || hour > 23 {
		return CronTriggerConfig{}, fmt.Errorf("%w: hour %q", ErrInvalidSchedule, fields[1])
	}
	return CronTriggerConfig{Hour: hour, Minute: minute, CheckInterval: time.Minute}, nil
}

// CronTrigger submits the nightly job for every active tenant once a day
type CronTrigger struct {
	at      CronTriggerConfig
	jobs    *Scheduler
	tenants TenantProvider
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.Mutex
	halt    context.CancelFunc
	stopped chan struct{}
	lastDay string
}

// NewCronTrigger creates a trigger polling at cfg.CheckInterval, one minute by default
func NewCronTrigger(cfg CronTriggerConfig, scheduler *Scheduler, tenants TenantProvider, logger *zap.Logger) *CronTrigger {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = time.Minute
	}
	return &CronTrigger{at: cfg, jobs: scheduler, tenants: tenants, logger: logger.Named("cron"), now: time.Now}
}

// Start launches the polling goroutine; a second call is a no-op
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.halt != nil {
		return nil
	}
	ctx, c.halt = context.WithCancel(ctx)
	c.stopped = make(chan struct{})

	go func(stopped chan<- struct{}) {
		defer close(stopped)
		tick := time.NewTicker(c.at.CheckInterval)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				c.checkAndTrigger(ctx)
			}
		}
	}(c.stopped)

	c.logger.Info("nightly trigger armed",
		zap.String("at", fmt.Sprintf("%02d:%02d", c.at.Hour, c.at.Minute)),
		zap.Duration("poll", c.at.CheckInterval))
	return nil
}

// Stop cancels the loop and waits for it, bounded by ctx
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	halt, stopped := c.halt, c.stopped
	c.halt, c.stopped = nil, nil
	c.mu.Unlock()
	if halt == nil {
		return nil
	}
	halt()

	select {
	case <-stopped:
		c.logger.Info("nightly trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// checkAndTrigger fires once per calendar day, on the first poll at or after
// the configured time, so a late tick does not skip a day
func (c *CronTrigger) checkAndTrigger(ctx context.Context) bool {
	now := c.now()
	day := now.Format(time.DateOnly)
	due := time.Date(now.Year(), now.Month(), now.Day(), c.at.Hour, c.at.Minute, 0, 0, now.Location())

	c.mu.Lock()
	fire := c.lastDay != day && !now.Before(due)
	if fire {
		c.lastDay = day
	}
	c.mu.Unlock()
	if !fire {
		return false
	}

	ids, err := c.tenants.ActiveTenantIDs(ctx)
	if err != nil {
		c.logger.Error("nightly run skipped: tenant list unavailable", zap.String("day", day), zap.Error(err))
		return true
	}
	queued := 0
	for _, id := range ids {
		if err := c.jobs.ScheduleDaily(id); err != nil {
			c.logger.Error("nightly run not queued", zap.Stringer("tenant_id", id), zap.Error(err))
			continue
		}
		queued++
	}
	c.logger.Info("nightly run queued", zap.String("day", day), zap.Int("tenants", queued), zap.Int("failed", len(ids)-queued))
	return true
}
