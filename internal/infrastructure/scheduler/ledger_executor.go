package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	appnotification "github.com/erp/realestate/internal/application/notification"
	"github.com/erp/realestate/internal/domain/audit"
	"github.com/erp/realestate/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatusRefresher persists derived installment statuses
type StatusRefresher interface {
	RefreshStatuses(ctx context.Context, tenantID uuid.UUID) (int, error)
}

// NotificationSweeper generates and prunes notifications
type NotificationSweeper interface {
	GenerateAll(ctx context.Context, tenantID uuid.UUID) (*appnotification.GenerateResponse, error)
	Cleanup(ctx context.Context, tenantID uuid.UUID, retention time.Duration) (int64, error)
}

// IntegrityAuditor runs the read-only ledger checks
type IntegrityAuditor interface {
	Run(ctx context.Context, tenantID uuid.UUID) (*audit.Report, error)
}

// LedgerExecutor runs job steps against the application services
type LedgerExecutor struct {
	statuses      StatusRefresher
	notifications NotificationSweeper
	auditor       IntegrityAuditor
	retention     time.Duration
	logger        *zap.Logger
}

// NewLedgerExecutor creates the executor; retention bounds how long read
// notifications are kept
func NewLedgerExecutor(statuses StatusRefresher, notifications NotificationSweeper, auditor IntegrityAuditor, retention time.Duration, logger *zap.Logger) *LedgerExecutor {
	return &LedgerExecutor{
		statuses:      statuses,
		notifications: notifications,
		auditor:       auditor,
		retention:     retention,
		logger:        logger,
	}
}

// Execute runs every step in order. A failing step does not stop the later
// ones; the joined error fails the job so it is retried.
func (e *LedgerExecutor) Execute(ctx context.Context, job *Job) error {
	var errs []error
	for _, step := range job.Steps {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		var stepErr error
		telemetry.WithProfilingLabels(ctx, map[string]string{
			"tenant_id": job.TenantID.String(),
			"job_step":  string(step),
		}, func(ctx context.Context) {
			stepErr = e.run(ctx, job.TenantID, step)
		})
		if stepErr != nil {
			errs = append(errs, fmt.Errorf("%s: %w", step, stepErr))
		}
	}
	return errors.Join(errs...)
}

func (e *LedgerExecutor) run(ctx context.Context, tenantID uuid.UUID, step JobKind) error {
	log := e.logger.With(zap.String("tenant_id", tenantID.String()), zap.String("step", string(step)))

	switch step {
	case KindStatusRefresh:
		n, err := e.statuses.RefreshStatuses(ctx, tenantID)
		if err != nil {
			return err
		}
		log.Info("Installment statuses refreshed", zap.Int("changed", n))

	case KindNotificationSweep:
		res, err := e.notifications.GenerateAll(ctx, tenantID)
		if err != nil {
			return err
		}
		log.Info("Notifications generated", zap.Int("users", res.Users), zap.Int("created", res.Created))

	case KindNotificationCleanup:
		if e.retention <= 0 {
			return nil
		}
		n, err := e.notifications.Cleanup(ctx, tenantID, e.retention)
		if err != nil {
			return err
		}
		log.Info("Old notifications removed", zap.Int64("deleted", n))

	case KindIntegrityAudit:
		report, err := e.auditor.Run(ctx, tenantID)
		if err != nil {
			return err
		}
		errCount, warnCount := 0, 0
		for _, f := range report.Findings {
			switch f.Severity {
			case audit.SeverityError:
				errCount++
			case audit.SeverityWarning:
				warnCount++
			}
		}
		level := log.Info
		if errCount > 0 {
			level = log.Warn
		}
		level("Integrity audit finished", zap.Int("errors", errCount), zap.Int("warnings", warnCount))

	default:
		return fmt.Errorf("%w: %s", ErrUnknownJobKind, step)
	}
	return nil
}

var _ JobExecutor = (*LedgerExecutor)(nil)
