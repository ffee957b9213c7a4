package scheduler

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobKind is one maintenance step run for a tenant
type JobKind string

const (
	KindStatusRefresh       JobKind = "STATUS_REFRESH"       // persist LATE on overdue installments
	KindNotificationSweep   JobKind = "NOTIFICATION_SWEEP"   // due, overdue, stock, budget and settlement alerts
	KindNotificationCleanup JobKind = "NOTIFICATION_CLEANUP" // delete read notifications past retention
	KindIntegrityAudit      JobKind = "INTEGRITY_AUDIT"      // report-only ledger checks
)

// DailySteps is the nightly order. Statuses are refreshed first so the
// sweep sees LATE rows.
func DailySteps() []JobKind {
	return []JobKind{KindStatusRefresh, KindNotificationSweep, KindNotificationCleanup, KindIntegrityAudit}
}

// Job runs its Steps in order for one tenant. A failed job is retried as a
// whole up to MaxRetries times; every step is idempotent.
type Job struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Steps       []JobKind
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
}

func NewJob(tenantID uuid.UUID, steps []JobKind, maxRetries int) *Job {
	return &Job{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Steps:      steps,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

func (j *Job) Start() {
	now := time.Now()
	j.Status, j.StartedAt, j.CompletedAt, j.Error = JobStatusRunning, &now, nil, ""
}

func (j *Job) Complete() { j.finish(JobStatusSuccess, "") }

func (j *Job) Fail(reason string) { j.finish(JobStatusFailed, reason) }

func (j *Job) finish(status JobStatus, reason string) {
	now := time.Now()
	j.Status, j.CompletedAt, j.Error = status, &now, reason
}

func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

func (j *Job) stepNames() string {
	var b strings.Builder
	for i, s := range j.Steps {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(string(s))
	}
	return b.String()
}
