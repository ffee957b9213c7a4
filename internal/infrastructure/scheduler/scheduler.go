package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/erp/realestate/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const queueSize = 100

// JobExecutor runs the steps of a job
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}

// Scheduler runs queued jobs on MaxConcurrentJobs workers. Submission never
// blocks: a full queue is reported as ErrJobQueueFull.
type Scheduler struct {
	cfg      config.SchedulerConfig
	executor JobExecutor
	logger   *zap.Logger

	mu      sync.Mutex
	queue   chan *Job
	cancel  context.CancelFunc
	workers sync.WaitGroup
}

func NewScheduler(cfg config.SchedulerConfig, executor JobExecutor, logger *zap.Logger) *Scheduler {
	cfg.MaxConcurrentJobs = max(cfg.MaxConcurrentJobs, 1)
	return &Scheduler{cfg: cfg, executor: executor, logger: logger.Named("scheduler")}
}

// Start launches the workers. Calling Start on a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue != nil {
		return nil
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.queue = make(chan *Job, queueSize)
	for id := range s.cfg.MaxConcurrentJobs {
		queue := s.queue
		s.workers.Go(func() { s.work(ctx, id, queue) })
	}
	s.logger.Info("Scheduler started",
		zap.Int("workers", s.cfg.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.cfg.JobTimeout),
	)
	return nil
}

// Stop cancels in-flight jobs and waits for the workers until ctx expires
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.queue == nil {
		s.mu.Unlock()
		return nil
	}
	s.cancel()
	close(s.queue)
	s.queue = nil
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) SubmitJob(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue == nil {
		return ErrSchedulerNotRunning
	}
	select {
	case s.queue <- job:
	default:
		return ErrJobQueueFull
	}
	s.logger.Debug("Job queued", jobFields(job)...)
	return nil
}

// ScheduleDaily queues the nightly maintenance job for a tenant
func (s *Scheduler) ScheduleDaily(tenantID uuid.UUID) error {
	return s.Schedule(tenantID)
}

// Schedule queues the given steps for a tenant, or the daily steps when none are given
func (s *Scheduler) Schedule(tenantID uuid.UUID, steps ...JobKind) error {
	if len(steps) == 0 {
		steps = DailySteps()
	}
	return s.SubmitJob(NewJob(tenantID, steps, s.cfg.RetryAttempts))
}

func (s *Scheduler) work(ctx context.Context, id int, queue <-chan *Job) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-queue:
			if !ok {
				return
			}
			s.run(ctx, id, job)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, workerID int, job *Job) {
	fields := append(jobFields(job), zap.Int("worker_id", workerID))
	job.Start()
	s.logger.Info("Job started", fields...)

	jobCtx, cancel := ctx, context.CancelFunc(func() {})
	if s.cfg.JobTimeout > 0 {
		jobCtx, cancel = context.WithTimeout(ctx, s.cfg.JobTimeout)
	}
	err := s.executor.Execute(jobCtx, job)
	cancel()

	if err == nil {
		job.Complete()
		s.logger.Info("Job completed", fields...)
		return
	}
	job.Fail(err.Error())
	s.logger.Error("Job failed", append(fields, zap.Error(err))...)
	if job.ShouldRetry() && ctx.Err() == nil {
		s.retryLater(job)
	}
}

// retryLater requeues the job after RetryDelay. The requeue fails quietly
// when the scheduler has stopped meanwhile.
func (s *Scheduler) retryLater(job *Job) {
	job.RetryCount++
	job.Status = JobStatusPending
	s.logger.Info("Job retry scheduled", append(jobFields(job),
		zap.Int("retry_count", job.RetryCount),
		zap.Duration("delay", s.cfg.RetryDelay),
	)...)
	time.AfterFunc(s.cfg.RetryDelay, func() {
		if err := s.SubmitJob(job); err != nil {
			s.logger.Warn("Job retry dropped", append(jobFields(job), zap.Error(err))...)
		}
	})
}

func jobFields(job *Job) []zap.Field {
	return []zap.Field{
		zap.String("job_id", job.ID.String()),
		zap.String("tenant_id", job.TenantID.String()),
		zap.String("steps", job.stepNames()),
	}
}
