package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when submitting to a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull is returned when the job queue is full
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrInvalidSchedule is returned for cron expressions other than a daily minute/hour pair
	ErrInvalidSchedule = errors.New("invalid daily schedule")

	// ErrUnknownJobKind is returned by executors for steps they do not handle
	ErrUnknownJobKind = errors.New("unknown job kind")
)
