package scheduler

import (
	"time"

	"github.com/google/uuid"

	integrationapp "github.com/bookingplatform/backend/internal/application/integration"
)

// maxRetryDelay caps the exponential retry backoff
const maxRetryDelay = 30 * time.Minute

// ReconcileJobStatus represents the status of a reconciliation job
type ReconcileJobStatus string

const (
	ReconcileJobStatusPending ReconcileJobStatus = "PENDING"
	ReconcileJobStatusRunning ReconcileJobStatus = "RUNNING"
	ReconcileJobStatusSuccess ReconcileJobStatus = "SUCCESS"
	ReconcileJobStatusPartial ReconcileJobStatus = "PARTIAL"
	ReconcileJobStatusFailed  ReconcileJobStatus = "FAILED"
)

// JobTrigger records what queued a job
type JobTrigger string

const (
	TriggerInterval JobTrigger = "interval"
	TriggerManual   JobTrigger = "manual"
	TriggerStartup  JobTrigger = "startup"
)

// ReconcileJob is one catalog reconciliation run
type ReconcileJob struct {
	ID          uuid.UUID                       `json:"id"`
	Trigger     JobTrigger                      `json:"trigger"`
	Status      ReconcileJobStatus              `json:"status"`
	Error       string                          `json:"error,omitempty"`
	CreatedAt   time.Time                       `json:"createdAt"`
	StartedAt   *time.Time                      `json:"startedAt,omitempty"`
	CompletedAt *time.Time                      `json:"completedAt,omitempty"`
	RetryCount  int                             `json:"retryCount"`
	MaxRetries  int                             `json:"maxRetries"`
	NextRetryAt *time.Time                      `json:"nextRetryAt,omitempty"`
	Report      *integrationapp.ReconcileReport `json:"report,omitempty"`
}

// NewReconcileJob creates a pending job
func NewReconcileJob(trigger JobTrigger, maxRetries int) *ReconcileJob {
	return &ReconcileJob{
		ID:         uuid.New(),
		Trigger:    trigger,
		Status:     ReconcileJobStatusPending,
		CreatedAt:  time.Now(),
		MaxRetries: maxRetries,
	}
}

// Start marks the job as running
func (j *ReconcileJob) Start() {
	now := time.Now()
	j.Status = ReconcileJobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete records the run report and derives the job status from it
func (j *ReconcileJob) Complete(report *integrationapp.ReconcileReport) {
	now := time.Now()
	j.Report = report
	j.CompletedAt = &now

	switch report.Status() {
	case integrationapp.ReportSuccess:
		j.Status = ReconcileJobStatusSuccess
	case integrationapp.ReportPartial:
		j.Status = ReconcileJobStatusPartial
	default:
		j.Status = ReconcileJobStatusFailed
		j.Error = "every product in the snapshot failed to reconcile"
	}
}

// Fail marks the job as failed
func (j *ReconcileJob) Fail(err string) {
	now := time.Now()
	j.Status = ReconcileJobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *ReconcileJob) ShouldRetry() bool {
	return j.Status == ReconcileJobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry schedules the job for retry with exponential backoff and
// returns the delay until the next attempt.
func (j *ReconcileJob) ScheduleRetry(baseDelay time.Duration) time.Duration {
	j.RetryCount++
	j.Status = ReconcileJobStatusPending
	// baseDelay * 2^(retryCount-1)
	delay := baseDelay * time.Duration(1<<(j.RetryCount-1))
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	nextRetry := time.Now().Add(delay)
	j.NextRetryAt = &nextRetry
	j.Error = ""
	return delay
}

// IsTerminal reports whether the job will not run again
func (j *ReconcileJob) IsTerminal() bool {
	return j.Status != ReconcileJobStatusPending && j.Status != ReconcileJobStatusRunning
}
