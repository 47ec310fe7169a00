package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	integrationapp "github.com/bookingplatform/backend/internal/application/integration"
	"github.com/bookingplatform/backend/internal/infrastructure/config"
)

const (
	defaultQueueSize  = 10
	defaultMaxHistory = 100
)

// Reconciler runs one reconciliation pass
type Reconciler interface {
	Reconcile(ctx context.Context) (*integrationapp.ReconcileReport, error)
}

// SnapshotInvalidator drops a cached catalog snapshot
type SnapshotInvalidator interface {
	InvalidateSnapshot(ctx context.Context)
}

// ---------------------------------------------------------------------------
// ReconcileSchedulerConfig
// ---------------------------------------------------------------------------

// ReconcileSchedulerConfig holds configuration for the reconcile scheduler
type ReconcileSchedulerConfig struct {
	// Enabled starts the interval trigger
	Enabled bool
	// RunOnStart queues one run as soon as the scheduler starts
	RunOnStart bool
	// Interval is the time between two interval-triggered runs
	Interval time.Duration
	// JobTimeout is the maximum time a run can take
	JobTimeout time.Duration
	// RetryAttempts is the number of retries for a failed run
	RetryAttempts int
	// RetryDelay is the base delay between retries (with exponential backoff)
	RetryDelay time.Duration
	// QueueSize bounds the number of pending runs
	QueueSize int
}

// DefaultReconcileSchedulerConfig returns default configuration
func DefaultReconcileSchedulerConfig() ReconcileSchedulerConfig {
	return ReconcileSchedulerConfig{
		Enabled:       true,
		Interval:      15 * time.Minute,
		JobTimeout:    5 * time.Minute,
		RetryAttempts: 3,
		RetryDelay:    30 * time.Second,
		QueueSize:     defaultQueueSize,
	}
}

// ReconcileSchedulerConfigFromSettings maps the reconciler config section
func ReconcileSchedulerConfigFromSettings(cfg config.ReconcilerConfig) ReconcileSchedulerConfig {
	return ReconcileSchedulerConfig{
		Enabled:       cfg.Enabled,
		RunOnStart:    cfg.RunOnStart,
		Interval:      cfg.Interval,
		JobTimeout:    cfg.JobTimeout,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
		QueueSize:     defaultQueueSize,
	}
}

// Validate validates the configuration
func (c *ReconcileSchedulerConfig) Validate() error {
	if c.Enabled && c.Interval <= 0 {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.RetryAttempts < 0 || c.RetryDelay < 0 {
		return ErrInvalidConfig
	}
	if c.QueueSize <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ---------------------------------------------------------------------------
// ReconcileScheduler
// ---------------------------------------------------------------------------

// ReconcileScheduler runs catalog reconciliation on an interval and on
// demand. A single worker executes jobs so two runs never overlap.
type ReconcileScheduler struct {
	config      ReconcileSchedulerConfig
	reconciler  Reconciler
	invalidator SnapshotInvalidator
	logger      *zap.Logger

	jobs      chan *ReconcileJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	// Job history for monitoring (in-memory, limited size)
	historyMu  sync.RWMutex
	history    []*ReconcileJob
	maxHistory int
}

// ReconcileSchedulerOption configures a ReconcileScheduler
type ReconcileSchedulerOption func(*ReconcileScheduler)

// WithSnapshotInvalidator drops the cached snapshot after every run that wrote products
func WithSnapshotInvalidator(inv SnapshotInvalidator) ReconcileSchedulerOption {
	return func(s *ReconcileScheduler) {
		s.invalidator = inv
	}
}

// NewReconcileScheduler creates a new reconcile scheduler
func NewReconcileScheduler(
	cfg ReconcileSchedulerConfig,
	reconciler Reconciler,
	logger *zap.Logger,
	opts ...ReconcileSchedulerOption,
) (*ReconcileScheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if reconciler == nil {
		return nil, ErrReconcilerRequired
	}

	s := &ReconcileScheduler{
		config:     cfg,
		reconciler: reconciler,
		logger:     logger,
		jobs:       make(chan *ReconcileJob, cfg.QueueSize),
		history:    make([]*ReconcileJob, 0, defaultMaxHistory),
		maxHistory: defaultMaxHistory,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start starts the worker and, when enabled, the interval trigger
func (s *ReconcileScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.worker(ctx)

	if s.config.Enabled {
		s.wg.Add(1)
		go s.tick(ctx)
	}

	s.logger.Info("Reconcile scheduler started",
		zap.Bool("interval_enabled", s.config.Enabled),
		zap.Duration("interval", s.config.Interval),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)

	if s.config.RunOnStart {
		if _, err := s.TriggerNow(TriggerStartup); err != nil {
			s.logger.Warn("Failed to queue startup reconciliation", zap.Error(err))
		}
	}
	return nil
}

// Stop gracefully stops the scheduler
func (s *ReconcileScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	close(s.jobs)
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	// Wait for workers to finish with timeout
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Reconcile scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Reconcile scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the scheduler accepts jobs
func (s *ReconcileScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// SubmitJob submits a job for execution
func (s *ReconcileScheduler) SubmitJob(job *ReconcileJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}

	select {
	case s.jobs <- job:
		s.logger.Debug("Reconcile job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("trigger", string(job.Trigger)),
			zap.Int("retry_count", job.RetryCount),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// TriggerNow queues a reconciliation run and returns a copy of the job as queued
func (s *ReconcileScheduler) TriggerNow(trigger JobTrigger) (*ReconcileJob, error) {
	job := NewReconcileJob(trigger, s.config.RetryAttempts)
	queued := *job
	if err := s.SubmitJob(job); err != nil {
		return nil, err
	}
	return &queued, nil
}

// tick queues an interval run every Interval
func (s *ReconcileScheduler) tick(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.TriggerNow(TriggerInterval); err != nil {
				s.logger.Warn("Skipped interval reconciliation", zap.Error(err))
			}
		}
	}
}

// worker processes jobs from the queue
func (s *ReconcileScheduler) worker(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-s.jobs:
			if !ok {
				return
			}
			s.processJob(ctx, job)
		}
	}
}

// processJob executes a single job
func (s *ReconcileScheduler) processJob(ctx context.Context, job *ReconcileJob) {
	log := s.logger.With(
		zap.String("job_id", job.ID.String()),
		zap.String("trigger", string(job.Trigger)),
	)

	job.Start()
	log.Info("Processing reconcile job", zap.Int("retry_count", job.RetryCount))

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	report, err := s.reconciler.Reconcile(jobCtx)
	cancel()

	if err != nil {
		job.Fail(err.Error())
		job.Report = report
		log.Error("Reconcile job failed", zap.Error(err))
	} else {
		job.Complete(report)
		log.Info("Reconcile job completed",
			zap.String("status", string(job.Status)),
			zap.Int("inserted", report.Inserted),
			zap.Int("updated", report.Updated),
			zap.Int("failed", report.Failed),
		)
		if s.invalidator != nil && report.Inserted+report.Updated > 0 {
			s.invalidator.InvalidateSnapshot(ctx)
		}
	}

	s.addToHistory(job)

	if job.ShouldRetry() && ctx.Err() == nil {
		delay := job.ScheduleRetry(s.config.RetryDelay)
		log.Info("Reconcile job scheduled for retry",
			zap.Int("retry_count", job.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
			zap.Duration("delay", delay),
		)
		s.wg.Add(1)
		go s.retryAfter(ctx, job, delay)
	}
}

// retryAfter resubmits job once delay has passed, unless the scheduler stops first
func (s *ReconcileScheduler) retryAfter(ctx context.Context, job *ReconcileJob, delay time.Duration) {
	defer s.wg.Done()

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
		if err := s.SubmitJob(job); err != nil {
			s.logger.Warn("Failed to re-queue reconcile job for retry",
				zap.String("job_id", job.ID.String()),
				zap.Error(err),
			)
		}
	}
}

// addToHistory records a copy of the job's current state
func (s *ReconcileScheduler) addToHistory(job *ReconcileJob) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	snapshot := *job
	s.history = append([]*ReconcileJob{&snapshot}, s.history...)

	if len(s.history) > s.maxHistory {
		s.history = s.history[:s.maxHistory]
	}
}

// GetJobHistory returns recent job attempts, newest first
func (s *ReconcileScheduler) GetJobHistory(limit int) []*ReconcileJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}

	result := make([]*ReconcileJob, limit)
	copy(result, s.history[:limit])
	return result
}

// LastJob returns the most recent job attempt, or nil
func (s *ReconcileScheduler) LastJob() *ReconcileJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if len(s.history) == 0 {
		return nil
	}
	return s.history[0]
}
