package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobStatus tracks a job through its run.
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobType names a recurring marketplace maintenance job.
type JobType string

const (
	JobTypeComplianceScan    JobType = "COMPLIANCE_SCAN"
	JobTypeDashboardSnapshot JobType = "DASHBOARD_SNAPSHOT"
	JobTypeLowStockSweep     JobType = "LOW_STOCK_SWEEP"
)

// AllJobTypes lists every schedulable job type.
func AllJobTypes() []JobType {
	return []JobType{
		JobTypeComplianceScan,
		JobTypeDashboardSnapshot,
		JobTypeLowStockSweep,
	}
}

// Job is one unit of background work, tracked across retries.
type Job struct {
	ID          uuid.UUID
	JobType     JobType
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
}

// NewJob creates a pending job.
func NewJob(jobType JobType, maxRetries int) *Job {
	return &Job{
		ID:         uuid.New(),
		JobType:    jobType,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the job running and clears any previous error.
func (j *Job) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete marks the job successful.
func (j *Job) Complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

// Fail marks the job failed with the given error text.
func (j *Job) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry reports whether a failed job has retry budget left.
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry returns the job to pending, due after delay.
func (j *Job) ScheduleRetry(delay time.Duration) {
	j.RetryCount++
	j.Status = JobStatusPending
	due := time.Now().Add(delay)
	j.NextRetryAt = &due
	j.Error = ""
}

// JobExecutor runs the work behind a job type.
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}

// SchedulerConfig sizes the worker pool and retry policy.
type SchedulerConfig struct {
	Enabled           bool
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:           true,
		MaxConcurrentJobs: 2,
		JobTimeout:        10 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        time.Minute,
	}
}

// Scheduler runs background jobs on a fixed worker pool fed by a
// bounded queue. Submitting to a full queue fails rather than blocks.
type Scheduler struct {
	config   SchedulerConfig
	executor JobExecutor
	logger   *zap.Logger

	jobs    chan *Job
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

func NewScheduler(config SchedulerConfig, executor JobExecutor, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		config:   config,
		executor: executor,
		logger:   logger,
		jobs:     make(chan *Job, 100),
	}
}

// Start launches the worker pool. Starting twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Job scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)

	return nil
}

// Stop drains the workers, waiting no longer than ctx allows.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	close(s.jobs)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Job scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Job scheduler stop timed out")
		return ctx.Err()
	}
}

// SubmitJob queues a job for the workers.
func (s *Scheduler) SubmitJob(job *Job) error {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return ErrSchedulerNotRunning
	}

	if !s.enqueue(job) {
		return ErrJobQueueFull
	}

	s.logger.Debug("Job submitted",
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.JobType)),
	)
	return nil
}

// Schedule creates and queues a job of the given type with the
// configured retry budget.
func (s *Scheduler) Schedule(jobType JobType) error {
	return s.SubmitJob(NewJob(jobType, s.config.RetryAttempts))
}

func (s *Scheduler) enqueue(job *Job) bool {
	select {
	case s.jobs <- job:
		return true
	default:
		return false
	}
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	s.logger.Debug("Worker started", zap.Int("worker_id", workerID))

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Worker stopping", zap.Int("worker_id", workerID))
			return
		case job, ok := <-s.jobs:
			if !ok {
				s.logger.Debug("Job channel closed", zap.Int("worker_id", workerID))
				return
			}
			s.processJob(ctx, job, workerID)
		}
	}
}

func (s *Scheduler) processJob(ctx context.Context, job *Job, workerID int) {
	// A retried job that is not yet due goes back in the queue.
	if job.NextRetryAt != nil && time.Now().Before(*job.NextRetryAt) {
		if !s.enqueue(job) {
			s.logger.Warn("Failed to re-queue job for retry",
				zap.String("job_id", job.ID.String()),
			)
		}
		return
	}

	job.Start()
	s.logger.Info("Processing job",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.JobType)),
	)

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	if err := s.executor.Execute(jobCtx, job); err != nil {
		s.handleFailure(job, workerID, err)
		return
	}

	job.Complete()
	s.logger.Info("Job completed successfully",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.JobType)),
	)
}

func (s *Scheduler) handleFailure(job *Job, workerID int, err error) {
	job.Fail(err.Error())
	s.logger.Error("Job failed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.JobType)),
		zap.Error(err),
	)

	if !job.ShouldRetry() {
		return
	}

	job.ScheduleRetry(s.config.RetryDelay)
	s.logger.Info("Job scheduled for retry",
		zap.String("job_id", job.ID.String()),
		zap.Int("retry_count", job.RetryCount),
		zap.Int("max_retries", job.MaxRetries),
	)
	if !s.enqueue(job) {
		s.logger.Warn("Failed to re-queue job for retry",
			zap.String("job_id", job.ID.String()),
		)
	}
}
