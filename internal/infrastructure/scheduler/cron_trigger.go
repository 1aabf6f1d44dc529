package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CronTriggerConfig holds configuration for the cron trigger
type CronTriggerConfig struct {
	// ScanInterval is how often the compliance scan runs
	ScanInterval time.Duration

	// SnapshotHour and SnapshotMinute schedule the daily dashboard snapshot
	// refresh and low-stock sweep (24h format)
	SnapshotHour   int
	SnapshotMinute int

	// CheckInterval is how often to check if it's time to run
	CheckInterval time.Duration
}

// DefaultCronTriggerConfig returns default cron trigger configuration
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{
		ScanInterval:   15 * time.Minute,
		SnapshotHour:   2, // 2am
		SnapshotMinute: 0,
		CheckInterval:  time.Minute,
	}
}

// CronTrigger submits recurring marketplace jobs: the periodic compliance
// scan plus a daily dashboard snapshot refresh and low-stock sweep.
type CronTrigger struct {
	config    CronTriggerConfig
	scheduler *Scheduler
	logger    *zap.Logger

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastScanAt  time.Time
	lastRunDate string // Track which date the daily jobs last ran for
}

// NewCronTrigger creates a new cron trigger
func NewCronTrigger(config CronTriggerConfig, scheduler *Scheduler, logger *zap.Logger) *CronTrigger {
	return &CronTrigger{
		config:    config,
		scheduler: scheduler,
		logger:    logger,
	}
}

// Start starts the cron trigger
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Cron trigger started",
		zap.Duration("scan_interval", c.config.ScanInterval),
		zap.Int("snapshot_hour", c.config.SnapshotHour),
		zap.Int("snapshot_minute", c.config.SnapshotMinute),
		zap.Duration("check_interval", c.config.CheckInterval),
	)

	return nil
}

// Stop stops the cron trigger
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop checks periodically if it's time to submit jobs
func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkAndTrigger()
		}
	}
}

// checkAndTrigger submits due jobs
func (c *CronTrigger) checkAndTrigger() {
	now := time.Now()

	// Periodic compliance scan
	c.mu.Lock()
	scanDue := now.Sub(c.lastScanAt) >= c.config.ScanInterval
	if scanDue {
		c.lastScanAt = now
	}
	c.mu.Unlock()

	if scanDue {
		c.logger.Info("Triggering compliance scan")
		if err := c.scheduler.Schedule(JobTypeComplianceScan); err != nil {
			c.logger.Error("Failed to schedule compliance scan", zap.Error(err))
		}
	}

	// Daily snapshot refresh and low-stock sweep
	currentDate := now.Format("2006-01-02")

	c.mu.Lock()
	if c.lastRunDate == currentDate {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if now.Hour() != c.config.SnapshotHour || now.Minute() != c.config.SnapshotMinute {
		return
	}

	c.mu.Lock()
	c.lastRunDate = currentDate
	c.mu.Unlock()

	c.logger.Info("Triggering daily dashboard snapshot refresh")
	if err := c.scheduler.Schedule(JobTypeDashboardSnapshot); err != nil {
		c.logger.Error("Failed to schedule dashboard snapshot", zap.Error(err))
	}
	if err := c.scheduler.Schedule(JobTypeLowStockSweep); err != nil {
		c.logger.Error("Failed to schedule low-stock sweep", zap.Error(err))
	}
}

// TriggerNow submits a job of the given type immediately
func (c *CronTrigger) TriggerNow(jobType JobType) error {
	return c.scheduler.Schedule(jobType)
}
