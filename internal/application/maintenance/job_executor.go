// Package maintenance wires the background jobs that keep marketplace data
// fresh: the periodic compliance scan, the dashboard snapshot refresh, and
// the low stock sweep.
package maintenance

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	opasapp "github.com/opas/backend/internal/application/opas"
	pricingapp "github.com/opas/backend/internal/application/pricing"
	"github.com/opas/backend/internal/infrastructure/scheduler"
)

// ComplianceScanner runs the ceiling compliance scan over active listings
type ComplianceScanner interface {
	Scan(ctx context.Context) (*pricingapp.ScanResult, error)
}

// SnapshotRefresher recomputes the cached dashboard snapshots
type SnapshotRefresher interface {
	Refresh(ctx context.Context) error
}

// StockSweeper re-raises low stock signals for items still below threshold
type StockSweeper interface {
	Sweep(ctx context.Context) (*opasapp.SweepResult, error)
}

// JobExecutor dispatches scheduled jobs to the owning application service
type JobExecutor struct {
	compliance ComplianceScanner
	dashboard  SnapshotRefresher
	inventory  StockSweeper
	logger     *zap.Logger
}

// NewJobExecutor creates a new job executor
func NewJobExecutor(
	compliance ComplianceScanner,
	dashboard SnapshotRefresher,
	inventory StockSweeper,
	logger *zap.Logger,
) *JobExecutor {
	return &JobExecutor{
		compliance: compliance,
		dashboard:  dashboard,
		inventory:  inventory,
		logger:     logger,
	}
}

// Execute implements scheduler.JobExecutor
func (e *JobExecutor) Execute(ctx context.Context, job *scheduler.Job) error {
	switch job.JobType {
	case scheduler.JobTypeComplianceScan:
		result, err := e.compliance.Scan(ctx)
		if err != nil {
			return fmt.Errorf("compliance scan: %w", err)
		}
		e.logger.Info("Compliance scan job finished",
			zap.String("job_id", job.ID.String()),
			zap.Int("listings_checked", result.ListingsChecked),
			zap.Int("violations", result.Violations),
			zap.Int("new_records", result.NewRecords))
		return nil

	case scheduler.JobTypeDashboardSnapshot:
		if err := e.dashboard.Refresh(ctx); err != nil {
			return fmt.Errorf("dashboard snapshot: %w", err)
		}
		return nil

	case scheduler.JobTypeLowStockSweep:
		result, err := e.inventory.Sweep(ctx)
		if err != nil {
			return fmt.Errorf("low stock sweep: %w", err)
		}
		e.logger.Info("Low stock sweep job finished",
			zap.String("job_id", job.ID.String()),
			zap.Int("low_stock_items", result.LowStock))
		return nil

	default:
		return fmt.Errorf("unknown job type: %s", job.JobType)
	}
}

var _ scheduler.JobExecutor = (*JobExecutor)(nil)
