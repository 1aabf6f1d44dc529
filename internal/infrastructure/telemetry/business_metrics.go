// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the marketplace.
// It tracks purchase activity, registration decisions, compliance
// violations, alerts and inventory health.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	purchaseCreatedTotal       *Counter
	purchaseAmountTotal        *Counter
	registrationDecisionTotal  *Counter
	complianceViolationTotal   *Counter
	alertRaisedTotal           *Counter

	// Gauge metrics (point-in-time values)
	inventoryLowStockCount *Gauge
	inventoryTrackedItems  *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	inventoryProvider InventoryMetricsProvider
}

// InventoryMetricsProvider provides inventory data for periodic metrics
// collection. This interface allows the telemetry layer to query inventory
// state without depending on the inventory domain directly.
type InventoryMetricsProvider interface {
	// GetLowStockCount returns the count of products below their minimum threshold
	GetLowStockCount(ctx context.Context) (int64, error)

	// GetTrackedItemCount returns the number of tracked inventory items
	GetTrackedItemCount(ctx context.Context) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter             metric.Meter
	Logger            *zap.Logger
	CollectInterval   time.Duration // Default: 5 minutes
	InventoryProvider InventoryMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:             cfg.Meter,
		logger:            logger,
		stopChan:          make(chan struct{}),
		inventoryProvider: cfg.InventoryProvider,
	}

	var err error

	// Purchase metrics
	bm.purchaseCreatedTotal, err = NewCounter(
		cfg.Meter,
		"opas_purchase_created_total",
		"Total number of purchase records created",
		"{purchases}",
	)
	if err != nil {
		return nil, err
	}

	bm.purchaseAmountTotal, err = NewCounter(
		cfg.Meter,
		"opas_purchase_amount_total",
		"Total purchase amount in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	// Registration review metrics
	bm.registrationDecisionTotal, err = NewCounter(
		cfg.Meter,
		"opas_registration_decision_total",
		"Total number of seller registration decisions",
		"{decisions}",
	)
	if err != nil {
		return nil, err
	}

	// Compliance metrics
	bm.complianceViolationTotal, err = NewCounter(
		cfg.Meter,
		"opas_compliance_violation_total",
		"Total number of price ceiling violations detected",
		"{violations}",
	)
	if err != nil {
		return nil, err
	}

	// Alert metrics
	bm.alertRaisedTotal, err = NewCounter(
		cfg.Meter,
		"opas_alert_raised_total",
		"Total number of operator alerts raised",
		"{alerts}",
	)
	if err != nil {
		return nil, err
	}

	// Inventory gauge metrics
	bm.inventoryLowStockCount, err = NewGauge(
		cfg.Meter,
		"opas_inventory_low_stock_count",
		"Number of products below minimum stock threshold",
		"{products}",
	)
	if err != nil {
		return nil, err
	}

	bm.inventoryTrackedItems, err = NewGauge(
		cfg.Meter,
		"opas_inventory_tracked_items",
		"Number of tracked inventory items",
		"{products}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Purchase Metrics
// =============================================================================

// RecordPurchaseCreated records a purchase creation event.
// This should be called from the application layer when a purchase is created.
func (bm *BusinessMetrics) RecordPurchaseCreated(ctx context.Context, sellerID string) {
	bm.purchaseCreatedTotal.Inc(ctx,
		AttrSellerID.String(sellerID),
	)
}

// RecordPurchaseAmount records the purchase amount.
// Amount should be in the smallest currency unit (cents).
func (bm *BusinessMetrics) RecordPurchaseAmount(ctx context.Context, sellerID string, amountCents int64) {
	bm.purchaseAmountTotal.Add(ctx, amountCents,
		AttrSellerID.String(sellerID),
	)
}

// RecordPurchaseWithAmount is a convenience method that records both purchase count and amount.
func (bm *BusinessMetrics) RecordPurchaseWithAmount(ctx context.Context, sellerID string, amount decimal.Decimal) {
	bm.RecordPurchaseCreated(ctx, sellerID)

	amountCents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.RecordPurchaseAmount(ctx, sellerID, amountCents)
}

// =============================================================================
// Registration Review Metrics
// =============================================================================

// RegistrationDecision represents the outcome of a registration review.
type RegistrationDecision string

const (
	RegistrationDecisionApproved RegistrationDecision = "approved"
	RegistrationDecisionRejected RegistrationDecision = "rejected"
)

// RecordRegistrationDecision records an approve/reject decision on a
// seller registration request.
func (bm *BusinessMetrics) RecordRegistrationDecision(ctx context.Context, decision RegistrationDecision) {
	bm.registrationDecisionTotal.Inc(ctx,
		AttrDecision.String(string(decision)),
	)
}

// =============================================================================
// Compliance Metrics
// =============================================================================

// RecordComplianceViolation records a detected price ceiling violation.
func (bm *BusinessMetrics) RecordComplianceViolation(ctx context.Context, productCode string) {
	bm.complianceViolationTotal.Inc(ctx,
		AttrProductCode.String(productCode),
	)
}

// =============================================================================
// Alert Metrics
// =============================================================================

// RecordAlertRaised records a raised operator alert.
func (bm *BusinessMetrics) RecordAlertRaised(ctx context.Context, category, severity string) {
	bm.alertRaisedTotal.Inc(ctx,
		AttrAlertCategory.String(category),
		AttrAlertSeverity.String(severity),
	)
}

// =============================================================================
// Inventory Metrics
// =============================================================================

// RecordLowStockCount records the number of products below minimum threshold.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordLowStockCount(ctx context.Context, count int64) {
	bm.inventoryLowStockCount.Record(ctx, count)
}

// RecordTrackedItemCount records the number of tracked inventory items.
func (bm *BusinessMetrics) RecordTrackedItemCount(ctx context.Context, count int64) {
	bm.inventoryTrackedItems.Record(ctx, count)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects inventory metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectInventoryMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectInventoryMetrics(ctx)
		}
	}
}

// collectInventoryMetrics collects inventory gauge metrics.
func (bm *BusinessMetrics) collectInventoryMetrics(ctx context.Context) {
	if bm.inventoryProvider == nil {
		bm.logger.Debug("No inventory provider configured, skipping inventory metrics collection")
		return
	}

	lowStockCount, err := bm.inventoryProvider.GetLowStockCount(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get low stock count", zap.Error(err))
	} else {
		bm.RecordLowStockCount(ctx, lowStockCount)
	}

	trackedItems, err := bm.inventoryProvider.GetTrackedItemCount(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get tracked item count", zap.Error(err))
	} else {
		bm.RecordTrackedItemCount(ctx, trackedItems)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
