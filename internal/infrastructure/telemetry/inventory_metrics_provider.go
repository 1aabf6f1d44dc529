// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormInventoryMetricsProvider implements InventoryMetricsProvider using GORM.
// It queries the opas_inventory_items table directly for aggregated metrics.
type GormInventoryMetricsProvider struct {
	db *gorm.DB
}

// NewGormInventoryMetricsProvider creates a new GormInventoryMetricsProvider.
func NewGormInventoryMetricsProvider(db *gorm.DB) *GormInventoryMetricsProvider {
	return &GormInventoryMetricsProvider{db: db}
}

// GetLowStockCount returns the count of products below their minimum threshold.
// Items with a zero threshold are not considered low stock.
func (p *GormInventoryMetricsProvider) GetLowStockCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("opas_inventory_items").
		Where("min_threshold > 0 AND quantity < min_threshold").
		Count(&count).Error

	return count, err
}

// GetTrackedItemCount returns the number of tracked inventory items.
func (p *GormInventoryMetricsProvider) GetTrackedItemCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("opas_inventory_items").
		Count(&count).Error

	return count, err
}
