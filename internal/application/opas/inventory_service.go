package opas

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opas/backend/internal/domain/opas"
	"github.com/opas/backend/internal/domain/shared"
)

// InventoryService handles program inventory queries and stock movements
// outside the purchase flow.
type InventoryService struct {
	inventoryRepo opas.InventoryRepository
	eventBus      shared.EventPublisher
	logger        *zap.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	inventoryRepo opas.InventoryRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *InventoryService {
	return &InventoryService{
		inventoryRepo: inventoryRepo,
		eventBus:      eventBus,
		logger:        logger,
	}
}

// Get retrieves an inventory item by ID
func (s *InventoryService) Get(ctx context.Context, id uuid.UUID) (*InventoryItemResponse, error) {
	item, err := s.inventoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToInventoryItemResponse(item)
	return &resp, nil
}

// GetByProductCode retrieves an inventory item by product code
func (s *InventoryService) GetByProductCode(ctx context.Context, productCode string) (*InventoryItemResponse, error) {
	item, err := s.inventoryRepo.FindByProductCode(ctx, productCode)
	if err != nil {
		return nil, err
	}

	resp := ToInventoryItemResponse(item)
	return &resp, nil
}

// List returns inventory items matching the filter
func (s *InventoryService) List(ctx context.Context, input ListInventoryInput) (*InventoryListResult, error) {
	filter := opas.NewInventoryFilter()
	filter.Keyword = input.Keyword
	filter.LowOnly = input.LowOnly
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 {
		filter.PageSize = input.PageSize
	}
	if input.SortBy != "" {
		filter.SortBy = input.SortBy
	}
	if input.SortOrder != "" {
		filter.SortOrder = input.SortOrder
	}

	items, total, err := s.inventoryRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]InventoryItemResponse, len(items))
	for i, item := range items {
		responses[i] = ToInventoryItemResponse(item)
	}

	return &InventoryListResult{
		Items:    responses,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.Limit(),
	}, nil
}

// Adjust applies a manual stock correction with a reason
func (s *InventoryService) Adjust(ctx context.Context, input AdjustInventoryInput) (*InventoryItemResponse, error) {
	item, err := s.inventoryRepo.FindByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}

	if err := item.Adjust(input.Delta, input.Reason); err != nil {
		return nil, err
	}

	if err := s.inventoryRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, item)

	s.logger.Info("Inventory adjusted",
		zap.String("item_id", item.ID.String()),
		zap.String("product_code", item.ProductCode),
		zap.String("delta", input.Delta.String()),
		zap.String("reason", input.Reason))

	resp := ToInventoryItemResponse(item)
	return &resp, nil
}

// Release removes outbound stock from an item
func (s *InventoryService) Release(ctx context.Context, input ReleaseInventoryInput) (*InventoryItemResponse, error) {
	item, err := s.inventoryRepo.FindByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}

	if err := item.Release(input.Quantity); err != nil {
		return nil, err
	}

	if err := s.inventoryRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, item)

	s.logger.Info("Inventory released",
		zap.String("item_id", item.ID.String()),
		zap.String("product_code", item.ProductCode),
		zap.String("quantity", input.Quantity.String()))

	resp := ToInventoryItemResponse(item)
	return &resp, nil
}

// SetThresholds sets an item's minimum and maximum stock thresholds
func (s *InventoryService) SetThresholds(ctx context.Context, input SetThresholdsInput) (*InventoryItemResponse, error) {
	item, err := s.inventoryRepo.FindByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}

	if err := item.SetThresholds(input.MinThreshold, input.MaxThreshold); err != nil {
		return nil, err
	}

	if err := s.inventoryRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	resp := ToInventoryItemResponse(item)
	return &resp, nil
}

// ListLowStock returns all items below their minimum threshold
func (s *InventoryService) ListLowStock(ctx context.Context) ([]InventoryItemResponse, error) {
	items, err := s.inventoryRepo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]InventoryItemResponse, len(items))
	for i, item := range items {
		responses[i] = ToInventoryItemResponse(item)
	}

	return responses, nil
}

// Sweep re-publishes a low stock event for every item still below its minimum
// threshold. Alert handling is idempotent per item, so a sweep refreshes the
// active alerts instead of duplicating them.
func (s *InventoryService) Sweep(ctx context.Context) (*SweepResult, error) {
	items, err := s.inventoryRepo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if err := s.eventBus.Publish(ctx, opas.NewLowStockDetectedEvent(item)); err != nil {
			s.logger.Error("Failed to publish low stock event",
				zap.String("product_code", item.ProductCode),
				zap.Error(err))
		}
	}

	s.logger.Info("Low stock sweep completed", zap.Int("low_stock_items", len(items)))

	return &SweepResult{
		ItemsChecked: len(items),
		LowStock:     len(items),
	}, nil
}

// publishEvents publishes and clears an aggregate's pending domain events
func (s *InventoryService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish domain events", zap.Error(err))
	}
	aggregate.ClearDomainEvents()
}
