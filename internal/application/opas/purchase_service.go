package opas

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opas/backend/internal/domain/opas"
	"github.com/opas/backend/internal/domain/shared"
)

// PurchaseService handles the bulk purchase lifecycle. Receiving a purchase
// moves its line items into program inventory at weighted average cost.
type PurchaseService struct {
	purchaseRepo  opas.PurchaseRepository
	inventoryRepo opas.InventoryRepository
	txScope       TransactionScope
	eventBus      shared.EventPublisher
	logger        *zap.Logger
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(
	purchaseRepo opas.PurchaseRepository,
	inventoryRepo opas.InventoryRepository,
	txScope TransactionScope,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *PurchaseService {
	return &PurchaseService{
		purchaseRepo:  purchaseRepo,
		inventoryRepo: inventoryRepo,
		txScope:       txScope,
		eventBus:      eventBus,
		logger:        logger,
	}
}

// Create creates a new draft purchase with an assigned purchase number
func (s *PurchaseService) Create(ctx context.Context, input CreatePurchaseInput) (*PurchaseResponse, error) {
	now := time.Now()
	seq, err := s.purchaseRepo.NextDailySeq(ctx, now)
	if err != nil {
		return nil, err
	}

	purchase, err := opas.NewPurchase(opas.FormatPurchaseNumber(now, seq), input.SellerID)
	if err != nil {
		return nil, err
	}

	if input.Remark != "" {
		purchase.SetRemark(input.Remark)
	}

	for _, item := range input.Items {
		if _, err := purchase.AddItem(item.ProductCode, item.ProductName, item.Unit, item.Quantity, item.UnitPrice); err != nil {
			return nil, err
		}
	}

	if err := s.purchaseRepo.Create(ctx, purchase); err != nil {
		return nil, err
	}

	s.logger.Info("Purchase created",
		zap.String("purchase_id", purchase.ID.String()),
		zap.String("purchase_number", purchase.PurchaseNumber),
		zap.String("seller_id", purchase.SellerID.String()),
		zap.Int("items", len(purchase.Items)))

	resp := ToPurchaseResponse(purchase)
	return &resp, nil
}

// AddItem adds a line item to a draft purchase
func (s *PurchaseService) AddItem(ctx context.Context, input AddPurchaseItemInput) (*PurchaseResponse, error) {
	purchase, err := s.purchaseRepo.FindByID(ctx, input.PurchaseID)
	if err != nil {
		return nil, err
	}

	if _, err := purchase.AddItem(
		input.Item.ProductCode,
		input.Item.ProductName,
		input.Item.Unit,
		input.Item.Quantity,
		input.Item.UnitPrice,
	); err != nil {
		return nil, err
	}

	if err := s.purchaseRepo.Update(ctx, purchase); err != nil {
		return nil, err
	}

	resp := ToPurchaseResponse(purchase)
	return &resp, nil
}

// UpdateItem updates a line item on a draft purchase
func (s *PurchaseService) UpdateItem(ctx context.Context, input UpdatePurchaseItemInput) (*PurchaseResponse, error) {
	purchase, err := s.purchaseRepo.FindByID(ctx, input.PurchaseID)
	if err != nil {
		return nil, err
	}

	if err := purchase.UpdateItem(input.ItemID, input.Quantity, input.UnitPrice); err != nil {
		return nil, err
	}

	if err := s.purchaseRepo.Update(ctx, purchase); err != nil {
		return nil, err
	}

	resp := ToPurchaseResponse(purchase)
	return &resp, nil
}

// RemoveItem removes a line item from a draft purchase
func (s *PurchaseService) RemoveItem(ctx context.Context, input RemovePurchaseItemInput) (*PurchaseResponse, error) {
	purchase, err := s.purchaseRepo.FindByID(ctx, input.PurchaseID)
	if err != nil {
		return nil, err
	}

	if err := purchase.RemoveItem(input.ItemID); err != nil {
		return nil, err
	}

	if err := s.purchaseRepo.Update(ctx, purchase); err != nil {
		return nil, err
	}

	resp := ToPurchaseResponse(purchase)
	return &resp, nil
}

// Delete deletes a draft purchase
func (s *PurchaseService) Delete(ctx context.Context, id uuid.UUID) error {
	purchase, err := s.purchaseRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !purchase.IsDraft() {
		return shared.NewDomainError("INVALID_STATE", "Only draft purchases can be deleted")
	}

	if err := s.purchaseRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Purchase deleted",
		zap.String("purchase_id", id.String()),
		zap.String("purchase_number", purchase.PurchaseNumber))

	return nil
}

// Confirm moves a draft purchase to confirmed
func (s *PurchaseService) Confirm(ctx context.Context, id uuid.UUID) (*PurchaseResponse, error) {
	return s.transition(ctx, id, "confirmed", func(purchase *opas.Purchase) error {
		return purchase.Confirm()
	})
}

// Receive marks a confirmed purchase as received and moves its line items into
// inventory. Each item's quantity is increased and its weighted average cost
// recalculated; items not yet stocked are created on the fly. The inventory
// postings and the purchase status persist in one transaction, so a failed
// write rolls back every posting and the purchase stays receivable.
func (s *PurchaseService) Receive(ctx context.Context, id uuid.UUID) (*PurchaseResponse, error) {
	purchase, err := s.purchaseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := purchase.Receive(); err != nil {
		return nil, err
	}

	var received []*opas.InventoryItem
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		received = received[:0]
		for _, line := range purchase.Items {
			item, err := s.receiveLine(ctx, repos.InventoryRepo(), line)
			if err != nil {
				return err
			}
			received = append(received, item)
		}
		return repos.PurchaseRepo().Update(ctx, purchase)
	})
	if err != nil {
		return nil, err
	}

	// Events only announce committed state
	for _, item := range received {
		s.publishEvents(ctx, item)
	}
	s.publishEvents(ctx, purchase)

	s.logger.Info("Purchase received into inventory",
		zap.String("purchase_id", purchase.ID.String()),
		zap.String("purchase_number", purchase.PurchaseNumber),
		zap.String("total_amount", purchase.TotalAmount.String()),
		zap.Int("items", len(purchase.Items)))

	resp := ToPurchaseResponse(purchase)
	return &resp, nil
}

func (s *PurchaseService) receiveLine(ctx context.Context, inventoryRepo opas.InventoryRepository, line *opas.PurchaseItem) (*opas.InventoryItem, error) {
	item, err := inventoryRepo.FindByProductCode(ctx, line.ProductCode)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		item, err = opas.NewInventoryItem(line.ProductCode, line.ProductName, line.Unit)
		if err != nil {
			return nil, err
		}
		if err := inventoryRepo.Create(ctx, item); err != nil {
			return nil, err
		}
	}

	if err := item.Receive(line.Quantity, line.UnitPrice); err != nil {
		return nil, err
	}

	if err := inventoryRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// MarkPaid marks a received purchase as paid
func (s *PurchaseService) MarkPaid(ctx context.Context, id uuid.UUID) (*PurchaseResponse, error) {
	return s.transition(ctx, id, "paid", func(purchase *opas.Purchase) error {
		return purchase.MarkPaid()
	})
}

// Cancel cancels a draft or confirmed purchase
func (s *PurchaseService) Cancel(ctx context.Context, id uuid.UUID) (*PurchaseResponse, error) {
	return s.transition(ctx, id, "cancelled", func(purchase *opas.Purchase) error {
		return purchase.Cancel()
	})
}

// Get retrieves a purchase by ID
func (s *PurchaseService) Get(ctx context.Context, id uuid.UUID) (*PurchaseResponse, error) {
	purchase, err := s.purchaseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToPurchaseResponse(purchase)
	return &resp, nil
}

// GetByNumber retrieves a purchase by its purchase number
func (s *PurchaseService) GetByNumber(ctx context.Context, number string) (*PurchaseResponse, error) {
	purchase, err := s.purchaseRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	resp := ToPurchaseResponse(purchase)
	return &resp, nil
}

// List returns purchases matching the filter
func (s *PurchaseService) List(ctx context.Context, input ListPurchasesInput) (*PurchaseListResult, error) {
	filter := opas.NewPurchaseFilter()
	filter.Keyword = input.Keyword
	filter.SellerID = input.SellerID
	filter.Status = input.Status
	filter.From = input.From
	filter.To = input.To
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

	purchases, total, err := s.purchaseRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]PurchaseResponse, len(purchases))
	for i, purchase := range purchases {
		responses[i] = ToPurchaseResponse(purchase)
	}

	return &PurchaseListResult{
		Purchases: responses,
		Total:     total,
		Page:      filter.Page,
		PageSize:  filter.Limit(),
	}, nil
}

func (s *PurchaseService) transition(ctx context.Context, id uuid.UUID, target string, apply func(*opas.Purchase) error) (*PurchaseResponse, error) {
	purchase, err := s.purchaseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := apply(purchase); err != nil {
		return nil, err
	}

	if err := s.purchaseRepo.Update(ctx, purchase); err != nil {
		return nil, err
	}

	s.logger.Info("Purchase status changed",
		zap.String("purchase_id", purchase.ID.String()),
		zap.String("purchase_number", purchase.PurchaseNumber),
		zap.String("status", target))

	resp := ToPurchaseResponse(purchase)
	return &resp, nil
}

// publishEvents publishes and clears an aggregate's pending domain events
func (s *PurchaseService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish domain events", zap.Error(err))
	}
	aggregate.ClearDomainEvents()
}
