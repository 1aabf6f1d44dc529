package opas

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opas/backend/internal/domain/opas"
)

// PurchaseItemInput contains a line item for creating or extending a purchase
type PurchaseItemInput struct {
	ProductCode string
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Unit        string
}

// CreatePurchaseInput contains the input for creating a draft purchase
type CreatePurchaseInput struct {
	SellerID uuid.UUID
	Remark   string
	Items    []PurchaseItemInput
}

// AddPurchaseItemInput contains the input for adding a line to a draft purchase
type AddPurchaseItemInput struct {
	PurchaseID uuid.UUID
	Item       PurchaseItemInput
}

// UpdatePurchaseItemInput contains the input for updating a draft purchase line
type UpdatePurchaseItemInput struct {
	PurchaseID uuid.UUID
	ItemID     uuid.UUID
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
}

// RemovePurchaseItemInput contains the input for removing a draft purchase line
type RemovePurchaseItemInput struct {
	PurchaseID uuid.UUID
	ItemID     uuid.UUID
}

// PurchaseItemResponse is the DTO representation of a purchase line item
type PurchaseItemResponse struct {
	ID          uuid.UUID
	ProductCode string
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
	Unit        string
}

// PurchaseResponse is the DTO representation of a bulk purchase
type PurchaseResponse struct {
	ID             uuid.UUID
	PurchaseNumber string
	SellerID       uuid.UUID
	Items          []PurchaseItemResponse
	TotalAmount    decimal.Decimal
	Status         opas.PurchaseStatus
	Remark         string
	ConfirmedAt    *time.Time
	ReceivedAt     *time.Time
	PaidAt         *time.Time
	CancelledAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ToPurchaseResponse converts a domain purchase to its DTO
func ToPurchaseResponse(purchase *opas.Purchase) PurchaseResponse {
	items := make([]PurchaseItemResponse, len(purchase.Items))
	for i, item := range purchase.Items {
		items[i] = PurchaseItemResponse{
			ID:          item.ID,
			ProductCode: item.ProductCode,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
			Unit:        item.Unit,
		}
	}

	return PurchaseResponse{
		ID:             purchase.ID,
		PurchaseNumber: purchase.PurchaseNumber,
		SellerID:       purchase.SellerID,
		Items:          items,
		TotalAmount:    purchase.TotalAmount,
		Status:         purchase.Status,
		Remark:         purchase.Remark,
		ConfirmedAt:    purchase.ConfirmedAt,
		ReceivedAt:     purchase.ReceivedAt,
		PaidAt:         purchase.PaidAt,
		CancelledAt:    purchase.CancelledAt,
		CreatedAt:      purchase.CreatedAt,
		UpdatedAt:      purchase.UpdatedAt,
	}
}

// ListPurchasesInput contains the input for listing purchases
type ListPurchasesInput struct {
	Keyword   string
	SellerID  *uuid.UUID
	Status    *opas.PurchaseStatus
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// PurchaseListResult contains a page of purchases
type PurchaseListResult struct {
	Purchases []PurchaseResponse
	Total     int64
	Page      int
	PageSize  int
}

// InventoryItemResponse is the DTO representation of an inventory item
type InventoryItemResponse struct {
	ID           uuid.UUID
	ProductCode  string
	ProductName  string
	Quantity     decimal.Decimal
	Unit         string
	MinThreshold decimal.Decimal
	MaxThreshold decimal.Decimal
	AverageCost  decimal.Decimal
	StockValue   decimal.Decimal
	LowStock     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ToInventoryItemResponse converts a domain inventory item to its DTO
func ToInventoryItemResponse(item *opas.InventoryItem) InventoryItemResponse {
	return InventoryItemResponse{
		ID:           item.ID,
		ProductCode:  item.ProductCode,
		ProductName:  item.ProductName,
		Quantity:     item.Quantity,
		Unit:         item.Unit,
		MinThreshold: item.MinThreshold,
		MaxThreshold: item.MaxThreshold,
		AverageCost:  item.AverageCost,
		StockValue:   item.StockValue(),
		LowStock:     item.IsLowStock(),
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}

// ListInventoryInput contains the input for listing inventory items
type ListInventoryInput struct {
	Keyword   string
	LowOnly   bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// InventoryListResult contains a page of inventory items
type InventoryListResult struct {
	Items    []InventoryItemResponse
	Total    int64
	Page     int
	PageSize int
}

// AdjustInventoryInput contains the input for a manual stock correction
type AdjustInventoryInput struct {
	ItemID uuid.UUID
	Delta  decimal.Decimal
	Reason string
}

// ReleaseInventoryInput contains the input for an outbound stock movement
type ReleaseInventoryInput struct {
	ItemID   uuid.UUID
	Quantity decimal.Decimal
}

// SetThresholdsInput contains the input for setting stock thresholds
type SetThresholdsInput struct {
	ItemID       uuid.UUID
	MinThreshold decimal.Decimal
	MaxThreshold decimal.Decimal
}

// SweepResult summarizes a low-stock sweep run
type SweepResult struct {
	ItemsChecked int
	LowStock     int
}
