package opas

import (
	"github.com/google/uuid"
	"github.com/opas/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypePurchase      = "OPASPurchase"
	AggregateTypeInventoryItem = "OPASInventoryItem"
)

// OPAS domain event types
const (
	EventTypePurchaseReceived = "OPASPurchaseReceived"
	EventTypeLowStockDetected = "LowStockDetected"
)

// PurchaseReceivedEvent is published when a bulk purchase is received into inventory
type PurchaseReceivedEvent struct {
	shared.BaseDomainEvent
	PurchaseID     uuid.UUID       `json:"purchase_id"`
	PurchaseNumber string          `json:"purchase_number"`
	SellerID       uuid.UUID       `json:"seller_id"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	ItemCount      int             `json:"item_count"`
}

// NewPurchaseReceivedEvent creates a new PurchaseReceivedEvent
func NewPurchaseReceivedEvent(purchase *Purchase) *PurchaseReceivedEvent {
	return &PurchaseReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseReceived, AggregateTypePurchase, purchase.ID),
		PurchaseID:      purchase.ID,
		PurchaseNumber:  purchase.PurchaseNumber,
		SellerID:        purchase.SellerID,
		TotalAmount:     purchase.TotalAmount,
		ItemCount:       len(purchase.Items),
	}
}

// LowStockDetectedEvent is published when an item's quantity crosses below its minimum threshold
type LowStockDetectedEvent struct {
	shared.BaseDomainEvent
	ItemID       uuid.UUID       `json:"item_id"`
	ProductCode  string          `json:"product_code"`
	ProductName  string          `json:"product_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	MinThreshold decimal.Decimal `json:"min_threshold"`
}

// NewLowStockDetectedEvent creates a new LowStockDetectedEvent
func NewLowStockDetectedEvent(item *InventoryItem) *LowStockDetectedEvent {
	return &LowStockDetectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStockDetected, AggregateTypeInventoryItem, item.ID),
		ItemID:          item.ID,
		ProductCode:     item.ProductCode,
		ProductName:     item.ProductName,
		Quantity:        item.Quantity,
		MinThreshold:    item.MinThreshold,
	}
}
