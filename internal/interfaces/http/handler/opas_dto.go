package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opas/backend/internal/application/opas"
)

// =====================
// Bulk Purchase Request DTOs
// =====================

// PurchaseItemRequest represents a line item in purchase requests
type PurchaseItemRequest struct {
	ProductCode string  `json:"product_code" binding:"required,max=64"`
	ProductName string  `json:"product_name" binding:"required,max=200"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" binding:"required,gt=0"`
	Unit        string  `json:"unit" binding:"required,max=30"`
}

// CreatePurchaseRequest represents the request body for creating a draft purchase
type CreatePurchaseRequest struct {
	SellerID string                `json:"seller_id" binding:"required,uuid"`
	Remark   string                `json:"remark" binding:"omitempty,max=500"`
	Items    []PurchaseItemRequest `json:"items" binding:"required,min=1,dive"`
}

// AddPurchaseItemRequest represents the request body for adding a purchase line
type AddPurchaseItemRequest struct {
	Item PurchaseItemRequest `json:"item" binding:"required"`
}

// UpdatePurchaseItemRequest represents the request body for updating a purchase line
type UpdatePurchaseItemRequest struct {
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" binding:"required,gt=0"`
}

// ListPurchasesRequest represents the query parameters for listing purchases
type ListPurchasesRequest struct {
	Keyword   string     `form:"keyword" binding:"omitempty,max=100"`
	SellerID  string     `form:"seller_id" binding:"omitempty,uuid"`
	Status    string     `form:"status" binding:"omitempty,oneof=draft confirmed received paid cancelled"`
	From      *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To        *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Page      int        `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	SortBy    string     `form:"sort_by" binding:"omitempty,oneof=purchase_number total_amount status created_at"`
	SortOrder string     `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// =====================
// Inventory Request DTOs
// =====================

// ListInventoryRequest represents the query parameters for listing inventory
type ListInventoryRequest struct {
	Keyword   string `form:"keyword" binding:"omitempty,max=100"`
	LowOnly   bool   `form:"low_only"`
	Page      int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=product_code quantity average_cost updated_at"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// AdjustInventoryRequest represents the request body for a manual stock correction
type AdjustInventoryRequest struct {
	Delta  float64 `json:"delta" binding:"required"`
	Reason string  `json:"reason" binding:"required,min=5,max=500"`
}

// ReleaseInventoryRequest represents the request body for an outbound stock movement
type ReleaseInventoryRequest struct {
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
}

// SetThresholdsRequest represents the request body for setting stock thresholds
type SetThresholdsRequest struct {
	MinThreshold float64 `json:"min_threshold" binding:"min=0"`
	MaxThreshold float64 `json:"max_threshold" binding:"min=0"`
}

// =====================
// Bulk Purchase Response DTOs
// =====================

// PurchaseItemResponse represents a purchase line item in API responses
type PurchaseItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	Unit        string          `json:"unit"`
}

// PurchaseResponse represents a bulk purchase in API responses
type PurchaseResponse struct {
	ID             uuid.UUID              `json:"id"`
	PurchaseNumber string                 `json:"purchase_number"`
	SellerID       uuid.UUID              `json:"seller_id"`
	Items          []PurchaseItemResponse `json:"items"`
	TotalAmount    decimal.Decimal        `json:"total_amount"`
	Status         string                 `json:"status"`
	Remark         string                 `json:"remark,omitempty"`
	ConfirmedAt    *time.Time             `json:"confirmed_at,omitempty"`
	ReceivedAt     *time.Time             `json:"received_at,omitempty"`
	PaidAt         *time.Time             `json:"paid_at,omitempty"`
	CancelledAt    *time.Time             `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

func toPurchaseResponse(p opas.PurchaseResponse) PurchaseResponse {
	items := make([]PurchaseItemResponse, len(p.Items))
	for i, item := range p.Items {
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
		ID:             p.ID,
		PurchaseNumber: p.PurchaseNumber,
		SellerID:       p.SellerID,
		Items:          items,
		TotalAmount:    p.TotalAmount,
		Status:         string(p.Status),
		Remark:         p.Remark,
		ConfirmedAt:    p.ConfirmedAt,
		ReceivedAt:     p.ReceivedAt,
		PaidAt:         p.PaidAt,
		CancelledAt:    p.CancelledAt,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// =====================
// Inventory Response DTOs
// =====================

// InventoryItemResponse represents an inventory item in API responses
type InventoryItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductCode  string          `json:"product_code"`
	ProductName  string          `json:"product_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	MinThreshold decimal.Decimal `json:"min_threshold"`
	MaxThreshold decimal.Decimal `json:"max_threshold"`
	AverageCost  decimal.Decimal `json:"average_cost"`
	StockValue   decimal.Decimal `json:"stock_value"`
	LowStock     bool            `json:"low_stock"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func toInventoryItemResponse(item opas.InventoryItemResponse) InventoryItemResponse {
	return InventoryItemResponse{
		ID:           item.ID,
		ProductCode:  item.ProductCode,
		ProductName:  item.ProductName,
		Quantity:     item.Quantity,
		Unit:         item.Unit,
		MinThreshold: item.MinThreshold,
		MaxThreshold: item.MaxThreshold,
		AverageCost:  item.AverageCost,
		StockValue:   item.StockValue,
		LowStock:     item.LowStock,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}

// SweepResultResponse summarizes a low-stock sweep run in API responses
type SweepResultResponse struct {
	ItemsChecked int `json:"items_checked"`
	LowStock     int `json:"low_stock"`
}
