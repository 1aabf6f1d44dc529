package opas

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseRepository defines the interface for bulk purchase persistence
type PurchaseRepository interface {
	// Create creates a new purchase with its items
	Create(ctx context.Context, purchase *Purchase) error

	// Update updates an existing purchase and its items
	Update(ctx context.Context, purchase *Purchase) error

	// Delete deletes a draft purchase
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a purchase by ID with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Purchase, error)

	// FindByNumber finds a purchase by its purchase number
	FindByNumber(ctx context.Context, number string) (*Purchase, error)

	// FindAll returns purchases matching the filter with pagination
	FindAll(ctx context.Context, filter PurchaseFilter) ([]*Purchase, int64, error)

	// NextDailySeq returns the next purchase sequence number for the given day
	NextDailySeq(ctx context.Context, day time.Time) (int64, error)

	// CountByStatus returns the number of purchases in the given status
	CountByStatus(ctx context.Context, status PurchaseStatus) (int64, error)

	// TotalAmountSince sums the total amount of non-cancelled purchases created
	// at or after the given time
	TotalAmountSince(ctx context.Context, since time.Time) (decimal.Decimal, error)
}

// InventoryRepository defines the interface for program inventory persistence
type InventoryRepository interface {
	// Create creates a new inventory item
	Create(ctx context.Context, item *InventoryItem) error

	// Update updates an existing inventory item
	Update(ctx context.Context, item *InventoryItem) error

	// FindByID finds an inventory item by ID
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryItem, error)

	// FindByProductCode finds an inventory item by product code
	FindByProductCode(ctx context.Context, productCode string) (*InventoryItem, error)

	// FindAll returns inventory items matching the filter with pagination
	FindAll(ctx context.Context, filter InventoryFilter) ([]*InventoryItem, int64, error)

	// FindLowStock returns items whose quantity is below their minimum threshold
	FindLowStock(ctx context.Context) ([]*InventoryItem, error)

	// CountLowStock returns the number of items below their minimum threshold
	CountLowStock(ctx context.Context) (int64, error)
}

// PurchaseFilter contains filter options for querying purchases
type PurchaseFilter struct {
	Keyword  string
	SellerID *uuid.UUID
	Status   *PurchaseStatus
	From     *time.Time
	To       *time.Time

	Page     int
	PageSize int

	SortBy    string
	SortOrder string
}

// NewPurchaseFilter creates a new PurchaseFilter with default values
func NewPurchaseFilter() PurchaseFilter {
	return PurchaseFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}

// WithStatus sets the status filter
func (f PurchaseFilter) WithStatus(status PurchaseStatus) PurchaseFilter {
	f.Status = &status
	return f
}

// Offset returns the offset for pagination
func (f PurchaseFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f PurchaseFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}

// InventoryFilter contains filter options for querying inventory items
type InventoryFilter struct {
	Keyword string
	LowOnly bool

	Page     int
	PageSize int

	SortBy    string
	SortOrder string
}

// NewInventoryFilter creates a new InventoryFilter with default values
func NewInventoryFilter() InventoryFilter {
	return InventoryFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "product_code",
		SortOrder: "asc",
	}
}

// Offset returns the offset for pagination
func (f InventoryFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f InventoryFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
