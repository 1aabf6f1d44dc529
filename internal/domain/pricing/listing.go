package pricing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opas/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Listing represents a seller's offer of a product at a price.
// It is the aggregate root for price monitoring.
type Listing struct {
	shared.BaseAggregateRoot
	SellerID    uuid.UUID
	ProductCode string
	ProductName string
	ListedPrice decimal.Decimal
	Quantity    decimal.Decimal
	Unit        string
	Active      bool
}

// NewListing creates a new active product listing
func NewListing(sellerID uuid.UUID, productCode, productName string, listedPrice, quantity decimal.Decimal, unit string) (*Listing, error) {
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SELLER", "Seller ID cannot be empty")
	}
	if strings.TrimSpace(productCode) == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_CODE", "Product code cannot be empty")
	}
	if listedPrice.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PRICE", "Listed price must be positive")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}

	return &Listing{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SellerID:          sellerID,
		ProductCode:       strings.TrimSpace(productCode),
		ProductName:       strings.TrimSpace(productName),
		ListedPrice:       listedPrice.Round(4),
		Quantity:          quantity,
		Unit:              strings.TrimSpace(unit),
		Active:            true,
	}, nil
}

// ChangePrice changes the listed price. The caller runs a compliance check
// against the effective ceiling immediately after.
func (l *Listing) ChangePrice(price decimal.Decimal) error {
	if price.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PRICE", "Listed price must be positive")
	}

	l.ListedPrice = price.Round(4)
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	return nil
}

// SetQuantity sets the offered quantity
func (l *Listing) SetQuantity(quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}

	l.Quantity = quantity
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	return nil
}

// Deactivate takes the listing off the market
func (l *Listing) Deactivate() error {
	if !l.Active {
		return shared.NewDomainError("INVALID_STATE", "Listing is already inactive")
	}

	l.Active = false
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	return nil
}

// Reactivate puts the listing back on the market
func (l *Listing) Reactivate() error {
	if l.Active {
		return shared.NewDomainError("INVALID_STATE", "Listing is already active")
	}

	l.Active = true
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	return nil
}

// ExceedsCeiling returns true if the listed price is above the ceiling price
func (l *Listing) ExceedsCeiling(ceiling *Ceiling) bool {
	return l.ListedPrice.GreaterThan(ceiling.CeilingPrice)
}
