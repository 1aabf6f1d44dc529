package opas

import (
	"strings"
	"time"

	"github.com/opas/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InventoryItem represents a product stocked through bulk purchases.
// It is the aggregate root for program inventory.
type InventoryItem struct {
	shared.BaseAggregateRoot
	ProductCode  string
	ProductName  string
	Quantity     decimal.Decimal // Quantity on hand, never negative
	Unit         string
	MinThreshold decimal.Decimal
	MaxThreshold decimal.Decimal
	AverageCost  decimal.Decimal // Weighted average cost per unit
}

// NewInventoryItem creates a new inventory item with zero stock
func NewInventoryItem(productCode, productName, unit string) (*InventoryItem, error) {
	if strings.TrimSpace(productCode) == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_CODE", "Product code cannot be empty")
	}
	if strings.TrimSpace(productName) == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if strings.TrimSpace(unit) == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}

	return &InventoryItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductCode:       strings.TrimSpace(productCode),
		ProductName:       strings.TrimSpace(productName),
		Quantity:          decimal.Zero,
		Unit:              strings.TrimSpace(unit),
		MinThreshold:      decimal.Zero,
		MaxThreshold:      decimal.Zero,
		AverageCost:       decimal.Zero,
	}, nil
}

// Receive adds received stock and recalculates the weighted average cost.
func (i *InventoryItem) Receive(quantity, unitCost decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Receive quantity must be positive")
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	wasAbove := i.Quantity.GreaterThanOrEqual(i.MinThreshold)
	newQuantity := i.Quantity.Add(quantity)
	// Weighted average: (onHand*avgCost + received*unitCost) / (onHand+received)
	currentValue := i.Quantity.Mul(i.AverageCost)
	receivedValue := quantity.Mul(unitCost)
	i.AverageCost = currentValue.Add(receivedValue).Div(newQuantity).Round(4)
	i.Quantity = newQuantity
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	// Emit only on crossing the threshold, not on every movement below it
	if wasAbove {
		i.checkLowStock()
	}

	return nil
}

// Release removes outbound stock
func (i *InventoryItem) Release(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Release quantity must be positive")
	}
	if quantity.GreaterThan(i.Quantity) {
		return shared.ErrInsufficientStock
	}

	wasAbove := i.Quantity.GreaterThanOrEqual(i.MinThreshold)
	i.Quantity = i.Quantity.Sub(quantity)
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	// Emit only on crossing the threshold, not on every movement below it
	if wasAbove {
		i.checkLowStock()
	}

	return nil
}

// Adjust applies a manual correction (positive or negative delta)
func (i *InventoryItem) Adjust(delta decimal.Decimal, reason string) error {
	if delta.IsZero() {
		return shared.NewDomainError("INVALID_QUANTITY", "Adjustment delta cannot be zero")
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_REASON", "Adjustment reason cannot be empty")
	}

	newQuantity := i.Quantity.Add(delta)
	if newQuantity.IsNegative() {
		return shared.ErrInsufficientStock
	}

	wasAbove := i.Quantity.GreaterThanOrEqual(i.MinThreshold)
	i.Quantity = newQuantity
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	if wasAbove {
		i.checkLowStock()
	}

	return nil
}

// SetThresholds sets the minimum and maximum stock thresholds
func (i *InventoryItem) SetThresholds(min, max decimal.Decimal) error {
	if min.IsNegative() || max.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Thresholds cannot be negative")
	}
	if max.GreaterThan(decimal.Zero) && min.GreaterThan(max) {
		return shared.NewDomainError("INVALID_INPUT", "Minimum threshold cannot exceed maximum")
	}

	i.MinThreshold = min
	i.MaxThreshold = max
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

// IsLowStock returns true if quantity is below the minimum threshold
func (i *InventoryItem) IsLowStock() bool {
	return i.MinThreshold.GreaterThan(decimal.Zero) && i.Quantity.LessThan(i.MinThreshold)
}

// StockValue returns quantity * average cost
func (i *InventoryItem) StockValue() decimal.Decimal {
	return i.Quantity.Mul(i.AverageCost).Round(4)
}

func (i *InventoryItem) checkLowStock() {
	if i.IsLowStock() {
		i.AddDomainEvent(NewLowStockDetectedEvent(i))
	}
}
