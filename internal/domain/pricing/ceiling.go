package pricing

import (
	"strings"
	"time"

	"github.com/opas/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Ceiling represents the maximum allowed retail price for a product.
// It is the aggregate root for price regulation.
type Ceiling struct {
	shared.BaseAggregateRoot
	ProductCode    string
	ProductName    string
	Category       string
	CeilingPrice   decimal.Decimal
	Unit           string
	EffectiveFrom  time.Time
	EffectiveUntil *time.Time
	Active         bool
}

// NewCeiling creates a new active price ceiling
func NewCeiling(productCode, productName, category string, ceilingPrice decimal.Decimal, unit string, effectiveFrom time.Time) (*Ceiling, error) {
	if strings.TrimSpace(productCode) == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_CODE", "Product code cannot be empty")
	}
	if strings.TrimSpace(productName) == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if ceilingPrice.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PRICE", "Ceiling price must be positive")
	}
	if strings.TrimSpace(unit) == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}
	if effectiveFrom.IsZero() {
		effectiveFrom = time.Now()
	}

	return &Ceiling{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductCode:       strings.TrimSpace(productCode),
		ProductName:       strings.TrimSpace(productName),
		Category:          strings.TrimSpace(category),
		CeilingPrice:      ceilingPrice.Round(4),
		Unit:              strings.TrimSpace(unit),
		EffectiveFrom:     effectiveFrom,
		Active:            true,
	}, nil
}

// UpdatePrice changes the ceiling price
func (c *Ceiling) UpdatePrice(price decimal.Decimal) error {
	if price.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PRICE", "Ceiling price must be positive")
	}

	c.CeilingPrice = price.Round(4)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetEffectiveWindow sets the effective period of the ceiling
func (c *Ceiling) SetEffectiveWindow(from time.Time, until *time.Time) error {
	if until != nil && !until.After(from) {
		return shared.NewDomainError("INVALID_INPUT", "Effective until must be after effective from")
	}

	c.EffectiveFrom = from
	c.EffectiveUntil = until
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Deactivate deactivates the ceiling. Ceilings are never hard-deleted while
// non-compliance records reference them.
func (c *Ceiling) Deactivate() error {
	if !c.Active {
		return shared.NewDomainError("INVALID_STATE", "Ceiling is already inactive")
	}

	c.Active = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Reactivate reactivates the ceiling
func (c *Ceiling) Reactivate() error {
	if c.Active {
		return shared.NewDomainError("INVALID_STATE", "Ceiling is already active")
	}

	c.Active = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// IsEffectiveAt returns true if the ceiling is active and effective at the given time
func (c *Ceiling) IsEffectiveAt(at time.Time) bool {
	if !c.Active {
		return false
	}
	if at.Before(c.EffectiveFrom) {
		return false
	}
	if c.EffectiveUntil != nil && at.After(*c.EffectiveUntil) {
		return false
	}
	return true
}
