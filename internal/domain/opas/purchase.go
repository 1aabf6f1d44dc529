package opas

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opas/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PurchaseStatus represents the status of a bulk purchase
type PurchaseStatus string

const (
	PurchaseStatusDraft     PurchaseStatus = "draft"
	PurchaseStatusConfirmed PurchaseStatus = "confirmed"
	PurchaseStatusReceived  PurchaseStatus = "received"
	PurchaseStatusPaid      PurchaseStatus = "paid"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
)

// IsValid checks if the status is a valid PurchaseStatus
func (s PurchaseStatus) IsValid() bool {
	switch s {
	case PurchaseStatusDraft, PurchaseStatusConfirmed, PurchaseStatusReceived,
		PurchaseStatusPaid, PurchaseStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseStatus
func (s PurchaseStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseStatus) CanTransitionTo(target PurchaseStatus) bool {
	switch s {
	case PurchaseStatusDraft:
		return target == PurchaseStatusConfirmed || target == PurchaseStatusCancelled
	case PurchaseStatusConfirmed:
		return target == PurchaseStatusReceived || target == PurchaseStatusCancelled
	case PurchaseStatusReceived:
		return target == PurchaseStatusPaid
	case PurchaseStatusPaid, PurchaseStatusCancelled:
		return false // Terminal states
	}
	return false
}

// FormatPurchaseNumber formats a purchase number from a date and daily sequence
func FormatPurchaseNumber(date time.Time, seq int64) string {
	return fmt.Sprintf("OPAS-%s-%04d", date.Format("20060102"), seq)
}

// PurchaseItem represents a line item in a bulk purchase
type PurchaseItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	PurchaseID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductCode string          `gorm:"type:varchar(50);not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Quantity * UnitPrice
	Unit        string          `gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseItem) TableName() string {
	return "opas_purchase_items"
}

// NewPurchaseItem creates a new purchase line item
func NewPurchaseItem(purchaseID uuid.UUID, productCode, productName, unit string, quantity, unitPrice decimal.Decimal) (*PurchaseItem, error) {
	if strings.TrimSpace(productCode) == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_CODE", "Product code cannot be empty")
	}
	if strings.TrimSpace(productName) == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if strings.TrimSpace(unit) == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}

	now := time.Now()
	return &PurchaseItem{
		ID:          uuid.New(),
		PurchaseID:  purchaseID,
		ProductCode: strings.TrimSpace(productCode),
		ProductName: strings.TrimSpace(productName),
		Quantity:    quantity,
		UnitPrice:   unitPrice.Round(4),
		Amount:      quantity.Mul(unitPrice).Round(4),
		Unit:        strings.TrimSpace(unit),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdateQuantityAndPrice updates the line quantity and unit price
func (i *PurchaseItem) UpdateQuantityAndPrice(quantity, unitPrice decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	i.Quantity = quantity
	i.UnitPrice = unitPrice.Round(4)
	i.Amount = quantity.Mul(unitPrice).Round(4)
	i.UpdatedAt = time.Now()

	return nil
}

// Purchase represents a bulk purchase made through the assistance program.
// It is the aggregate root for purchase lifecycle and totals.
type Purchase struct {
	shared.BaseAggregateRoot
	PurchaseNumber string
	SellerID       uuid.UUID
	Items          []*PurchaseItem
	TotalAmount    decimal.Decimal
	Status         PurchaseStatus
	Remark         string
	ConfirmedAt    *time.Time
	ReceivedAt     *time.Time
	PaidAt         *time.Time
	CancelledAt    *time.Time
}

// NewPurchase creates a new draft purchase
func NewPurchase(purchaseNumber string, sellerID uuid.UUID) (*Purchase, error) {
	if strings.TrimSpace(purchaseNumber) == "" {
		return nil, shared.NewDomainError("INVALID_PURCHASE_NUMBER", "Purchase number cannot be empty")
	}
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SELLER", "Seller ID cannot be empty")
	}

	return &Purchase{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PurchaseNumber:    purchaseNumber,
		SellerID:          sellerID,
		Items:             make([]*PurchaseItem, 0),
		TotalAmount:       decimal.Zero,
		Status:            PurchaseStatusDraft,
	}, nil
}

// AddItem adds a line item to a draft purchase
func (p *Purchase) AddItem(productCode, productName, unit string, quantity, unitPrice decimal.Decimal) (*PurchaseItem, error) {
	if p.Status != PurchaseStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Items can only be added to a draft purchase")
	}

	for _, item := range p.Items {
		if item.ProductCode == strings.TrimSpace(productCode) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Purchase already contains this product")
		}
	}

	item, err := NewPurchaseItem(p.ID, productCode, productName, unit, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	p.Items = append(p.Items, item)
	p.recalculateTotal()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return item, nil
}

// UpdateItem updates a line item on a draft purchase
func (p *Purchase) UpdateItem(itemID uuid.UUID, quantity, unitPrice decimal.Decimal) error {
	if p.Status != PurchaseStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Items can only be updated on a draft purchase")
	}

	item := p.findItem(itemID)
	if item == nil {
		return shared.NewDomainError("NOT_FOUND", "Purchase item not found")
	}

	if err := item.UpdateQuantityAndPrice(quantity, unitPrice); err != nil {
		return err
	}

	p.recalculateTotal()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// RemoveItem removes a line item from a draft purchase
func (p *Purchase) RemoveItem(itemID uuid.UUID) error {
	if p.Status != PurchaseStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Items can only be removed from a draft purchase")
	}

	for idx, item := range p.Items {
		if item.ID == itemID {
			p.Items = append(p.Items[:idx], p.Items[idx+1:]...)
			p.recalculateTotal()
			p.UpdatedAt = time.Now()
			p.IncrementVersion()
			return nil
		}
	}

	return shared.NewDomainError("NOT_FOUND", "Purchase item not found")
}

// SetRemark sets the purchase remark
func (p *Purchase) SetRemark(remark string) {
	p.Remark = remark
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Confirm moves the purchase from draft to confirmed
func (p *Purchase) Confirm() error {
	if !p.Status.CanTransitionTo(PurchaseStatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE", "Only draft purchases can be confirmed")
	}
	if len(p.Items) == 0 {
		return shared.NewDomainError("INVALID_STATE", "Cannot confirm a purchase without items")
	}

	now := time.Now()
	p.Status = PurchaseStatusConfirmed
	p.ConfirmedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	return nil
}

// Receive marks the goods as received. Inventory quantities and average costs
// are updated by the application service using the line items.
func (p *Purchase) Receive() error {
	if !p.Status.CanTransitionTo(PurchaseStatusReceived) {
		return shared.NewDomainError("INVALID_STATE", "Only confirmed purchases can be received")
	}

	now := time.Now()
	p.Status = PurchaseStatusReceived
	p.ReceivedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPurchaseReceivedEvent(p))

	return nil
}

// MarkPaid marks the purchase as paid
func (p *Purchase) MarkPaid() error {
	if !p.Status.CanTransitionTo(PurchaseStatusPaid) {
		return shared.NewDomainError("INVALID_STATE", "Only received purchases can be marked paid")
	}

	now := time.Now()
	p.Status = PurchaseStatusPaid
	p.PaidAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	return nil
}

// Cancel cancels a draft or confirmed purchase
func (p *Purchase) Cancel() error {
	if !p.Status.CanTransitionTo(PurchaseStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", "Only draft or confirmed purchases can be cancelled")
	}

	now := time.Now()
	p.Status = PurchaseStatusCancelled
	p.CancelledAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	return nil
}

// IsDraft returns true if the purchase is a draft
func (p *Purchase) IsDraft() bool {
	return p.Status == PurchaseStatusDraft
}

func (p *Purchase) findItem(itemID uuid.UUID) *PurchaseItem {
	for _, item := range p.Items {
		if item.ID == itemID {
			return item
		}
	}
	return nil
}

func (p *Purchase) recalculateTotal() {
	total := decimal.Zero
	for _, item := range p.Items {
		total = total.Add(item.Amount)
	}
	p.TotalAmount = total
}
