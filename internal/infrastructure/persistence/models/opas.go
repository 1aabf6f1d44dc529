package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opas/backend/internal/domain/opas"
	"github.com/opas/backend/internal/domain/shared"
)

// PurchaseModel is the persistence model for the Purchase domain entity.
type PurchaseModel struct {
	AggregateModel
	PurchaseNumber string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	SellerID       uuid.UUID           `gorm:"type:uuid;not null;index"`
	Items          []PurchaseItemModel `gorm:"foreignKey:PurchaseID;references:ID"`
	TotalAmount    decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Status         opas.PurchaseStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Remark         string              `gorm:"type:text"`
	ConfirmedAt    *time.Time
	ReceivedAt     *time.Time
	PaidAt         *time.Time
	CancelledAt    *time.Time
}

// TableName returns the table name for GORM
func (PurchaseModel) TableName() string {
	return "opas_purchases"
}

// ToDomain converts the persistence model to a domain Purchase entity.
func (m *PurchaseModel) ToDomain() *opas.Purchase {
	purchase := &opas.Purchase{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		PurchaseNumber: m.PurchaseNumber,
		SellerID:       m.SellerID,
		Items:          make([]*opas.PurchaseItem, len(m.Items)),
		TotalAmount:    m.TotalAmount,
		Status:         m.Status,
		Remark:         m.Remark,
		ConfirmedAt:    m.ConfirmedAt,
		ReceivedAt:     m.ReceivedAt,
		PaidAt:         m.PaidAt,
		CancelledAt:    m.CancelledAt,
	}
	for i, item := range m.Items {
		purchase.Items[i] = item.ToDomain()
	}
	return purchase
}

// FromDomain populates the persistence model from a domain Purchase entity.
func (m *PurchaseModel) FromDomain(p *opas.Purchase) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.PurchaseNumber = p.PurchaseNumber
	m.SellerID = p.SellerID
	m.TotalAmount = p.TotalAmount
	m.Status = p.Status
	m.Remark = p.Remark
	m.ConfirmedAt = p.ConfirmedAt
	m.ReceivedAt = p.ReceivedAt
	m.PaidAt = p.PaidAt
	m.CancelledAt = p.CancelledAt

	m.Items = make([]PurchaseItemModel, len(p.Items))
	for i, item := range p.Items {
		m.Items[i] = *PurchaseItemModelFromDomain(item)
	}
}

// PurchaseModelFromDomain creates a new persistence model from a domain Purchase entity.
func PurchaseModelFromDomain(p *opas.Purchase) *PurchaseModel {
	m := &PurchaseModel{}
	m.FromDomain(p)
	return m
}

// PurchaseItemModel is the persistence model for the PurchaseItem entity.
type PurchaseItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	PurchaseID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductCode string          `gorm:"type:varchar(50);not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit        string          `gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseItemModel) TableName() string {
	return "opas_purchase_items"
}

// ToDomain converts the persistence model to a domain PurchaseItem entity.
func (m *PurchaseItemModel) ToDomain() *opas.PurchaseItem {
	return &opas.PurchaseItem{
		ID:          m.ID,
		PurchaseID:  m.PurchaseID,
		ProductCode: m.ProductCode,
		ProductName: m.ProductName,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Amount:      m.Amount,
		Unit:        m.Unit,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain PurchaseItem entity.
func (m *PurchaseItemModel) FromDomain(i *opas.PurchaseItem) {
	m.ID = i.ID
	m.PurchaseID = i.PurchaseID
	m.ProductCode = i.ProductCode
	m.ProductName = i.ProductName
	m.Quantity = i.Quantity
	m.UnitPrice = i.UnitPrice
	m.Amount = i.Amount
	m.Unit = i.Unit
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}

// PurchaseItemModelFromDomain creates a new persistence model from a domain PurchaseItem entity.
func PurchaseItemModelFromDomain(i *opas.PurchaseItem) *PurchaseItemModel {
	m := &PurchaseItemModel{}
	m.FromDomain(i)
	return m
}

// InventoryItemModel is the persistence model for the InventoryItem domain entity.
type InventoryItemModel struct {
	AggregateModel
	ProductCode  string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	ProductName  string          `gorm:"type:varchar(200);not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Unit         string          `gorm:"type:varchar(20);not null"`
	MinThreshold decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MaxThreshold decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AverageCost  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (InventoryItemModel) TableName() string {
	return "opas_inventory_items"
}

// ToDomain converts the persistence model to a domain InventoryItem entity.
func (m *InventoryItemModel) ToDomain() *opas.InventoryItem {
	return &opas.InventoryItem{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		ProductCode:  m.ProductCode,
		ProductName:  m.ProductName,
		Quantity:     m.Quantity,
		Unit:         m.Unit,
		MinThreshold: m.MinThreshold,
		MaxThreshold: m.MaxThreshold,
		AverageCost:  m.AverageCost,
	}
}

// FromDomain populates the persistence model from a domain InventoryItem entity.
func (m *InventoryItemModel) FromDomain(i *opas.InventoryItem) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.ProductCode = i.ProductCode
	m.ProductName = i.ProductName
	m.Quantity = i.Quantity
	m.Unit = i.Unit
	m.MinThreshold = i.MinThreshold
	m.MaxThreshold = i.MaxThreshold
	m.AverageCost = i.AverageCost
}

// InventoryItemModelFromDomain creates a new persistence model from a domain InventoryItem entity.
func InventoryItemModelFromDomain(i *opas.InventoryItem) *InventoryItemModel {
	m := &InventoryItemModel{}
	m.FromDomain(i)
	return m
}
