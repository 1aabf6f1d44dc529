package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opas/backend/internal/domain/pricing"
	"github.com/opas/backend/internal/domain/shared"
)

// PriceCeilingModel is the persistence model for the Ceiling domain entity.
type PriceCeilingModel struct {
	AggregateModel
	ProductCode    string          `gorm:"type:varchar(50);not null;index"`
	ProductName    string          `gorm:"type:varchar(200);not null"`
	Category       string          `gorm:"type:varchar(100);index"`
	CeilingPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit           string          `gorm:"type:varchar(20);not null"`
	EffectiveFrom  time.Time       `gorm:"not null;index"`
	EffectiveUntil *time.Time
	Active         bool `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (PriceCeilingModel) TableName() string {
	return "price_ceilings"
}

// ToDomain converts the persistence model to a domain Ceiling entity.
func (m *PriceCeilingModel) ToDomain() *pricing.Ceiling {
	return &pricing.Ceiling{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		ProductCode:    m.ProductCode,
		ProductName:    m.ProductName,
		Category:       m.Category,
		CeilingPrice:   m.CeilingPrice,
		Unit:           m.Unit,
		EffectiveFrom:  m.EffectiveFrom,
		EffectiveUntil: m.EffectiveUntil,
		Active:         m.Active,
	}
}

// FromDomain populates the persistence model from a domain Ceiling entity.
func (m *PriceCeilingModel) FromDomain(c *pricing.Ceiling) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.ProductCode = c.ProductCode
	m.ProductName = c.ProductName
	m.Category = c.Category
	m.CeilingPrice = c.CeilingPrice
	m.Unit = c.Unit
	m.EffectiveFrom = c.EffectiveFrom
	m.EffectiveUntil = c.EffectiveUntil
	m.Active = c.Active
}

// PriceCeilingModelFromDomain creates a new persistence model from a domain Ceiling entity.
func PriceCeilingModelFromDomain(c *pricing.Ceiling) *PriceCeilingModel {
	m := &PriceCeilingModel{}
	m.FromDomain(c)
	return m
}

// ListingModel is the persistence model for the Listing domain entity.
type ListingModel struct {
	AggregateModel
	SellerID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_listings_seller_product,unique"`
	ProductCode string          `gorm:"type:varchar(50);not null;index:idx_listings_seller_product,unique;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	ListedPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Unit        string          `gorm:"type:varchar(20)"`
	Active      bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (ListingModel) TableName() string {
	return "product_listings"
}

// ToDomain converts the persistence model to a domain Listing entity.
func (m *ListingModel) ToDomain() *pricing.Listing {
	return &pricing.Listing{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		SellerID:    m.SellerID,
		ProductCode: m.ProductCode,
		ProductName: m.ProductName,
		ListedPrice: m.ListedPrice,
		Quantity:    m.Quantity,
		Unit:        m.Unit,
		Active:      m.Active,
	}
}

// FromDomain populates the persistence model from a domain Listing entity.
func (m *ListingModel) FromDomain(l *pricing.Listing) {
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	m.SellerID = l.SellerID
	m.ProductCode = l.ProductCode
	m.ProductName = l.ProductName
	m.ListedPrice = l.ListedPrice
	m.Quantity = l.Quantity
	m.Unit = l.Unit
	m.Active = l.Active
}

// ListingModelFromDomain creates a new persistence model from a domain Listing entity.
func ListingModelFromDomain(l *pricing.Listing) *ListingModel {
	m := &ListingModel{}
	m.FromDomain(l)
	return m
}

// NonComplianceModel is the persistence model for the NonComplianceRecord domain entity.
type NonComplianceModel struct {
	AggregateModel
	SellerID       uuid.UUID                   `gorm:"type:uuid;not null;index"`
	ListingID      uuid.UUID                   `gorm:"type:uuid;not null;index"`
	CeilingID      uuid.UUID                   `gorm:"type:uuid;not null"`
	ProductCode    string                      `gorm:"type:varchar(50);not null;index"`
	ListedPrice    decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	CeilingPrice   decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	ExcessPercent  decimal.Decimal             `gorm:"type:decimal(8,2);not null"`
	Status         pricing.NonComplianceStatus `gorm:"type:varchar(20);not null;default:'open';index"`
	DetectedAt     time.Time                   `gorm:"not null;index"`
	ResolvedBy     *uuid.UUID                  `gorm:"type:uuid"`
	ResolvedAt     *time.Time
	ResolutionNote string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (NonComplianceModel) TableName() string {
	return "non_compliance_records"
}

// ToDomain converts the persistence model to a domain NonComplianceRecord entity.
func (m *NonComplianceModel) ToDomain() *pricing.NonComplianceRecord {
	return &pricing.NonComplianceRecord{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		SellerID:       m.SellerID,
		ListingID:      m.ListingID,
		CeilingID:      m.CeilingID,
		ProductCode:    m.ProductCode,
		ListedPrice:    m.ListedPrice,
		CeilingPrice:   m.CeilingPrice,
		ExcessPercent:  m.ExcessPercent,
		Status:         m.Status,
		DetectedAt:     m.DetectedAt,
		ResolvedBy:     m.ResolvedBy,
		ResolvedAt:     m.ResolvedAt,
		ResolutionNote: m.ResolutionNote,
	}
}

// FromDomain populates the persistence model from a domain NonComplianceRecord entity.
func (m *NonComplianceModel) FromDomain(r *pricing.NonComplianceRecord) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.SellerID = r.SellerID
	m.ListingID = r.ListingID
	m.CeilingID = r.CeilingID
	m.ProductCode = r.ProductCode
	m.ListedPrice = r.ListedPrice
	m.CeilingPrice = r.CeilingPrice
	m.ExcessPercent = r.ExcessPercent
	m.Status = r.Status
	m.DetectedAt = r.DetectedAt
	m.ResolvedBy = r.ResolvedBy
	m.ResolvedAt = r.ResolvedAt
	m.ResolutionNote = r.ResolutionNote
}

// NonComplianceModelFromDomain creates a new persistence model from a domain
// NonComplianceRecord entity.
func NonComplianceModelFromDomain(r *pricing.NonComplianceRecord) *NonComplianceModel {
	m := &NonComplianceModel{}
	m.FromDomain(r)
	return m
}
