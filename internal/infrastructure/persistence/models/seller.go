package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opas/backend/internal/domain/seller"
	"github.com/opas/backend/internal/domain/shared"
)

// RegistrationRequestModel is the persistence model for the RegistrationRequest
// domain entity. DocumentKeys is stored as a JSON array in a jsonb column.
type RegistrationRequestModel struct {
	AggregateModel
	ApplicantID     uuid.UUID                 `gorm:"type:uuid;not null;index"`
	BusinessName    string                    `gorm:"type:varchar(200);not null"`
	ContactName     string                    `gorm:"type:varchar(200);not null"`
	ContactPhone    string                    `gorm:"type:varchar(50);not null"`
	ContactEmail    string                    `gorm:"type:varchar(200)"`
	MarketSection   string                    `gorm:"type:varchar(100);not null;index"`
	StallNumber     string                    `gorm:"type:varchar(50)"`
	DocumentKeys    string                    `gorm:"type:jsonb;default:'[]'"`
	Status          seller.RegistrationStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	ReviewerID      *uuid.UUID                `gorm:"type:uuid;index"`
	ReviewedAt      *time.Time
	RejectionReason string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (RegistrationRequestModel) TableName() string {
	return "seller_registration_requests"
}

// ToDomain converts the persistence model to a domain RegistrationRequest entity.
func (m *RegistrationRequestModel) ToDomain() *seller.RegistrationRequest {
	documentKeys := make([]string, 0)
	if m.DocumentKeys != "" {
		_ = json.Unmarshal([]byte(m.DocumentKeys), &documentKeys)
	}

	return &seller.RegistrationRequest{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		ApplicantID:     m.ApplicantID,
		BusinessName:    m.BusinessName,
		ContactName:     m.ContactName,
		ContactPhone:    m.ContactPhone,
		ContactEmail:    m.ContactEmail,
		MarketSection:   m.MarketSection,
		StallNumber:     m.StallNumber,
		DocumentKeys:    documentKeys,
		Status:          m.Status,
		ReviewerID:      m.ReviewerID,
		ReviewedAt:      m.ReviewedAt,
		RejectionReason: m.RejectionReason,
	}
}

// FromDomain populates the persistence model from a domain RegistrationRequest entity.
func (m *RegistrationRequestModel) FromDomain(r *seller.RegistrationRequest) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.ApplicantID = r.ApplicantID
	m.BusinessName = r.BusinessName
	m.ContactName = r.ContactName
	m.ContactPhone = r.ContactPhone
	m.ContactEmail = r.ContactEmail
	m.MarketSection = r.MarketSection
	m.StallNumber = r.StallNumber
	m.Status = r.Status
	m.ReviewerID = r.ReviewerID
	m.ReviewedAt = r.ReviewedAt
	m.RejectionReason = r.RejectionReason

	keys := r.DocumentKeys
	if keys == nil {
		keys = make([]string, 0)
	}
	if data, err := json.Marshal(keys); err == nil {
		m.DocumentKeys = string(data)
	} else {
		m.DocumentKeys = "[]"
	}
}

// RegistrationRequestModelFromDomain creates a new persistence model from a
// domain RegistrationRequest entity.
func RegistrationRequestModelFromDomain(r *seller.RegistrationRequest) *RegistrationRequestModel {
	m := &RegistrationRequestModel{}
	m.FromDomain(r)
	return m
}

// ProfileModel is the persistence model for the seller Profile domain entity.
type ProfileModel struct {
	AggregateModel
	SellerCode      string               `gorm:"type:varchar(20);not null;uniqueIndex"`
	ApplicantID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	RegistrationID  uuid.UUID            `gorm:"type:uuid;not null"`
	BusinessName    string               `gorm:"type:varchar(200);not null"`
	ContactName     string               `gorm:"type:varchar(200);not null"`
	ContactPhone    string               `gorm:"type:varchar(50);not null"`
	ContactEmail    string               `gorm:"type:varchar(200)"`
	MarketSection   string               `gorm:"type:varchar(100);not null;index"`
	StallNumber     string               `gorm:"type:varchar(50)"`
	Status          seller.ProfileStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	Rating          decimal.Decimal      `gorm:"type:decimal(3,2);not null;default:0"`
	RatingCount     int64                `gorm:"not null;default:0"`
	OrdersFulfilled int64                `gorm:"not null;default:0"`
	OrdersTotal     int64                `gorm:"not null;default:0"`
	StatusReason    string               `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ProfileModel) TableName() string {
	return "seller_profiles"
}

// ToDomain converts the persistence model to a domain Profile entity.
func (m *ProfileModel) ToDomain() *seller.Profile {
	return &seller.Profile{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		SellerCode:      m.SellerCode,
		ApplicantID:     m.ApplicantID,
		RegistrationID:  m.RegistrationID,
		BusinessName:    m.BusinessName,
		ContactName:     m.ContactName,
		ContactPhone:    m.ContactPhone,
		ContactEmail:    m.ContactEmail,
		MarketSection:   m.MarketSection,
		StallNumber:     m.StallNumber,
		Status:          m.Status,
		Rating:          m.Rating,
		RatingCount:     m.RatingCount,
		OrdersFulfilled: m.OrdersFulfilled,
		OrdersTotal:     m.OrdersTotal,
		StatusReason:    m.StatusReason,
	}
}

// FromDomain populates the persistence model from a domain Profile entity.
func (m *ProfileModel) FromDomain(p *seller.Profile) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.SellerCode = p.SellerCode
	m.ApplicantID = p.ApplicantID
	m.RegistrationID = p.RegistrationID
	m.BusinessName = p.BusinessName
	m.ContactName = p.ContactName
	m.ContactPhone = p.ContactPhone
	m.ContactEmail = p.ContactEmail
	m.MarketSection = p.MarketSection
	m.StallNumber = p.StallNumber
	m.Status = p.Status
	m.Rating = p.Rating
	m.RatingCount = p.RatingCount
	m.OrdersFulfilled = p.OrdersFulfilled
	m.OrdersTotal = p.OrdersTotal
	m.StatusReason = p.StatusReason
}

// ProfileModelFromDomain creates a new persistence model from a domain Profile entity.
func ProfileModelFromDomain(p *seller.Profile) *ProfileModel {
	m := &ProfileModel{}
	m.FromDomain(p)
	return m
}
