package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/opas/backend/internal/domain/alert"
	"github.com/opas/backend/internal/domain/shared"
)

// AlertModel is the persistence model for the Alert domain entity.
type AlertModel struct {
	AggregateModel
	Category       alert.Category `gorm:"type:varchar(30);not null;index"`
	Severity       alert.Severity `gorm:"type:varchar(20);not null;index"`
	Title          string         `gorm:"type:varchar(200);not null"`
	Message        string         `gorm:"type:text"`
	ReferenceID    *uuid.UUID     `gorm:"type:uuid;index"`
	Status         alert.Status   `gorm:"type:varchar(20);not null;default:'active';index"`
	AcknowledgedBy *uuid.UUID     `gorm:"type:uuid"`
	AcknowledgedAt *time.Time
	ResolvedBy     *uuid.UUID `gorm:"type:uuid"`
	ResolvedAt     *time.Time
}

// TableName returns the table name for GORM
func (AlertModel) TableName() string {
	return "marketplace_alerts"
}

// ToDomain converts the persistence model to a domain Alert entity.
func (m *AlertModel) ToDomain() *alert.Alert {
	return &alert.Alert{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Category:       m.Category,
		Severity:       m.Severity,
		Title:          m.Title,
		Message:        m.Message,
		ReferenceID:    m.ReferenceID,
		Status:         m.Status,
		AcknowledgedBy: m.AcknowledgedBy,
		AcknowledgedAt: m.AcknowledgedAt,
		ResolvedBy:     m.ResolvedBy,
		ResolvedAt:     m.ResolvedAt,
	}
}

// FromDomain populates the persistence model from a domain Alert entity.
func (m *AlertModel) FromDomain(a *alert.Alert) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.Category = a.Category
	m.Severity = a.Severity
	m.Title = a.Title
	m.Message = a.Message
	m.ReferenceID = a.ReferenceID
	m.Status = a.Status
	m.AcknowledgedBy = a.AcknowledgedBy
	m.AcknowledgedAt = a.AcknowledgedAt
	m.ResolvedBy = a.ResolvedBy
	m.ResolvedAt = a.ResolvedAt
}

// AlertModelFromDomain creates a new persistence model from a domain Alert entity.
func AlertModelFromDomain(a *alert.Alert) *AlertModel {
	m := &AlertModel{}
	m.FromDomain(a)
	return m
}
