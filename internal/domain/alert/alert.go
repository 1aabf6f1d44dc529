package alert

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opas/backend/internal/domain/shared"
)

// Category classifies what a marketplace alert is about
type Category string

const (
	CategoryPriceViolation Category = "price_violation"
	CategoryLowStock       Category = "low_stock"
	CategoryRegistration   Category = "registration"
	CategorySystem         Category = "system"
)

// IsValid checks if the category is known
func (c Category) IsValid() bool {
	switch c {
	case CategoryPriceViolation, CategoryLowStock, CategoryRegistration, CategorySystem:
		return true
	}
	return false
}

// Severity indicates how urgent an alert is
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// IsValid checks if the severity is known
func (s Severity) IsValid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}

// Status represents the handling status of an alert
type Status string

const (
	StatusActive       Status = "active"
	StatusAcknowledged Status = "acknowledged"
	StatusResolved     Status = "resolved"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusAcknowledged, StatusResolved:
		return true
	}
	return false
}

// Alert represents a marketplace condition requiring admin attention.
// It is the aggregate root for alert handling.
type Alert struct {
	shared.BaseAggregateRoot
	Category       Category
	Severity       Severity
	Title          string
	Message        string
	ReferenceID    *uuid.UUID // ID of the aggregate that raised the alert
	Status         Status
	AcknowledgedBy *uuid.UUID
	AcknowledgedAt *time.Time
	ResolvedBy     *uuid.UUID
	ResolvedAt     *time.Time
}

// NewAlert creates a new active alert
func NewAlert(category Category, severity Severity, title, message string, referenceID *uuid.UUID) (*Alert, error) {
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown alert category")
	}
	if !severity.IsValid() {
		return nil, shared.NewDomainError("INVALID_SEVERITY", "Unknown alert severity")
	}
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Alert title cannot be empty")
	}
	if len(title) > 200 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Alert title cannot exceed 200 characters")
	}

	return &Alert{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Category:          category,
		Severity:          severity,
		Title:             strings.TrimSpace(title),
		Message:           strings.TrimSpace(message),
		ReferenceID:       referenceID,
		Status:            StatusActive,
	}, nil
}

// Refresh updates an active alert raised again for the same source.
// Event handlers use this to stay idempotent per category and reference.
func (a *Alert) Refresh(severity Severity, message string) error {
	if a.Status == StatusResolved {
		return shared.NewDomainError("INVALID_STATE", "Resolved alerts cannot be refreshed")
	}
	if !severity.IsValid() {
		return shared.NewDomainError("INVALID_SEVERITY", "Unknown alert severity")
	}

	a.Severity = severity
	a.Message = strings.TrimSpace(message)
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// Acknowledge marks the alert as seen by an admin
func (a *Alert) Acknowledge(adminID uuid.UUID) error {
	if adminID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Admin ID cannot be empty")
	}
	if a.Status != StatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only active alerts can be acknowledged")
	}

	now := time.Now()
	a.Status = StatusAcknowledged
	a.AcknowledgedBy = &adminID
	a.AcknowledgedAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()

	return nil
}

// Resolve closes the alert
func (a *Alert) Resolve(adminID uuid.UUID) error {
	if adminID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Admin ID cannot be empty")
	}
	if a.Status == StatusResolved {
		return shared.NewDomainError("INVALID_STATE", "Alert is already resolved")
	}

	now := time.Now()
	a.Status = StatusResolved
	a.ResolvedBy = &adminID
	a.ResolvedAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()

	return nil
}

// IsActive returns true if the alert is active
func (a *Alert) IsActive() bool {
	return a.Status == StatusActive
}
