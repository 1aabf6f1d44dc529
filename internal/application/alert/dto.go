package alert

import (
	"time"

	"github.com/google/uuid"

	"github.com/opas/backend/internal/domain/alert"
)

// CreateAlertInput contains the input for manually creating an alert
type CreateAlertInput struct {
	Category    alert.Category
	Severity    alert.Severity
	Title       string
	Message     string
	ReferenceID *uuid.UUID
}

// AlertResponse is the DTO representation of a marketplace alert
type AlertResponse struct {
	ID             uuid.UUID
	Category       alert.Category
	Severity       alert.Severity
	Title          string
	Message        string
	ReferenceID    *uuid.UUID
	Status         alert.Status
	AcknowledgedBy *uuid.UUID
	AcknowledgedAt *time.Time
	ResolvedBy     *uuid.UUID
	ResolvedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ToAlertResponse converts a domain alert to its DTO
func ToAlertResponse(a *alert.Alert) AlertResponse {
	return AlertResponse{
		ID:             a.ID,
		Category:       a.Category,
		Severity:       a.Severity,
		Title:          a.Title,
		Message:        a.Message,
		ReferenceID:    a.ReferenceID,
		Status:         a.Status,
		AcknowledgedBy: a.AcknowledgedBy,
		AcknowledgedAt: a.AcknowledgedAt,
		ResolvedBy:     a.ResolvedBy,
		ResolvedAt:     a.ResolvedAt,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// ListAlertsInput contains the input for listing alerts
type ListAlertsInput struct {
	Status    *alert.Status
	Category  *alert.Category
	Severity  *alert.Severity
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// AlertListResult contains a page of alerts
type AlertListResult struct {
	Alerts   []AlertResponse
	Total    int64
	Page     int
	PageSize int
}

// HandleAlertInput contains the input for acknowledging or resolving an alert
type HandleAlertInput struct {
	AlertID uuid.UUID
	AdminID uuid.UUID
}
