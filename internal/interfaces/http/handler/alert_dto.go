package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/opas/backend/internal/application/alert"
)

// =====================
// Alert Request DTOs
// =====================

// CreateAlertRequest represents the request body for manually raising an alert
type CreateAlertRequest struct {
	Category    string `json:"category" binding:"required,oneof=price_violation low_stock registration system"`
	Severity    string `json:"severity" binding:"required,oneof=info warning critical"`
	Title       string `json:"title" binding:"required,min=3,max=200"`
	Message     string `json:"message" binding:"required,max=1000"`
	ReferenceID string `json:"reference_id" binding:"omitempty,uuid"`
}

// ListAlertsRequest represents the query parameters for listing alerts
type ListAlertsRequest struct {
	Status    string `form:"status" binding:"omitempty,oneof=active acknowledged resolved"`
	Category  string `form:"category" binding:"omitempty,oneof=price_violation low_stock registration system"`
	Severity  string `form:"severity" binding:"omitempty,oneof=info warning critical"`
	Page      int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=severity status created_at"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// =====================
// Alert Response DTOs
// =====================

// AlertResponse represents a marketplace alert in API responses
type AlertResponse struct {
	ID             uuid.UUID  `json:"id"`
	Category       string     `json:"category"`
	Severity       string     `json:"severity"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	ReferenceID    *uuid.UUID `json:"reference_id,omitempty"`
	Status         string     `json:"status"`
	AcknowledgedBy *uuid.UUID `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedBy     *uuid.UUID `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func toAlertResponse(a alert.AlertResponse) AlertResponse {
	return AlertResponse{
		ID:             a.ID,
		Category:       string(a.Category),
		Severity:       string(a.Severity),
		Title:          a.Title,
		Message:        a.Message,
		ReferenceID:    a.ReferenceID,
		Status:         string(a.Status),
		AcknowledgedBy: a.AcknowledgedBy,
		AcknowledgedAt: a.AcknowledgedAt,
		ResolvedBy:     a.ResolvedBy,
		ResolvedAt:     a.ResolvedAt,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}
