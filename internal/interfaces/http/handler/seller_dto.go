package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opas/backend/internal/application/seller"
)

// =====================
// Seller Registration Request DTOs
// =====================

// SubmitRegistrationRequest represents the request body for submitting a seller registration
type SubmitRegistrationRequest struct {
	ApplicantID   string `json:"applicant_id" binding:"required,uuid"`
	BusinessName  string `json:"business_name" binding:"required,min=2,max=200"`
	ContactName   string `json:"contact_name" binding:"required,min=2,max=100"`
	ContactPhone  string `json:"contact_phone" binding:"required,max=30"`
	ContactEmail  string `json:"contact_email" binding:"required,email"`
	MarketSection string `json:"market_section" binding:"required,max=100"`
	StallNumber   string `json:"stall_number" binding:"required,max=30"`
}

// RejectRegistrationRequest represents the request body for rejecting a registration
type RejectRegistrationRequest struct {
	Reason string `json:"reason" binding:"required,min=5,max=500"`
}

// ListRegistrationsRequest represents the query parameters for listing registrations
type ListRegistrationsRequest struct {
	Keyword   string `form:"keyword" binding:"omitempty,max=100"`
	Status    string `form:"status" binding:"omitempty,oneof=pending under_review approved rejected"`
	Page      int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=business_name status created_at"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// InitiateDocumentUploadRequest represents the request body for starting a document upload
type InitiateDocumentUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required,max=100"`
}

// ConfirmDocumentUploadRequest represents the request body for confirming an upload
type ConfirmDocumentUploadRequest struct {
	StorageKey string `json:"storage_key" binding:"required,max=512"`
}

// =====================
// Seller Profile Request DTOs
// =====================

// ListProfilesRequest represents the query parameters for listing seller profiles
type ListProfilesRequest struct {
	Keyword       string `form:"keyword" binding:"omitempty,max=100"`
	Status        string `form:"status" binding:"omitempty,oneof=active suspended banned"`
	MarketSection string `form:"market_section" binding:"omitempty,max=100"`
	Page          int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	SortBy        string `form:"sort_by" binding:"omitempty,oneof=seller_code business_name rating created_at"`
	SortOrder     string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// ProfileStatusChangeRequest represents the request body for suspend/ban operations
type ProfileStatusChangeRequest struct {
	Reason string `json:"reason" binding:"required,min=5,max=500"`
}

// RateSellerRequest represents the request body for rating a seller
type RateSellerRequest struct {
	Rating float64 `json:"rating" binding:"required,min=1,max=5"`
}

// RecordFulfillmentRequest represents the request body for recording an order outcome
type RecordFulfillmentRequest struct {
	Fulfilled *bool `json:"fulfilled" binding:"required"`
}

// =====================
// Seller Response DTOs
// =====================

// RegistrationResponse represents a seller registration request in API responses
type RegistrationResponse struct {
	ID              uuid.UUID  `json:"id"`
	ApplicantID     uuid.UUID  `json:"applicant_id"`
	BusinessName    string     `json:"business_name"`
	ContactName     string     `json:"contact_name"`
	ContactPhone    string     `json:"contact_phone"`
	ContactEmail    string     `json:"contact_email"`
	MarketSection   string     `json:"market_section"`
	StallNumber     string     `json:"stall_number"`
	DocumentKeys    []string   `json:"document_keys"`
	Status          string     `json:"status"`
	ReviewerID      *uuid.UUID `json:"reviewer_id,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func toRegistrationResponse(r seller.RegistrationResponse) RegistrationResponse {
	return RegistrationResponse{
		ID:              r.ID,
		ApplicantID:     r.ApplicantID,
		BusinessName:    r.BusinessName,
		ContactName:     r.ContactName,
		ContactPhone:    r.ContactPhone,
		ContactEmail:    r.ContactEmail,
		MarketSection:   r.MarketSection,
		StallNumber:     r.StallNumber,
		DocumentKeys:    r.DocumentKeys,
		Status:          string(r.Status),
		ReviewerID:      r.ReviewerID,
		ReviewedAt:      r.ReviewedAt,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// ProfileResponse represents a seller profile in API responses
type ProfileResponse struct {
	ID              uuid.UUID       `json:"id"`
	SellerCode      string          `json:"seller_code"`
	ApplicantID     uuid.UUID       `json:"applicant_id"`
	RegistrationID  uuid.UUID       `json:"registration_id"`
	BusinessName    string          `json:"business_name"`
	ContactName     string          `json:"contact_name"`
	ContactPhone    string          `json:"contact_phone"`
	ContactEmail    string          `json:"contact_email"`
	MarketSection   string          `json:"market_section"`
	StallNumber     string          `json:"stall_number"`
	Status          string          `json:"status"`
	Rating          decimal.Decimal `json:"rating"`
	RatingCount     int64           `json:"rating_count"`
	OrdersFulfilled int64           `json:"orders_fulfilled"`
	OrdersTotal     int64           `json:"orders_total"`
	FulfillmentRate decimal.Decimal `json:"fulfillment_rate"`
	StatusReason    string          `json:"status_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func toProfileResponse(p seller.ProfileResponse) ProfileResponse {
	return ProfileResponse{
		ID:              p.ID,
		SellerCode:      p.SellerCode,
		ApplicantID:     p.ApplicantID,
		RegistrationID:  p.RegistrationID,
		BusinessName:    p.BusinessName,
		ContactName:     p.ContactName,
		ContactPhone:    p.ContactPhone,
		ContactEmail:    p.ContactEmail,
		MarketSection:   p.MarketSection,
		StallNumber:     p.StallNumber,
		Status:          string(p.Status),
		Rating:          p.Rating,
		RatingCount:     p.RatingCount,
		OrdersFulfilled: p.OrdersFulfilled,
		OrdersTotal:     p.OrdersTotal,
		FulfillmentRate: p.FulfillmentRate,
		StatusReason:    p.StatusReason,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ApproveRegistrationResponse pairs the approved registration with the created profile
type ApproveRegistrationResponse struct {
	Registration RegistrationResponse `json:"registration"`
	Profile      ProfileResponse      `json:"profile"`
}

// DocumentUploadResponse represents a presigned upload URL in API responses
type DocumentUploadResponse struct {
	StorageKey string    `json:"storage_key"`
	UploadURL  string    `json:"upload_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// DocumentURLResponse represents a presigned download URL in API responses
type DocumentURLResponse struct {
	StorageKey string    `json:"storage_key"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
}
