package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opas/backend/internal/application/pricing"
)

// =====================
// Price Ceiling Request DTOs
// =====================

// CreateCeilingRequest represents the request body for creating a price ceiling
type CreateCeilingRequest struct {
	ProductCode    string     `json:"product_code" binding:"required,max=64"`
	ProductName    string     `json:"product_name" binding:"required,max=200"`
	Category       string     `json:"category" binding:"required,max=100"`
	CeilingPrice   float64    `json:"ceiling_price" binding:"required,gt=0"`
	Unit           string     `json:"unit" binding:"required,max=30"`
	EffectiveFrom  time.Time  `json:"effective_from" binding:"required"`
	EffectiveUntil *time.Time `json:"effective_until"`
}

// UpdateCeilingRequest represents the request body for updating a price ceiling
type UpdateCeilingRequest struct {
	CeilingPrice   *float64   `json:"ceiling_price" binding:"omitempty,gt=0"`
	EffectiveFrom  *time.Time `json:"effective_from"`
	EffectiveUntil *time.Time `json:"effective_until"`
}

// ListCeilingsRequest represents the query parameters for listing price ceilings
type ListCeilingsRequest struct {
	Keyword   string `form:"keyword" binding:"omitempty,max=100"`
	Category  string `form:"category" binding:"omitempty,max=100"`
	Active    *bool  `form:"active"`
	Page      int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=product_code category ceiling_price effective_from created_at"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// =====================
// Listing Request DTOs
// =====================

// UpsertListingRequest represents the request body for creating or updating a listing
type UpsertListingRequest struct {
	SellerID    string  `json:"seller_id" binding:"required,uuid"`
	ProductCode string  `json:"product_code" binding:"required,max=64"`
	ProductName string  `json:"product_name" binding:"required,max=200"`
	ListedPrice float64 `json:"listed_price" binding:"required,gt=0"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	Unit        string  `json:"unit" binding:"required,max=30"`
}

// ListListingsRequest represents the query parameters for listing product listings
type ListListingsRequest struct {
	Keyword     string `form:"keyword" binding:"omitempty,max=100"`
	SellerID    string `form:"seller_id" binding:"omitempty,uuid"`
	ProductCode string `form:"product_code" binding:"omitempty,max=64"`
	Active      *bool  `form:"active"`
	Page        int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	SortBy      string `form:"sort_by" binding:"omitempty,oneof=product_code listed_price created_at updated_at"`
	SortOrder   string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// =====================
// Non-Compliance Request DTOs
// =====================

// ListNonComplianceRequest represents the query parameters for listing records
type ListNonComplianceRequest struct {
	SellerID    string `form:"seller_id" binding:"omitempty,uuid"`
	ProductCode string `form:"product_code" binding:"omitempty,max=64"`
	Status      string `form:"status" binding:"omitempty,oneof=open resolved waived"`
	Page        int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	SortBy      string `form:"sort_by" binding:"omitempty,oneof=detected_at excess_percent status"`
	SortOrder   string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// CloseRecordRequest represents the request body for resolving or waiving a record
type CloseRecordRequest struct {
	Note string `json:"note" binding:"required,min=5,max=500"`
}

// =====================
// Pricing Response DTOs
// =====================

// CeilingResponse represents a price ceiling in API responses
type CeilingResponse struct {
	ID             uuid.UUID       `json:"id"`
	ProductCode    string          `json:"product_code"`
	ProductName    string          `json:"product_name"`
	Category       string          `json:"category"`
	CeilingPrice   decimal.Decimal `json:"ceiling_price"`
	Unit           string          `json:"unit"`
	EffectiveFrom  time.Time       `json:"effective_from"`
	EffectiveUntil *time.Time      `json:"effective_until,omitempty"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func toCeilingResponse(c pricing.CeilingResponse) CeilingResponse {
	return CeilingResponse{
		ID:             c.ID,
		ProductCode:    c.ProductCode,
		ProductName:    c.ProductName,
		Category:       c.Category,
		CeilingPrice:   c.CeilingPrice,
		Unit:           c.Unit,
		EffectiveFrom:  c.EffectiveFrom,
		EffectiveUntil: c.EffectiveUntil,
		Active:         c.Active,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// ListingResponse represents a product listing in API responses
type ListingResponse struct {
	ID          uuid.UUID       `json:"id"`
	SellerID    uuid.UUID       `json:"seller_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	ListedPrice decimal.Decimal `json:"listed_price"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toListingResponse(l pricing.ListingResponse) ListingResponse {
	return ListingResponse{
		ID:          l.ID,
		SellerID:    l.SellerID,
		ProductCode: l.ProductCode,
		ProductName: l.ProductName,
		ListedPrice: l.ListedPrice,
		Quantity:    l.Quantity,
		Unit:        l.Unit,
		Active:      l.Active,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// NonComplianceResponse represents a non-compliance record in API responses
type NonComplianceResponse struct {
	ID             uuid.UUID       `json:"id"`
	SellerID       uuid.UUID       `json:"seller_id"`
	ListingID      uuid.UUID       `json:"listing_id"`
	CeilingID      uuid.UUID       `json:"ceiling_id"`
	ProductCode    string          `json:"product_code"`
	ListedPrice    decimal.Decimal `json:"listed_price"`
	CeilingPrice   decimal.Decimal `json:"ceiling_price"`
	ExcessPercent  decimal.Decimal `json:"excess_percent"`
	Status         string          `json:"status"`
	DetectedAt     time.Time       `json:"detected_at"`
	ResolvedBy     *uuid.UUID      `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time      `json:"resolved_at,omitempty"`
	ResolutionNote string          `json:"resolution_note,omitempty"`
}

func toNonComplianceResponse(r pricing.NonComplianceResponse) NonComplianceResponse {
	return NonComplianceResponse{
		ID:             r.ID,
		SellerID:       r.SellerID,
		ListingID:      r.ListingID,
		CeilingID:      r.CeilingID,
		ProductCode:    r.ProductCode,
		ListedPrice:    r.ListedPrice,
		CeilingPrice:   r.CeilingPrice,
		ExcessPercent:  r.ExcessPercent,
		Status:         string(r.Status),
		DetectedAt:     r.DetectedAt,
		ResolvedBy:     r.ResolvedBy,
		ResolvedAt:     r.ResolvedAt,
		ResolutionNote: r.ResolutionNote,
	}
}

// UpsertListingResponse pairs the upserted listing with its compliance outcome
type UpsertListingResponse struct {
	Listing   ListingResponse        `json:"listing"`
	Compliant bool                   `json:"compliant"`
	Violation *NonComplianceResponse `json:"violation,omitempty"`
}

// ScanResultResponse summarizes a compliance scan run in API responses
type ScanResultResponse struct {
	CeilingsScanned int `json:"ceilings_scanned"`
	ListingsChecked int `json:"listings_checked"`
	Violations      int `json:"violations"`
	NewRecords      int `json:"new_records"`
	Refreshed       int `json:"refreshed"`
}

// ComplianceRateResponse represents the marketplace compliance rate
type ComplianceRateResponse struct {
	TotalListings     int64           `json:"total_listings"`
	CompliantListings int64           `json:"compliant_listings"`
	Rate              decimal.Decimal `json:"rate"`
}
