package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opas/backend/internal/domain/pricing"
)

// CreateCeilingInput contains the input for creating a price ceiling
type CreateCeilingInput struct {
	ProductCode    string
	ProductName    string
	Category       string
	CeilingPrice   decimal.Decimal
	Unit           string
	EffectiveFrom  time.Time
	EffectiveUntil *time.Time
}

// UpdateCeilingInput contains the input for updating a price ceiling
type UpdateCeilingInput struct {
	CeilingID      uuid.UUID
	CeilingPrice   *decimal.Decimal
	EffectiveFrom  *time.Time
	EffectiveUntil *time.Time
}

// CeilingResponse is the DTO representation of a price ceiling
type CeilingResponse struct {
	ID             uuid.UUID
	ProductCode    string
	ProductName    string
	Category       string
	CeilingPrice   decimal.Decimal
	Unit           string
	EffectiveFrom  time.Time
	EffectiveUntil *time.Time
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ToCeilingResponse converts a domain ceiling to its DTO
func ToCeilingResponse(ceiling *pricing.Ceiling) CeilingResponse {
	return CeilingResponse{
		ID:             ceiling.ID,
		ProductCode:    ceiling.ProductCode,
		ProductName:    ceiling.ProductName,
		Category:       ceiling.Category,
		CeilingPrice:   ceiling.CeilingPrice,
		Unit:           ceiling.Unit,
		EffectiveFrom:  ceiling.EffectiveFrom,
		EffectiveUntil: ceiling.EffectiveUntil,
		Active:         ceiling.Active,
		CreatedAt:      ceiling.CreatedAt,
		UpdatedAt:      ceiling.UpdatedAt,
	}
}

// ListCeilingsInput contains the input for listing price ceilings
type ListCeilingsInput struct {
	Keyword   string
	Category  string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// CeilingListResult contains a page of price ceilings
type CeilingListResult struct {
	Ceilings []CeilingResponse
	Total    int64
	Page     int
	PageSize int
}

// UpsertListingInput contains the input for creating or updating a listing
type UpsertListingInput struct {
	SellerID    uuid.UUID
	ProductCode string
	ProductName string
	ListedPrice decimal.Decimal
	Quantity    decimal.Decimal
	Unit        string
}

// ListingResponse is the DTO representation of a product listing
type ListingResponse struct {
	ID          uuid.UUID
	SellerID    uuid.UUID
	ProductCode string
	ProductName string
	ListedPrice decimal.Decimal
	Quantity    decimal.Decimal
	Unit        string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ToListingResponse converts a domain listing to its DTO
func ToListingResponse(listing *pricing.Listing) ListingResponse {
	return ListingResponse{
		ID:          listing.ID,
		SellerID:    listing.SellerID,
		ProductCode: listing.ProductCode,
		ProductName: listing.ProductName,
		ListedPrice: listing.ListedPrice,
		Quantity:    listing.Quantity,
		Unit:        listing.Unit,
		Active:      listing.Active,
		CreatedAt:   listing.CreatedAt,
		UpdatedAt:   listing.UpdatedAt,
	}
}

// UpsertListingResult contains the upserted listing and the outcome of the
// immediate compliance check.
type UpsertListingResult struct {
	Listing   ListingResponse
	Compliant bool
	// Violation is set when the listing exceeds the effective ceiling
	Violation *NonComplianceResponse
}

// ListListingsInput contains the input for listing product listings
type ListListingsInput struct {
	Keyword     string
	SellerID    *uuid.UUID
	ProductCode string
	Active      *bool
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// ListingListResult contains a page of product listings
type ListingListResult struct {
	Listings []ListingResponse
	Total    int64
	Page     int
	PageSize int
}

// NonComplianceResponse is the DTO representation of a non-compliance record
type NonComplianceResponse struct {
	ID             uuid.UUID
	SellerID       uuid.UUID
	ListingID      uuid.UUID
	CeilingID      uuid.UUID
	ProductCode    string
	ListedPrice    decimal.Decimal
	CeilingPrice   decimal.Decimal
	ExcessPercent  decimal.Decimal
	Status         pricing.NonComplianceStatus
	DetectedAt     time.Time
	ResolvedBy     *uuid.UUID
	ResolvedAt     *time.Time
	ResolutionNote string
}

// ToNonComplianceResponse converts a domain record to its DTO
func ToNonComplianceResponse(record *pricing.NonComplianceRecord) NonComplianceResponse {
	return NonComplianceResponse{
		ID:             record.ID,
		SellerID:       record.SellerID,
		ListingID:      record.ListingID,
		CeilingID:      record.CeilingID,
		ProductCode:    record.ProductCode,
		ListedPrice:    record.ListedPrice,
		CeilingPrice:   record.CeilingPrice,
		ExcessPercent:  record.ExcessPercent,
		Status:         record.Status,
		DetectedAt:     record.DetectedAt,
		ResolvedBy:     record.ResolvedBy,
		ResolvedAt:     record.ResolvedAt,
		ResolutionNote: record.ResolutionNote,
	}
}

// ListNonComplianceInput contains the input for listing non-compliance records
type ListNonComplianceInput struct {
	SellerID    *uuid.UUID
	ProductCode string
	Status      *pricing.NonComplianceStatus
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// NonComplianceListResult contains a page of non-compliance records
type NonComplianceListResult struct {
	Records  []NonComplianceResponse
	Total    int64
	Page     int
	PageSize int
}

// CloseRecordInput contains the input for resolving or waiving a record
type CloseRecordInput struct {
	RecordID uuid.UUID
	AdminID  uuid.UUID
	Note     string
}

// ScanResult summarizes a compliance scan run
type ScanResult struct {
	CeilingsScanned int
	ListingsChecked int
	Violations      int
	NewRecords      int
	Refreshed       int
}

// ComplianceRateResult contains the marketplace compliance rate
type ComplianceRateResult struct {
	TotalListings     int64
	CompliantListings int64
	// Rate is the compliance percentage (0 to 100). Defaults to 100 when no
	// active listing has an effective ceiling.
	Rate decimal.Decimal
}
