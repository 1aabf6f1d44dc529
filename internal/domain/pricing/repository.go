package pricing

import (
	"context"

	"github.com/google/uuid"
)

// CeilingRepository defines the interface for price ceiling persistence
type CeilingRepository interface {
	// Create creates a new price ceiling
	Create(ctx context.Context, ceiling *Ceiling) error

	// Update updates an existing price ceiling
	Update(ctx context.Context, ceiling *Ceiling) error

	// FindByID finds a price ceiling by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Ceiling, error)

	// FindActiveByProductCode finds the active ceiling for a product, if any
	FindActiveByProductCode(ctx context.Context, productCode string) (*Ceiling, error)

	// FindAll returns ceilings matching the filter with pagination
	FindAll(ctx context.Context, filter CeilingFilter) ([]*Ceiling, int64, error)

	// FindAllActive returns all active ceilings (for the compliance scan)
	FindAllActive(ctx context.Context) ([]*Ceiling, error)
}

// ListingRepository defines the interface for product listing persistence
type ListingRepository interface {
	// Create creates a new listing
	Create(ctx context.Context, listing *Listing) error

	// Update updates an existing listing
	Update(ctx context.Context, listing *Listing) error

	// FindByID finds a listing by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)

	// FindBySellerAndProduct finds a seller's listing for a product, if any
	FindBySellerAndProduct(ctx context.Context, sellerID uuid.UUID, productCode string) (*Listing, error)

	// FindAll returns listings matching the filter with pagination
	FindAll(ctx context.Context, filter ListingFilter) ([]*Listing, int64, error)

	// FindActiveByProductCodes returns active listings for the given product codes
	FindActiveByProductCodes(ctx context.Context, productCodes []string) ([]*Listing, error)

	// CountActiveUnderCeiling returns the number of active listings whose product
	// has an active ceiling, and how many of them are compliant.
	CountActiveUnderCeiling(ctx context.Context) (total int64, compliant int64, err error)
}

// NonComplianceRepository defines the interface for non-compliance record persistence
type NonComplianceRepository interface {
	// Create creates a new non-compliance record
	Create(ctx context.Context, record *NonComplianceRecord) error

	// Update updates an existing non-compliance record
	Update(ctx context.Context, record *NonComplianceRecord) error

	// FindByID finds a record by ID
	FindByID(ctx context.Context, id uuid.UUID) (*NonComplianceRecord, error)

	// FindOpenByListing finds the open record for a listing, if any
	FindOpenByListing(ctx context.Context, listingID uuid.UUID) (*NonComplianceRecord, error)

	// FindAll returns records matching the filter with pagination
	FindAll(ctx context.Context, filter NonComplianceFilter) ([]*NonComplianceRecord, int64, error)

	// CountByStatus returns the number of records in the given status
	CountByStatus(ctx context.Context, status NonComplianceStatus) (int64, error)
}

// CeilingFilter contains filter options for querying price ceilings
type CeilingFilter struct {
	Keyword  string
	Category string
	Active   *bool

	Page     int
	PageSize int

	SortBy    string
	SortOrder string
}

// NewCeilingFilter creates a new CeilingFilter with default values
func NewCeilingFilter() CeilingFilter {
	return CeilingFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}

// Offset returns the offset for pagination
func (f CeilingFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f CeilingFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}

// ListingFilter contains filter options for querying product listings
type ListingFilter struct {
	Keyword     string
	SellerID    *uuid.UUID
	ProductCode string
	Active      *bool

	Page     int
	PageSize int

	SortBy    string
	SortOrder string
}

// NewListingFilter creates a new ListingFilter with default values
func NewListingFilter() ListingFilter {
	return ListingFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}

// Offset returns the offset for pagination
func (f ListingFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f ListingFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}

// NonComplianceFilter contains filter options for querying non-compliance records
type NonComplianceFilter struct {
	SellerID    *uuid.UUID
	ProductCode string
	Status      *NonComplianceStatus

	Page     int
	PageSize int

	SortBy    string
	SortOrder string
}

// NewNonComplianceFilter creates a new NonComplianceFilter with default values
func NewNonComplianceFilter() NonComplianceFilter {
	return NonComplianceFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "detected_at",
		SortOrder: "desc",
	}
}

// Offset returns the offset for pagination
func (f NonComplianceFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f NonComplianceFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
