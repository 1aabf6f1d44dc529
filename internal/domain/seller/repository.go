package seller

import (
	"context"

	"github.com/google/uuid"
)

// RegistrationRepository defines the interface for registration request persistence
type RegistrationRepository interface {
	// Create creates a new registration request
	Create(ctx context.Context, req *RegistrationRequest) error

	// Update updates an existing registration request
	Update(ctx context.Context, req *RegistrationRequest) error

	// FindByID finds a registration request by ID
	FindByID(ctx context.Context, id uuid.UUID) (*RegistrationRequest, error)

	// FindLiveByApplicant finds the applicant's live (non-rejected) request, if any
	FindLiveByApplicant(ctx context.Context, applicantID uuid.UUID) (*RegistrationRequest, error)

	// FindAll returns registration requests matching the filter with pagination
	FindAll(ctx context.Context, filter RegistrationFilter) ([]*RegistrationRequest, int64, error)

	// CountByStatus returns the number of requests in the given status
	CountByStatus(ctx context.Context, status RegistrationStatus) (int64, error)
}

// ProfileRepository defines the interface for seller profile persistence
type ProfileRepository interface {
	// Create creates a new seller profile
	Create(ctx context.Context, profile *Profile) error

	// Update updates an existing seller profile
	Update(ctx context.Context, profile *Profile) error

	// FindByID finds a seller profile by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)

	// FindBySellerCode finds a seller profile by its seller code
	FindBySellerCode(ctx context.Context, code string) (*Profile, error)

	// FindAll returns seller profiles matching the filter with pagination
	FindAll(ctx context.Context, filter ProfileFilter) ([]*Profile, int64, error)

	// CountByStatus returns the number of profiles in the given status
	CountByStatus(ctx context.Context, status ProfileStatus) (int64, error)

	// NextSellerCodeSeq returns the next value of the seller code sequence
	NextSellerCodeSeq(ctx context.Context) (int64, error)

	// AverageRating returns the average rating across rated sellers and the
	// number of rated sellers. Unrated sellers (rating count zero) are excluded.
	AverageRating(ctx context.Context) (avg float64, rated int64, err error)

	// FulfillmentTotals returns the summed fulfilled and total order counters
	FulfillmentTotals(ctx context.Context) (fulfilled int64, total int64, err error)
}

// RegistrationFilter contains filter options for querying registration requests
type RegistrationFilter struct {
	Keyword     string
	Status      *RegistrationStatus
	ApplicantID *uuid.UUID

	Page     int
	PageSize int

	SortBy    string
	SortOrder string
}

// NewRegistrationFilter creates a new RegistrationFilter with default values
func NewRegistrationFilter() RegistrationFilter {
	return RegistrationFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}

// WithStatus sets the status filter
func (f RegistrationFilter) WithStatus(status RegistrationStatus) RegistrationFilter {
	f.Status = &status
	return f
}

// WithPagination sets pagination parameters
func (f RegistrationFilter) WithPagination(page, pageSize int) RegistrationFilter {
	f.Page = page
	f.PageSize = pageSize
	return f
}

// Offset returns the offset for pagination
func (f RegistrationFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f RegistrationFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}

// ProfileFilter contains filter options for querying seller profiles
type ProfileFilter struct {
	Keyword       string
	Status        *ProfileStatus
	MarketSection string

	Page     int
	PageSize int

	SortBy    string
	SortOrder string
}

// NewProfileFilter creates a new ProfileFilter with default values
func NewProfileFilter() ProfileFilter {
	return ProfileFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}

// WithStatus sets the status filter
func (f ProfileFilter) WithStatus(status ProfileStatus) ProfileFilter {
	f.Status = &status
	return f
}

// WithPagination sets pagination parameters
func (f ProfileFilter) WithPagination(page, pageSize int) ProfileFilter {
	f.Page = page
	f.PageSize = pageSize
	return f
}

// Offset returns the offset for pagination
func (f ProfileFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f ProfileFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
