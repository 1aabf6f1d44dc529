package alert

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for marketplace alert persistence
type Repository interface {
	// Create creates a new alert
	Create(ctx context.Context, alert *Alert) error

	// Update updates an existing alert
	Update(ctx context.Context, alert *Alert) error

	// FindByID finds an alert by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Alert, error)

	// FindActiveByReference finds the non-resolved alert for a category and
	// source reference, if any
	FindActiveByReference(ctx context.Context, category Category, referenceID uuid.UUID) (*Alert, error)

	// FindAll returns alerts matching the filter with pagination
	FindAll(ctx context.Context, filter Filter) ([]*Alert, int64, error)

	// CountActive returns the number of active alerts
	CountActive(ctx context.Context) (int64, error)
}

// Filter contains filter options for querying alerts
type Filter struct {
	Status   *Status
	Category *Category
	Severity *Severity

	Page     int
	PageSize int

	SortBy    string
	SortOrder string
}

// NewFilter creates a new Filter with default values
func NewFilter() Filter {
	return Filter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}

// WithStatus sets the status filter
func (f Filter) WithStatus(status Status) Filter {
	f.Status = &status
	return f
}

// WithCategory sets the category filter
func (f Filter) WithCategory(category Category) Filter {
	f.Category = &category
	return f
}

// Offset returns the offset for pagination
func (f Filter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f Filter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
