package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for audit log persistence.
// The log is append-only: there are no update or delete operations.
type Repository interface {
	// Append writes a new entry
	Append(ctx context.Context, entry *Entry) error

	// FindByID finds an entry by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Entry, error)

	// FindAll returns entries matching the filter with pagination
	FindAll(ctx context.Context, filter Filter) ([]*Entry, int64, error)

	// Count returns the number of entries matching the filter
	Count(ctx context.Context, filter Filter) (int64, error)
}

// Filter contains filter options for querying audit log entries
type Filter struct {
	AdminID    *uuid.UUID
	Action     string
	ObjectType string
	From       *time.Time
	To         *time.Time

	Page     int
	PageSize int
}

// NewFilter creates a new Filter with default values
func NewFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
	}
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
