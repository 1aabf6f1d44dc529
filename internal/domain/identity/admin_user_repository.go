package identity

import (
	"context"

	"github.com/google/uuid"
)

// AdminUserRepository defines the interface for admin user persistence
type AdminUserRepository interface {
	// Create creates a new admin user
	Create(ctx context.Context, user *AdminUser) error

	// Update updates an existing admin user
	Update(ctx context.Context, user *AdminUser) error

	// Delete deletes an admin user by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds an admin user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*AdminUser, error)

	// FindByUsername finds an admin user by username
	FindByUsername(ctx context.Context, username string) (*AdminUser, error)

	// FindByEmail finds an admin user by email
	FindByEmail(ctx context.Context, email string) (*AdminUser, error)

	// FindAll returns admin users matching the filter with pagination
	FindAll(ctx context.Context, filter AdminUserFilter) ([]*AdminUser, int64, error)

	// ExistsByUsername checks if a username already exists
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail checks if an email already exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Count returns the total number of admin users
	Count(ctx context.Context) (int64, error)
}

// AdminUserFilter contains filter options for querying admin users
type AdminUserFilter struct {
	// Search keyword for username, email, or display name
	Keyword string

	// Filter by status
	Status *AdminStatus

	// Filter by role
	Role *AdminRole

	// Pagination
	Page     int
	PageSize int

	// Sorting
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// NewAdminUserFilter creates a new AdminUserFilter with default values
func NewAdminUserFilter() AdminUserFilter {
	return AdminUserFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}

// WithKeyword sets the search keyword
func (f AdminUserFilter) WithKeyword(keyword string) AdminUserFilter {
	f.Keyword = keyword
	return f
}

// WithStatus sets the status filter
func (f AdminUserFilter) WithStatus(status AdminStatus) AdminUserFilter {
	f.Status = &status
	return f
}

// WithRole sets the role filter
func (f AdminUserFilter) WithRole(role AdminRole) AdminUserFilter {
	f.Role = &role
	return f
}

// WithPagination sets pagination parameters
func (f AdminUserFilter) WithPagination(page, pageSize int) AdminUserFilter {
	f.Page = page
	f.PageSize = pageSize
	return f
}

// Offset returns the offset for pagination
func (f AdminUserFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f AdminUserFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
