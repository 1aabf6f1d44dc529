package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opas/backend/internal/domain/identity"
	"github.com/opas/backend/internal/domain/shared"
	"github.com/opas/backend/internal/infrastructure/persistence/models"
)

// GormAdminUserRepository implements AdminUserRepository using GORM
type GormAdminUserRepository struct {
	db *gorm.DB
}

// NewGormAdminUserRepository creates a new GormAdminUserRepository
func NewGormAdminUserRepository(db *gorm.DB) *GormAdminUserRepository {
	return &GormAdminUserRepository{db: db}
}

// Create creates a new admin user
func (r *GormAdminUserRepository) Create(ctx context.Context, user *identity.AdminUser) error {
	model := models.AdminUserModelFromDomain(user)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists an admin user, refusing the write when the stored version
// is stale.
func (r *GormAdminUserRepository) Update(ctx context.Context, user *identity.AdminUser) error {
	model := models.AdminUserModelFromDomain(user)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", user.ID, user.Version-1).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT",
			"The admin user has been modified by another transaction")
	}
	return nil
}

// Delete deletes an admin user by ID
func (r *GormAdminUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.AdminUserModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds an admin user by ID
func (r *GormAdminUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.AdminUser, error) {
	var model models.AdminUserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUsername finds an admin user by username
func (r *GormAdminUserRepository) FindByUsername(ctx context.Context, username string) (*identity.AdminUser, error) {
	var model models.AdminUserModel
	if err := r.db.WithContext(ctx).
		Where("LOWER(username) = ?", strings.ToLower(username)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEmail finds an admin user by email
func (r *GormAdminUserRepository) FindByEmail(ctx context.Context, email string) (*identity.AdminUser, error) {
	if email == "" {
		return nil, shared.ErrNotFound
	}
	var model models.AdminUserModel
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns admin users matching the filter with pagination
func (r *GormAdminUserRepository) FindAll(ctx context.Context, filter identity.AdminUserFilter) ([]*identity.AdminUser, int64, error) {
	var userModels []*models.AdminUserModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.AdminUserModel{})
	query = r.applyFilter(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := ValidateSortField(filter.SortBy, AdminUserSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.SortOrder)
	query = query.Order(sortBy + " " + sortOrder)

	query = query.Offset(filter.Offset()).Limit(filter.Limit())

	if err := query.Find(&userModels).Error; err != nil {
		return nil, 0, err
	}

	users := make([]*identity.AdminUser, len(userModels))
	for i, model := range userModels {
		users[i] = model.ToDomain()
	}

	return users, total, nil
}

// ExistsByUsername checks if a username already exists
func (r *GormAdminUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AdminUserModel{}).
		Where("LOWER(username) = ?", strings.ToLower(username)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByEmail checks if an email already exists
func (r *GormAdminUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AdminUserModel{}).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count returns the total number of admin users
func (r *GormAdminUserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AdminUserModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormAdminUserRepository) applyFilter(query *gorm.DB, filter identity.AdminUserFilter) *gorm.DB {
	if filter.Keyword != "" {
		searchPattern := "%" + filter.Keyword + "%"
		query = query.Where(
			"username ILIKE ? OR email ILIKE ? OR display_name ILIKE ?",
			searchPattern, searchPattern, searchPattern,
		)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}

	return query
}

// Ensure GormAdminUserRepository implements AdminUserRepository
var _ identity.AdminUserRepository = (*GormAdminUserRepository)(nil)
