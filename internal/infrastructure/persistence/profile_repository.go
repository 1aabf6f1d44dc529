package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opas/backend/internal/domain/seller"
	"github.com/opas/backend/internal/domain/shared"
	"github.com/opas/backend/internal/infrastructure/persistence/models"
)

// GormProfileRepository implements ProfileRepository using GORM
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GormProfileRepository
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// Create creates a new seller profile
func (r *GormProfileRepository) Create(ctx context.Context, profile *seller.Profile) error {
	model := models.ProfileModelFromDomain(profile)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update updates an existing seller profile
func (r *GormProfileRepository) Update(ctx context.Context, profile *seller.Profile) error {
	model := models.ProfileModelFromDomain(profile)
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a seller profile by ID
func (r *GormProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*seller.Profile, error) {
	var model models.ProfileModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySellerCode finds a seller profile by its seller code
func (r *GormProfileRepository) FindBySellerCode(ctx context.Context, code string) (*seller.Profile, error) {
	var model models.ProfileModel
	if err := r.db.WithContext(ctx).
		Where("seller_code = ?", strings.TrimSpace(code)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns seller profiles matching the filter with pagination
func (r *GormProfileRepository) FindAll(ctx context.Context, filter seller.ProfileFilter) ([]*seller.Profile, int64, error) {
	var profileModels []*models.ProfileModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ProfileModel{})
	query = r.applyFilter(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := ValidateSortField(filter.SortBy, SellerProfileSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.SortOrder)
	query = query.Order(sortBy + " " + sortOrder)

	query = query.Offset(filter.Offset()).Limit(filter.Limit())

	if err := query.Find(&profileModels).Error; err != nil {
		return nil, 0, err
	}

	profiles := make([]*seller.Profile, len(profileModels))
	for i, model := range profileModels {
		profiles[i] = model.ToDomain()
	}

	return profiles, total, nil
}

// CountByStatus returns the number of profiles in the given status
func (r *GormProfileRepository) CountByStatus(ctx context.Context, status seller.ProfileStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProfileModel{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextSellerCodeSeq returns the next value of the seller code sequence.
// Seller codes are zero-padded, so the lexicographic max is the numeric max.
func (r *GormProfileRepository) NextSellerCodeSeq(ctx context.Context) (int64, error) {
	var lastProfile models.ProfileModel
	err := r.db.WithContext(ctx).
		Model(&models.ProfileModel{}).
		Where("seller_code LIKE ?", seller.SellerCodePrefix+"%").
		Order("seller_code DESC").
		First(&lastProfile).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 1, nil
		}
		return 0, err
	}

	var num int64
	suffix := strings.TrimPrefix(lastProfile.SellerCode, seller.SellerCodePrefix)
	if _, parseErr := fmt.Sscanf(suffix, "%d", &num); parseErr != nil {
		return 0, fmt.Errorf("malformed seller code %q: %w", lastProfile.SellerCode, parseErr)
	}

	return num + 1, nil
}

// AverageRating returns the average rating across rated sellers and the number
// of rated sellers. Unrated sellers (rating count zero) are excluded.
func (r *GormProfileRepository) AverageRating(ctx context.Context) (float64, int64, error) {
	var result struct {
		Avg   float64
		Rated int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ProfileModel{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS rated").
		Where("rating_count > 0").
		Scan(&result).Error; err != nil {
		return 0, 0, err
	}
	return result.Avg, result.Rated, nil
}

// FulfillmentTotals returns the summed fulfilled and total order counters
func (r *GormProfileRepository) FulfillmentTotals(ctx context.Context) (int64, int64, error) {
	var result struct {
		Fulfilled int64
		Total     int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ProfileModel{}).
		Select("COALESCE(SUM(orders_fulfilled), 0) AS fulfilled, COALESCE(SUM(orders_total), 0) AS total").
		Scan(&result).Error; err != nil {
		return 0, 0, err
	}
	return result.Fulfilled, result.Total, nil
}

// applyFilter applies filter options to the query
func (r *GormProfileRepository) applyFilter(query *gorm.DB, filter seller.ProfileFilter) *gorm.DB {
	if filter.Keyword != "" {
		searchPattern := "%" + filter.Keyword + "%"
		query = query.Where(
			"seller_code ILIKE ? OR business_name ILIKE ? OR contact_name ILIKE ?",
			searchPattern, searchPattern, searchPattern,
		)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.MarketSection != "" {
		query = query.Where("market_section = ?", filter.MarketSection)
	}

	return query
}

// Ensure GormProfileRepository implements ProfileRepository
var _ seller.ProfileRepository = (*GormProfileRepository)(nil)
