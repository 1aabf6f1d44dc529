package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opas/backend/internal/domain/pricing"
	"github.com/opas/backend/internal/domain/shared"
	"github.com/opas/backend/internal/infrastructure/persistence/models"
)

// GormListingRepository implements ListingRepository using GORM
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository creates a new GormListingRepository
func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// Create creates a new listing
func (r *GormListingRepository) Create(ctx context.Context, listing *pricing.Listing) error {
	model := models.ListingModelFromDomain(listing)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update updates an existing listing
func (r *GormListingRepository) Update(ctx context.Context, listing *pricing.Listing) error {
	model := models.ListingModelFromDomain(listing)
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a listing by ID
func (r *GormListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*pricing.Listing, error) {
	var model models.ListingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySellerAndProduct finds a seller's listing for a product, if any
func (r *GormListingRepository) FindBySellerAndProduct(ctx context.Context, sellerID uuid.UUID, productCode string) (*pricing.Listing, error) {
	var model models.ListingModel
	if err := r.db.WithContext(ctx).
		Where("seller_id = ? AND product_code = ?", sellerID, strings.TrimSpace(productCode)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns listings matching the filter with pagination
func (r *GormListingRepository) FindAll(ctx context.Context, filter pricing.ListingFilter) ([]*pricing.Listing, int64, error) {
	var listingModels []*models.ListingModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ListingModel{})
	query = r.applyFilter(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := ValidateSortField(filter.SortBy, ListingSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.SortOrder)
	query = query.Order(sortBy + " " + sortOrder)

	query = query.Offset(filter.Offset()).Limit(filter.Limit())

	if err := query.Find(&listingModels).Error; err != nil {
		return nil, 0, err
	}

	listings := make([]*pricing.Listing, len(listingModels))
	for i, model := range listingModels {
		listings[i] = model.ToDomain()
	}

	return listings, total, nil
}

// FindActiveByProductCodes returns active listings for the given product codes
func (r *GormListingRepository) FindActiveByProductCodes(ctx context.Context, productCodes []string) ([]*pricing.Listing, error) {
	if len(productCodes) == 0 {
		return []*pricing.Listing{}, nil
	}

	var listingModels []*models.ListingModel
	if err := r.db.WithContext(ctx).
		Where("active = ? AND product_code IN ?", true, productCodes).
		Find(&listingModels).Error; err != nil {
		return nil, err
	}

	listings := make([]*pricing.Listing, len(listingModels))
	for i, model := range listingModels {
		listings[i] = model.ToDomain()
	}

	return listings, nil
}

// CountActiveUnderCeiling returns the number of active listings whose product
// has an effective active ceiling, and how many of them are compliant.
func (r *GormListingRepository) CountActiveUnderCeiling(ctx context.Context) (int64, int64, error) {
	now := time.Now()
	var result struct {
		Total     int64
		Compliant int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ListingModel{}).
		Select("COUNT(*) AS total, COUNT(*) FILTER (WHERE product_listings.listed_price <= price_ceilings.ceiling_price) AS compliant").
		Joins("JOIN price_ceilings ON price_ceilings.product_code = product_listings.product_code").
		Where("product_listings.active = ?", true).
		Where("price_ceilings.active = ?", true).
		Where("price_ceilings.effective_from <= ?", now).
		Where("price_ceilings.effective_until IS NULL OR price_ceilings.effective_until > ?", now).
		Scan(&result).Error; err != nil {
		return 0, 0, err
	}
	return result.Total, result.Compliant, nil
}

// applyFilter applies filter options to the query
func (r *GormListingRepository) applyFilter(query *gorm.DB, filter pricing.ListingFilter) *gorm.DB {
	if filter.Keyword != "" {
		searchPattern := "%" + filter.Keyword + "%"
		query = query.Where(
			"product_code ILIKE ? OR product_name ILIKE ?",
			searchPattern, searchPattern,
		)
	}

	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}

	if filter.ProductCode != "" {
		query = query.Where("product_code = ?", filter.ProductCode)
	}

	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	return query
}

// Ensure GormListingRepository implements ListingRepository
var _ pricing.ListingRepository = (*GormListingRepository)(nil)
