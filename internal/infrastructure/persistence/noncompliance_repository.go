package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opas/backend/internal/domain/pricing"
	"github.com/opas/backend/internal/domain/shared"
	"github.com/opas/backend/internal/infrastructure/persistence/models"
)

// GormNonComplianceRepository implements NonComplianceRepository using GORM
type GormNonComplianceRepository struct {
	db *gorm.DB
}

// NewGormNonComplianceRepository creates a new GormNonComplianceRepository
func NewGormNonComplianceRepository(db *gorm.DB) *GormNonComplianceRepository {
	return &GormNonComplianceRepository{db: db}
}

// Create creates a new non-compliance record
func (r *GormNonComplianceRepository) Create(ctx context.Context, record *pricing.NonComplianceRecord) error {
	model := models.NonComplianceModelFromDomain(record)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update updates an existing non-compliance record
func (r *GormNonComplianceRepository) Update(ctx context.Context, record *pricing.NonComplianceRecord) error {
	model := models.NonComplianceModelFromDomain(record)
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a record by ID
func (r *GormNonComplianceRepository) FindByID(ctx context.Context, id uuid.UUID) (*pricing.NonComplianceRecord, error) {
	var model models.NonComplianceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOpenByListing finds the open record for a listing, if any
func (r *GormNonComplianceRepository) FindOpenByListing(ctx context.Context, listingID uuid.UUID) (*pricing.NonComplianceRecord, error) {
	var model models.NonComplianceModel
	if err := r.db.WithContext(ctx).
		Where("listing_id = ? AND status = ?", listingID, pricing.NonComplianceStatusOpen).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns records matching the filter with pagination
func (r *GormNonComplianceRepository) FindAll(ctx context.Context, filter pricing.NonComplianceFilter) ([]*pricing.NonComplianceRecord, int64, error) {
	var recordModels []*models.NonComplianceModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.NonComplianceModel{})
	query = r.applyFilter(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := ValidateSortField(filter.SortBy, NonComplianceSortFields, "detected_at")
	sortOrder := ValidateSortOrder(filter.SortOrder)
	query = query.Order(sortBy + " " + sortOrder)

	query = query.Offset(filter.Offset()).Limit(filter.Limit())

	if err := query.Find(&recordModels).Error; err != nil {
		return nil, 0, err
	}

	records := make([]*pricing.NonComplianceRecord, len(recordModels))
	for i, model := range recordModels {
		records[i] = model.ToDomain()
	}

	return records, total, nil
}

// CountByStatus returns the number of records in the given status
func (r *GormNonComplianceRepository) CountByStatus(ctx context.Context, status pricing.NonComplianceStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.NonComplianceModel{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormNonComplianceRepository) applyFilter(query *gorm.DB, filter pricing.NonComplianceFilter) *gorm.DB {
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}

	if filter.ProductCode != "" {
		query = query.Where("product_code = ?", filter.ProductCode)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	return query
}

// Ensure GormNonComplianceRepository implements NonComplianceRepository
var _ pricing.NonComplianceRepository = (*GormNonComplianceRepository)(nil)
