package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opas/backend/internal/domain/seller"
	"github.com/opas/backend/internal/domain/shared"
	"github.com/opas/backend/internal/infrastructure/persistence/models"
)

// GormRegistrationRepository implements RegistrationRepository using GORM
type GormRegistrationRepository struct {
	db *gorm.DB
}

// NewGormRegistrationRepository creates a new GormRegistrationRepository
func NewGormRegistrationRepository(db *gorm.DB) *GormRegistrationRepository {
	return &GormRegistrationRepository{db: db}
}

// Create creates a new registration request
func (r *GormRegistrationRepository) Create(ctx context.Context, req *seller.RegistrationRequest) error {
	model := models.RegistrationRequestModelFromDomain(req)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update updates an existing registration request
func (r *GormRegistrationRepository) Update(ctx context.Context, req *seller.RegistrationRequest) error {
	model := models.RegistrationRequestModelFromDomain(req)
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a registration request by ID
func (r *GormRegistrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*seller.RegistrationRequest, error) {
	var model models.RegistrationRequestModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindLiveByApplicant finds the applicant's live (non-rejected) request, if any
func (r *GormRegistrationRepository) FindLiveByApplicant(ctx context.Context, applicantID uuid.UUID) (*seller.RegistrationRequest, error) {
	var model models.RegistrationRequestModel
	if err := r.db.WithContext(ctx).
		Where("applicant_id = ? AND status <> ?", applicantID, seller.RegistrationStatusRejected).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns registration requests matching the filter with pagination
func (r *GormRegistrationRepository) FindAll(ctx context.Context, filter seller.RegistrationFilter) ([]*seller.RegistrationRequest, int64, error) {
	var requestModels []*models.RegistrationRequestModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.RegistrationRequestModel{})
	query = r.applyFilter(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := ValidateSortField(filter.SortBy, RegistrationSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.SortOrder)
	query = query.Order(sortBy + " " + sortOrder)

	query = query.Offset(filter.Offset()).Limit(filter.Limit())

	if err := query.Find(&requestModels).Error; err != nil {
		return nil, 0, err
	}

	requests := make([]*seller.RegistrationRequest, len(requestModels))
	for i, model := range requestModels {
		requests[i] = model.ToDomain()
	}

	return requests, total, nil
}

// CountByStatus returns the number of requests in the given status
func (r *GormRegistrationRepository) CountByStatus(ctx context.Context, status seller.RegistrationStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.RegistrationRequestModel{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormRegistrationRepository) applyFilter(query *gorm.DB, filter seller.RegistrationFilter) *gorm.DB {
	if filter.Keyword != "" {
		searchPattern := "%" + filter.Keyword + "%"
		query = query.Where(
			"business_name ILIKE ? OR contact_name ILIKE ? OR market_section ILIKE ?",
			searchPattern, searchPattern, searchPattern,
		)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.ApplicantID != nil {
		query = query.Where("applicant_id = ?", *filter.ApplicantID)
	}

	return query
}

// Ensure GormRegistrationRepository implements RegistrationRepository
var _ seller.RegistrationRepository = (*GormRegistrationRepository)(nil)
