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

// GormCeilingRepository implements CeilingRepository using GORM
type GormCeilingRepository struct {
	db *gorm.DB
}

// NewGormCeilingRepository creates a new GormCeilingRepository
func NewGormCeilingRepository(db *gorm.DB) *GormCeilingRepository {
	return &GormCeilingRepository{db: db}
}

// Create creates a new price ceiling
func (r *GormCeilingRepository) Create(ctx context.Context, ceiling *pricing.Ceiling) error {
	model := models.PriceCeilingModelFromDomain(ceiling)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists a price ceiling, refusing the write when the stored version
// is stale.
func (r *GormCeilingRepository) Update(ctx context.Context, ceiling *pricing.Ceiling) error {
	model := models.PriceCeilingModelFromDomain(ceiling)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", ceiling.ID, ceiling.Version-1).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT",
			"The price ceiling has been modified by another transaction")
	}
	return nil
}

// FindByID finds a price ceiling by ID
func (r *GormCeilingRepository) FindByID(ctx context.Context, id uuid.UUID) (*pricing.Ceiling, error) {
	var model models.PriceCeilingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByProductCode finds the effective active ceiling for a product, if any.
// The most recently effective ceiling wins when several are active.
func (r *GormCeilingRepository) FindActiveByProductCode(ctx context.Context, productCode string) (*pricing.Ceiling, error) {
	now := time.Now()
	var model models.PriceCeilingModel
	if err := r.db.WithContext(ctx).
		Where("product_code = ? AND active = ?", strings.TrimSpace(productCode), true).
		Where("effective_from <= ?", now).
		Where("effective_until IS NULL OR effective_until > ?", now).
		Order("effective_from DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns ceilings matching the filter with pagination
func (r *GormCeilingRepository) FindAll(ctx context.Context, filter pricing.CeilingFilter) ([]*pricing.Ceiling, int64, error) {
	var ceilingModels []*models.PriceCeilingModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.PriceCeilingModel{})
	query = r.applyFilter(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := ValidateSortField(filter.SortBy, CeilingSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.SortOrder)
	query = query.Order(sortBy + " " + sortOrder)

	query = query.Offset(filter.Offset()).Limit(filter.Limit())

	if err := query.Find(&ceilingModels).Error; err != nil {
		return nil, 0, err
	}

	ceilings := make([]*pricing.Ceiling, len(ceilingModels))
	for i, model := range ceilingModels {
		ceilings[i] = model.ToDomain()
	}

	return ceilings, total, nil
}

// FindAllActive returns all currently effective active ceilings
func (r *GormCeilingRepository) FindAllActive(ctx context.Context) ([]*pricing.Ceiling, error) {
	now := time.Now()
	var ceilingModels []*models.PriceCeilingModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("effective_from <= ?", now).
		Where("effective_until IS NULL OR effective_until > ?", now).
		Order("product_code ASC").
		Find(&ceilingModels).Error; err != nil {
		return nil, err
	}

	ceilings := make([]*pricing.Ceiling, len(ceilingModels))
	for i, model := range ceilingModels {
		ceilings[i] = model.ToDomain()
	}

	return ceilings, nil
}

// applyFilter applies filter options to the query
func (r *GormCeilingRepository) applyFilter(query *gorm.DB, filter pricing.CeilingFilter) *gorm.DB {
	if filter.Keyword != "" {
		searchPattern := "%" + filter.Keyword + "%"
		query = query.Where(
			"product_code ILIKE ? OR product_name ILIKE ?",
			searchPattern, searchPattern,
		)
	}

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	return query
}

// Ensure GormCeilingRepository implements CeilingRepository
var _ pricing.CeilingRepository = (*GormCeilingRepository)(nil)
