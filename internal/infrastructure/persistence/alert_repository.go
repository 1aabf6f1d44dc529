package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opas/backend/internal/domain/alert"
	"github.com/opas/backend/internal/domain/shared"
	"github.com/opas/backend/internal/infrastructure/persistence/models"
)

// GormAlertRepository implements alert.Repository using GORM
type GormAlertRepository struct {
	db *gorm.DB
}

// NewGormAlertRepository creates a new GormAlertRepository
func NewGormAlertRepository(db *gorm.DB) *GormAlertRepository {
	return &GormAlertRepository{db: db}
}

// Create creates a new alert
func (r *GormAlertRepository) Create(ctx context.Context, a *alert.Alert) error {
	model := models.AlertModelFromDomain(a)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update updates an existing alert
func (r *GormAlertRepository) Update(ctx context.Context, a *alert.Alert) error {
	model := models.AlertModelFromDomain(a)
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds an alert by ID
func (r *GormAlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*alert.Alert, error) {
	var model models.AlertModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByReference finds the non-resolved alert for a category and source
// reference, if any
func (r *GormAlertRepository) FindActiveByReference(ctx context.Context, category alert.Category, referenceID uuid.UUID) (*alert.Alert, error) {
	var model models.AlertModel
	if err := r.db.WithContext(ctx).
		Where("category = ? AND reference_id = ? AND status <> ?", category, referenceID, alert.StatusResolved).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns alerts matching the filter with pagination
func (r *GormAlertRepository) FindAll(ctx context.Context, filter alert.Filter) ([]*alert.Alert, int64, error) {
	var alertModels []*models.AlertModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.AlertModel{})
	query = r.applyFilter(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := ValidateSortField(filter.SortBy, AlertSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.SortOrder)
	query = query.Order(sortBy + " " + sortOrder)

	query = query.Offset(filter.Offset()).Limit(filter.Limit())

	if err := query.Find(&alertModels).Error; err != nil {
		return nil, 0, err
	}

	alerts := make([]*alert.Alert, len(alertModels))
	for i, model := range alertModels {
		alerts[i] = model.ToDomain()
	}

	return alerts, total, nil
}

// CountActive returns the number of active alerts
func (r *GormAlertRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AlertModel{}).
		Where("status = ?", alert.StatusActive).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormAlertRepository) applyFilter(query *gorm.DB, filter alert.Filter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}

	if filter.Severity != nil {
		query = query.Where("severity = ?", *filter.Severity)
	}

	return query
}

// Ensure GormAlertRepository implements alert.Repository
var _ alert.Repository = (*GormAlertRepository)(nil)
