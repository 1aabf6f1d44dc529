package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opas/backend/internal/domain/audit"
	"github.com/opas/backend/internal/domain/shared"
	"github.com/opas/backend/internal/infrastructure/persistence/models"
)

// GormAuditRepository implements audit.Repository using GORM.
// The audit log is append-only: entries are inserted and read, never mutated.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Append writes a new entry
func (r *GormAuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	model := models.AuditLogModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds an entry by ID
func (r *GormAuditRepository) FindByID(ctx context.Context, id uuid.UUID) (*audit.Entry, error) {
	var model models.AuditLogModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns entries matching the filter with pagination, newest first
func (r *GormAuditRepository) FindAll(ctx context.Context, filter audit.Filter) ([]*audit.Entry, int64, error) {
	var entryModels []*models.AuditLogModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.AuditLogModel{})
	query = r.applyFilter(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	query = query.Offset(filter.Offset()).Limit(filter.Limit())

	if err := query.Find(&entryModels).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]*audit.Entry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = model.ToDomain()
	}

	return entries, total, nil
}

// Count returns the number of entries matching the filter
func (r *GormAuditRepository) Count(ctx context.Context, filter audit.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.AuditLogModel{})
	query = r.applyFilter(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormAuditRepository) applyFilter(query *gorm.DB, filter audit.Filter) *gorm.DB {
	if filter.AdminID != nil {
		query = query.Where("admin_id = ?", *filter.AdminID)
	}

	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	if filter.ObjectType != "" {
		query = query.Where("object_type = ?", filter.ObjectType)
	}

	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}

	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	return query
}

// Ensure GormAuditRepository implements audit.Repository
var _ audit.Repository = (*GormAuditRepository)(nil)
