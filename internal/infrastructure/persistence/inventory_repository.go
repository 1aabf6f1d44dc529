package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opas/backend/internal/domain/opas"
	"github.com/opas/backend/internal/domain/shared"
	"github.com/opas/backend/internal/infrastructure/persistence/models"
)

// GormInventoryRepository implements InventoryRepository using GORM
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// Create creates a new inventory item
func (r *GormInventoryRepository) Create(ctx context.Context, item *opas.InventoryItem) error {
	model := models.InventoryItemModelFromDomain(item)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists an inventory item guarded by its version. The row is only
// written when the stored version matches the one the aggregate was loaded at;
// a concurrent writer wins the race and this update reports a conflict.
func (r *GormInventoryRepository) Update(ctx context.Context, item *opas.InventoryItem) error {
	model := models.InventoryItemModelFromDomain(item)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", item.ID, item.Version-1).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT",
			"The inventory item has been modified by another transaction")
	}
	return nil
}

// FindByID finds an inventory item by ID
func (r *GormInventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*opas.InventoryItem, error) {
	var model models.InventoryItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProductCode finds an inventory item by product code
func (r *GormInventoryRepository) FindByProductCode(ctx context.Context, productCode string) (*opas.InventoryItem, error) {
	var model models.InventoryItemModel
	if err := r.db.WithContext(ctx).
		Where("product_code = ?", strings.TrimSpace(productCode)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns inventory items matching the filter with pagination
func (r *GormInventoryRepository) FindAll(ctx context.Context, filter opas.InventoryFilter) ([]*opas.InventoryItem, int64, error) {
	var itemModels []*models.InventoryItemModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.InventoryItemModel{})
	query = r.applyFilter(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := ValidateSortField(filter.SortBy, InventorySortFields, "product_code")
	sortOrder := ValidateSortOrder(filter.SortOrder)
	query = query.Order(sortBy + " " + sortOrder)

	query = query.Offset(filter.Offset()).Limit(filter.Limit())

	if err := query.Find(&itemModels).Error; err != nil {
		return nil, 0, err
	}

	items := make([]*opas.InventoryItem, len(itemModels))
	for i, model := range itemModels {
		items[i] = model.ToDomain()
	}

	return items, total, nil
}

// FindLowStock returns items whose quantity is below their minimum threshold
func (r *GormInventoryRepository) FindLowStock(ctx context.Context) ([]*opas.InventoryItem, error) {
	var itemModels []*models.InventoryItemModel
	if err := r.db.WithContext(ctx).
		Where("min_threshold > 0 AND quantity < min_threshold").
		Order("product_code ASC").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}

	items := make([]*opas.InventoryItem, len(itemModels))
	for i, model := range itemModels {
		items[i] = model.ToDomain()
	}

	return items, nil
}

// CountLowStock returns the number of items below their minimum threshold
func (r *GormInventoryRepository) CountLowStock(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryItemModel{}).
		Where("min_threshold > 0 AND quantity < min_threshold").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormInventoryRepository) applyFilter(query *gorm.DB, filter opas.InventoryFilter) *gorm.DB {
	if filter.Keyword != "" {
		searchPattern := "%" + filter.Keyword + "%"
		query = query.Where(
			"product_code ILIKE ? OR product_name ILIKE ?",
			searchPattern, searchPattern,
		)
	}

	if filter.LowOnly {
		query = query.Where("min_threshold > 0 AND quantity < min_threshold")
	}

	return query
}

// Ensure GormInventoryRepository implements InventoryRepository
var _ opas.InventoryRepository = (*GormInventoryRepository)(nil)
