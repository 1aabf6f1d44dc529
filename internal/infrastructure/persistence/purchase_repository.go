package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/opas/backend/internal/domain/opas"
	"github.com/opas/backend/internal/domain/shared"
	"github.com/opas/backend/internal/infrastructure/persistence/models"
)

// GormPurchaseRepository implements PurchaseRepository using GORM
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a new GormPurchaseRepository
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// Create creates a new purchase with its items
func (r *GormPurchaseRepository) Create(ctx context.Context, purchase *opas.Purchase) error {
	model := models.PurchaseModelFromDomain(purchase)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update updates an existing purchase and its items
func (r *GormPurchaseRepository) Update(ctx context.Context, purchase *opas.Purchase) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.PurchaseModelFromDomain(purchase)

		// Save the purchase without auto-saving associations
		result := tx.Omit("Items").Save(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		// Handle items: delete removed items and save/update existing ones
		currentItemIDs := make([]uuid.UUID, len(purchase.Items))
		for i, item := range purchase.Items {
			currentItemIDs[i] = item.ID
		}

		if len(currentItemIDs) > 0 {
			if err := tx.Where("purchase_id = ? AND id NOT IN ?", purchase.ID, currentItemIDs).
				Delete(&models.PurchaseItemModel{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("purchase_id = ?", purchase.ID).
				Delete(&models.PurchaseItemModel{}).Error; err != nil {
				return err
			}
		}

		for _, item := range purchase.Items {
			item.PurchaseID = purchase.ID
			itemModel := models.PurchaseItemModelFromDomain(item)
			if err := tx.Save(itemModel).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete deletes a draft purchase and its items
func (r *GormPurchaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_id = ?", id).
			Delete(&models.PurchaseItemModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.PurchaseModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// FindByID finds a purchase by ID with its items
func (r *GormPurchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*opas.Purchase, error) {
	var model models.PurchaseModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a purchase by its purchase number
func (r *GormPurchaseRepository) FindByNumber(ctx context.Context, number string) (*opas.Purchase, error) {
	var model models.PurchaseModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("purchase_number = ?", strings.TrimSpace(number)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns purchases matching the filter with pagination
func (r *GormPurchaseRepository) FindAll(ctx context.Context, filter opas.PurchaseFilter) ([]*opas.Purchase, int64, error) {
	var purchaseModels []*models.PurchaseModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.PurchaseModel{})
	query = r.applyFilter(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := ValidateSortField(filter.SortBy, PurchaseSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.SortOrder)
	query = query.Order(sortBy + " " + sortOrder)

	query = query.Offset(filter.Offset()).Limit(filter.Limit())

	if err := query.Preload("Items").Find(&purchaseModels).Error; err != nil {
		return nil, 0, err
	}

	purchases := make([]*opas.Purchase, len(purchaseModels))
	for i, model := range purchaseModels {
		purchases[i] = model.ToDomain()
	}

	return purchases, total, nil
}

// NextDailySeq returns the next purchase sequence number for the given day.
// Purchase numbers are zero-padded, so the lexicographic max is the numeric max.
func (r *GormPurchaseRepository) NextDailySeq(ctx context.Context, day time.Time) (int64, error) {
	prefix := fmt.Sprintf("OPAS-%s-", day.Format("20060102"))

	var lastPurchase models.PurchaseModel
	err := r.db.WithContext(ctx).
		Model(&models.PurchaseModel{}).
		Where("purchase_number LIKE ?", prefix+"%").
		Order("purchase_number DESC").
		First(&lastPurchase).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 1, nil
		}
		return 0, err
	}

	var num int64
	suffix := strings.TrimPrefix(lastPurchase.PurchaseNumber, prefix)
	if _, parseErr := fmt.Sscanf(suffix, "%d", &num); parseErr != nil {
		return 0, fmt.Errorf("malformed purchase number %q: %w", lastPurchase.PurchaseNumber, parseErr)
	}

	return num + 1, nil
}

// CountByStatus returns the number of purchases in the given status
func (r *GormPurchaseRepository) CountByStatus(ctx context.Context, status opas.PurchaseStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PurchaseModel{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// TotalAmountSince sums the total amount of non-cancelled purchases created at
// or after the given time
func (r *GormPurchaseRepository) TotalAmountSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PurchaseModel{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("status <> ? AND created_at >= ?", opas.PurchaseStatusCancelled, since).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// applyFilter applies filter options to the query
func (r *GormPurchaseRepository) applyFilter(query *gorm.DB, filter opas.PurchaseFilter) *gorm.DB {
	if filter.Keyword != "" {
		searchPattern := "%" + filter.Keyword + "%"
		query = query.Where("purchase_number ILIKE ?", searchPattern)
	}

	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}

	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	return query
}

// Ensure GormPurchaseRepository implements PurchaseRepository
var _ opas.PurchaseRepository = (*GormPurchaseRepository)(nil)
