package persistence

import (
	"context"

	"gorm.io/gorm"

	appopas "github.com/opas/backend/internal/application/opas"
	"github.com/opas/backend/internal/domain/opas"
)

// GormPurchaseTransactionScope implements the procurement application layer's
// TransactionScope using GORM transactions.
type GormPurchaseTransactionScope struct {
	db *gorm.DB
}

// NewGormPurchaseTransactionScope creates a transaction scope over the purchase
// and inventory repositories.
func NewGormPurchaseTransactionScope(db *gorm.DB) *GormPurchaseTransactionScope {
	return &GormPurchaseTransactionScope{db: db}
}

// Execute runs fn within a database transaction. All repositories handed to fn
// share that transaction; an error from fn rolls everything back.
func (s *GormPurchaseTransactionScope) Execute(ctx context.Context, fn func(repos appopas.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormPurchaseTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormPurchaseTransactionalRepositories provides repositories bound to a single transaction.
type gormPurchaseTransactionalRepositories struct {
	tx *gorm.DB
}

// PurchaseRepo returns a purchase repository scoped to the transaction.
func (r *gormPurchaseTransactionalRepositories) PurchaseRepo() opas.PurchaseRepository {
	return NewGormPurchaseRepository(r.tx)
}

// InventoryRepo returns an inventory repository scoped to the transaction.
func (r *gormPurchaseTransactionalRepositories) InventoryRepo() opas.InventoryRepository {
	return NewGormInventoryRepository(r.tx)
}

var _ appopas.TransactionScope = (*GormPurchaseTransactionScope)(nil)
var _ appopas.TransactionalRepositories = (*gormPurchaseTransactionalRepositories)(nil)
