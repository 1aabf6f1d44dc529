package persistence

import (
	"context"

	"gorm.io/gorm"

	appseller "github.com/opas/backend/internal/application/seller"
	"github.com/opas/backend/internal/domain/seller"
)

// GormSellerTransactionScope implements the seller application layer's
// TransactionScope using GORM transactions.
type GormSellerTransactionScope struct {
	db *gorm.DB
}

// NewGormSellerTransactionScope creates a transaction scope over the seller repositories.
func NewGormSellerTransactionScope(db *gorm.DB) *GormSellerTransactionScope {
	return &GormSellerTransactionScope{db: db}
}

// Execute runs fn within a database transaction. All repositories handed to fn
// share that transaction; an error from fn rolls everything back.
func (s *GormSellerTransactionScope) Execute(ctx context.Context, fn func(repos appseller.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormSellerTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormSellerTransactionalRepositories provides repositories bound to a single transaction.
type gormSellerTransactionalRepositories struct {
	tx *gorm.DB
}

// RegistrationRepo returns a registration repository scoped to the transaction.
func (r *gormSellerTransactionalRepositories) RegistrationRepo() seller.RegistrationRepository {
	return NewGormRegistrationRepository(r.tx)
}

// ProfileRepo returns a profile repository scoped to the transaction.
func (r *gormSellerTransactionalRepositories) ProfileRepo() seller.ProfileRepository {
	return NewGormProfileRepository(r.tx)
}

var _ appseller.TransactionScope = (*GormSellerTransactionScope)(nil)
var _ appseller.TransactionalRepositories = (*gormSellerTransactionalRepositories)(nil)
