package opas

import (
	"context"

	"github.com/opas/backend/internal/domain/opas"
)

// TransactionScope provides transactional access to the procurement
// repositories. Repository operations performed inside Execute share one
// database transaction and commit or roll back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the procurement repositories
// within a transaction. Receiving a purchase posts every line item into
// inventory and persists the purchase status through the same transaction.
type TransactionalRepositories interface {
	// PurchaseRepo returns the purchase repository scoped to the current transaction
	PurchaseRepo() opas.PurchaseRepository
	// InventoryRepo returns the inventory repository scoped to the current transaction
	InventoryRepo() opas.InventoryRepository
}

// NoOpTransactionScope runs the function against the given repositories
// without a real transaction. Used in tests.
type NoOpTransactionScope struct {
	purchaseRepo  opas.PurchaseRepository
	inventoryRepo opas.InventoryRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	purchaseRepo opas.PurchaseRepository,
	inventoryRepo opas.InventoryRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		purchaseRepo:  purchaseRepo,
		inventoryRepo: inventoryRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// PurchaseRepo returns the purchase repository.
func (s *NoOpTransactionScope) PurchaseRepo() opas.PurchaseRepository {
	return s.purchaseRepo
}

// InventoryRepo returns the inventory repository.
func (s *NoOpTransactionScope) InventoryRepo() opas.InventoryRepository {
	return s.inventoryRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
