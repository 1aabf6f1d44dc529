package seller

import (
	"context"

	"github.com/opas/backend/internal/domain/seller"
)

// TransactionScope provides transactional access to the seller repositories.
// Repository operations performed inside Execute share one database
// transaction and commit or roll back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the seller repositories within
// a transaction. Approving a registration writes the reviewed request, the
// seller code sequence, and the new profile through the same transaction.
type TransactionalRepositories interface {
	// RegistrationRepo returns the registration repository scoped to the current transaction
	RegistrationRepo() seller.RegistrationRepository
	// ProfileRepo returns the profile repository scoped to the current transaction
	ProfileRepo() seller.ProfileRepository
}

// NoOpTransactionScope runs the function against the given repositories
// without a real transaction. Used in tests.
type NoOpTransactionScope struct {
	registrationRepo seller.RegistrationRepository
	profileRepo      seller.ProfileRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	registrationRepo seller.RegistrationRepository,
	profileRepo seller.ProfileRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		registrationRepo: registrationRepo,
		profileRepo:      profileRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// RegistrationRepo returns the registration repository.
func (s *NoOpTransactionScope) RegistrationRepo() seller.RegistrationRepository {
	return s.registrationRepo
}

// ProfileRepo returns the profile repository.
func (s *NoOpTransactionScope) ProfileRepo() seller.ProfileRepository {
	return s.profileRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
