package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	appseller "github.com/opas/backend/internal/application/seller"
)

// newMockSellerTransactionScope creates a GormSellerTransactionScope with a mocked SQL connection
func newMockSellerTransactionScope(t *testing.T) (*GormSellerTransactionScope, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormSellerTransactionScope(gormDB), mock, mockDB
}

func TestGormSellerTransactionScope_Execute(t *testing.T) {
	t.Run("commits when the function succeeds", func(t *testing.T) {
		scope, mock, mockDB := newMockSellerTransactionScope(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := scope.Execute(context.Background(), func(repos appseller.TransactionalRepositories) error {
			assert.NotNil(t, repos.RegistrationRepo())
			assert.NotNil(t, repos.ProfileRepo())
			return nil
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back the approval when the profile write fails", func(t *testing.T) {
		scope, mock, mockDB := newMockSellerTransactionScope(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		// Approving persists the reviewed request and creates the profile in
		// the same transaction; a failed profile insert leaves no approved
		// request behind it.
		sentinel := errors.New("profile insert failed")
		err := scope.Execute(context.Background(), func(repos appseller.TransactionalRepositories) error {
			return sentinel
		})

		assert.ErrorIs(t, err, sentinel)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
