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

	appopas "github.com/opas/backend/internal/application/opas"
	"github.com/opas/backend/internal/domain/shared"
)

// newMockPurchaseTransactionScope creates a GormPurchaseTransactionScope with a mocked SQL connection
func newMockPurchaseTransactionScope(t *testing.T) (*GormPurchaseTransactionScope, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormPurchaseTransactionScope(gormDB), mock, mockDB
}

func TestGormPurchaseTransactionScope_Execute(t *testing.T) {
	t.Run("commits when the function succeeds", func(t *testing.T) {
		scope, mock, mockDB := newMockPurchaseTransactionScope(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "opas_inventory_items" WHERE product_code = \$1`).
			WithArgs("RICE-5KG", 1).
			WillReturnError(gorm.ErrRecordNotFound)
		mock.ExpectCommit()

		err := scope.Execute(context.Background(), func(repos appopas.TransactionalRepositories) error {
			// Repositories handed out by the scope run on the transaction connection
			_, err := repos.InventoryRepo().FindByProductCode(context.Background(), "RICE-5KG")
			assert.Equal(t, shared.ErrNotFound, err)
			return nil
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back every write when the function fails", func(t *testing.T) {
		scope, mock, mockDB := newMockPurchaseTransactionScope(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		// A failed status write after the stock postings must undo the postings
		// too, otherwise a retry would post the received quantities twice.
		sentinel := errors.New("status write failed")
		err := scope.Execute(context.Background(), func(repos appopas.TransactionalRepositories) error {
			return sentinel
		})

		assert.ErrorIs(t, err, sentinel)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
