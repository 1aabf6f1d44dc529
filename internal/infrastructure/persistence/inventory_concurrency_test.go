package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/opas/backend/internal/domain/opas"
	"github.com/opas/backend/internal/domain/shared"
)

// newMockInventoryRepository creates a GormInventoryRepository with a mocked SQL connection
func newMockInventoryRepository(t *testing.T) (*GormInventoryRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormInventoryRepository(gormDB), mock, mockDB
}

// receivedTestItem returns an item one domain operation past its load version,
// the state Update expects to persist.
func receivedTestItem(t *testing.T) *opas.InventoryItem {
	t.Helper()
	item, err := opas.NewInventoryItem("RICE-5KG", "Rice 5kg", "bag")
	require.NoError(t, err)
	require.NoError(t, item.Receive(decimal.NewFromInt(40), decimal.NewFromInt(240)))
	return item
}

func TestGormInventoryRepository_Update_OptimisticLocking(t *testing.T) {
	t.Run("writes the row when the stored version matches", func(t *testing.T) {
		repo, mock, mockDB := newMockInventoryRepository(t)
		defer mockDB.Close()

		item := receivedTestItem(t)

		// The write carries the load-time version in its guard
		mock.ExpectExec(`UPDATE "opas_inventory_items" SET .+ WHERE .*id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(context.Background(), item)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a conflict when another writer committed first", func(t *testing.T) {
		repo, mock, mockDB := newMockInventoryRepository(t)
		defer mockDB.Close()

		item := receivedTestItem(t)

		mock.ExpectExec(`UPDATE "opas_inventory_items" SET .+ WHERE .*id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), item)

		require.Error(t, err)
		domainErr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "CONCURRENCY_CONFLICT", domainErr.Code)
		assert.Contains(t, domainErr.Message, "modified by another transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates database errors", func(t *testing.T) {
		repo, mock, mockDB := newMockInventoryRepository(t)
		defer mockDB.Close()

		item := receivedTestItem(t)

		mock.ExpectExec(`UPDATE "opas_inventory_items" SET`).
			WillReturnError(assert.AnError)

		err := repo.Update(context.Background(), item)

		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
