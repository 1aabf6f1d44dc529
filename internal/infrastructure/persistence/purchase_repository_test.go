package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPurchaseRepository creates a GormPurchaseRepository with a mocked SQL connection
func newMockPurchaseRepository(t *testing.T) (*GormPurchaseRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormPurchaseRepository(gormDB), mock, mockDB
}

func TestGormPurchaseRepository_NextDailySeq(t *testing.T) {
	day := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	t.Run("returns 1 for the first purchase of the day", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "opas_purchases" WHERE purchase_number LIKE \$1 ORDER BY purchase_number DESC.* LIMIT .*`).
			WithArgs("OPAS-20260825-%", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		seq, err := repo.NextDailySeq(context.Background(), day)

		assert.NoError(t, err)
		assert.Equal(t, int64(1), seq)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("increments the highest number of the day", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseRepository(t)
		defer mockDB.Close()

		now := time.Now()
		rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "version", "purchase_number", "seller_id", "total_amount", "status"}).
			AddRow(uuid.New(), now, now, 1, "OPAS-20260825-0007", uuid.New(), decimal.NewFromInt(1200), "confirmed")

		mock.ExpectQuery(`SELECT \* FROM "opas_purchases" WHERE purchase_number LIKE \$1 ORDER BY purchase_number DESC.* LIMIT .*`).
			WithArgs("OPAS-20260825-%", 1).
			WillReturnRows(rows)

		seq, err := repo.NextDailySeq(context.Background(), day)

		assert.NoError(t, err)
		assert.Equal(t, int64(8), seq)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPurchaseRepository_TotalAmountSince(t *testing.T) {
	t.Run("sums non-cancelled purchase amounts", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseRepository(t)
		defer mockDB.Close()

		since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		rows := sqlmock.NewRows([]string{"total"}).AddRow("15250.5000")

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(total_amount\), 0\) AS total FROM "opas_purchases" WHERE status <> \$1 AND created_at >= \$2`).
			WithArgs("cancelled", since).
			WillReturnRows(rows)

		total, err := repo.TotalAmountSince(context.Background(), since)

		assert.NoError(t, err)
		assert.True(t, total.Equal(decimal.RequireFromString("15250.50")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPurchaseRepository_CountByStatus(t *testing.T) {
	t.Run("counts purchases in a status", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"count"}).AddRow(3)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "opas_purchases" WHERE status = \$1`).
			WithArgs("draft").
			WillReturnRows(rows)

		count, err := repo.CountByStatus(context.Background(), "draft")

		assert.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
