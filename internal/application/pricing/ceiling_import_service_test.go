package pricing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opas/backend/internal/domain/pricing"
	"github.com/opas/backend/internal/domain/shared"
	csvimport "github.com/opas/backend/internal/infrastructure/import"
)

const ceilingCSVHeader = "product_code,product_name,category,ceiling_price,unit,effective_from\n"

func newImportService(repo *MockCeilingRepository) (*CeilingImportService, *csvimport.InMemorySessionStore) {
	store := csvimport.NewInMemorySessionStore(time.Hour)
	return NewCeilingImportService(repo, store, zap.NewNop()), store
}

func TestCeilingImportService_Import(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("imports valid file", func(t *testing.T) {
		repo := new(MockCeilingRepository)
		repo.On("FindActiveByProductCode", ctx, "RICE-5KG").Return(nil, shared.ErrNotFound)
		repo.On("FindActiveByProductCode", ctx, "OIL-1L").Return(nil, shared.ErrNotFound)
		repo.On("Create", ctx, mock.AnythingOfType("*pricing.Ceiling")).Return(nil)

		service, store := newImportService(repo)
		defer store.Stop()

		csv := ceilingCSVHeader +
			"RICE-5KG,Rice 5kg,staples,120.50,bag,2026-09-01\n" +
			"OIL-1L,Cooking Oil 1L,staples,45.00,bottle,\n"

		result, err := service.Import(ctx, ImportCeilingsInput{
			UserID:   userID,
			FileName: "ceilings.csv",
			FileSize: int64(len(csv)),
			Reader:   strings.NewReader(csv),
		})

		require.NoError(t, err)
		assert.Equal(t, csvimport.StateCompleted, result.State)
		assert.Equal(t, 2, result.TotalRows)
		assert.Equal(t, 2, result.ValidRows)
		assert.Equal(t, 0, result.ErrorRows)
		assert.Equal(t, 2, result.Created)
		repo.AssertNumberOfCalls(t, "Create", 2)
	})

	t.Run("dry run validates without creating", func(t *testing.T) {
		repo := new(MockCeilingRepository)
		repo.On("FindActiveByProductCode", ctx, "RICE-5KG").Return(nil, shared.ErrNotFound)

		service, store := newImportService(repo)
		defer store.Stop()

		csv := ceilingCSVHeader + "RICE-5KG,Rice 5kg,staples,120.50,bag,2026-09-01\n"

		result, err := service.Import(ctx, ImportCeilingsInput{
			UserID:   userID,
			FileName: "ceilings.csv",
			FileSize: int64(len(csv)),
			Reader:   strings.NewReader(csv),
			DryRun:   true,
		})

		require.NoError(t, err)
		assert.Equal(t, 1, result.ValidRows)
		assert.Equal(t, 0, result.Created)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects file with invalid rows", func(t *testing.T) {
		repo := new(MockCeilingRepository)
		repo.On("FindActiveByProductCode", ctx, "RICE-5KG").Return(nil, shared.ErrNotFound)

		service, store := newImportService(repo)
		defer store.Stop()

		// Second row is missing the price
		csv := ceilingCSVHeader +
			"RICE-5KG,Rice 5kg,staples,120.50,bag,2026-09-01\n" +
			"OIL-1L,Cooking Oil 1L,staples,,bottle,\n"

		result, err := service.Import(ctx, ImportCeilingsInput{
			UserID:   userID,
			FileName: "ceilings.csv",
			FileSize: int64(len(csv)),
			Reader:   strings.NewReader(csv),
		})

		require.NoError(t, err)
		assert.Equal(t, csvimport.StateFailed, result.State)
		assert.Equal(t, 1, result.ErrorRows)
		assert.Equal(t, 0, result.Created)
		assert.NotEmpty(t, result.Errors)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects product with existing active ceiling", func(t *testing.T) {
		repo := new(MockCeilingRepository)
		existing := createTestCeiling(t, "RICE-5KG", "120.00")
		repo.On("FindActiveByProductCode", ctx, "RICE-5KG").Return(existing, nil)

		service, store := newImportService(repo)
		defer store.Stop()

		csv := ceilingCSVHeader + "RICE-5KG,Rice 5kg,staples,130.00,bag,\n"

		result, err := service.Import(ctx, ImportCeilingsInput{
			UserID:   userID,
			FileName: "ceilings.csv",
			FileSize: int64(len(csv)),
			Reader:   strings.NewReader(csv),
		})

		require.NoError(t, err)
		assert.Equal(t, 1, result.ErrorRows)
		assert.Equal(t, 0, result.Created)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects duplicate product codes within file", func(t *testing.T) {
		repo := new(MockCeilingRepository)
		repo.On("FindActiveByProductCode", ctx, "RICE-5KG").Return(nil, shared.ErrNotFound)

		service, store := newImportService(repo)
		defer store.Stop()

		csv := ceilingCSVHeader +
			"RICE-5KG,Rice 5kg,staples,120.50,bag,\n" +
			"RICE-5KG,Rice 5kg again,staples,125.00,bag,\n"

		result, err := service.Import(ctx, ImportCeilingsInput{
			UserID:   userID,
			FileName: "ceilings.csv",
			FileSize: int64(len(csv)),
			Reader:   strings.NewReader(csv),
		})

		require.NoError(t, err)
		assert.Equal(t, 1, result.ErrorRows)
		assert.Equal(t, 0, result.Created)
	})

	t.Run("fails on unparseable file", func(t *testing.T) {
		repo := new(MockCeilingRepository)

		service, store := newImportService(repo)
		defer store.Stop()

		_, err := service.Import(ctx, ImportCeilingsInput{
			UserID:   userID,
			FileName: "ceilings.csv",
			FileSize: 4,
			Reader:   strings.NewReader(""),
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "IMPORT_PARSE_FAILED", domainErr.Code)
	})
}

func TestCeilingImportService_Sessions(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	repo := new(MockCeilingRepository)
	repo.On("FindActiveByProductCode", ctx, mock.Anything).Return(nil, shared.ErrNotFound)
	repo.On("Create", ctx, mock.AnythingOfType("*pricing.Ceiling")).Return(nil)

	service, store := newImportService(repo)
	defer store.Stop()

	csv := ceilingCSVHeader + "RICE-5KG,Rice 5kg,staples,120.50,bag,\n"

	result, err := service.Import(ctx, ImportCeilingsInput{
		UserID:   userID,
		FileName: "ceilings.csv",
		FileSize: int64(len(csv)),
		Reader:   strings.NewReader(csv),
	})
	require.NoError(t, err)

	t.Run("GetSession returns completed session", func(t *testing.T) {
		session, err := service.GetSession(ctx, result.SessionID)
		require.NoError(t, err)
		assert.Equal(t, csvimport.StateCompleted, session.State)
		assert.Equal(t, "ceilings.csv", session.FileName)
		assert.Equal(t, userID, session.UserID)
	})

	t.Run("GetSession unknown ID", func(t *testing.T) {
		_, err := service.GetSession(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("ListSessions returns own sessions only", func(t *testing.T) {
		sessions, err := service.ListSessions(ctx, userID, 10)
		require.NoError(t, err)
		require.Len(t, sessions, 1)

		other, err := service.ListSessions(ctx, uuid.New(), 10)
		require.NoError(t, err)
		assert.Empty(t, other)
	})
}

func createTestCeiling(t *testing.T, productCode, price string) *pricing.Ceiling {
	t.Helper()
	p, err := decimal.NewFromString(price)
	require.NoError(t, err)
	ceiling, err := pricing.NewCeiling(productCode, "Test "+productCode, "staples", p, "kg", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	return ceiling
}
