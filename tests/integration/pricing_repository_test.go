package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opas/backend/internal/domain/pricing"
	"github.com/opas/backend/internal/domain/shared"
	"github.com/opas/backend/internal/infrastructure/persistence"
)

func newTestCeiling(t *testing.T, productCode string, price float64) *pricing.Ceiling {
	t.Helper()

	ceiling, err := pricing.NewCeiling(
		productCode,
		"Test "+productCode,
		"staples",
		decimal.NewFromFloat(price),
		"kg",
		time.Now().Add(-time.Hour),
	)
	require.NoError(t, err)
	return ceiling
}

func TestCeilingRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormCeilingRepository(testDB.DB)
	ctx := context.Background()

	t.Run("Create and FindByID", func(t *testing.T) {
		ceiling := newTestCeiling(t, "RICE-5KG", 120.50)

		err := repo.Create(ctx, ceiling)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, ceiling.ID)
		require.NoError(t, err)
		assert.Equal(t, "RICE-5KG", found.ProductCode)
		assert.True(t, found.CeilingPrice.Equal(decimal.NewFromFloat(120.50)))
		assert.True(t, found.Active)
	})

	t.Run("FindActiveByProductCode", func(t *testing.T) {
		ceiling := newTestCeiling(t, "OIL-1L", 45.00)
		require.NoError(t, repo.Create(ctx, ceiling))

		found, err := repo.FindActiveByProductCode(ctx, "OIL-1L")
		require.NoError(t, err)
		assert.Equal(t, ceiling.ID, found.ID)

		// Deactivated ceilings are excluded
		require.NoError(t, ceiling.Deactivate())
		require.NoError(t, repo.Update(ctx, ceiling))

		_, err = repo.FindActiveByProductCode(ctx, "OIL-1L")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("FindAllActive", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, newTestCeiling(t, "FLOUR-2KG", 30.00)))
		require.NoError(t, repo.Create(ctx, newTestCeiling(t, "SUGAR-1KG", 18.00)))

		active, err := repo.FindAllActive(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(active), 2)
		for _, c := range active {
			assert.True(t, c.Active)
		}
	})

	t.Run("FindAll with category filter", func(t *testing.T) {
		filter := pricing.NewCeilingFilter()
		filter.Category = "staples"

		ceilings, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Greater(t, total, int64(0))
		for _, c := range ceilings {
			assert.Equal(t, "staples", c.Category)
		}
	})

	t.Run("Update price revision", func(t *testing.T) {
		ceiling := newTestCeiling(t, "BEANS-1KG", 25.00)
		require.NoError(t, repo.Create(ctx, ceiling))

		require.NoError(t, ceiling.UpdatePrice(decimal.NewFromFloat(27.50)))
		require.NoError(t, repo.Update(ctx, ceiling))

		found, err := repo.FindByID(ctx, ceiling.ID)
		require.NoError(t, err)
		assert.True(t, found.CeilingPrice.Equal(decimal.NewFromFloat(27.50)))
	})
}

func TestListingRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormListingRepository(testDB.DB)
	ceilingRepo := persistence.NewGormCeilingRepository(testDB.DB)
	ctx := context.Background()

	sellerID := uuid.New()
	testDB.CreateTestSellerProfile(sellerID, "SL-2026-0100", "Listing Seller")

	newListing := func(t *testing.T, productCode string, price float64) *pricing.Listing {
		t.Helper()
		listing, err := pricing.NewListing(
			sellerID,
			productCode,
			"Test "+productCode,
			decimal.NewFromFloat(price),
			decimal.NewFromInt(100),
			"kg",
		)
		require.NoError(t, err)
		return listing
	}

	t.Run("Create and FindBySellerAndProduct", func(t *testing.T) {
		listing := newListing(t, "RICE-5KG", 118.00)
		require.NoError(t, repo.Create(ctx, listing))

		found, err := repo.FindBySellerAndProduct(ctx, sellerID, "RICE-5KG")
		require.NoError(t, err)
		assert.Equal(t, listing.ID, found.ID)
		assert.True(t, found.ListedPrice.Equal(decimal.NewFromFloat(118.00)))

		_, err = repo.FindBySellerAndProduct(ctx, uuid.New(), "RICE-5KG")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("FindActiveByProductCodes", func(t *testing.T) {
		active := newListing(t, "OIL-1L", 44.00)
		require.NoError(t, repo.Create(ctx, active))

		inactive := newListing(t, "FLOUR-2KG", 29.00)
		require.NoError(t, repo.Create(ctx, inactive))
		require.NoError(t, inactive.Deactivate())
		require.NoError(t, repo.Update(ctx, inactive))

		listings, err := repo.FindActiveByProductCodes(ctx, []string{"OIL-1L", "FLOUR-2KG"})
		require.NoError(t, err)
		require.Len(t, listings, 1)
		assert.Equal(t, "OIL-1L", listings[0].ProductCode)
	})

	t.Run("CountActiveUnderCeiling", func(t *testing.T) {
		require.NoError(t, ceilingRepo.Create(ctx, newTestCeiling(t, "SUGAR-1KG", 18.00)))

		compliantListing := newListing(t, "SUGAR-1KG", 17.00)
		require.NoError(t, repo.Create(ctx, compliantListing))

		overListing, err := pricing.NewListing(
			uuid.New(), "SUGAR-1KG", "Sugar 1kg",
			decimal.NewFromFloat(21.00), decimal.NewFromInt(50), "kg",
		)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, overListing))

		total, compliant, err := repo.CountActiveUnderCeiling(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, total, int64(2))
		assert.GreaterOrEqual(t, compliant, int64(1))
		assert.Less(t, compliant, total)
	})

	t.Run("FindAll filters by seller", func(t *testing.T) {
		filter := pricing.NewListingFilter()
		filter.SellerID = &sellerID

		listings, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Greater(t, total, int64(0))
		for _, l := range listings {
			assert.Equal(t, sellerID, l.SellerID)
		}
	})
}

func TestNonComplianceRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormNonComplianceRepository(testDB.DB)
	listingRepo := persistence.NewGormListingRepository(testDB.DB)
	ceilingRepo := persistence.NewGormCeilingRepository(testDB.DB)
	ctx := context.Background()

	sellerID := uuid.New()
	testDB.CreateTestSellerProfile(sellerID, "SL-2026-0200", "Violating Seller")

	newRecord := func(t *testing.T, productCode string, listed, ceilingPrice float64) *pricing.NonComplianceRecord {
		t.Helper()

		ceiling := newTestCeiling(t, productCode, ceilingPrice)
		require.NoError(t, ceilingRepo.Create(ctx, ceiling))

		listing, err := pricing.NewListing(
			sellerID, productCode, "Test "+productCode,
			decimal.NewFromFloat(listed), decimal.NewFromInt(10), "kg",
		)
		require.NoError(t, err)
		require.NoError(t, listingRepo.Create(ctx, listing))

		record, err := pricing.NewNonComplianceRecord(listing, ceiling)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, record))
		return record
	}

	t.Run("Create and FindByID", func(t *testing.T) {
		record := newRecord(t, "RICE-5KG", 150.00, 120.00)

		found, err := repo.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, pricing.NonComplianceStatusOpen, found.Status)
		assert.Equal(t, "RICE-5KG", found.ProductCode)
		assert.True(t, found.ExcessPercent.GreaterThan(decimal.Zero))
	})

	t.Run("FindOpenByListing", func(t *testing.T) {
		record := newRecord(t, "OIL-1L", 60.00, 45.00)

		found, err := repo.FindOpenByListing(ctx, record.ListingID)
		require.NoError(t, err)
		assert.Equal(t, record.ID, found.ID)

		// Closed records are not returned
		require.NoError(t, record.Resolve(uuid.New(), "Seller lowered price"))
		require.NoError(t, repo.Update(ctx, record))

		_, err = repo.FindOpenByListing(ctx, record.ListingID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("Update waive decision", func(t *testing.T) {
		record := newRecord(t, "FLOUR-2KG", 40.00, 30.00)
		adminID := uuid.New()

		require.NoError(t, record.Waive(adminID, "Promotional bundle, not a base price"))
		require.NoError(t, repo.Update(ctx, record))

		found, err := repo.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, pricing.NonComplianceStatusWaived, found.Status)
		require.NotNil(t, found.ResolvedBy)
		assert.Equal(t, adminID, *found.ResolvedBy)
		assert.Equal(t, "Promotional bundle, not a base price", found.ResolutionNote)
	})

	t.Run("FindAll filters by status", func(t *testing.T) {
		newRecord(t, "SUGAR-1KG", 25.00, 18.00)

		filter := pricing.NewNonComplianceFilter()
		open := pricing.NonComplianceStatusOpen
		filter.Status = &open

		records, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Greater(t, total, int64(0))
		for _, r := range records {
			assert.Equal(t, pricing.NonComplianceStatusOpen, r.Status)
		}
	})

	t.Run("CountByStatus", func(t *testing.T) {
		count, err := repo.CountByStatus(ctx, pricing.NonComplianceStatusOpen)
		require.NoError(t, err)
		assert.Greater(t, count, int64(0))
	})
}
