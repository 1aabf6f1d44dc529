package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opas/backend/internal/domain/opas"
	"github.com/opas/backend/internal/domain/shared"
	"github.com/opas/backend/internal/infrastructure/persistence"
)

func TestPurchaseRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormPurchaseRepository(testDB.DB)
	ctx := context.Background()

	sellerID := uuid.New()
	testDB.CreateTestSellerProfile(sellerID, "SL-2026-0300", "Purchase Seller")

	seq := 0
	newPurchase := func(t *testing.T) *opas.Purchase {
		t.Helper()
		seq++
		number := fmt.Sprintf("OP-%s-%04d", time.Now().Format("20060102"), seq)
		purchase, err := opas.NewPurchase(number, sellerID)
		require.NoError(t, err)
		_, err = purchase.AddItem("RICE-5KG", "Rice 5kg", "bag",
			decimal.NewFromInt(10), decimal.NewFromFloat(115.00))
		require.NoError(t, err)
		return purchase
	}

	t.Run("Create and FindByID with items", func(t *testing.T) {
		purchase := newPurchase(t)
		_, err := purchase.AddItem("OIL-1L", "Cooking Oil 1L", "bottle",
			decimal.NewFromInt(24), decimal.NewFromFloat(42.00))
		require.NoError(t, err)

		require.NoError(t, repo.Create(ctx, purchase))

		found, err := repo.FindByID(ctx, purchase.ID)
		require.NoError(t, err)
		assert.Equal(t, purchase.PurchaseNumber, found.PurchaseNumber)
		assert.Equal(t, opas.PurchaseStatusDraft, found.Status)
		require.Len(t, found.Items, 2)
		assert.True(t, found.TotalAmount.Equal(purchase.TotalAmount))
	})

	t.Run("FindByNumber", func(t *testing.T) {
		purchase := newPurchase(t)
		require.NoError(t, repo.Create(ctx, purchase))

		found, err := repo.FindByNumber(ctx, purchase.PurchaseNumber)
		require.NoError(t, err)
		assert.Equal(t, purchase.ID, found.ID)

		_, err = repo.FindByNumber(ctx, "OP-19700101-0000")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("Update status transitions", func(t *testing.T) {
		purchase := newPurchase(t)
		require.NoError(t, repo.Create(ctx, purchase))

		require.NoError(t, purchase.Confirm())
		require.NoError(t, repo.Update(ctx, purchase))

		require.NoError(t, purchase.Receive())
		require.NoError(t, repo.Update(ctx, purchase))

		found, err := repo.FindByID(ctx, purchase.ID)
		require.NoError(t, err)
		assert.Equal(t, opas.PurchaseStatusReceived, found.Status)
		assert.NotNil(t, found.ConfirmedAt)
		assert.NotNil(t, found.ReceivedAt)
	})

	t.Run("Update replaces modified items", func(t *testing.T) {
		purchase := newPurchase(t)
		require.NoError(t, repo.Create(ctx, purchase))

		item := purchase.Items[0]
		require.NoError(t, purchase.UpdateItem(item.ID,
			decimal.NewFromInt(20), decimal.NewFromFloat(110.00)))
		require.NoError(t, repo.Update(ctx, purchase))

		found, err := repo.FindByID(ctx, purchase.ID)
		require.NoError(t, err)
		require.Len(t, found.Items, 1)
		assert.True(t, found.Items[0].Quantity.Equal(decimal.NewFromInt(20)))
		assert.True(t, found.TotalAmount.Equal(decimal.NewFromFloat(2200.00)))
	})

	t.Run("Delete draft", func(t *testing.T) {
		purchase := newPurchase(t)
		require.NoError(t, repo.Create(ctx, purchase))

		require.NoError(t, repo.Delete(ctx, purchase.ID))

		_, err := repo.FindByID(ctx, purchase.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("NextDailySeq advances after allocation", func(t *testing.T) {
		day := time.Now()

		first, err := repo.NextDailySeq(ctx, day)
		require.NoError(t, err)

		numbered, err := opas.NewPurchase(opas.FormatPurchaseNumber(day, first), sellerID)
		require.NoError(t, err)
		_, err = numbered.AddItem("RICE-5KG", "Rice 5kg", "bag",
			decimal.NewFromInt(1), decimal.NewFromFloat(115.00))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, numbered))

		second, err := repo.NextDailySeq(ctx, day)
		require.NoError(t, err)
		assert.Equal(t, first+1, second)
	})

	t.Run("CountByStatus and TotalAmountSince", func(t *testing.T) {
		count, err := repo.CountByStatus(ctx, opas.PurchaseStatusDraft)
		require.NoError(t, err)
		assert.Greater(t, count, int64(0))

		// Cancelled purchases are excluded from the total
		cancelled := newPurchase(t)
		require.NoError(t, repo.Create(ctx, cancelled))
		require.NoError(t, cancelled.Cancel())
		require.NoError(t, repo.Update(ctx, cancelled))

		total, err := repo.TotalAmountSince(ctx, time.Now().Add(-24*time.Hour))
		require.NoError(t, err)
		assert.True(t, total.GreaterThan(decimal.Zero))
	})

	t.Run("FindAll filters by seller and status", func(t *testing.T) {
		filter := opas.NewPurchaseFilter().WithStatus(opas.PurchaseStatusDraft)
		filter.SellerID = &sellerID

		purchases, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Greater(t, total, int64(0))
		for _, p := range purchases {
			assert.Equal(t, sellerID, p.SellerID)
			assert.Equal(t, opas.PurchaseStatusDraft, p.Status)
		}
	})
}

func TestInventoryRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormInventoryRepository(testDB.DB)
	ctx := context.Background()

	t.Run("Create and FindByProductCode", func(t *testing.T) {
		item, err := opas.NewInventoryItem("RICE-5KG", "Rice 5kg", "bag")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, item))

		found, err := repo.FindByProductCode(ctx, "RICE-5KG")
		require.NoError(t, err)
		assert.Equal(t, item.ID, found.ID)
		assert.True(t, found.Quantity.IsZero())

		_, err = repo.FindByProductCode(ctx, "UNKNOWN-CODE")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("Update receipt moves quantity and average cost", func(t *testing.T) {
		item, err := opas.NewInventoryItem("OIL-1L", "Cooking Oil 1L", "bottle")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, item))

		require.NoError(t, item.Receive(decimal.NewFromInt(100), decimal.NewFromFloat(40.00)))
		require.NoError(t, repo.Update(ctx, item))

		found, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, found.Quantity.Equal(decimal.NewFromInt(100)))
		assert.True(t, found.AverageCost.Equal(decimal.NewFromFloat(40.00)))
	})

	t.Run("FindLowStock and CountLowStock", func(t *testing.T) {
		low := uuid.New()
		testDB.CreateTestInventoryItem(low, "FLOUR-2KG", 5, 20)

		healthy := uuid.New()
		testDB.CreateTestInventoryItem(healthy, "SUGAR-1KG", 200, 20)

		// Zero threshold means the item is never low
		untracked := uuid.New()
		testDB.CreateTestInventoryItem(untracked, "BEANS-1KG", 0, 0)

		items, err := repo.FindLowStock(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "FLOUR-2KG", items[0].ProductCode)

		count, err := repo.CountLowStock(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("FindAll with LowOnly filter", func(t *testing.T) {
		filter := opas.NewInventoryFilter()
		filter.LowOnly = true

		items, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		for _, i := range items {
			assert.True(t, i.IsLowStock())
		}
	})
}
