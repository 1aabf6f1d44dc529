package pricing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCeiling(t *testing.T, price float64) *Ceiling {
	t.Helper()
	ceiling, err := NewCeiling("RICE-5KG", "Rice 5kg", "staples", decimal.NewFromFloat(price), "bag", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	return ceiling
}

func newTestListing(t *testing.T, price float64) *Listing {
	t.Helper()
	listing, err := NewListing(uuid.New(), "RICE-5KG", "Rice 5kg", decimal.NewFromFloat(price), decimal.NewFromInt(50), "bag")
	require.NoError(t, err)
	return listing
}

func TestNewCeiling(t *testing.T) {
	t.Run("creates active ceiling", func(t *testing.T) {
		ceiling := newTestCeiling(t, 250)

		assert.True(t, ceiling.Active)
		assert.True(t, ceiling.CeilingPrice.Equal(decimal.NewFromInt(250)))
		assert.True(t, ceiling.IsEffectiveAt(time.Now()))
	})

	t.Run("fails with non-positive price", func(t *testing.T) {
		_, err := NewCeiling("RICE-5KG", "Rice 5kg", "staples", decimal.Zero, "bag", time.Now())

		assert.Error(t, err)
	})
}

func TestCeiling_IsEffectiveAt(t *testing.T) {
	ceiling := newTestCeiling(t, 250)

	t.Run("inactive ceiling is never effective", func(t *testing.T) {
		require.NoError(t, ceiling.Deactivate())
		assert.False(t, ceiling.IsEffectiveAt(time.Now()))
		require.NoError(t, ceiling.Reactivate())
	})

	t.Run("respects effective window", func(t *testing.T) {
		from := time.Now().Add(-24 * time.Hour)
		until := time.Now().Add(-time.Hour)
		require.NoError(t, ceiling.SetEffectiveWindow(from, &until))

		assert.False(t, ceiling.IsEffectiveAt(time.Now()))
		assert.True(t, ceiling.IsEffectiveAt(time.Now().Add(-2*time.Hour)))
	})

	t.Run("rejects inverted window", func(t *testing.T) {
		from := time.Now()
		until := from.Add(-time.Hour)
		assert.Error(t, ceiling.SetEffectiveWindow(from, &until))
	})
}

func TestListing_ExceedsCeiling(t *testing.T) {
	ceiling := newTestCeiling(t, 250)

	assert.False(t, newTestListing(t, 250).ExceedsCeiling(ceiling))
	assert.False(t, newTestListing(t, 200).ExceedsCeiling(ceiling))
	assert.True(t, newTestListing(t, 250.01).ExceedsCeiling(ceiling))
}

func TestExcessPercent(t *testing.T) {
	t.Run("computes percentage over ceiling", func(t *testing.T) {
		excess := ExcessPercent(decimal.NewFromInt(300), decimal.NewFromInt(250))

		assert.True(t, excess.Equal(decimal.NewFromInt(20)), "got %s", excess)
	})

	t.Run("rounds to 2 decimal places", func(t *testing.T) {
		excess := ExcessPercent(decimal.NewFromInt(100), decimal.NewFromInt(30))

		assert.Equal(t, "233.33", excess.StringFixed(2))
	})

	t.Run("zero ceiling yields zero", func(t *testing.T) {
		assert.True(t, ExcessPercent(decimal.NewFromInt(100), decimal.Zero).IsZero())
	})
}

func TestNewNonComplianceRecord(t *testing.T) {
	t.Run("opens record for violating listing", func(t *testing.T) {
		ceiling := newTestCeiling(t, 250)
		listing := newTestListing(t, 300)

		record, err := NewNonComplianceRecord(listing, ceiling)

		require.NoError(t, err)
		assert.Equal(t, listing.SellerID, record.SellerID)
		assert.Equal(t, listing.ID, record.ListingID)
		assert.Equal(t, ceiling.ID, record.CeilingID)
		assert.Equal(t, NonComplianceStatusOpen, record.Status)
		assert.True(t, record.ExcessPercent.Equal(decimal.NewFromInt(20)))

		events := record.GetDomainEvents()
		require.Len(t, events, 1)
		evt, ok := events[0].(*NonComplianceRecordedEvent)
		require.True(t, ok)
		assert.Equal(t, record.ID, evt.RecordID)
	})

	t.Run("fails when listing is compliant", func(t *testing.T) {
		ceiling := newTestCeiling(t, 250)
		listing := newTestListing(t, 200)

		_, err := NewNonComplianceRecord(listing, ceiling)

		assert.Error(t, err)
	})
}

func TestNonComplianceRecord_Refresh(t *testing.T) {
	ceiling := newTestCeiling(t, 250)
	listing := newTestListing(t, 300)
	record, err := NewNonComplianceRecord(listing, ceiling)
	require.NoError(t, err)

	require.NoError(t, record.Refresh(decimal.NewFromInt(375), decimal.NewFromInt(250)))
	assert.True(t, record.ExcessPercent.Equal(decimal.NewFromInt(50)))

	require.NoError(t, record.Resolve(uuid.New(), "Price corrected"))
	assert.Error(t, record.Refresh(decimal.NewFromInt(400), decimal.NewFromInt(250)))
}

func TestNonComplianceRecord_Close(t *testing.T) {
	adminID := uuid.New()

	t.Run("resolve closes the record", func(t *testing.T) {
		record, err := NewNonComplianceRecord(newTestListing(t, 300), newTestCeiling(t, 250))
		require.NoError(t, err)

		require.NoError(t, record.Resolve(adminID, "Seller lowered price"))
		assert.Equal(t, NonComplianceStatusResolved, record.Status)
		require.NotNil(t, record.ResolvedBy)
		assert.Equal(t, adminID, *record.ResolvedBy)
		assert.False(t, record.IsOpen())
	})

	t.Run("waive requires a note", func(t *testing.T) {
		record, err := NewNonComplianceRecord(newTestListing(t, 300), newTestCeiling(t, 250))
		require.NoError(t, err)

		assert.Error(t, record.Waive(adminID, " "))
		require.NoError(t, record.Waive(adminID, "Promotional exception"))
		assert.Equal(t, NonComplianceStatusWaived, record.Status)
	})

	t.Run("closing twice fails", func(t *testing.T) {
		record, err := NewNonComplianceRecord(newTestListing(t, 300), newTestCeiling(t, 250))
		require.NoError(t, err)

		require.NoError(t, record.Resolve(adminID, "done"))
		assert.Error(t, record.Waive(adminID, "again"))
	})
}
