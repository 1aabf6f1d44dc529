package opas

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestItem(t *testing.T) *InventoryItem {
	t.Helper()
	item, err := NewInventoryItem("RICE-5KG", "Rice 5kg", "bag")
	require.NoError(t, err)
	return item
}

func TestNewInventoryItem(t *testing.T) {
	item := newTestItem(t)

	assert.True(t, item.Quantity.IsZero())
	assert.True(t, item.AverageCost.IsZero())
	assert.False(t, item.IsLowStock())

	_, err := NewInventoryItem("", "Rice 5kg", "bag")
	assert.Error(t, err)
}

func TestInventoryItem_Receive(t *testing.T) {
	t.Run("first receive sets average cost", func(t *testing.T) {
		item := newTestItem(t)

		require.NoError(t, item.Receive(decimal.NewFromInt(100), decimal.NewFromInt(240)))

		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(100)))
		assert.True(t, item.AverageCost.Equal(decimal.NewFromInt(240)))
	})

	t.Run("subsequent receives compute weighted average", func(t *testing.T) {
		item := newTestItem(t)

		require.NoError(t, item.Receive(decimal.NewFromInt(100), decimal.NewFromInt(200)))
		require.NoError(t, item.Receive(decimal.NewFromInt(100), decimal.NewFromInt(300)))

		// (100*200 + 100*300) / 200 = 250
		assert.True(t, item.AverageCost.Equal(decimal.NewFromInt(250)), "got %s", item.AverageCost)
		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(200)))
		assert.True(t, item.StockValue().Equal(decimal.NewFromInt(50000)))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		item := newTestItem(t)
		assert.Error(t, item.Receive(decimal.Zero, decimal.NewFromInt(200)))
	})
}

func TestInventoryItem_Release(t *testing.T) {
	t.Run("reduces quantity", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(decimal.NewFromInt(100), decimal.NewFromInt(200)))

		require.NoError(t, item.Release(decimal.NewFromInt(40)))
		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(60)))
	})

	t.Run("release beyond on-hand fails", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(decimal.NewFromInt(10), decimal.NewFromInt(200)))

		err := item.Release(decimal.NewFromInt(11))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Insufficient stock")
		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(10)))
	})
}

func TestInventoryItem_Adjust(t *testing.T) {
	item := newTestItem(t)
	require.NoError(t, item.Receive(decimal.NewFromInt(50), decimal.NewFromInt(200)))

	t.Run("requires reason", func(t *testing.T) {
		assert.Error(t, item.Adjust(decimal.NewFromInt(-5), ""))
	})

	t.Run("applies delta", func(t *testing.T) {
		require.NoError(t, item.Adjust(decimal.NewFromInt(-5), "Damaged stock"))
		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(45)))
	})

	t.Run("cannot go negative", func(t *testing.T) {
		assert.Error(t, item.Adjust(decimal.NewFromInt(-100), "Writeoff"))
	})

	t.Run("zero delta rejected", func(t *testing.T) {
		assert.Error(t, item.Adjust(decimal.Zero, "noop"))
	})
}

func TestInventoryItem_LowStock(t *testing.T) {
	t.Run("emits event when crossing below minimum", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.SetThresholds(decimal.NewFromInt(20), decimal.NewFromInt(500)))
		require.NoError(t, item.Receive(decimal.NewFromInt(100), decimal.NewFromInt(200)))
		item.ClearDomainEvents()

		require.NoError(t, item.Release(decimal.NewFromInt(90)))

		events := item.GetDomainEvents()
		require.Len(t, events, 1)
		evt, ok := events[0].(*LowStockDetectedEvent)
		require.True(t, ok)
		assert.Equal(t, "RICE-5KG", evt.ProductCode)
		assert.True(t, item.IsLowStock())
	})

	t.Run("no duplicate event while already below minimum", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.SetThresholds(decimal.NewFromInt(20), decimal.NewFromInt(500)))
		require.NoError(t, item.Receive(decimal.NewFromInt(100), decimal.NewFromInt(200)))
		item.ClearDomainEvents()

		require.NoError(t, item.Release(decimal.NewFromInt(90)))
		require.NoError(t, item.Release(decimal.NewFromInt(5)))

		assert.Len(t, item.GetDomainEvents(), 1)
	})

	t.Run("no repeat event when receiving while still below minimum", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.SetThresholds(decimal.NewFromInt(20), decimal.NewFromInt(500)))
		require.NoError(t, item.Receive(decimal.NewFromInt(100), decimal.NewFromInt(200)))
		item.ClearDomainEvents()

		require.NoError(t, item.Release(decimal.NewFromInt(95)))
		require.Len(t, item.GetDomainEvents(), 1)

		// 5 + 5 = 10 on hand, still below the minimum of 20
		require.NoError(t, item.Receive(decimal.NewFromInt(5), decimal.NewFromInt(210)))

		assert.Len(t, item.GetDomainEvents(), 1)
		assert.True(t, item.IsLowStock())
	})

	t.Run("no event without a minimum threshold", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(decimal.NewFromInt(100), decimal.NewFromInt(200)))
		item.ClearDomainEvents()

		require.NoError(t, item.Release(decimal.NewFromInt(99)))
		assert.Empty(t, item.GetDomainEvents())
	})
}

func TestInventoryItem_SetThresholds(t *testing.T) {
	item := newTestItem(t)

	assert.Error(t, item.SetThresholds(decimal.NewFromInt(-1), decimal.NewFromInt(10)))
	assert.Error(t, item.SetThresholds(decimal.NewFromInt(50), decimal.NewFromInt(10)))
	require.NoError(t, item.SetThresholds(decimal.NewFromInt(10), decimal.NewFromInt(500)))
}
