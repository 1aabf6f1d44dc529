package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opas/backend/internal/domain/alert"
	"github.com/opas/backend/internal/domain/audit"
	"github.com/opas/backend/internal/domain/shared"
	"github.com/opas/backend/internal/infrastructure/persistence"
)

func TestAlertRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormAlertRepository(testDB.DB)
	ctx := context.Background()

	newAlert := func(t *testing.T, category alert.Category, referenceID *uuid.UUID) *alert.Alert {
		t.Helper()
		a, err := alert.NewAlert(category, alert.SeverityWarning,
			"Test alert", "Something needs attention", referenceID)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, a))
		return a
	}

	t.Run("Create and FindByID", func(t *testing.T) {
		refID := uuid.New()
		a := newAlert(t, alert.CategoryPriceViolation, &refID)

		found, err := repo.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, alert.CategoryPriceViolation, found.Category)
		assert.Equal(t, alert.StatusActive, found.Status)
		require.NotNil(t, found.ReferenceID)
		assert.Equal(t, refID, *found.ReferenceID)
	})

	t.Run("FindActiveByReference deduplicates per source", func(t *testing.T) {
		refID := uuid.New()
		a := newAlert(t, alert.CategoryLowStock, &refID)

		found, err := repo.FindActiveByReference(ctx, alert.CategoryLowStock, refID)
		require.NoError(t, err)
		assert.Equal(t, a.ID, found.ID)

		// Resolved alerts no longer block a new one for the same source
		require.NoError(t, a.Acknowledge(uuid.New()))
		require.NoError(t, a.Resolve(uuid.New()))
		require.NoError(t, repo.Update(ctx, a))

		_, err = repo.FindActiveByReference(ctx, alert.CategoryLowStock, refID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("Update acknowledge round trip", func(t *testing.T) {
		refID := uuid.New()
		a := newAlert(t, alert.CategoryRegistration, &refID)
		adminID := uuid.New()

		require.NoError(t, a.Acknowledge(adminID))
		require.NoError(t, repo.Update(ctx, a))

		found, err := repo.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, alert.StatusAcknowledged, found.Status)
		require.NotNil(t, found.AcknowledgedBy)
		assert.Equal(t, adminID, *found.AcknowledgedBy)
		assert.NotNil(t, found.AcknowledgedAt)
	})

	t.Run("FindAll filters by category and status", func(t *testing.T) {
		refID := uuid.New()
		newAlert(t, alert.CategorySystem, &refID)

		filter := alert.NewFilter().
			WithCategory(alert.CategorySystem).
			WithStatus(alert.StatusActive)

		alerts, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Greater(t, total, int64(0))
		for _, a := range alerts {
			assert.Equal(t, alert.CategorySystem, a.Category)
			assert.Equal(t, alert.StatusActive, a.Status)
		}
	})

	t.Run("CountActive", func(t *testing.T) {
		count, err := repo.CountActive(ctx)
		require.NoError(t, err)
		assert.Greater(t, count, int64(0))
	})
}

func TestAuditRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormAuditRepository(testDB.DB)
	ctx := context.Background()

	adminID := uuid.New()

	newEntry := func(t *testing.T, action, objectType string) *audit.Entry {
		t.Helper()
		objectID := uuid.New()
		entry, err := audit.NewEntry(adminID, "admin1", action, objectType,
			&objectID, map[string]interface{}{"field": "value"}, "req-123")
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, entry))
		return entry
	}

	t.Run("Append and FindByID", func(t *testing.T) {
		entry := newEntry(t, "approve_registration", "SellerRegistrationRequest")

		found, err := repo.FindByID(ctx, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, "approve_registration", found.Action)
		assert.Equal(t, "SellerRegistrationRequest", found.ObjectType)
		assert.Equal(t, "admin1", found.AdminUsername)
		assert.Equal(t, "req-123", found.RequestID)
		assert.Equal(t, "value", found.Detail["field"])
	})

	t.Run("FindAll filters by admin and action", func(t *testing.T) {
		newEntry(t, "resolve_alert", "Alert")
		newEntry(t, "resolve_alert", "Alert")
		newEntry(t, "create_ceiling", "PriceCeiling")

		filter := audit.NewFilter()
		filter.AdminID = &adminID
		filter.Action = "resolve_alert"

		entries, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		for _, e := range entries {
			assert.Equal(t, adminID, e.AdminID)
			assert.Equal(t, "resolve_alert", e.Action)
		}
	})

	t.Run("FindAll filters by time range", func(t *testing.T) {
		newEntry(t, "old_check", "Alert")

		filter := audit.NewFilter()
		future := time.Now().Add(time.Hour)
		filter.From = &future

		_, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("Count matches FindAll total", func(t *testing.T) {
		filter := audit.NewFilter()
		filter.ObjectType = "Alert"

		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)

		_, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, total, count)
	})
}
