package telemetry_test

import (
	"context"
	"runtime/pprof"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opas/backend/internal/infrastructure/telemetry"
)

// appliedLabel reads a pprof label from the context fn received; both
// tagging helpers install labels through the pprof machinery.
func appliedLabel(ctx context.Context, key string) (string, bool) {
	return pprof.Label(ctx, key)
}

func TestWithProfilingLabels(t *testing.T) {
	ctx := context.Background()

	t.Run("nil and empty maps still invoke fn", func(t *testing.T) {
		for _, labels := range []map[string]string{nil, {}} {
			called := false
			telemetry.WithProfilingLabels(ctx, labels, func(c context.Context) {
				called = true
			})
			assert.True(t, called)
		}
	})

	t.Run("labels visible inside fn", func(t *testing.T) {
		labels := map[string]string{
			"controller": "ListingHandler",
			"method":     "GET",
			"route":      "/api/v1/listings",
		}

		telemetry.WithProfilingLabels(ctx, labels, func(c context.Context) {
			got, ok := appliedLabel(c, "controller")
			require.True(t, ok)
			assert.Equal(t, "ListingHandler", got)
		})
	})

	t.Run("high-cardinality keys dropped", func(t *testing.T) {
		labels := map[string]string{
			"controller": "ListingHandler",
			"user_id":    "admin-42",
			"request_id": "req-seller-listing",
			"order_id":   "PO-2026-0042",
		}

		telemetry.WithProfilingLabels(ctx, labels, func(c context.Context) {
			_, ok := appliedLabel(c, "user_id")
			assert.False(t, ok)
			_, ok = appliedLabel(c, "request_id")
			assert.False(t, ok)

			got, ok := appliedLabel(c, "controller")
			require.True(t, ok)
			assert.Equal(t, "ListingHandler", got)
		})
	})

	t.Run("overlong values truncated", func(t *testing.T) {
		labels := map[string]string{
			"controller": strings.Repeat("x", 200),
		}

		telemetry.WithProfilingLabels(ctx, labels, func(c context.Context) {
			got, ok := appliedLabel(c, "controller")
			require.True(t, ok)
			assert.Len(t, got, telemetry.MaxLabelValueLength)
		})
	})

	t.Run("empty keys and values dropped", func(t *testing.T) {
		labels := map[string]string{
			"controller": "ListingHandler",
			"method":     "",
			"":           "value",
		}

		telemetry.WithProfilingLabels(ctx, labels, func(c context.Context) {
			_, ok := appliedLabel(c, "method")
			assert.False(t, ok)
		})
	})
}

func TestWithPprofLabels(t *testing.T) {
	ctx := context.Background()

	t.Run("labels visible inside fn", func(t *testing.T) {
		labels := map[string]string{
			"controller": "ListingHandler",
			"method":     "POST",
		}

		telemetry.WithPprofLabels(ctx, labels, func(c context.Context) {
			got, ok := appliedLabel(c, "method")
			require.True(t, ok)
			assert.Equal(t, "POST", got)
		})
	})

	t.Run("nil labels still invoke fn", func(t *testing.T) {
		called := false
		telemetry.WithPprofLabels(ctx, nil, func(c context.Context) {
			called = true
		})
		assert.True(t, called)
	})
}

func TestLabelKeyNormalization(t *testing.T) {
	cases := []struct {
		name    string
		rawKey  string
		wantKey string
	}{
		{"spaces become underscores", "my key", "my_key"},
		{"dashes become underscores", "my-key", "my_key"},
		{"uppercase lowered", "MyKey", "mykey"},
		{"mixed case with spaces", "My Custom Key", "my_custom_key"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			labels := map[string]string{tc.rawKey: "value"}

			telemetry.WithProfilingLabels(context.Background(), labels, func(c context.Context) {
				got, ok := appliedLabel(c, tc.wantKey)
				require.True(t, ok, "normalized key %q not applied", tc.wantKey)
				assert.Equal(t, "value", got)
			})
		})
	}
}

func TestProfilingScope(t *testing.T) {
	t.Run("fluent builders cover every standard label", func(t *testing.T) {
		scope := telemetry.NewProfilingScope(nil).
			WithController("ListingHandler").
			WithRoute("/api/v1/listings").
			WithMethod("GET").
			WithAdminRole("operator").
			WithOperation("ListListings").
			WithRegion("db_query")

		labels := scope.Labels()
		assert.Equal(t, "ListingHandler", labels[telemetry.ProfilingLabelController])
		assert.Equal(t, "/api/v1/listings", labels[telemetry.ProfilingLabelRoute])
		assert.Equal(t, "GET", labels[telemetry.ProfilingLabelMethod])
		assert.Equal(t, "operator", labels[telemetry.ProfilingLabelAdminRole])
		assert.Equal(t, "ListListings", labels[telemetry.ProfilingLabelOperation])
		assert.Equal(t, "db_query", labels[telemetry.ProfilingLabelRegion])
	})

	t.Run("initial labels are copied", func(t *testing.T) {
		initial := map[string]string{
			"controller": "CeilingHandler",
		}
		scope := telemetry.NewProfilingScope(initial)

		initial["controller"] = "Mutated"
		assert.Equal(t, "CeilingHandler", scope.Labels()["controller"])
	})

	t.Run("later builder calls overwrite", func(t *testing.T) {
		scope := telemetry.NewProfilingScope(map[string]string{
			"controller": "CeilingHandler",
		}).WithController("SellerHandler")

		assert.Equal(t, "SellerHandler", scope.Labels()["controller"])
	})

	t.Run("Labels returns a copy", func(t *testing.T) {
		scope := telemetry.NewProfilingScope(nil).WithController("ListingHandler")

		first := scope.Labels()
		first["controller"] = "Mutated"

		assert.Equal(t, "ListingHandler", scope.Labels()["controller"])
	})

	t.Run("arbitrary keys through WithLabel", func(t *testing.T) {
		scope := telemetry.NewProfilingScope(nil).WithLabel("import_kind", "price_ceilings")
		assert.Equal(t, "price_ceilings", scope.Labels()["import_kind"])
	})

	t.Run("Run applies the accumulated labels", func(t *testing.T) {
		scope := telemetry.NewProfilingScope(nil).
			WithController("ImportHandler").
			WithMethod("POST")

		scope.Run(context.Background(), func(c context.Context) {
			got, ok := appliedLabel(c, "controller")
			require.True(t, ok)
			assert.Equal(t, "ImportHandler", got)
		})
	})
}

func TestHTTPRequestLabels(t *testing.T) {
	cases := []struct {
		name       string
		controller string
		route      string
		method     string
		role       string
		wantLen    int
	}{
		{"all fields", "ListingHandler", "/api/v1/listings", "GET", "operator", 4},
		{"empty role omitted", "ListingHandler", "/api/v1/listings", "GET", "", 3},
		{"controller only", "ListingHandler", "", "", "", 1},
		{"all empty", "", "", "", "", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			labels := telemetry.HTTPRequestLabels(tc.controller, tc.route, tc.method, tc.role)
			assert.Len(t, labels, tc.wantLen)

			if tc.controller != "" {
				assert.Equal(t, tc.controller, labels[telemetry.ProfilingLabelController])
			}
			if tc.role != "" {
				assert.Equal(t, tc.role, labels[telemetry.ProfilingLabelAdminRole])
			}
		})
	}
}

func TestOperationLabels(t *testing.T) {
	t.Run("operation only", func(t *testing.T) {
		labels := telemetry.OperationLabels("ImportCeilings", nil)
		assert.Equal(t, "ImportCeilings", labels[telemetry.ProfilingLabelOperation])
		assert.Len(t, labels, 1)
	})

	t.Run("extra labels merged", func(t *testing.T) {
		labels := telemetry.OperationLabels("ImportCeilings", map[string]string{
			"controller": "CeilingHandler",
			"method":     "POST",
		})

		assert.Equal(t, "ImportCeilings", labels[telemetry.ProfilingLabelOperation])
		assert.Equal(t, "CeilingHandler", labels["controller"])
		assert.Len(t, labels, 3)
	})
}

func TestRegionLabels(t *testing.T) {
	t.Run("region only", func(t *testing.T) {
		labels := telemetry.RegionLabels("db_query", nil)
		assert.Equal(t, "db_query", labels[telemetry.ProfilingLabelRegion])
		assert.Len(t, labels, 1)
	})

	t.Run("extra labels merged", func(t *testing.T) {
		labels := telemetry.RegionLabels("db_query", map[string]string{
			"operation": "ListSellers",
			"table":     "seller_profiles",
		})

		assert.Equal(t, "db_query", labels[telemetry.ProfilingLabelRegion])
		assert.Equal(t, "seller_profiles", labels["table"])
		assert.Len(t, labels, 3)
	})
}

func TestProfilingLabelConstants(t *testing.T) {
	assert.Equal(t, "controller", telemetry.ProfilingLabelController)
	assert.Equal(t, "route", telemetry.ProfilingLabelRoute)
	assert.Equal(t, "method", telemetry.ProfilingLabelMethod)
	assert.Equal(t, "admin_role", telemetry.ProfilingLabelAdminRole)
	assert.Equal(t, "operation", telemetry.ProfilingLabelOperation)
	assert.Equal(t, "region", telemetry.ProfilingLabelRegion)
	assert.Equal(t, 128, telemetry.MaxLabelValueLength)

	for _, key := range []string{"user_id", "request_id", "order_id", "trace_id", "span_id", "session_id"} {
		assert.True(t, telemetry.HighCardinalityLabels[key], "key %s", key)
	}
}

func TestNestedProfilingLabels(t *testing.T) {
	outer := map[string]string{"controller": "ListingHandler"}
	inner := map[string]string{"region": "db_query"}

	telemetry.WithProfilingLabels(context.Background(), outer, func(outerCtx context.Context) {
		telemetry.WithProfilingLabels(outerCtx, inner, func(innerCtx context.Context) {
			// Inner scope keeps the outer label and adds its own.
			got, ok := appliedLabel(innerCtx, "controller")
			require.True(t, ok)
			assert.Equal(t, "ListingHandler", got)

			got, ok = appliedLabel(innerCtx, "region")
			require.True(t, ok)
			assert.Equal(t, "db_query", got)
		})
	})
}

func TestProfilingLabels_ContextValuesSurvive(t *testing.T) {
	type contextKey string
	key := contextKey("fixture")
	ctx := context.WithValue(context.Background(), key, "carried")

	telemetry.WithProfilingLabels(ctx, map[string]string{"controller": "ImportHandler"}, func(c context.Context) {
		assert.Equal(t, "carried", c.Value(key))
	})
}

func TestProfilingLabels_Concurrent(t *testing.T) {
	labels := map[string]string{
		"controller": "ImportHandler",
		"operation":  "ValidateRows",
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			telemetry.WithProfilingLabels(context.Background(), labels, func(c context.Context) {})
		}()
	}
	wg.Wait()
}
