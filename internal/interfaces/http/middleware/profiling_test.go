package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// profiledRequest serves one request through the profiling middleware
// and returns the pprof labels visible inside the handler.
func profiledRequest(t *testing.T, cfg ProfilingConfig, method, route, path string, pre ...gin.HandlerFunc) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	seen := map[string]string{}
	router := gin.New()
	for _, m := range pre {
		router.Use(m)
	}
	router.Use(ProfilingWithConfig(cfg))
	router.Handle(method, route, func(c *gin.Context) {
		ctx := c.Request.Context()
		for _, key := range []string{"controller", "route", "method", "admin_role"} {
			if value, ok := pprof.Label(ctx, key); ok {
				seen[key] = value
			}
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	return seen
}

func TestDefaultProfilingConfig(t *testing.T) {
	cfg := DefaultProfilingConfig()

	assert.True(t, cfg.Enabled)
	assert.ElementsMatch(t, []string{"/health", "/healthz", "/ready", "/metrics"}, cfg.SkipPaths)
	assert.ElementsMatch(t, []string{"/swagger", "/api-docs"}, cfg.SkipPathPrefixes)
}

func TestProfiling_LabelsApplied(t *testing.T) {
	cfg := DefaultProfilingConfig()

	t.Run("method, route and controller", func(t *testing.T) {
		labels := profiledRequest(t, cfg, http.MethodGet, "/api/v1/listings/:id", "/api/v1/listings/123")

		assert.Equal(t, "GET", labels["method"])
		assert.Equal(t, "/api/v1/listings/:id", labels["route"])
		assert.Equal(t, "listings", labels["controller"])
	})

	t.Run("admin role from JWT claims", func(t *testing.T) {
		claims := func(c *gin.Context) {
			c.Set(JWTRoleKey, "operator")
			c.Next()
		}
		labels := profiledRequest(t, cfg, http.MethodGet, "/api/v1/sellers", "/api/v1/sellers", claims)

		assert.Equal(t, "operator", labels["admin_role"])
	})

	t.Run("missing role claim leaves no label", func(t *testing.T) {
		labels := profiledRequest(t, cfg, http.MethodGet, "/api/v1/sellers", "/api/v1/sellers")

		_, ok := labels["admin_role"]
		assert.False(t, ok)
	})

	t.Run("non-string role claim leaves no label", func(t *testing.T) {
		claims := func(c *gin.Context) {
			c.Set(JWTRoleKey, 12345)
			c.Next()
		}
		labels := profiledRequest(t, cfg, http.MethodGet, "/api/v1/sellers", "/api/v1/sellers", claims)

		_, ok := labels["admin_role"]
		assert.False(t, ok)
	})

	t.Run("disabled middleware applies nothing", func(t *testing.T) {
		labels := profiledRequest(t, ProfilingConfig{Enabled: false}, http.MethodGet, "/api/v1/listings", "/api/v1/listings")
		assert.Empty(t, labels)
	})
}

func TestProfiling_SkippedPaths(t *testing.T) {
	cfg := DefaultProfilingConfig()

	cases := []struct {
		name     string
		path     string
		wantSkip bool
	}{
		{"health exact", "/health", true},
		{"healthz exact", "/healthz", true},
		{"ready exact", "/ready", true},
		{"metrics exact", "/metrics", true},
		{"swagger prefix", "/swagger/index.html", true},
		{"api-docs prefix", "/api-docs/v1", true},
		{"normal api path", "/api/v1/listings", false},
		{"health subpath is not exact", "/health/check", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			labels := profiledRequest(t, cfg, http.MethodGet, tc.path, tc.path)
			if tc.wantSkip {
				assert.Empty(t, labels)
			} else {
				assert.NotEmpty(t, labels)
			}
		})
	}
}

func TestSkipProfiledPath_CustomConfig(t *testing.T) {
	cfg := ProfilingConfig{
		Enabled:          true,
		SkipPaths:        []string{"/custom/health", "/custom/status"},
		SkipPathPrefixes: []string{"/custom/admin"},
	}

	assert.True(t, skipProfiledPath(cfg, "/custom/health"))
	assert.True(t, skipProfiledPath(cfg, "/custom/status"))
	assert.True(t, skipProfiledPath(cfg, "/custom/admin/dashboard"))
	assert.False(t, skipProfiledPath(cfg, "/custom/api"))
}

func TestControllerFromRoute(t *testing.T) {
	cases := []struct {
		route string
		want  string
	}{
		{"/api/v1/listings", "listings"},
		{"/api/v1/listings/:id", "listings"},
		{"/api/v1/purchases/:id/items", "purchases"},
		{"/api/v1/seller-registrations/:id/documents", "seller-registrations"},
		{"/api/v2/listings", "listings"},
		{"/api/v100/listings", "listings"},
		{"/api/listings", "listings"},
		{"/v1/listings", "listings"},
		{"/:id", ""},
		{"", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, controllerFromRoute(tc.route), "route %q", tc.route)
	}
}

func TestIsAPIVersion(t *testing.T) {
	cases := []struct {
		segment string
		want    bool
	}{
		{"v1", true},
		{"v2", true},
		{"v10", true},
		{"V3", true},
		{"v", false},
		{"version", false},
		{"v1a", false},
		{"listings", false},
		{"", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, isAPIVersion(tc.segment), "segment %q", tc.segment)
	}
}

func TestProfiling_HTTPMethods(t *testing.T) {
	cfg := DefaultProfilingConfig()

	for _, method := range []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
		http.MethodPatch,
	} {
		t.Run(method, func(t *testing.T) {
			labels := profiledRequest(t, cfg, method, "/api/v1/ceilings", "/api/v1/ceilings")
			assert.Equal(t, method, labels["method"])
		})
	}
}

func TestProfiling_GinContextPreserved(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("fixture", "carried")
		c.Next()
	})
	router.Use(Profiling())
	router.GET("/api/v1/listings", func(c *gin.Context) {
		value, ok := c.Get("fixture")
		assert.True(t, ok)
		assert.Equal(t, "carried", value)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/listings", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProfiling_MiddlewareOrderPreserved(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var order []string
	router := gin.New()
	router.Use(func(c *gin.Context) {
		order = append(order, "first")
		c.Next()
		order = append(order, "first_after")
	})
	router.Use(ProfilingWithConfig(DefaultProfilingConfig()))
	router.Use(func(c *gin.Context) {
		order = append(order, "third")
		c.Next()
		order = append(order, "third_after")
	})
	router.GET("/api/v1/listings", func(c *gin.Context) {
		order = append(order, "handler")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/listings", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"first", "third", "handler", "third_after", "first_after"}, order)
}

func TestProfilingAttributeInjector(t *testing.T) {
	gin.SetMode(gin.TestMode)

	claims := func(c *gin.Context) {
		c.Set(JWTRoleKey, "super_admin")
		c.Next()
	}

	var role string
	router := gin.New()
	router.Use(claims, ProfilingAttributeInjector())
	router.GET("/api/v1/sellers", func(c *gin.Context) {
		role, _ = pprof.Label(c.Request.Context(), "admin_role")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sellers", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "super_admin", role)
}
