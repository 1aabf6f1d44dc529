package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/opas/backend/internal/infrastructure/telemetry"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	Enabled bool
	// SkipPaths lists exact paths that get no profiling labels.
	SkipPaths []string
	// SkipPathPrefixes lists path prefixes that get no profiling labels.
	SkipPathPrefixes []string
}

// DefaultProfilingConfig returns the default profiling configuration.
// Health probes and doc endpoints are skipped; their profiles would only
// dilute the interesting series.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled: true,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/metrics",
		},
		SkipPathPrefixes: []string{
			"/swagger",
			"/api-docs",
		},
	}
}

// Profiling returns profiling middleware with the default configuration.
func Profiling() gin.HandlerFunc {
	return ProfilingWithConfig(DefaultProfilingConfig())
}

// ProfilingWithConfig tags each request's profile samples with
// controller, route, method and admin_role, so CPU and memory usage can
// be sliced per handler in the Pyroscope UI.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passthrough
	}

	return func(c *gin.Context) {
		if skipProfiledPath(cfg, c.Request.URL.Path) {
			c.Next()
			return
		}

		telemetry.WithProfilingLabels(c.Request.Context(), requestProfileLabels(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func skipProfiledPath(cfg ProfilingConfig, path string) bool {
	for _, skipPath := range cfg.SkipPaths {
		if path == skipPath {
			return true
		}
	}
	for _, prefix := range cfg.SkipPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// requestProfileLabels builds the label set for the current request.
// Every value here is low cardinality: the route pattern rather than the
// raw path, and the role claim rather than the user ID.
func requestProfileLabels(c *gin.Context) map[string]string {
	labels := make(map[string]string, 4)

	if method := c.Request.Method; method != "" {
		labels[telemetry.ProfilingLabelMethod] = method
	}

	route := c.FullPath()
	if route != "" {
		labels[telemetry.ProfilingLabelRoute] = route
	}

	if controller := controllerFromRoute(route); controller != "" {
		labels[telemetry.ProfilingLabelController] = controller
	}

	if role := adminRoleFrom(c); role != "" {
		labels[telemetry.ProfilingLabelAdminRole] = role
	}

	return labels
}

// controllerFromRoute names the resource a route serves, so profiles
// group by handler. "/api/v1/purchases/:id/items" yields "purchases".
func controllerFromRoute(route string) string {
	if route == "" {
		return ""
	}

	for _, part := range strings.Split(route, "/") {
		if part == "" || part == "api" || isAPIVersion(part) {
			continue
		}
		if strings.HasPrefix(part, ":") || strings.HasPrefix(part, "{") {
			continue
		}
		return part
	}

	return ""
}

// isAPIVersion reports whether a path segment looks like v1, v2, ...
func isAPIVersion(segment string) bool {
	if len(segment) < 2 {
		return false
	}
	if segment[0] != 'v' && segment[0] != 'V' {
		return false
	}
	for i := 1; i < len(segment); i++ {
		if segment[i] < '0' || segment[i] > '9' {
			return false
		}
	}
	return true
}

// ProfilingAttributeInjector is Profiling positioned for chains where the
// JWT middleware runs first, so the admin_role claim is available.
func ProfilingAttributeInjector() gin.HandlerFunc {
	return ProfilingWithConfig(DefaultProfilingConfig())
}
