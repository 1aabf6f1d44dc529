package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serveWith(mw gin.HandlerFunc, method, origin string) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(mw)
	router.GET("/sellers", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(method, "/sellers", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	t.Run("default empty whitelist withholds CORS headers", func(t *testing.T) {
		w := serveWith(CORS(), "GET", "http://malicious.example")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("same-origin request without Origin header passes", func(t *testing.T) {
		w := serveWith(CORS(), "GET", "")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("preflight still answers 204 without CORS headers", func(t *testing.T) {
		w := serveWith(CORS(), "OPTIONS", "http://somewhere.example")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORSWithConfig(t *testing.T) {
	adminOrigin := "http://admin.opas.local"

	t.Run("whitelisted origin gets CORS headers", func(t *testing.T) {
		cfg := CORSConfig{
			AllowOrigins:     []string{adminOrigin},
			AllowMethods:     []string{"GET", "POST"},
			AllowHeaders:     []string{"Content-Type"},
			AllowCredentials: true,
		}

		w := serveWith(CORSWithConfig(cfg), "GET", adminOrigin)

		assert.Equal(t, adminOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("each whitelisted origin is echoed back", func(t *testing.T) {
		cfg := CORSConfig{
			AllowOrigins: []string{adminOrigin, "http://ops.opas.local"},
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Content-Type"},
		}

		for _, origin := range cfg.AllowOrigins {
			w := serveWith(CORSWithConfig(cfg), "GET", origin)
			assert.Equal(t, origin, w.Header().Get("Access-Control-Allow-Origin"))
		}
	})

	t.Run("unlisted origin gets nothing", func(t *testing.T) {
		cfg := CORSConfig{AllowOrigins: []string{adminOrigin}}

		w := serveWith(CORSWithConfig(cfg), "GET", "http://not-allowed.example")

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("empty whitelist rejects every cross-origin request", func(t *testing.T) {
		cfg := CORSConfig{
			AllowOrigins: []string{},
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Content-Type"},
		}

		w := serveWith(CORSWithConfig(cfg), "GET", "http://any-origin.example")

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("wildcard echoes * and never grants credentials", func(t *testing.T) {
		cfg := CORSConfig{
			AllowOrigins:     []string{"*"},
			AllowMethods:     []string{"GET", "POST"},
			AllowHeaders:     []string{"Content-Type"},
			AllowCredentials: true,
		}

		w := serveWith(CORSWithConfig(cfg), "GET", "http://any-origin.example")

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		// Browsers reject credentials combined with a wildcard origin
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("Max-Age is rendered in seconds", func(t *testing.T) {
		cfg := CORSConfig{
			AllowOrigins: []string{adminOrigin},
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Content-Type"},
			MaxAge:       12 * time.Hour,
		}

		w := serveWith(CORSWithConfig(cfg), "GET", adminOrigin)

		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("expose headers are joined", func(t *testing.T) {
		cfg := CORSConfig{
			AllowOrigins:  []string{adminOrigin},
			AllowMethods:  []string{"GET"},
			AllowHeaders:  []string{"Content-Type"},
			ExposeHeaders: []string{"X-Request-ID", "X-Total-Count"},
		}

		w := serveWith(CORSWithConfig(cfg), "GET", adminOrigin)

		assert.Equal(t, "X-Request-ID, X-Total-Count", w.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("preflight from an allowed origin lists methods and headers", func(t *testing.T) {
		cfg := CORSConfig{
			AllowOrigins: []string{adminOrigin},
			AllowMethods: []string{"GET", "POST", "PUT"},
			AllowHeaders: []string{"Content-Type", "Authorization"},
		}

		w := serveWith(CORSWithConfig(cfg), "OPTIONS", adminOrigin)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, adminOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, PUT", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
	})

	t.Run("preflight from a disallowed origin answers 204 bare", func(t *testing.T) {
		cfg := CORSConfig{
			AllowOrigins: []string{adminOrigin},
			AllowMethods: []string{"GET", "POST"},
		}

		w := serveWith(CORSWithConfig(cfg), "OPTIONS", "http://not-allowed.example")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()

	assert.Empty(t, cfg.AllowOrigins, "origins must be opted in explicitly")
	assert.Contains(t, cfg.AllowMethods, "GET")
	assert.Contains(t, cfg.AllowMethods, "POST")
	assert.Contains(t, cfg.AllowHeaders, "Content-Type")
	assert.Contains(t, cfg.AllowHeaders, "Authorization")
	assert.True(t, cfg.AllowCredentials)
	assert.Equal(t, 12*time.Hour, cfg.MaxAge)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/sellers", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	t.Run("generates an id when absent", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/sellers", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		assert.NotEmpty(t, w.Body.String())
	})

	t.Run("echoes a caller-supplied id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/sellers", nil)
		req.Header.Set("X-Request-ID", "req-seller-listing")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-seller-listing", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "req-seller-listing", w.Body.String())
	})
}

func TestGenerateRequestID(t *testing.T) {
	first := generateRequestID()
	second := generateRequestID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
	assert.Len(t, first, 32, "16 random bytes hex encoded")
}

func TestSecure(t *testing.T) {
	w := serveWith(Secure(), "GET", "")

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))

	csp := w.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "default-src 'self'")
	assert.Contains(t, csp, "frame-ancestors 'none'")

	// HSTS stays off until HTTPS termination is confirmed
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))

	permPolicy := w.Header().Get("Permissions-Policy")
	assert.Contains(t, permPolicy, "camera=()")
	assert.Contains(t, permPolicy, "microphone=()")
}

func TestSecureWithConfig(t *testing.T) {
	t.Run("custom CSP only", func(t *testing.T) {
		cfg := SecurityConfig{
			CSPEnabled:   true,
			CSPDirective: "default-src 'none'; script-src 'self'",
		}

		w := serveWith(SecureWithConfig(cfg), "GET", "")

		assert.Equal(t, "default-src 'none'; script-src 'self'", w.Header().Get("Content-Security-Policy"))
		assert.Empty(t, w.Header().Get("Permissions-Policy"))
		assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("HSTS with subdomains and preload", func(t *testing.T) {
		cfg := SecurityConfig{
			HSTSEnabled:           true,
			HSTSMaxAge:            63072000,
			HSTSIncludeSubdomains: true,
			HSTSPreload:           true,
		}

		w := serveWith(SecureWithConfig(cfg), "GET", "")

		assert.Equal(t, "max-age=63072000; includeSubDomains; preload",
			w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("HSTS with max-age only", func(t *testing.T) {
		cfg := SecurityConfig{
			HSTSEnabled: true,
			HSTSMaxAge:  31536000,
		}

		w := serveWith(SecureWithConfig(cfg), "GET", "")

		assert.Equal(t, "max-age=31536000", w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("custom Permissions-Policy", func(t *testing.T) {
		cfg := SecurityConfig{
			PermissionsPolicyEnabled:   true,
			PermissionsPolicyDirective: "geolocation=(self), microphone=()",
		}

		w := serveWith(SecureWithConfig(cfg), "GET", "")

		assert.Equal(t, "geolocation=(self), microphone=()", w.Header().Get("Permissions-Policy"))
	})

	t.Run("optional headers disabled leaves the basics", func(t *testing.T) {
		w := serveWith(SecureWithConfig(SecurityConfig{}), "GET", "")

		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Empty(t, w.Header().Get("Content-Security-Policy"))
		assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
		assert.Empty(t, w.Header().Get("Permissions-Policy"))
	})

	t.Run("every header enabled", func(t *testing.T) {
		cfg := SecurityConfig{
			HSTSEnabled:                true,
			HSTSMaxAge:                 31536000,
			HSTSIncludeSubdomains:      true,
			CSPEnabled:                 true,
			CSPDirective:               "default-src 'self'",
			PermissionsPolicyEnabled:   true,
			PermissionsPolicyDirective: "camera=(), microphone=()",
		}

		w := serveWith(SecureWithConfig(cfg), "GET", "")

		assert.Equal(t, "default-src 'self'", w.Header().Get("Content-Security-Policy"))
		assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
		assert.Equal(t, "camera=(), microphone=()", w.Header().Get("Permissions-Policy"))
	})
}

func TestDefaultSecurityConfig(t *testing.T) {
	cfg := DefaultSecurityConfig()

	assert.False(t, cfg.HSTSEnabled)
	assert.Equal(t, 31536000, cfg.HSTSMaxAge)
	assert.True(t, cfg.HSTSIncludeSubdomains)
	assert.False(t, cfg.HSTSPreload)

	assert.True(t, cfg.CSPEnabled)
	assert.Contains(t, cfg.CSPDirective, "default-src 'self'")
	assert.Contains(t, cfg.CSPDirective, "frame-ancestors 'none'")

	assert.True(t, cfg.PermissionsPolicyEnabled)
	assert.Contains(t, cfg.PermissionsPolicyDirective, "camera=()")
	assert.Contains(t, cfg.PermissionsPolicyDirective, "microphone=()")
}

func TestTimeout(t *testing.T) {
	w := serveWith(Timeout(30*time.Second), "GET", "")

	assert.Equal(t, "30s", w.Header().Get("X-Request-Timeout"))
}

func TestCORSMaxAgeValues(t *testing.T) {
	cases := []struct {
		duration time.Duration
		want     string
	}{
		{time.Hour, "3600"},
		{12 * time.Hour, "43200"},
		{24 * time.Hour, "86400"},
		{time.Minute, "60"},
		{30 * time.Second, "30"},
	}

	for _, tc := range cases {
		cfg := CORSConfig{
			AllowOrigins: []string{"http://admin.opas.local"},
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Content-Type"},
			MaxAge:       tc.duration,
		}

		w := serveWith(CORSWithConfig(cfg), "GET", "http://admin.opas.local")
		assert.Equal(t, tc.want, w.Header().Get("Access-Control-Max-Age"), "duration %s", tc.duration)
	}
}
