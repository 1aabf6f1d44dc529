// Package middleware provides HTTP middleware for the OPAS backend.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength caps request IDs copied from headers; longer values
// get truncated before they land on a span.
const MaxRequestIDLength = 128

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// DefaultTracingConfig returns the default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "opas-backend",
		Enabled:     true,
	}
}

// Tracing returns tracing middleware with the default configuration.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig wraps otelgin and stamps each span with request_id,
// user_id and admin_role. Span names follow otelgin's "METHOD route"
// convention, e.g. "GET /api/v1/listings/:id".
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	otelMiddleware := otelgin.Middleware(cfg.ServiceName)

	return func(c *gin.Context) {
		otelMiddleware(c)

		// otelgin has created the span by now.
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			stampSpanIdentity(c, span)
		}
	}
}

// stampSpanIdentity copies request and caller identity onto the span.
func stampSpanIdentity(c *gin.Context, span trace.Span) {
	if requestID := requestIDFrom(c); requestID != "" {
		span.SetAttributes(attribute.String("request_id", requestID))
	}
	if userID := userIDFrom(c); userID != "" {
		span.SetAttributes(attribute.String("user_id", userID))
	}
	if role := adminRoleFrom(c); role != "" {
		span.SetAttributes(attribute.String("admin_role", role))
	}
}

// requestIDFrom prefers the ID set by the RequestID middleware and falls
// back to the header, truncated to MaxRequestIDLength.
func requestIDFrom(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok && id != "" {
			return id
		}
	}

	headerID := c.GetHeader("X-Request-ID")
	if len(headerID) > MaxRequestIDLength {
		return headerID[:MaxRequestIDLength]
	}
	return headerID
}

// adminRoleFrom reads the role claim set by the JWT middleware.
func adminRoleFrom(c *gin.Context) string {
	if role, exists := c.Get(JWTRoleKey); exists {
		if r, ok := role.(string); ok && r != "" {
			return r
		}
	}
	return ""
}

// userIDFrom reads the user ID claim set by the JWT middleware.
func userIDFrom(c *gin.Context) string {
	if userID, exists := c.Get(JWTUserIDKey); exists {
		if id, ok := userID.(string); ok && id != "" {
			return id
		}
	}
	return ""
}

// SpanErrorMarker marks the span as errored for 4xx and 5xx responses.
// Place it after the Tracing middleware in the chain.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		statusCode := c.Writer.Status()
		if statusCode < http.StatusBadRequest {
			return
		}

		var errorMessage string
		switch {
		case statusCode >= http.StatusInternalServerError:
			errorMessage = "Internal Server Error"
		case statusCode == http.StatusUnauthorized:
			errorMessage = "Unauthorized"
		case statusCode == http.StatusForbidden:
			errorMessage = "Forbidden"
		case statusCode == http.StatusNotFound:
			errorMessage = "Not Found"
		default:
			errorMessage = "Client Error"
		}

		span.SetStatus(codes.Error, errorMessage)
		span.SetAttributes(attribute.Int("http.status_code", statusCode))
	}
}

// TracingAttributeInjector re-stamps identity attributes on the current
// span. Place it after both Tracing and the JWT middleware so the claims
// are present.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			stampSpanIdentity(c, span)
		}
		c.Next()
	}
}
