package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/opas/backend/internal/infrastructure/auth"
	"github.com/opas/backend/internal/infrastructure/logger"
)

// Gin context keys populated by the JWT middleware.
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTUsernameKey = "jwt_username"
	JWTRoleKey     = "jwt_role"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// JWTMiddlewareConfig holds configuration for the JWT middleware.
type JWTMiddlewareConfig struct {
	// JWTService validates access tokens. Required.
	JWTService *auth.JWTService
	// TokenBlacklist, when set, rejects revoked tokens.
	TokenBlacklist auth.TokenBlacklist
	// SkipPaths lists exact paths served without authentication.
	SkipPaths []string
	// SkipPathPrefixes lists path prefixes served without authentication.
	SkipPathPrefixes []string
	// OnError overrides the default 401 response.
	OnError func(c *gin.Context, err error)
	Logger  *zap.Logger
}

// DefaultJWTConfig returns the default JWT middleware configuration.
// Health probes and the login endpoints stay open.
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/api/v1/health",
			"/api/v1/system/ping",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
	}
}

// JWTAuthMiddleware creates JWT authentication middleware with the
// default configuration.
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService))
}

// JWTAuthMiddlewareWithConfig authenticates requests with a Bearer
// access token and stashes the claims in the gin context.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authSkipped(cfg, c.Request.URL.Path) {
			c.Next()
			return
		}

		tokenString, err := bearerToken(c)
		if err != nil {
			handleAuthError(c, cfg, auth.ErrInvalidToken, err.Error())
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token validation failed")
			return
		}

		if revoked, message := tokenRevoked(c, cfg, claims); revoked {
			handleAuthError(c, cfg, auth.ErrTokenBlacklisted, message)
			return
		}

		stashClaims(c, claims)

		if cfg.Logger != nil {
			cfg.Logger.Debug("JWT authentication successful",
				zap.String("user_id", claims.UserID),
				zap.String("username", claims.Username),
				zap.String("role", claims.Role),
			)
		}

		c.Next()
	}
}

func authSkipped(cfg JWTMiddlewareConfig, path string) bool {
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

// bearerToken pulls the access token out of the Authorization header.
func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader(AuthHeaderKey)
	if authHeader == "" {
		return "", errors.New("Missing authorization header")
	}
	if !strings.HasPrefix(authHeader, BearerPrefix) {
		return "", errors.New("Invalid authorization header format")
	}

	tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
	if tokenString == "" {
		return "", errors.New("Missing token")
	}
	return tokenString, nil
}

// tokenRevoked checks both revocation paths: an individual logout
// blacklists the token's JTI, a password change or force logout
// invalidates every token issued before the user's watermark. Blacklist
// store errors fail open so an outage cannot lock every admin out.
func tokenRevoked(c *gin.Context, cfg JWTMiddlewareConfig, claims *auth.Claims) (bool, string) {
	if cfg.TokenBlacklist == nil {
		return false, ""
	}
	ctx := c.Request.Context()

	if claims.ID != "" {
		blacklisted, err := cfg.TokenBlacklist.IsBlacklisted(ctx, claims.ID)
		switch {
		case err != nil:
			if cfg.Logger != nil {
				cfg.Logger.Error("Failed to check token blacklist",
					zap.String("jti", claims.ID),
					zap.Error(err))
			}
		case blacklisted:
			return true, "Token has been revoked"
		}
	}

	if claims.UserID != "" {
		invalidated, err := cfg.TokenBlacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
		switch {
		case err != nil:
			if cfg.Logger != nil {
				cfg.Logger.Error("Failed to check user token invalidation",
					zap.String("user_id", claims.UserID),
					zap.Error(err))
			}
		case invalidated:
			return true, "User session has been invalidated"
		}
	}

	return false, ""
}

// stashClaims exposes the claims to downstream handlers and tags the
// request-scoped logger with the user ID.
func stashClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(JWTUserIDKey, claims.UserID)
	c.Set(JWTUsernameKey, claims.Username)
	c.Set(JWTRoleKey, claims.Role)

	ctx := c.Request.Context()
	log := logger.FromContext(ctx)
	ctx, _ = logger.WithUserID(ctx, log, claims.UserID)
	c.Request = c.Request.WithContext(ctx)
}

func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	errorCode := "UNAUTHORIZED"
	errorMessage := "Authentication required"
	switch err {
	case auth.ErrExpiredToken:
		errorCode = "TOKEN_EXPIRED"
		errorMessage = "Token has expired"
	case auth.ErrInvalidToken:
		errorCode = "TOKEN_INVALID"
		errorMessage = "Invalid token"
	case auth.ErrInvalidTokenType:
		errorCode = "TOKEN_INVALID"
		errorMessage = "Invalid token type"
	case auth.ErrTokenNotYetValid:
		errorCode = "TOKEN_INVALID"
		errorMessage = "Token is not yet valid"
	case auth.ErrTokenBlacklisted:
		errorCode = "TOKEN_REVOKED"
		errorMessage = "Token has been revoked"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    errorCode,
			"message": errorMessage,
		},
	})
}

// GetJWTClaims returns the full claims set, or nil when the request was
// not authenticated.
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTUserID returns the authenticated user's ID, or "".
func GetJWTUserID(c *gin.Context) string {
	return userIDFrom(c)
}

// GetJWTUsername returns the authenticated user's username, or "".
func GetJWTUsername(c *gin.Context) string {
	if username, exists := c.Get(JWTUsernameKey); exists {
		if u, ok := username.(string); ok {
			return u
		}
	}
	return ""
}

// GetJWTRole returns the authenticated admin's role, or "".
func GetJWTRole(c *gin.Context) string {
	return adminRoleFrom(c)
}
