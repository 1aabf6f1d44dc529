package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opas/backend/internal/interfaces/http/dto"
)

// RateLimiter is a fixed-window in-memory limiter keyed by client.
// State lives in process memory, so limits apply per instance.
type RateLimiter struct {
	mu          sync.Mutex
	clients     map[string]*clientWindow
	limit       int
	window      time.Duration
	cleanupTick time.Duration
}

type clientWindow struct {
	tokens    int
	lastReset time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients:     make(map[string]*clientWindow),
		limit:       limit,
		window:      window,
		cleanupTick: window * 2,
	}
	go rl.evictStale()
	return rl
}

// NewAuthRateLimiter creates the stricter limiter used on credential
// endpoints: 5 attempts per minute per client.
func NewAuthRateLimiter() *RateLimiter {
	return NewRateLimiter(5, time.Minute)
}

// evictStale drops clients idle for more than two windows, keeping the
// map from growing unbounded.
func (rl *RateLimiter) evictStale() {
	ticker := time.NewTicker(rl.cleanupTick)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, cw := range rl.clients {
			if now.Sub(cw.lastReset) > rl.window*2 {
				delete(rl.clients, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Allow consumes one token for key and reports whether the request may
// proceed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cw, exists := rl.clients[key]
	if !exists {
		rl.clients[key] = &clientWindow{
			tokens:    rl.limit - 1,
			lastReset: now,
		}
		return true
	}

	if now.Sub(cw.lastReset) >= rl.window {
		cw.tokens = rl.limit - 1
		cw.lastReset = now
		return true
	}

	if cw.tokens > 0 {
		cw.tokens--
		return true
	}
	return false
}

// Remaining returns how many requests key has left in the current window.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cw, exists := rl.clients[key]
	if !exists || time.Since(cw.lastReset) >= rl.window {
		return rl.limit
	}
	return cw.tokens
}

// Limit returns the configured per-window request limit.
func (rl *RateLimiter) Limit() int {
	return rl.limit
}

func (rl *RateLimiter) setQuotaHeaders(c *gin.Context, key string) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(rl.Remaining(key)))
}

// RateLimit returns rate limiting middleware keyed by client IP.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()

		if !limiter.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
			))
			return
		}

		limiter.setQuotaHeaders(c, key)
		c.Next()
	}
}

// AuthRateLimit returns the stricter middleware for credential
// endpoints. Keys carry an "auth:" prefix so the counter never collides
// with the global limiter, and blocked responses include a Retry-After
// hint.
func AuthRateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "auth:" + c.ClientIP()

		if !limiter.Allow(key) {
			c.Header("Retry-After", strconv.Itoa(int(limiter.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(
				"AUTH_RATE_LIMIT_EXCEEDED",
				"Too many authentication attempts. Please try again later.",
			))
			return
		}

		limiter.setQuotaHeaders(c, key)
		c.Next()
	}
}

// RateLimitByKey returns rate limiting middleware with a custom key
// extractor, for limits keyed by user or API client instead of IP.
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(keyFunc(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
			))
			return
		}
		c.Next()
	}
}
