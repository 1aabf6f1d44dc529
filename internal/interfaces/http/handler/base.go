package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opas/backend/internal/domain/shared"
	"github.com/opas/backend/internal/interfaces/http/dto"
	"github.com/opas/backend/internal/interfaces/http/middleware"
)

// RequestIDKey is where the request ID middleware stores the ID.
const RequestIDKey = "X-Request-ID"

// BaseHandler carries the response helpers every HTTP handler embeds.
type BaseHandler struct{}

// getRequestID reads the request ID set by middleware, falling back to
// the inbound header.
func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDKey)
}

// getUserID returns the authenticated admin's ID from the JWT claims.
func getUserID(c *gin.Context) (uuid.UUID, error) {
	userID := middleware.GetJWTUserID(c)
	if userID == "" {
		return uuid.Nil, errors.New("user ID not found in context")
	}
	return uuid.Parse(userID)
}

// Success sends 200 with the standard envelope.
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends 200 with pagination metadata.
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends 201 with the standard envelope.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends 204.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error envelope with the given status and code. Every
// error response carries the request ID for correlation.
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode sends an error envelope, mapping the error code to its
// HTTP status.
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

func (h *BaseHandler) Forbidden(c *gin.Context, message string) {
	h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, message)
}

func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	h.Error(c, http.StatusConflict, dto.ErrCodeConflict, message)
}

func (h *BaseHandler) UnprocessableEntity(c *gin.Context, code, message string) {
	h.Error(c, http.StatusUnprocessableEntity, code, message)
}

func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

func (h *BaseHandler) TooManyRequests(c *gin.Context, message string) {
	h.Error(c, http.StatusTooManyRequests, dto.ErrCodeRateLimited, message)
}

// ValidationError sends 400 with per-field validation details.
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		getRequestID(c),
		details,
	))
}

// respondDomainError maps a *shared.DomainError, wrapped or not, to its
// HTTP response. Returns false when err is some other error type.
func (h *BaseHandler) respondDomainError(c *gin.Context, err error) bool {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		return false
	}

	code := dto.NormalizeErrorCode(domainErr.Code)
	h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
	return true
}

// HandleDomainError converts a domain error to an HTTP response. Errors
// of any other type surface as 500 without leaking their message.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	if h.respondDomainError(c, err) {
		return
	}
	h.InternalError(c, "An unexpected error occurred")
}

// HandleError responds to any error, domain or otherwise. A nil error
// is a no-op.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	h.HandleDomainError(c, err)
}
