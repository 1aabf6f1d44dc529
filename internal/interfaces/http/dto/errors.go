package dto

import (
	"net/http"
	"strings"
)

// API error codes, ERR_<CATEGORY>_<DESCRIPTION>. These are the stable
// vocabulary clients program against.
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"
	ErrCodeValidationRange    = "ERR_VALIDATION_RANGE"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"

	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeBusinessRule      = "ERR_BUSINESS_RULE"
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"

	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"

	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps each API error code to its HTTP status.
// Validation and input errors are 400, business rule violations 422.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeInvalidInput:       http.StatusBadRequest,
	ErrCodeInvalidJSON:        http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeTokenRevoked: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status for an error code, 500 for
// codes it does not know.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping translates the codes raised by domain services
// (CEILING_EXISTS, TOKEN_REVOKED, ...) into the API vocabulary.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"USER_NOT_FOUND":       ErrCodeNotFound,
	"UPLOAD_NOT_FOUND":     ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"CEILING_EXISTS":       ErrCodeAlreadyExists,
	"REGISTRATION_EXISTS":  ErrCodeAlreadyExists,
	"USERNAME_TAKEN":       ErrCodeAlreadyExists,
	"EMAIL_TAKEN":          ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"NOT_LOCKED":           ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"INVALID_CREDENTIALS":  ErrCodeUnauthorized,
	"TOKEN_INVALID":        ErrCodeTokenInvalid,
	"TOKEN_EXPIRED":        ErrCodeTokenExpired,
	"TOKEN_REVOKED":        ErrCodeTokenRevoked,
	"TOKEN_MAX_REFRESH":    ErrCodeUnauthorized,
	"TOKEN_ERROR":          ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"ACCOUNT_LOCKED":       ErrCodeForbidden,
	"ACCOUNT_INACTIVE":     ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"INSUFFICIENT_STOCK":   ErrCodeInsufficientStock,

	"DOCUMENT_LIMIT_EXCEEDED": ErrCodeBusinessRule,
	"DISALLOWED_CONTENT_TYPE": ErrCodeInvalidInput,

	"UPLOAD_URL_FAILED":    ErrCodeInternal,
	"STORAGE_CHECK_FAILED": ErrCodeInternal,
	"PASSWORD_HASH_ERROR":  ErrCodeInternal,
	"INTERNAL_ERROR":       ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API form.
// Unmapped codes fall back on naming conventions, INVALID_* is input,
// ALREADY_* is a conflict. Anything else passes through unchanged.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	if strings.HasPrefix(code, "INVALID_") {
		return ErrCodeInvalidInput
	}
	if strings.HasPrefix(code, "ALREADY_") {
		return ErrCodeConflict
	}
	return code
}
