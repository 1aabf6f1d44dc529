package dto

import "time"

const defaultPageSize = 20

// Response is the envelope every API endpoint returns. Exactly one of
// Data and Error is set.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo is the error half of the envelope.
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail reports one failed field.
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Meta carries pagination totals for list endpoints.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func newMeta(total int64, page, pageSize int) *Meta {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &Meta{
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// NewSuccessResponse wraps data in a success envelope.
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewSuccessResponseWithMeta wraps a page of data with its pagination
// totals.
func NewSuccessResponseWithMeta(data any, total int64, page, pageSize int) Response {
	return Response{
		Success: true,
		Data:    data,
		Meta:    newMeta(total, page, pageSize),
	}
}

// NewErrorResponse builds an error envelope.
func NewErrorResponse(code, message string) Response {
	return NewErrorResponseWithRequestID(code, message, "")
}

// NewErrorResponseWithRequestID builds an error envelope carrying the
// request ID for correlation.
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	}
}

// NewValidationErrorResponse builds an error envelope with per-field
// details.
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      ErrCodeValidation,
			Message:   message,
			RequestID: requestID,
			Details:   details,
		},
	}
}

// ListRequest is the common query shape of list endpoints.
type ListRequest struct {
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search"`
}

// DefaultListRequest returns the first page, newest first.
func DefaultListRequest() ListRequest {
	return ListRequest{
		Page:     1,
		PageSize: defaultPageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}
}

// IDRequest binds a UUID path parameter.
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// TimestampResponse embeds the audit timestamps shared by most
// resource responses.
type TimestampResponse struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
