package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opas/backend/internal/domain/shared"
	"github.com/opas/backend/internal/interfaces/http/dto"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandler_Success(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.Success(c, gin.H{"hello": "world"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestBaseHandler_SuccessWithMeta(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.SuccessWithMeta(c, []string{"a", "b"}, 42, 2, 20)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(42), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestBaseHandler_HandleError_DomainError(t *testing.T) {
	h := &BaseHandler{}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        shared.NewDomainError("NOT_FOUND", "seller not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   dto.ErrCodeNotFound,
		},
		{
			name:       "already exists",
			err:        shared.NewDomainError("CEILING_EXISTS", "ceiling already exists"),
			wantStatus: http.StatusConflict,
			wantCode:   dto.ErrCodeAlreadyExists,
		},
		{
			name:       "invalid state",
			err:        shared.NewDomainError("INVALID_STATE", "cannot approve"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   dto.ErrCodeInvalidState,
		},
		{
			name:       "validation prefix fallback",
			err:        shared.NewDomainError("INVALID_RATING", "rating out of range"),
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeInvalidInput,
		},
		{
			name:       "forbidden",
			err:        shared.NewDomainError("FORBIDDEN", "super admin required"),
			wantStatus: http.StatusForbidden,
			wantCode:   dto.ErrCodeForbidden,
		},
		{
			name:       "wrapped domain error",
			err:        errorsJoin(shared.NewDomainError("NOT_FOUND", "gone")),
			wantStatus: http.StatusNotFound,
			wantCode:   dto.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func errorsJoin(err error) error {
	return &wrappedErr{err: err}
}

type wrappedErr struct {
	err error
}

func (w *wrappedErr) Error() string { return "wrapped: " + w.err.Error() }
func (w *wrappedErr) Unwrap() error { return w.err }

func TestBaseHandler_HandleError_UnknownError(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.HandleError(c, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
}

func TestBaseHandler_HandleError_Nil(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.HandleError(c, nil)

	// No response written
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestBaseHandler_Error_IncludesRequestID(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()
	c.Set(RequestIDKey, "req-123")

	h.NotFound(c, "not here")

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-123", resp.Error.RequestID)
}

func TestBaseHandler_ValidationError(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.ValidationError(c, []dto.ValidationDetail{
		{Field: "username", Message: "username is required"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "username", resp.Error.Details[0].Field)
}
