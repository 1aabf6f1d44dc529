package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)
	defer mockDB.Close()

	assert.NotNil(t, mockDB.DB)
	assert.NotNil(t, mockDB.Mock)
	assert.NotNil(t, mockDB.SqlDB)

	// With no expectations declared nothing can be unmet.
	mockDB.ExpectationsWereMet(t)
}

func TestNewTestContext(t *testing.T) {
	tc := NewTestContext(t)

	assert.NotNil(t, tc.Context)
	assert.NotNil(t, tc.Recorder)
	assert.NotNil(t, tc.Engine)
	assert.Equal(t, http.MethodGet, tc.Context.Request.Method)
}

func TestTestContext_Setters(t *testing.T) {
	tc := NewTestContext(t)

	tc.SetRequestID("req-seller-listing")
	val, exists := tc.Context.Get("X-Request-ID")
	assert.True(t, exists)
	assert.Equal(t, "req-seller-listing", val)

	tc.SetUserID("admin-42")
	val, exists = tc.Context.Get("X-User-ID")
	assert.True(t, exists)
	assert.Equal(t, "admin-42", val)

	tc.SetHeader("Authorization", "Bearer token")
	assert.Equal(t, "Bearer token", tc.Context.Request.Header.Get("Authorization"))
}

func TestTestContext_ResponseCode(t *testing.T) {
	tc := NewTestContext(t)
	tc.Recorder.WriteHeader(http.StatusCreated)

	assert.Equal(t, http.StatusCreated, tc.ResponseCode())
}

func TestDeterministicUUIDs(t *testing.T) {
	assert.Equal(t, NewTestUUID("seller-fixture"), NewTestUUID("seller-fixture"))
	assert.NotEqual(t, NewTestUUID("seller-fixture"), NewTestUUID("admin-fixture"))

	assert.NotEqual(t, NewRandomUUID(), NewRandomUUID())

	zero := "00000000-0000-0000-0000-000000000000"
	assert.NotEqual(t, zero, TestSellerID().String())
	assert.Equal(t, TestSellerID(), TestSellerID())
	assert.NotEqual(t, zero, TestUserID().String())
	assert.Equal(t, TestUserID(), TestUserID())
	assert.NotEqual(t, TestSellerID(), TestUserID())
}

func TestContextWithTimeout(t *testing.T) {
	ctx, cancel := ContextWithTimeout(t, 100*time.Millisecond)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.True(t, deadline.After(time.Now()))
}

func TestContextWithCancel(t *testing.T) {
	ctx, cancel := ContextWithCancel(t)

	select {
	case <-ctx.Done():
		t.Fatal("context cancelled prematurely")
	default:
	}

	cancel()

	select {
	case <-ctx.Done():
	default:
		t.Fatal("context not cancelled")
	}
}

func TestAssertEventually(t *testing.T) {
	done := make(chan struct{})
	go func() {
		time.Sleep(50 * time.Millisecond)
		close(done)
	}()

	AssertEventually(t, func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, 200*time.Millisecond, 10*time.Millisecond)
}

func TestAssertNever(t *testing.T) {
	AssertNever(t, func() bool { return false }, 50*time.Millisecond, 10*time.Millisecond)
}

func TestRunHTTPTestCase(t *testing.T) {
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "sellers listed",
		})
	}

	RunHTTPTestCase(t, handler, HTTPTestCase{
		Name:           "lists sellers",
		Method:         http.MethodGet,
		Path:           "/sellers",
		ExpectedStatus: http.StatusOK,
		ExpectedBody: map[string]any{
			"success": true,
		},
	})
}

func TestRunHTTPTestCases(t *testing.T) {
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	}

	RunHTTPTestCases(t, handler, []HTTPTestCase{
		{Name: "defaults to GET /", ExpectedStatus: http.StatusOK},
		{Name: "explicit path", Path: "/ceilings", ExpectedStatus: http.StatusOK},
	})
}

func TestJSONResponse(t *testing.T) {
	tc := NewTestContext(t)
	tc.Context.JSON(http.StatusOK, gin.H{"product_code": "RICE-5KG"})

	resp := JSONResponse(t, tc)
	assert.Equal(t, "RICE-5KG", resp["product_code"])
}

func TestJSONResponseAs(t *testing.T) {
	type ceiling struct {
		ProductCode string `json:"product_code"`
	}

	tc := NewTestContext(t)
	tc.Context.JSON(http.StatusOK, gin.H{"product_code": "RICE-5KG"})

	resp := JSONResponseAs[ceiling](t, tc)
	assert.Equal(t, "RICE-5KG", resp.ProductCode)
}

func TestAssertSuccessResponse(t *testing.T) {
	tc := NewTestContext(t)
	tc.Context.JSON(http.StatusOK, gin.H{"success": true})

	AssertSuccessResponse(t, tc)
}

func TestAssertErrorResponse(t *testing.T) {
	tc := NewTestContext(t)
	tc.Context.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"error":   gin.H{"code": "NOT_FOUND"},
	})

	AssertErrorResponse(t, tc, "NOT_FOUND")
}

func TestToJSONReader(t *testing.T) {
	reader := ToJSONReader(t, map[string]string{"product_code": "OIL-1L"})
	require.NotNil(t, reader)

	data, err := io.ReadAll(reader)
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "OIL-1L", decoded["product_code"])
}
