package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func serveLogged(t *testing.T, level zapcore.Level, target string, register func(*gin.Engine)) (*httptest.ResponseRecorder, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(level)
	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	register(router)

	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	router.ServeHTTP(w, req)
	return w, recorded
}

func findRequestLog(t *testing.T, recorded *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	for _, entry := range recorded.All() {
		if entry.Message == "HTTP Request" {
			return entry
		}
	}
	t.Fatal("no HTTP Request entry logged")
	return observer.LoggedEntry{}
}

func TestGinMiddleware_LevelFollowsStatus(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   zapcore.Level
	}{
		{"success is info", http.StatusOK, zapcore.InfoLevel},
		{"client error is warn", http.StatusUnprocessableEntity, zapcore.WarnLevel},
		{"server error is error", http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, recorded := serveLogged(t, zapcore.InfoLevel, "/sellers", func(r *gin.Engine) {
				r.GET("/sellers", func(c *gin.Context) {
					c.JSON(tc.status, gin.H{})
				})
			})

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.want, findRequestLog(t, recorded).Level)
		})
	}
}

func TestGinMiddleware_Fields(t *testing.T) {
	_, recorded := serveLogged(t, zapcore.InfoLevel, "/sellers?status=active&page=2", func(r *gin.Engine) {
		r.Use(func(c *gin.Context) {
			c.Set("request_id", "req-42")
			c.Next()
		})
		r.GET("/sellers", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{})
		})
	})

	entry := findRequestLog(t, recorded)

	fields := make(map[string]zap.Field)
	for _, f := range entry.Context {
		fields[f.Key] = f
	}
	for _, key := range []string{"status", "latency", "client_ip", "user_agent", "method", "path"} {
		assert.Contains(t, fields, key)
	}
	assert.Equal(t, "req-42", fields["request_id"].String)
	assert.Contains(t, fields["query"].String, "status=active")
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/boom", func(c *gin.Context) {
		panic("listing cache corrupted")
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/boom", nil)
	assert.NotPanics(t, func() {
		router.ServeHTTP(w, req)
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	logs := recorded.All()
	require.NotEmpty(t, logs)
	assert.Equal(t, "Panic recovered", logs[0].Message)
}

func TestGetGinLogger(t *testing.T) {
	var fromHandler *zap.Logger
	_, _ = serveLogged(t, zapcore.InfoLevel, "/sellers", func(r *gin.Engine) {
		r.GET("/sellers", func(c *gin.Context) {
			fromHandler = GetGinLogger(c)
			c.JSON(http.StatusOK, gin.H{})
		})
	})
	assert.NotNil(t, fromHandler)
}

func TestGetGinLogger_WithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var fromHandler *zap.Logger
	router := gin.New()
	router.GET("/bare", func(c *gin.Context) {
		fromHandler = GetGinLogger(c)
		c.JSON(http.StatusOK, gin.H{})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/bare", nil)
	router.ServeHTTP(w, req)

	require.NotNil(t, fromHandler)
	assert.NotPanics(t, func() {
		fromHandler.Info("nop logger is usable")
	})
}
