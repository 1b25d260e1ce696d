package utils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Production(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, true).Debug("hidden")
	newLogger(&buf, true).Info("Session started", "session_id", "s-1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Session started", line["msg"])
	assert.Equal(t, "s-1", line["session_id"])
}

func TestContextLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	base := newLogger(&buf, true)

	r := gin.New()
	r.Use(ContextLogger(base))
	r.GET("/ping", func(c *gin.Context) {
		GetLoggerFromContext(c, NewNopLogger()).Info("pong")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(LearnerIDHeader, "learner-9")
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "learner-9", line["learner_id"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "/ping", line["path"])

	t.Run("fallback without middleware", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		fallback := NewNopLogger()
		assert.Same(t, fallback, GetLoggerFromContext(c, fallback))
	})
}
