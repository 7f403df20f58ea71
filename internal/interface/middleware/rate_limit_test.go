package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRemainingClampsAtZero(t *testing.T) {
	assert.Equal(t, 4, remaining(5, 1))
	assert.Equal(t, 0, remaining(5, 5))
	assert.Equal(t, 0, remaining(5, 6))
	assert.Equal(t, 0, remaining(5, 100))
}

func TestRateLimit_NoRedisPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RateLimit(nil, 5, time.Minute, KeyByIP()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestKeyFuncs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/login", nil)
	c.Request.RemoteAddr = "10.0.0.9:12345"

	assert.Equal(t, "rl:ip:10.0.0.9", KeyByIP()(c))
	assert.Equal(t, "rl:path:/api/login:ip:10.0.0.9", KeyByIPAndPath()(c))
}
