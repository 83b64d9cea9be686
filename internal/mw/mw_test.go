package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "192.0.2.1:1234"
	r.ServeHTTP(w, req)
	return w
}

func TestResponseCache(t *testing.T) {
	rc := NewResponseCache(time.Minute)
	calls := 0

	r := gin.New()
	r.Use(rc.Middleware())
	r.GET("/api/devices/:id/status", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})
	r.GET("/api/devices", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})
	r.POST("/api/devices/:id/stop", rc.InvalidateOnWrite("/api/devices"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	first := do(r, http.MethodGet, "/api/devices/washer/status")
	second := do(r, http.MethodGet, "/api/devices/washer/status")
	assert.JSONEq(t, `{"calls":1}`, first.Body.String())
	assert.JSONEq(t, `{"calls":1}`, second.Body.String())
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"))

	do(r, http.MethodGet, "/api/devices")
	assert.Equal(t, 2, calls)

	do(r, http.MethodPost, "/api/devices/washer/stop")

	third := do(r, http.MethodGet, "/api/devices/washer/status")
	assert.JSONEq(t, `{"calls":3}`, third.Body.String())
	do(r, http.MethodGet, "/api/devices")
	assert.Equal(t, 4, calls, "device list is invalidated too")
}

func TestResponseCache_InvalidatesOnlyTheWrittenDevice(t *testing.T) {
	rc := NewResponseCache(time.Minute)
	calls := map[string]int{}

	r := gin.New()
	r.Use(rc.Middleware())
	count := func(c *gin.Context) {
		calls[c.Request.URL.Path]++
		c.JSON(http.StatusOK, gin.H{"calls": calls[c.Request.URL.Path]})
	}
	r.GET("/api/programs", count)
	r.GET("/api/devices/:id/status", count)
	r.POST("/api/devices/:id/stop", rc.InvalidateOnWrite("/api/devices"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, path := range []string{"/api/programs", "/api/devices/a/status", "/api/devices/ab/status"} {
		do(r, http.MethodGet, path)
	}

	do(r, http.MethodPost, "/api/devices/a/stop")

	for _, path := range []string{"/api/programs", "/api/devices/a/status", "/api/devices/ab/status"} {
		do(r, http.MethodGet, path)
	}
	assert.Equal(t, 1, calls["/api/programs"], "unrelated routes stay cached")
	assert.Equal(t, 1, calls["/api/devices/ab/status"], "devices sharing an id prefix stay cached")
	assert.Equal(t, 2, calls["/api/devices/a/status"])
}

func TestResponseCache_SkipsErrors(t *testing.T) {
	rc := NewResponseCache(time.Minute)
	calls := 0

	r := gin.New()
	r.Use(rc.Middleware())
	r.GET("/broken", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})

	do(r, http.MethodGet, "/broken")
	do(r, http.MethodGet, "/broken")
	assert.Equal(t, 2, calls)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 2)
	r := gin.New()
	r.Use(limiter.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/").Code)

	w := do(r, http.MethodGet, "/")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestIPRateLimiter_Forget(t *testing.T) {
	now := time.Now()
	limiter := NewIPRateLimiter(rate.Limit(1), 1)
	limiter.now = func() time.Time { return now }

	limiter.GetLimiter("10.0.0.1")
	now = now.Add(10 * time.Minute)
	limiter.GetLimiter("10.0.0.2")

	assert.Equal(t, 1, limiter.Forget(5*time.Minute))
	assert.Equal(t, 1, limiter.Len())
}
