package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestRateLimit_BurstExceeded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimit(rate.Limit(0.001), 2))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest("GET", "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimit_PerClientBuckets(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimit(rate.Limit(0.001), 1))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(addr string) int {
		req, _ := http.NewRequest("GET", "/", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:1234"))
	// A different client has its own bucket.
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1234"))
}

func TestLimiterPool_SweepDropsIdleClients(t *testing.T) {
	pool := newLimiterPool(rate.Limit(1), 1)
	pool.get("10.0.0.1")
	pool.get("10.0.0.2")
	pool.clients["10.0.0.1"].lastSeen = time.Now().Add(-time.Hour)

	pool.sweep(time.Now().Add(-limiterIdleAfter))

	_, idleKept := pool.clients["10.0.0.1"]
	_, activeKept := pool.clients["10.0.0.2"]
	assert.False(t, idleKept)
	assert.True(t, activeKept)
}

func TestLimiterPool_KeepsBucketStateBetweenCalls(t *testing.T) {
	pool := newLimiterPool(rate.Limit(0.001), 1)
	assert.True(t, pool.get("10.0.0.1").Allow())
	// Same client, same bucket: the burst token is already spent.
	assert.False(t, pool.get("10.0.0.1").Allow())
}
