package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/thom899g/neuro-adaptive-trading-ecosystem-with-self-healing/pkg/metrics"
)

// requestFrom builds a request with a fixed client address so each test gets
// its own limiter key in the shared store.
func requestFrom(addr, path string) *http.Request {
	req := httptest.NewRequest("GET", path, nil)
	req.RemoteAddr = addr
	return req
}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(10, 2)) // generous rate
	r.GET("/ok", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	allowedBefore := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))

	// two quick requests should pass
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, requestFrom("10.1.0.1:1000", "/ok"))
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, requestFrom("10.1.0.1:1000", "/ok"))

	require.Equal(t, http.StatusOK, w1.Code)
	require.Equal(t, http.StatusOK, w2.Code)

	// verify metrics incremented for memory limiter
	allowedAfter := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))
	require.Equal(t, 2.0, allowedAfter-allowedBefore)
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	r := gin.New()
	// very low rate to force rejections
	r.Use(RateLimitMiddleware(0.5, 1))
	r.GET("/limited", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	rejectedBefore := testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("memory"))

	// first request -> allowed
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, requestFrom("10.1.0.2:1000", "/limited"))
	require.Equal(t, http.StatusOK, w1.Code)

	// immediate second request -> should be rate-limited
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, requestFrom("10.1.0.2:1000", "/limited"))
	require.Equal(t, http.StatusTooManyRequests, w2.Code)
	require.Equal(t, "1", w2.Header().Get("Retry-After"))

	rejectedAfter := testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("memory"))
	require.Equal(t, 1.0, rejectedAfter-rejectedBefore)

	// wait long enough to replenish one token and it should be allowed
	time.Sleep(600 * time.Millisecond)
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, requestFrom("10.1.0.2:1000", "/limited"))
	require.Equal(t, http.StatusOK, w3.Code)
}

func TestRateLimitMiddleware_UsesSubjectWhenPresent(t *testing.T) {
	r := gin.New()
	// middleware that injects claims before rate limiter
	r.Use(func(c *gin.Context) {
		c.Set("claims", map[string]interface{}{"sub": "trader-rl-1"})
		c.Next()
	})
	r.Use(RateLimitMiddleware(0.5, 1))
	r.GET("/u", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	// first request allowed
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, requestFrom("10.1.0.3:1000", "/u"))
	require.Equal(t, http.StatusOK, w1.Code)

	// immediate second request from a different address => still rejected,
	// because the subject claim keys the limiter
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, requestFrom("10.1.0.4:1000", "/u"))
	require.Equal(t, http.StatusTooManyRequests, w2.Code)
}
