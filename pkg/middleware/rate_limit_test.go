package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/workexp/workexp-api/pkg/metrics"
)

func hit(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	before := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))
	r := gin.New()
	r.Use(RateLimitMiddleware(10, time.Second))
	r.GET("/ok", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	w := hit(r, "/ok")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, http.StatusOK, hit(r, "/ok").Code)

	require.Equal(t, before+2, testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory")))
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	before := testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("memory"))
	r := gin.New()
	// one request per 500ms
	r.Use(RateLimitMiddleware(1, 500*time.Millisecond))
	r.GET("/limited", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, hit(r, "/limited").Code)
	w := hit(r, "/limited")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.JSONEq(t, `{"error":"Too many requests, please try again later."}`, w.Body.String())
	require.Equal(t, before+1, testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("memory")))

	time.Sleep(600 * time.Millisecond)
	require.Equal(t, http.StatusOK, hit(r, "/limited").Code)
}

func TestRateLimitMiddleware_UsesSubjectWhenPresent(t *testing.T) {
	r := gin.New()
	sub := "user-1"
	r.Use(func(c *gin.Context) {
		c.Set("claims", map[string]interface{}{"sub": sub})
		c.Next()
	})
	r.Use(RateLimitMiddleware(1, time.Minute))
	r.GET("/u", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, hit(r, "/u").Code)
	require.Equal(t, http.StatusTooManyRequests, hit(r, "/u").Code)

	// a different subject from the same IP has its own bucket
	sub = "user-2"
	require.Equal(t, http.StatusOK, hit(r, "/u").Code)
}

func TestRateLimitMiddleware_InstancesAreIndependent(t *testing.T) {
	a := gin.New()
	a.Use(RateLimitMiddleware(1, time.Minute))
	a.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	b := gin.New()
	b.Use(RateLimitMiddleware(1, time.Minute))
	b.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	require.Equal(t, http.StatusOK, hit(a, "/").Code)
	require.Equal(t, http.StatusOK, hit(b, "/").Code)
}
