package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/idextract/idextract/pkg/metrics"
)

func serve(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
	return w
}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	before := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))
	r := gin.New()
	r.Use(RateLimitMiddleware(10, 2))
	r.POST("/upload_url", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, serve(r, "/upload_url").Code)
	require.Equal(t, http.StatusOK, serve(r, "/upload_url").Code)
	require.Equal(t, before+2, testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory")))
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	before := testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("memory"))
	r := gin.New()
	r.Use(RateLimitMiddleware(2, 1))
	r.POST("/upload_url", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, serve(r, "/upload_url").Code)
	w := serve(r, "/upload_url")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "1", w.Header().Get("Retry-After"))
	require.Equal(t, before+1, testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("memory")))

	// one token back after 0.5s at 2 rps
	time.Sleep(600 * time.Millisecond)
	require.Equal(t, http.StatusOK, serve(r, "/upload_url").Code)
}

func TestRateLimitMiddleware_SeparateInstancesDoNotShareBuckets(t *testing.T) {
	a := gin.New()
	a.Use(RateLimitMiddleware(0.1, 1))
	a.POST("/x", func(c *gin.Context) { c.Status(200) })
	b := gin.New()
	b.Use(RateLimitMiddleware(0.1, 1))
	b.POST("/x", func(c *gin.Context) { c.Status(200) })

	require.Equal(t, http.StatusOK, serve(a, "/x").Code)
	require.Equal(t, http.StatusOK, serve(b, "/x").Code)
	require.Equal(t, http.StatusTooManyRequests, serve(a, "/x").Code)
}

func TestRateLimitMiddleware_UsesSubjectWhenPresent(t *testing.T) {
	sub := "user-123"
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(SubjectKey, sub)
		c.Next()
	})
	r.Use(RateLimitMiddleware(0.1, 1))
	r.POST("/u", func(c *gin.Context) { c.Status(200) })

	require.Equal(t, http.StatusOK, serve(r, "/u").Code)
	require.Equal(t, http.StatusTooManyRequests, serve(r, "/u").Code)

	// a different subject from the same IP has its own bucket
	sub = "user-456"
	require.Equal(t, http.StatusOK, serve(r, "/u").Code)
}
