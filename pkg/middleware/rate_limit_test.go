package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/authorityai/authorityai/backend/go-services/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func hit(r *gin.Engine, path string) int {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w.Code
}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	before := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))
	r := gin.New()
	r.Use(RateLimitMiddleware(10, 2))
	r.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, hit(r, "/ok"))
	require.Equal(t, http.StatusOK, hit(r, "/ok"))
	require.Equal(t, before+2, testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory")))
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	before := testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("memory"))
	r := gin.New()
	r.Use(RateLimitMiddleware(2, 1))
	r.GET("/limited", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, hit(r, "/limited"))
	require.Equal(t, http.StatusTooManyRequests, hit(r, "/limited"))
	require.Equal(t, before+1, testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("memory")))

	time.Sleep(600 * time.Millisecond)
	require.Equal(t, http.StatusOK, hit(r, "/limited"))
}

func TestRateLimitMiddleware_InstancesAreIndependent(t *testing.T) {
	a := gin.New()
	a.Use(RateLimitMiddleware(0.1, 1))
	a.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	b := gin.New()
	b.Use(RateLimitMiddleware(0.1, 1))
	b.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	require.Equal(t, http.StatusOK, hit(a, "/x"))
	require.Equal(t, http.StatusOK, hit(b, "/x"))
	require.Equal(t, http.StatusTooManyRequests, hit(a, "/x"))
}

func TestRateLimitMiddleware_KeysByIdentity(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		SetIdentity(c, Identity{UserID: c.GetHeader("X-User")})
		c.Next()
	})
	r.Use(RateLimitMiddleware(0.1, 1))
	r.GET("/u", func(c *gin.Context) { c.Status(http.StatusOK) })

	as := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/u", nil)
		req.Header.Set("X-User", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	require.Equal(t, http.StatusOK, as("user-1"))
	require.Equal(t, http.StatusTooManyRequests, as("user-1"))
	require.Equal(t, http.StatusOK, as("user-2"))
}

func TestRateLimitMiddleware_UsesClaimsSubject(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("claims", map[string]interface{}{"sub": "user-123"})
		c.Next()
	})
	r.Use(RateLimitMiddleware(0.5, 1))
	r.GET("/u", func(c *gin.Context) { c.Status(http.StatusOK) })

	require.Equal(t, http.StatusOK, hit(r, "/u"))
	require.Equal(t, http.StatusTooManyRequests, hit(r, "/u"))
}
