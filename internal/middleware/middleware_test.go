package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/healthcare-api/pkg/auth"
	"github.com/jwalitptl/healthcare-api/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestID(zerolog.New(&buf)), Logger())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	req := httptest.NewRequest(http.MethodGet, "/ping?x=1", nil)
	req.Header.Set(HeaderXRequestID, "req-1")
	w := serve(r, req)

	assert.Equal(t, "req-1", w.Header().Get(HeaderXRequestID))
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), `"path":"/ping?x=1"`)
	assert.Contains(t, buf.String(), `"level":"warn"`)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, w.Header().Get(HeaderXRequestID), 36)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":500,"message":"Internal server error"}}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(DefaultCORSConfig([]string{"https://app.example.com"})))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = serve(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitPerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 2})
	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	from := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = ip + ":1234"
		return serve(r, req).Code
	}

	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.2"))
}

func TestActor(t *testing.T) {
	jwtSvc := auth.NewJWTService("secret", "healthcare-api")
	token, err := jwtSvc.GenerateToken("dr.house", time.Hour)
	require.NoError(t, err)

	build := func(required bool) (*gin.Engine, *string) {
		var seen string
		r := gin.New()
		r.Use(NewAuthMiddleware(jwtSvc, required).Actor())
		handler := func(c *gin.Context) {
			seen, _ = auth.ActorFromContext(c.Request.Context())
			c.Status(http.StatusOK)
		}
		r.GET("/x", handler)
		r.POST("/x", handler)
		return r, &seen
	}

	t.Run("valid token names the actor", func(t *testing.T) {
		r, seen := build(true)
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		w := serve(r, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "dr.house", *seen)
	})

	t.Run("optional auth lets anonymous mutations through", func(t *testing.T) {
		r, seen := build(false)

		w := serve(r, httptest.NewRequest(http.MethodPost, "/x", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, *seen)
	})

	t.Run("required auth rejects anonymous mutations", func(t *testing.T) {
		r, _ := build(true)

		assert.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest(http.MethodPost, "/x", nil)).Code)
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)

		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
	})
}

func TestMetrics(t *testing.T) {
	m := metrics.New("test", prometheus.NewRegistry())
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/facilities/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/facilities/1", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/facilities/2", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestTotal.WithLabelValues("GET", "/facilities/:id", "200")))
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(SizeLimit(8))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("0123")))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil).WithContext(context.Background()))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
