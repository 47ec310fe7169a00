package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookingplatform/backend/internal/infrastructure/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, h gin.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Use(h)
	router.Any("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORSWithConfig(t *testing.T) {
	tests := []struct {
		name           string
		cfg            CORSConfig
		method         string
		origin         string
		expectedStatus int
		expectedOrigin string
		expectedCreds  string
	}{
		{
			name:           "empty whitelist sets no headers",
			cfg:            DefaultCORSConfig(),
			method:         http.MethodGet,
			origin:         "http://malicious.com",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "whitelisted origin",
			cfg:            CORSConfig{AllowOrigins: []string{"http://localhost:3000"}, AllowCredentials: true},
			method:         http.MethodGet,
			origin:         "http://localhost:3000",
			expectedStatus: http.StatusOK,
			expectedOrigin: "http://localhost:3000",
			expectedCreds:  "true",
		},
		{
			name:           "origin not on whitelist",
			cfg:            CORSConfig{AllowOrigins: []string{"http://localhost:3000"}},
			method:         http.MethodGet,
			origin:         "http://other.com",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wildcard drops credentials",
			cfg:            CORSConfig{AllowOrigins: []string{"*"}, AllowCredentials: true},
			method:         http.MethodGet,
			origin:         "http://any.com",
			expectedStatus: http.StatusOK,
			expectedOrigin: "*",
		},
		{
			name:           "preflight from allowed origin",
			cfg:            CORSConfig{AllowOrigins: []string{"http://localhost:3000"}, AllowMethods: []string{"POST"}},
			method:         http.MethodOptions,
			origin:         "http://localhost:3000",
			expectedStatus: http.StatusNoContent,
			expectedOrigin: "http://localhost:3000",
		},
		{
			name:           "preflight from unknown origin still 204",
			cfg:            DefaultCORSConfig(),
			method:         http.MethodOptions,
			origin:         "http://other.com",
			expectedStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			req.Header.Set("Origin", tt.origin)
			w := serve(t, CORSWithConfig(tt.cfg), req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.expectedCreds, w.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestCORSConfigFromSettings(t *testing.T) {
	cfg := CORSConfigFromSettings(config.HTTPConfig{
		CORSAllowOrigins: []string{"https://shop.example"},
		CORSAllowMethods: []string{"GET"},
	})

	assert.Equal(t, []string{"https://shop.example"}, cfg.AllowOrigins)
	assert.Equal(t, []string{"GET"}, cfg.AllowMethods)
	assert.Equal(t, DefaultCORSConfig().AllowHeaders, cfg.AllowHeaders)
	assert.Contains(t, cfg.AllowHeaders, "Idempotency-Key")
}

func TestRequestID(t *testing.T) {
	t.Run("generates a UUID when absent", func(t *testing.T) {
		var seen string
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			seen = c.GetString(RequestIDKey)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})

	t.Run("propagates the caller's ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "upstream-id")
		w := serve(t, RequestID(), req)

		assert.Equal(t, "upstream-id", w.Header().Get(RequestIDHeader))
	})
}

func TestSecureWithConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		w := serve(t, Secure(), httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
		assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("hsts enabled", func(t *testing.T) {
		cfg := DefaultSecurityConfig()
		cfg.HSTSEnabled = true
		w := serve(t, SecureWithConfig(cfg), httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
	})
}

func TestTimeout(t *testing.T) {
	t.Run("sets a deadline on the request context", func(t *testing.T) {
		var deadline time.Time
		var ok bool
		router := gin.New()
		router.Use(Timeout(2 * time.Second))
		router.GET("/test", func(c *gin.Context) {
			deadline, ok = c.Request.Context().Deadline()
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(2*time.Second), deadline, time.Second)
		assert.Equal(t, "2s", w.Header().Get("X-Request-Timeout"))
	})

	t.Run("zero timeout leaves the context alone", func(t *testing.T) {
		var ok bool
		router := gin.New()
		router.Use(Timeout(0))
		router.GET("/test", func(c *gin.Context) {
			_, ok = c.Request.Context().Deadline()
			c.Status(http.StatusOK)
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.False(t, ok)
	})
}
