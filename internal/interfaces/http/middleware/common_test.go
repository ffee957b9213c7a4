package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/erp/realestate/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveWith(mw gin.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(mw)
	router.GET("/safes", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func fromOrigin(method, origin string) *http.Request {
	req := httptest.NewRequest(method, "/safes", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestCORSWithConfig(t *testing.T) {
	listed := CORSWithConfig(CORSConfig{
		AllowOrigins:     []string{"https://office.example", "https://field.example"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           90 * time.Minute,
	})

	tests := []struct {
		name        string
		mw          gin.HandlerFunc
		method      string
		origin      string
		code        int
		allowOrigin string
		credentials string
	}{
		{"listed origin", listed, http.MethodGet, "https://field.example", http.StatusOK, "https://field.example", "true"},
		{"unlisted origin", listed, http.MethodGet, "https://evil.example", http.StatusOK, "", ""},
		{"same origin", listed, http.MethodGet, "", http.StatusOK, "", ""},
		{"preflight from listed origin", listed, http.MethodOptions, "https://office.example", http.StatusNoContent, "https://office.example", "true"},
		{"preflight from unlisted origin", listed, http.MethodOptions, "https://evil.example", http.StatusNoContent, "", ""},
		{"default config allows nobody", CORSWithConfig(DefaultCORSConfig()), http.MethodGet, "https://office.example", http.StatusOK, "", ""},
		{
			"wildcard drops credentials",
			CORSWithConfig(CORSConfig{AllowOrigins: []string{"*"}, AllowCredentials: true}),
			http.MethodGet, "https://anywhere.example", http.StatusOK, "*", "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveWith(tt.mw, fromOrigin(tt.method, tt.origin))
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.allowOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.credentials, w.Header().Get("Access-Control-Allow-Credentials"))
		})
	}

	t.Run("static headers", func(t *testing.T) {
		w := serveWith(listed, fromOrigin(http.MethodGet, "https://office.example"))
		assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Authorization", w.Header().Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "5400", w.Header().Get("Access-Control-Max-Age"))
		assert.Equal(t, "Origin", w.Header().Get("Vary"))
	})
}

func TestDefaultCORSConfig_ExposesRateLimitHeaders(t *testing.T) {
	cfg := DefaultCORSConfig()
	assert.Empty(t, cfg.AllowOrigins)
	assert.Subset(t, cfg.ExposeHeaders, []string{RequestIDHeader, "Retry-After", "X-RateLimit-Remaining"})
	assert.NotContains(t, cfg.AllowHeaders, "X-Tenant-ID")
}

func TestRequestID(t *testing.T) {
	t.Run("mints a uuid", func(t *testing.T) {
		w := serveWith(RequestID(), httptest.NewRequest(http.MethodGet, "/safes", nil))
		id := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/safes", nil)
		req.Header.Set(RequestIDHeader, "upstream-42")
		w := serveWith(RequestID(), req)
		assert.Equal(t, "upstream-42", w.Body.String())
	})

	t.Run("cuts long ids", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/safes", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", 300))
		w := serveWith(RequestID(), req)
		assert.Len(t, w.Body.String(), maxRequestIDLength)
	})

	t.Run("context logger carries the id", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/safes", func(c *gin.Context) {
			assert.Equal(t, GetRequestID(c), logger.GetRequestID(c.Request.Context()))
			c.Status(http.StatusNoContent)
		})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/safes", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestSecureWithConfig(t *testing.T) {
	tests := []struct {
		name string
		mw   gin.HandlerFunc
		hsts string
		csp  string
	}{
		{"defaults", Secure(), "", "default-src 'none'; frame-ancestors 'none'"},
		{"hsts with subdomains", SecureWithConfig(SecurityConfig{HSTSEnabled: true, HSTSMaxAge: 3600, HSTSIncludeSubdomains: true}), "max-age=3600; includeSubDomains", ""},
		{"hsts only", SecureWithConfig(SecurityConfig{HSTSEnabled: true, HSTSMaxAge: 60}), "max-age=60", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveWith(tt.mw, httptest.NewRequest(http.MethodGet, "/safes", nil))
			assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, tt.hsts, w.Header().Get("Strict-Transport-Security"))
			assert.Equal(t, tt.csp, w.Header().Get("Content-Security-Policy"))
		})
	}
}
