package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func reply(body string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, body) }
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRouter_MountsGroupsUnderVersion(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		prefix  string
		missing string
	}{
		{"default version", nil, "/api/v1", "/api/v2"},
		{"custom version", []Option{WithAPIVersion("v2")}, "/api/v2", "/api/v1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			safes := NewGroup("/safes").
				GET("", reply("list")).
				POST("/transfer", reply("transfer")).
				PUT("/:id", reply("update")).
				DELETE("/:id", reply("delete"))
			NewRouter(engine, tt.opts...).Register(safes).Setup()

			for method, path := range map[string]string{
				http.MethodGet:    "/safes",
				http.MethodPost:   "/safes/transfer",
				http.MethodPut:    "/safes/42",
				http.MethodDelete: "/safes/42",
			} {
				assert.Equal(t, http.StatusOK, serve(engine, method, tt.prefix+path).Code, "%s %s", method, path)
			}
			assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, tt.missing+"/safes").Code)
		})
	}
}

func TestRouter_MiddlewareScope(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", reply("ok"))

	stamp := func(c *gin.Context) {
		c.Header("X-Audit", "on")
		c.Next()
	}
	audit := NewGroup("/audit").Use(stamp).GET("/run", reply("run"))
	units := NewGroup("/units").GET("", reply("units"))

	var authCalls int
	NewRouter(engine).
		Use(func(c *gin.Context) { authCalls++; c.Next() }).
		Register(audit, units).
		Setup()

	w := serve(engine, http.MethodGet, "/api/v1/audit/run")
	assert.Equal(t, "run", w.Body.String())
	assert.Equal(t, "on", w.Header().Get("X-Audit"))

	w = serve(engine, http.MethodGet, "/api/v1/units")
	assert.Equal(t, "units", w.Body.String())
	assert.Empty(t, w.Header().Get("X-Audit"))

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
	assert.Equal(t, 2, authCalls)
}

func TestRouter_UseCanRejectVersionedRoutes(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", reply("ok"))
	NewRouter(engine).
		Use(func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }).
		Register(NewGroup("/contracts").GET("", reply("contracts"))).
		Setup()

	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/v1/contracts").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
}
