package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func bodyLimitRouter(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BodyLimit(limit))
	r.POST("/vouchers/receipts", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.String(http.StatusRequestEntityTooLarge, "read past limit")
				return
			}
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusCreated)
	})
	return r
}

func TestBodyLimit(t *testing.T) {
	receipt := `{"safe_id":"3f0c","amount":"2500.00","receipt_type":"installment"}`

	tests := []struct {
		name          string
		limit         int64
		body          string
		contentLength int64
		wantStatus    int
		wantBody      string
	}{
		{"within limit", 1024, receipt, int64(len(receipt)), http.StatusCreated, ""},
		{"declared length too large", 16, receipt, int64(len(receipt)), http.StatusRequestEntityTooLarge, "ERR_REQUEST_TOO_LARGE"},
		{"chunked body capped while reading", 16, receipt, -1, http.StatusRequestEntityTooLarge, "read past limit"},
		{"limit disabled", 0, strings.Repeat("x", 4096), 4096, http.StatusCreated, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/vouchers/receipts", strings.NewReader(tt.body))
			req.ContentLength = tt.contentLength
			w := httptest.NewRecorder()

			bodyLimitRouter(tt.limit).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
		})
	}
}
