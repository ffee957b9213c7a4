package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/infrastructure/auth"
	"github.com/erp/realestate/internal/infrastructure/logger"
	"github.com/erp/realestate/internal/interfaces/http/dto"
	"github.com/erp/realestate/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// setPrincipal simulates an authenticated request without a real token
func setPrincipal(c *gin.Context, tenantID, userID uuid.UUID, roles ...string) {
	c.Set(middleware.PrincipalKey, &auth.Principal{TenantID: tenantID, UserID: userID, Roles: roles})
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name:       "from context",
			setup:      func(c *gin.Context) { c.Set(logger.GinRequestIDKey, "ctx-request-id") },
			expectedID: "ctx-request-id",
		},
		{
			name:       "from header when context empty",
			setup:      func(c *gin.Context) { c.Request.Header.Set(middleware.RequestIDHeader, "header-request-id") },
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(c)
			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestBaseHandlerSuccessWithMeta(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.SuccessWithMeta(c, []string{"RV-000001", "RV-000002"}, 42, 2, 20)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(42), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestBaseHandlerCreatedAndNoContent(t *testing.T) {
	h := &BaseHandler{}
	router := gin.New()
	router.POST("/safes", func(c *gin.Context) { h.Created(c, gin.H{"id": "1"}) })
	router.DELETE("/safes/1", func(c *gin.Context) { h.NoContent(c) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/safes", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/safes/1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestBaseHandlerErrorMethods(t *testing.T) {
	tests := []struct {
		name         string
		method       func(*BaseHandler, *gin.Context)
		expectedCode int
		expectedErr  string
	}{
		{"BadRequest", func(h *BaseHandler, c *gin.Context) { h.BadRequest(c, "bad") }, http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"InvalidInput", func(h *BaseHandler, c *gin.Context) { h.InvalidInput(c, "bad id") }, http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{"NotFound", func(h *BaseHandler, c *gin.Context) { h.NotFound(c, "missing") }, http.StatusNotFound, dto.ErrCodeNotFound},
		{"Unauthorized", func(h *BaseHandler, c *gin.Context) { h.Unauthorized(c, "no token") }, http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"InternalError", func(h *BaseHandler, c *gin.Context) { h.InternalError(c, "boom") }, http.StatusInternalServerError, dto.ErrCodeInternal},
		{"ErrorWithCode", func(h *BaseHandler, c *gin.Context) {
			h.ErrorWithCode(c, dto.ErrCodeInsufficientBalance, "Safe balance is insufficient")
		}, http.StatusUnprocessableEntity, dto.ErrCodeInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(logger.GinRequestIDKey, "req-1")

			tt.method(&BaseHandler{}, c)

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedErr  string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"insufficient balance", shared.NewDomainError("INSUFFICIENT_BALANCE", "Safe balance is insufficient"),
			http.StatusUnprocessableEntity, dto.ErrCodeInsufficientBalance},
		{"has dependents", shared.NewDomainError("HAS_DEPENDENTS", "Customer has contracts"),
			http.StatusConflict, dto.ErrCodeHasDependents},
		{"future date", shared.NewDomainError("FUTURE_DATE", "Date is in the future"),
			http.StatusBadRequest, dto.ErrCodeFutureDate},
		{"wrapped domain error", errors.Join(errors.New("context"), shared.NewDomainError("VOUCHER_LOCKED", "locked")),
			http.StatusUnprocessableEntity, dto.ErrCodeVoucherLocked},
		{"infrastructure error", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			(&BaseHandler{}).HandleError(c, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Equal(t, tt.expectedErr, decodeResponse(t, w).Error.Code)
		})
	}
}

type amountInput struct {
	SafeID uuid.UUID       `json:"safe_id" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"decimal_gt0"`
}

func TestBaseHandlerBindJSON(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		expectedCode int
		expectedErr  string
	}{
		{"valid", `{"safe_id":"` + uuid.NewString() + `","amount":"10.50"}`, http.StatusOK, ""},
		{"empty body", ``, http.StatusBadRequest, dto.ErrCodeInvalidJSON},
		{"malformed", `{"safe_id":`, http.StatusBadRequest, dto.ErrCodeInvalidJSON},
		{"wrong type", `{"safe_id":"` + uuid.NewString() + `","amount":true}`, http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"zero amount", `{"safe_id":"` + uuid.NewString() + `","amount":"0"}`, http.StatusBadRequest, dto.ErrCodeValidation},
		{"missing safe", `{"amount":"5"}`, http.StatusBadRequest, dto.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			router := gin.New()
			router.POST("/vouchers", func(c *gin.Context) {
				var in amountInput
				if !h.bindJSON(c, &in) {
					return
				}
				h.Success(c, in)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/vouchers", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedErr != "" {
				assert.Equal(t, tt.expectedErr, decodeResponse(t, w).Error.Code)
			}
		})
	}
}

func TestBaseHandlerPrincipal(t *testing.T) {
	h := &BaseHandler{}

	t.Run("missing principal is 401", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		_, ok := h.tenant(c)
		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("principal resolves tenant and actor", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		tenantID, userID := uuid.New(), uuid.New()
		setPrincipal(c, tenantID, userID)

		gotTenant, gotUser, ok := h.principal(c)
		require.True(t, ok)
		assert.Equal(t, tenantID, gotTenant)
		assert.Equal(t, userID, gotUser)
		require.NotNil(t, actor(c))
		assert.Equal(t, userID, *actor(c))
	})
}

func TestBaseHandlerQueryParsing(t *testing.T) {
	h := &BaseHandler{}

	newContext := func(target string) (*gin.Context, *httptest.ResponseRecorder) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, target, nil)
		return c, w
	}

	t.Run("period accepts an open range", func(t *testing.T) {
		c, _ := newContext("/?from=2024-01-01")
		period, ok := h.period(c)
		require.True(t, ok)
		require.NotNil(t, period.From)
		assert.Nil(t, period.To)
	})

	t.Run("period rejects reversed range", func(t *testing.T) {
		c, w := newContext("/?from=2024-02-01&to=2024-01-01")
		_, ok := h.period(c)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "ERR_INVALID_PERIOD", decodeResponse(t, w).Error.Code)
	})

	t.Run("bad date", func(t *testing.T) {
		c, w := newContext("/?due_from=01/02/2024")
		_, ok := h.queryDate(c, "due_from")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad uuid", func(t *testing.T) {
		c, w := newContext("/?safe_id=nope")
		_, ok := h.queryUUID(c, "safe_id")
		assert.False(t, ok)
		assert.Equal(t, dto.ErrCodeInvalidInput, decodeResponse(t, w).Error.Code)
	})

	t.Run("enum", func(t *testing.T) {
		c, _ := newContext("/?status=LATE")
		status, ok := queryEnum(h, c, "status", func(s string) bool { return s == "LATE" || s == "PAID" })
		require.True(t, ok)
		assert.Equal(t, "LATE", *status)

		c, w := newContext("/?status=late")
		_, ok = queryEnum(h, c, "status", func(s string) bool { return s == "LATE" })
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad path id", func(t *testing.T) {
		c, w := newContext("/")
		c.Params = gin.Params{{Key: "id", Value: "123"}}
		_, ok := h.pathID(c, "id", "contract")
		assert.False(t, ok)
		assert.Contains(t, w.Body.String(), "Invalid contract ID format")
	})

	t.Run("fields", func(t *testing.T) {
		c, _ := newContext("/?fields=number,%20amount,,date")
		assert.Equal(t, []string{"number", "amount", "date"}, queryFields(c))
	})
}
