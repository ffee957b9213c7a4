package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/realestate/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type voucherInput struct {
	Amount       decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	DownPayment  decimal.Decimal `json:"down_payment" binding:"decimal_gte0"`
	SharePercent decimal.Decimal `json:"share_percent" binding:"percent"`
	Description  string          `json:"description" binding:"required,max=10"`
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	assert.NotNil(t, v)
}

func TestDecimalValidations(t *testing.T) {
	v := validator.New()
	RegisterValidations(v)

	valid := voucherInput{
		Amount:       decimal.RequireFromString("0.01"),
		DownPayment:  decimal.Zero,
		SharePercent: decimal.NewFromInt(100),
		Description:  "rent",
	}
	require.NoError(t, v.Struct(valid))

	tests := []struct {
		name   string
		mutate func(*voucherInput)
		field  string
		tag    string
	}{
		{"zero amount", func(in *voucherInput) { in.Amount = decimal.Zero }, "amount", "decimal_gt0"},
		{"negative amount", func(in *voucherInput) { in.Amount = decimal.NewFromInt(-5) }, "amount", "decimal_gt0"},
		{"negative down payment", func(in *voucherInput) { in.DownPayment = decimal.RequireFromString("-0.01") }, "down_payment", "decimal_gte0"},
		{"percent above 100", func(in *voucherInput) { in.SharePercent = decimal.RequireFromString("100.01") }, "share_percent", "percent"},
		{"negative percent", func(in *voucherInput) { in.SharePercent = decimal.NewFromInt(-1) }, "share_percent", "percent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)

			err := v.Struct(in)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field())
			assert.Equal(t, tt.tag, verrs[0].Tag())
		})
	}
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()

	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req voucherInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(req))
	})

	t.Run("reports each invalid field by json name", func(t *testing.T) {
		body := strings.NewReader(`{"amount": "0", "share_percent": "150", "description": ""}`)
		req := httptest.NewRequest(http.MethodPost, "/test", body)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(RequestIDHeader, "req-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-1", resp.Error.RequestID)

		messages := map[string]string{}
		for _, d := range resp.Error.Details {
			messages[d.Field] = d.Message
		}
		assert.Equal(t, "Must be a decimal greater than zero", messages["amount"])
		assert.Equal(t, "Must be a percentage between 0 and 100", messages["share_percent"])
		assert.Equal(t, "This field is required", messages["description"])
	})

	t.Run("accepts valid input", func(t *testing.T) {
		body := strings.NewReader(`{"amount": "250.50", "down_payment": "0", "share_percent": "25", "description": "rent"}`)
		req := httptest.NewRequest(http.MethodPost, "/test", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-2")

	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
}
