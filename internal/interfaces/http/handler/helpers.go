package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/treasury"
	"github.com/erp/realestate/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// listFilter binds paging query parameters into a repository filter
func (h *BaseHandler) listFilter(c *gin.Context) (shared.Filter, bool) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindError(c, err)
		return shared.Filter{}, false
	}
	req.Normalize()
	return shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}, true
}

// queryUUID parses an optional uuid query parameter
func (h *BaseHandler) queryUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.InvalidInput(c, "Invalid "+name+" format")
		return nil, false
	}
	return &id, true
}

// queryDate parses an optional YYYY-MM-DD query parameter
func (h *BaseHandler) queryDate(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	d, err := shared.ParseDate(raw)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return &d, true
}

// queryBool parses an optional boolean query parameter
func (h *BaseHandler) queryBool(c *gin.Context, name string) (*bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		h.InvalidInput(c, "Invalid "+name+" value")
		return nil, false
	}
	return &b, true
}

// queryDecimal parses an optional decimal query parameter
func (h *BaseHandler) queryDecimal(c *gin.Context, name string) (*decimal.Decimal, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		h.InvalidInput(c, "Invalid "+name+" value")
		return nil, false
	}
	return &d, true
}

// period reads the inclusive from/to query range
func (h *BaseHandler) period(c *gin.Context) (treasury.Period, bool) {
	from, ok := h.queryDate(c, "from")
	if !ok {
		return treasury.Period{}, false
	}
	to, ok := h.queryDate(c, "to")
	if !ok {
		return treasury.Period{}, false
	}
	if from != nil && to != nil && to.Before(*from) {
		h.HandleError(c, shared.NewDomainError("INVALID_PERIOD", "Period start must not be after period end"))
		return treasury.Period{}, false
	}
	return treasury.Period{From: from, To: to}, true
}

// queryFields splits the comma separated fields parameter
func queryFields(c *gin.Context) []string {
	raw := strings.TrimSpace(c.Query("fields"))
	if raw == "" {
		return nil
	}
	var fields []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// queryEnum parses an optional string enum query parameter. Values are
// compared as given, so callers pass the canonical casing.
func queryEnum[T ~string](h *BaseHandler, c *gin.Context, name string, valid func(T) bool) (*T, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v := T(raw)
	if !valid(v) {
		h.InvalidInput(c, "Invalid "+name+" value")
		return nil, false
	}
	return &v, true
}
