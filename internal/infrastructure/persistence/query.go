package persistence

import (
	"strings"

	"github.com/erp/realestate/internal/domain/shared"
	"gorm.io/gorm"
)

// sortable builds an ORDER BY whitelist. id and created_at are always allowed.
func sortable(columns ...string) map[string]bool {
	allowed := map[string]bool{"id": true, "created_at": true}
	for _, c := range columns {
		allowed[c] = true
	}
	return allowed
}

// Sort whitelists per table. Anything else in a list request's order_by is
// ignored and the repository default applies.
var (
	CommonSortFields       = sortable("updated_at")
	CodeNameSortFields     = sortable("updated_at", "code", "name")
	NameSortFields         = sortable("updated_at", "name")
	ContractSortFields     = sortable("updated_at", "code", "unit_value", "down_payment", "start_date")
	InstallmentSortFields  = sortable("seq_no", "due_date", "amount", "paid_amount", "status")
	VoucherSortFields      = sortable("number", "date", "amount")
	SettlementSortFields   = sortable("number", "amount", "status", "settlement_date")
	StockMoveSortFields    = sortable("date", "qty", "direction")
	NotificationSortFields = sortable("priority", "type")
)

// ValidateSortOrder returns "ASC" for any casing of asc and "DESC" otherwise
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns the trimmed field when whitelisted, else fallback.
// Matching is case sensitive.
func ValidateSortField(sortField string, allowed map[string]bool, fallback string) string {
	if f := strings.TrimSpace(sortField); allowed[f] {
		return f
	}
	return fallback
}

// applyOrder orders by a whitelisted field with id as tie breaker, or by
// defaultOrder when the filter names none
func applyOrder(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultOrder string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, "")
	if field == "" {
		return query.Order(defaultOrder)
	}
	return query.Order(field + " " + ValidateSortOrder(filter.OrderDir) + ", id ASC")
}

// applyPagination limits the query to the requested page. PageSize 0 returns every row.
func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.PageSize <= 0 {
		return query
	}
	return query.Offset(filter.Offset()).Limit(filter.PageSize)
}

// applySearch matches the search term case-insensitively against the given columns
func applySearch(query *gorm.DB, search string, columns ...string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" || len(columns) == 0 {
		return query
	}
	pattern := "%" + strings.ToLower(search) + "%"
	clauses := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		clauses[i] = "LOWER(" + col + ") LIKE ?"
		args[i] = pattern
	}
	return query.Where(strings.Join(clauses, " OR "), args...)
}
