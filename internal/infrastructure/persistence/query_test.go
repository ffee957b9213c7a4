package persistence

import (
	"testing"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestValidateSortOrder(t *testing.T) {
	for in, want := range map[string]string{
		"asc":                      "ASC",
		"  ASC ":                   "ASC",
		"Asc":                      "ASC",
		"desc":                     "DESC",
		"":                         "DESC",
		"ASC; DROP TABLE safes;--": "DESC",
	} {
		assert.Equal(t, want, ValidateSortOrder(in), "input %q", in)
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"number", "number"},
		{"  amount ", "amount"},
		{"created_at", "created_at"},
		{"", "date"},
		{"AMOUNT", "date"},
		{"amount desc", "date"},
		{"number; DROP TABLE receipt_vouchers;--", "date"},
		{"(SELECT 1)", "date"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateSortField(tt.in, VoucherSortFields, "date"))
		})
	}
}

func TestSortWhitelistsAllowIdentity(t *testing.T) {
	for _, allowed := range []map[string]bool{
		CommonSortFields, CodeNameSortFields, NameSortFields, ContractSortFields,
		InstallmentSortFields, VoucherSortFields, SettlementSortFields,
		StockMoveSortFields, NotificationSortFields,
	} {
		assert.True(t, allowed["id"])
		assert.True(t, allowed["created_at"])
	}
}

func TestQueryHelpers_SQL(t *testing.T) {
	db := setupTestDB(t)
	dry := func(build func(*gorm.DB) *gorm.DB) *gorm.Statement {
		var safes []models.SafeModel
		return build(db.Session(&gorm.Session{DryRun: true}).Model(&models.SafeModel{})).Find(&safes).Statement
	}

	t.Run("whitelisted order", func(t *testing.T) {
		stmt := dry(func(q *gorm.DB) *gorm.DB {
			return applyOrder(q, shared.Filter{OrderBy: "name", OrderDir: "asc"}, NameSortFields, "created_at DESC")
		})
		assert.Contains(t, stmt.SQL.String(), "ORDER BY name ASC, id ASC")
	})

	t.Run("unknown order falls back", func(t *testing.T) {
		stmt := dry(func(q *gorm.DB) *gorm.DB {
			return applyOrder(q, shared.Filter{OrderBy: "balance"}, NameSortFields, "created_at DESC")
		})
		assert.Contains(t, stmt.SQL.String(), "ORDER BY created_at DESC")
		assert.NotContains(t, stmt.SQL.String(), "balance")
	})

	t.Run("search lowers term and columns", func(t *testing.T) {
		stmt := dry(func(q *gorm.DB) *gorm.DB { return applySearch(q, " Main ", "name", "code") })
		assert.Contains(t, stmt.SQL.String(), "LOWER(name) LIKE ? OR LOWER(code) LIKE ?")
		assert.Equal(t, []any{"%main%", "%main%"}, stmt.Vars)
	})

	t.Run("blank search adds nothing", func(t *testing.T) {
		stmt := dry(func(q *gorm.DB) *gorm.DB { return applySearch(q, "   ", "name") })
		assert.NotContains(t, stmt.SQL.String(), "LIKE")
	})

	t.Run("page size zero returns all rows", func(t *testing.T) {
		stmt := dry(func(q *gorm.DB) *gorm.DB { return applyPagination(q, shared.Filter{Page: 3}) })
		assert.NotContains(t, stmt.SQL.String(), "LIMIT")
	})
}
