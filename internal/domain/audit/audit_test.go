package audit

import (
	"testing"
	"time"

	"github.com/erp/realestate/internal/domain/contract"
	"github.com/erp/realestate/internal/domain/equity"
	"github.com/erp/realestate/internal/domain/inventory"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContract(t *testing.T) *contract.Contract {
	t.Helper()
	c, err := contract.NewContract(uuid.New(), contract.Terms{
		Code:              "C-1",
		CustomerID:        uuid.New(),
		UnitID:            uuid.New(),
		UnitValue:         valueobject.MustMoney("1200"),
		DownPayment:       valueobject.MustMoney("0"),
		InstallmentsCount: 3,
		ScheduleType:      contract.ScheduleMonthly,
		StartDate:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return c
}

func TestContract(t *testing.T) {
	today := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("clean contract", func(t *testing.T) {
		assert.Empty(t, Contract(newContract(t), today))
	})

	t.Run("schedule drift and overpaid row", func(t *testing.T) {
		c := newContract(t)
		c.Installments[0].Amount = decimal.RequireFromString("400.02")
		c.Installments[1].PaidAmount = decimal.RequireFromString("500")
		c.Installments[1].Status = contract.InstallmentPaid

		findings := Contract(c, today)
		checks := map[string]Severity{}
		for _, f := range findings {
			checks[f.Check] = f.Severity
		}
		assert.Equal(t, SeverityError, checks[CheckInstallmentSum])
		assert.Equal(t, SeverityError, checks[CheckInstallmentPaid])
		_, statusFlagged := checks[CheckInstallmentStatus]
		assert.False(t, statusFlagged)
	})

	t.Run("stale stored status", func(t *testing.T) {
		c := newContract(t)
		findings := Contract(c, today.AddDate(0, 0, 5))
		require.Len(t, findings, 1)
		assert.Equal(t, CheckInstallmentStatus, findings[0].Check)
		assert.Equal(t, SeverityWarning, findings[0].Severity)
	})
}

func TestStockAndBalances(t *testing.T) {
	item := inventory.StockLevel{ItemID: uuid.New(), Name: "Cement", MinimumStock: decimal.NewFromInt(10)}

	item.Balance = decimal.NewFromInt(-1)
	require.Len(t, Stock(item), 1)
	assert.Equal(t, SeverityError, Stock(item)[0].Severity)

	item.Balance = decimal.NewFromInt(10)
	assert.Equal(t, CheckItemMinimum, Stock(item)[0].Check)

	item.Balance = decimal.NewFromInt(11)
	assert.Empty(t, Stock(item))

	assert.Len(t, SafeBalance(uuid.New(), "Main", valueobject.MustMoney("-0.01")), 1)
	assert.Empty(t, SafeBalance(uuid.New(), "Main", valueobject.Zero()))

	p := &equity.Partner{Name: "Omar"}
	assert.Equal(t, SeverityWarning, PartnerBalance(p, valueobject.MustMoney("-5"))[0].Severity)
}

func TestGroup(t *testing.T) {
	g, err := equity.NewPartnersGroup(uuid.New(), "G", "")
	require.NoError(t, err)
	require.NoError(t, g.SetMembers([]equity.Member{
		{PartnerID: uuid.New(), Percent: decimal.NewFromInt(50)},
		{PartnerID: uuid.New(), Percent: decimal.NewFromInt(50)},
	}))
	require.NoError(t, g.Finalize(time.Now()))
	assert.Empty(t, Group(g))

	g.Members[1].Percent = decimal.RequireFromString("49.5")
	findings := Group(g)
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityError, findings[0].Severity)
}

func TestReport(t *testing.T) {
	r := NewReport(uuid.New(), time.Now())
	r.Add("safe", SafeBalance(uuid.New(), "Main", valueobject.MustMoney("-1"))...)
	r.Add("safe")
	assert.Equal(t, 2, r.Checked["safe"])
	assert.Equal(t, 1, r.Count(SeverityError))
	assert.False(t, r.IsClean())
}
