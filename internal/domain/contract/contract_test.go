package contract

import (
	"testing"
	"time"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tenantID = uuid.New()

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func money(s string) valueobject.Money {
	return valueobject.MustMoney(s)
}

func validTerms() Terms {
	return Terms{
		Code:              "C-001",
		CustomerID:        uuid.New(),
		UnitID:            uuid.New(),
		UnitValue:         money("300000"),
		DownPayment:       money("60000"),
		InstallmentsCount: 6,
		ScheduleType:      ScheduleMonthly,
		StartDate:         day(2024, 1, 31),
	}
}

func newTestContract(t *testing.T, mutate func(*Terms)) *Contract {
	t.Helper()
	terms := validTerms()
	if mutate != nil {
		mutate(&terms)
	}
	c, err := NewContract(tenantID, terms)
	require.NoError(t, err)
	return c
}

func TestGenerateSchedule(t *testing.T) {
	t.Run("sum reconciles with residue on the last installment", func(t *testing.T) {
		lines, err := GenerateSchedule(money("900000"), 7, day(2024, 1, 1), ScheduleMonthly, 0)
		require.NoError(t, err)
		require.Len(t, lines, 7)

		total := valueobject.Zero()
		for i, l := range lines {
			total = total.Add(l.Amount)
			assert.Equal(t, i+1, l.SeqNo)
			if i < 6 {
				assert.Equal(t, "128571.43", l.Amount.String())
			}
		}
		assert.Equal(t, "128571.42", lines[6].Amount.String())
		assert.Equal(t, "900000.00", total.String())
	})

	t.Run("sum invariant over many splits", func(t *testing.T) {
		for _, remaining := range []string{"100", "0.50", "999999.99", "12345.67", "1"} {
			for count := 1; count <= 12; count++ {
				lines, err := GenerateSchedule(money(remaining), count, day(2024, 1, 1), ScheduleQuarterly, 0)
				require.NoError(t, err)
				sum := valueobject.Zero()
				for _, l := range lines {
					sum = sum.Add(l.Amount)
					assert.False(t, l.Amount.IsNegative())
				}
				assert.True(t, sum.Equal(money(remaining)), "remaining=%s count=%d sum=%s", remaining, count, sum)
			}
		}
	})

	t.Run("due dates step from start and clamp month end", func(t *testing.T) {
		lines, err := GenerateSchedule(money("300"), 3, day(2024, 1, 31), ScheduleMonthly, 0)
		require.NoError(t, err)
		assert.Equal(t, day(2024, 1, 31), lines[0].DueDate)
		assert.Equal(t, day(2024, 2, 29), lines[1].DueDate)
		assert.Equal(t, day(2024, 3, 31), lines[2].DueDate)
	})

	t.Run("quarterly and yearly spacing", func(t *testing.T) {
		q, err := GenerateSchedule(money("200"), 2, day(2024, 5, 15), ScheduleQuarterly, 0)
		require.NoError(t, err)
		assert.Equal(t, day(2024, 8, 15), q[1].DueDate)

		y, err := GenerateSchedule(money("200"), 2, day(2024, 5, 15), ScheduleYearly, 0)
		require.NoError(t, err)
		assert.Equal(t, day(2025, 5, 15), y[1].DueDate)
	})

	t.Run("zero count with nothing remaining", func(t *testing.T) {
		lines, err := GenerateSchedule(valueobject.Zero(), 0, day(2024, 1, 1), ScheduleMonthly, 0)
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("rejects zero count with balance", func(t *testing.T) {
		_, err := GenerateSchedule(money("10"), 0, day(2024, 1, 1), ScheduleMonthly, 0)
		assert.True(t, shared.IsDomainError(err, "INVALID_INSTALLMENTS_COUNT"))
	})

	t.Run("rejects counts that would produce a negative last installment", func(t *testing.T) {
		_, err := GenerateSchedule(money("0.07"), 10, day(2024, 1, 1), ScheduleMonthly, 0)
		assert.True(t, shared.IsDomainError(err, "INVALID_INSTALLMENTS_COUNT"))
	})
}

func TestNewContract(t *testing.T) {
	t.Run("generates schedule", func(t *testing.T) {
		c := newTestContract(t, nil)
		require.Len(t, c.Installments, 6)
		for _, inst := range c.Installments {
			assert.Equal(t, "40000", inst.Amount.String())
			assert.Equal(t, InstallmentPending, inst.Status)
			assert.Equal(t, c.ID, inst.ContractID)
			assert.True(t, inst.PaidAmount.IsZero())
		}
		assert.Equal(t, "240000.00", c.ScheduleTotal().String())
		require.Len(t, c.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeContractCreated, c.GetDomainEvents()[0].EventType())
	})

	t.Run("fully paid down contract has no installments", func(t *testing.T) {
		c := newTestContract(t, func(tr *Terms) {
			tr.DownPayment = tr.UnitValue
			tr.InstallmentsCount = 0
		})
		assert.Empty(t, c.Installments)
	})

	tests := []struct {
		name   string
		mutate func(*Terms)
		code   string
	}{
		{"down payment above value", func(tr *Terms) { tr.DownPayment = money("300000.01") }, "INVALID_DOWN_PAYMENT"},
		{"negative down payment", func(tr *Terms) { tr.DownPayment = money("-1") }, "INVALID_DOWN_PAYMENT"},
		{"fully paid with installments", func(tr *Terms) { tr.DownPayment = tr.UnitValue }, "INVALID_INSTALLMENTS_COUNT"},
		{"balance without installments", func(tr *Terms) { tr.InstallmentsCount = 0 }, "INVALID_INSTALLMENTS_COUNT"},
		{"unit value too small", func(tr *Terms) { tr.UnitValue = money("0"); tr.DownPayment = money("0") }, "INVALID_AMOUNT"},
		{"sub-cent amount", func(tr *Terms) { tr.UnitValue = money("100.001") }, "INVALID_AMOUNT"},
		{"unknown schedule", func(tr *Terms) { tr.ScheduleType = "weekly" }, "INVALID_SCHEDULE_TYPE"},
		{"missing code", func(tr *Terms) { tr.Code = "" }, "INVALID_CODE"},
		{"missing customer", func(tr *Terms) { tr.CustomerID = uuid.Nil }, "INVALID_CUSTOMER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := validTerms()
			tt.mutate(&terms)
			_, err := NewContract(tenantID, terms)
			require.Error(t, err)
			assert.True(t, shared.IsDomainError(err, tt.code), "got %v", err)
		})
	}
}

func TestInstallment_DeriveStatus(t *testing.T) {
	inst := Installment{DueDate: day(2024, 3, 1), Amount: decimal.NewFromInt(100), PaidAmount: decimal.Zero}

	assert.Equal(t, InstallmentPending, inst.DeriveStatus(day(2024, 3, 1)))
	assert.Equal(t, InstallmentLate, inst.DeriveStatus(day(2024, 3, 2)))

	inst.PaidAmount = decimal.NewFromInt(99)
	assert.Equal(t, InstallmentLate, inst.DeriveStatus(day(2024, 4, 1)))
	assert.True(t, inst.IsPartial())

	inst.PaidAmount = decimal.NewFromInt(100)
	assert.Equal(t, InstallmentPaid, inst.DeriveStatus(day(2025, 1, 1)))
	assert.False(t, inst.IsPartial())
}

func TestInstallment_ApplyPayment(t *testing.T) {
	t.Run("clamps to amount and returns excess", func(t *testing.T) {
		inst := Installment{DueDate: day(2024, 3, 1), Amount: decimal.NewFromInt(100), PaidAmount: decimal.NewFromInt(30)}
		applied, excess, err := inst.ApplyPayment(money("120"), day(2024, 2, 1))
		require.NoError(t, err)
		assert.Equal(t, "70.00", applied.String())
		assert.Equal(t, "50.00", excess.String())
		assert.True(t, inst.PaidAmount.Equal(inst.Amount))
		assert.Equal(t, InstallmentPaid, inst.Status)
	})

	t.Run("rejects non-positive", func(t *testing.T) {
		inst := Installment{Amount: decimal.NewFromInt(100)}
		_, _, err := inst.ApplyPayment(valueobject.Zero(), day(2024, 2, 1))
		assert.True(t, shared.IsDomainError(err, "INVALID_AMOUNT"))
	})

	t.Run("reverse restores status", func(t *testing.T) {
		inst := Installment{DueDate: day(2024, 3, 1), Amount: decimal.NewFromInt(100), PaidAmount: decimal.NewFromInt(100), Status: InstallmentPaid}
		require.NoError(t, inst.ReversePayment(money("40"), day(2024, 3, 5)))
		assert.Equal(t, "60", inst.PaidAmount.String())
		assert.Equal(t, InstallmentLate, inst.Status)

		err := inst.ReversePayment(money("61"), day(2024, 3, 5))
		assert.True(t, shared.IsDomainError(err, "INVALID_REVERSAL"))
	})
}

func TestContract_PayInstallment(t *testing.T) {
	t.Run("excess carries over to following installments", func(t *testing.T) {
		c := newTestContract(t, func(tr *Terms) { tr.StartDate = day(2024, 1, 1) })
		today := day(2024, 1, 1)
		first := c.SortedInstallments()[0]

		allocations, unapplied, err := c.PayInstallment(first.ID, money("100000"), today)
		require.NoError(t, err)
		assert.True(t, unapplied.IsZero())
		require.Len(t, allocations, 3)
		assert.Equal(t, "40000.00", allocations[0].Amount.String())
		assert.Equal(t, "40000.00", allocations[1].Amount.String())
		assert.Equal(t, "20000.00", allocations[2].Amount.String())

		sorted := c.SortedInstallments()
		assert.Equal(t, InstallmentPaid, sorted[0].Status)
		assert.Equal(t, InstallmentPaid, sorted[1].Status)
		assert.Equal(t, InstallmentPending, sorted[2].Status)
		assert.Equal(t, "20000.00", sorted[2].Remaining().String())
		assert.Equal(t, "140000.00", c.Outstanding().String())
	})

	t.Run("excess never flows back to earlier installments", func(t *testing.T) {
		c := newTestContract(t, func(tr *Terms) { tr.StartDate = day(2024, 1, 1) })
		third := c.SortedInstallments()[2]

		allocations, unapplied, err := c.PayInstallment(third.ID, money("50000"), day(2024, 1, 1))
		require.NoError(t, err)
		assert.True(t, unapplied.IsZero())
		require.Len(t, allocations, 2)
		assert.Equal(t, 3, allocations[0].SeqNo)
		assert.Equal(t, "40000.00", allocations[0].Amount.String())
		assert.Equal(t, 4, allocations[1].SeqNo)
		assert.Equal(t, "10000.00", allocations[1].Amount.String())

		sorted := c.SortedInstallments()
		assert.True(t, sorted[0].PaidAmount.IsZero())
		assert.True(t, sorted[1].PaidAmount.IsZero())
	})

	t.Run("last installment clamps and reports the rest", func(t *testing.T) {
		c := newTestContract(t, func(tr *Terms) { tr.StartDate = day(2024, 1, 1) })
		_, err := c.PayFIFO(money("200000"), day(2024, 1, 1))
		require.NoError(t, err)
		last := c.SortedInstallments()[5]

		allocations, unapplied, err := c.PayInstallment(last.ID, money("45000"), day(2024, 1, 1))
		require.NoError(t, err)
		require.Len(t, allocations, 1)
		assert.Equal(t, "40000.00", allocations[0].Amount.String())
		assert.Equal(t, "5000.00", unapplied.String())
		assert.Equal(t, InstallmentPaid, last.Status)
		assert.True(t, last.PaidAmount.Equal(last.Amount))
		assert.True(t, c.Outstanding().IsZero())
	})

	t.Run("later installments already paid leave the excess unapplied", func(t *testing.T) {
		c := newTestContract(t, func(tr *Terms) { tr.StartDate = day(2024, 1, 1) })
		sorted := c.SortedInstallments()
		for _, inst := range sorted[1:] {
			_, _, err := c.PayInstallment(inst.ID, money("40000"), day(2024, 1, 1))
			require.NoError(t, err)
		}

		allocations, unapplied, err := c.PayInstallment(sorted[0].ID, money("40000.50"), day(2024, 1, 1))
		require.NoError(t, err)
		require.Len(t, allocations, 1)
		assert.Equal(t, "0.50", unapplied.String())
		assert.Equal(t, InstallmentPaid, sorted[0].Status)
	})

	t.Run("rejects paid installment", func(t *testing.T) {
		c := newTestContract(t, nil)
		first := c.SortedInstallments()[0]
		_, _, err := c.PayInstallment(first.ID, money("40000"), day(2024, 1, 1))
		require.NoError(t, err)
		_, _, err = c.PayInstallment(first.ID, money("1"), day(2024, 1, 1))
		assert.True(t, shared.IsDomainError(err, "INSTALLMENT_ALREADY_PAID"))
	})

	t.Run("unknown installment", func(t *testing.T) {
		c := newTestContract(t, nil)
		_, _, err := c.PayInstallment(uuid.New(), money("1"), day(2024, 1, 1))
		assert.True(t, shared.IsDomainError(err, "NOT_FOUND"))
	})
}

func TestAllocateFIFO(t *testing.T) {
	insts := []*Installment{
		{BaseEntity: shared.NewBaseEntity(), SeqNo: 3, DueDate: day(2024, 3, 1), Amount: decimal.NewFromInt(100), PaidAmount: decimal.Zero},
		{BaseEntity: shared.NewBaseEntity(), SeqNo: 1, DueDate: day(2024, 1, 1), Amount: decimal.NewFromInt(100), PaidAmount: decimal.NewFromInt(100)},
		{BaseEntity: shared.NewBaseEntity(), SeqNo: 2, DueDate: day(2024, 2, 1), Amount: decimal.NewFromInt(100), PaidAmount: decimal.NewFromInt(40)},
	}

	allocations, remainder := AllocateFIFO(insts, money("200"), day(2024, 1, 15))
	require.Len(t, allocations, 2)
	assert.Equal(t, 2, allocations[0].SeqNo)
	assert.Equal(t, "60.00", allocations[0].Amount.String())
	assert.Equal(t, 3, allocations[1].SeqNo)
	assert.Equal(t, "100.00", allocations[1].Amount.String())
	assert.Equal(t, "40.00", remainder.String())
	assert.Equal(t, "160.00", TotalAllocated(allocations).String())
}

func TestContract_PayFIFO(t *testing.T) {
	c := newTestContract(t, nil)
	allocations, err := c.PayFIFO(money("50000"), day(2024, 1, 1))
	require.NoError(t, err)
	require.Len(t, allocations, 2)
	assert.Equal(t, 1, allocations[0].SeqNo)
	assert.Equal(t, 2, allocations[1].SeqNo)
	assert.Equal(t, "10000.00", allocations[1].Amount.String())

	_, err = c.PayFIFO(money("999999"), day(2024, 1, 1))
	assert.True(t, shared.IsDomainError(err, "PAYMENT_EXCEEDS_BALANCE"))
}

func TestContract_ReversePayments(t *testing.T) {
	c := newTestContract(t, func(tr *Terms) { tr.StartDate = day(2024, 1, 1) })
	first := c.SortedInstallments()[0]
	allocations, _, err := c.PayInstallment(first.ID, money("50000"), day(2024, 1, 1))
	require.NoError(t, err)

	payments := NewInstallmentPayments(c, uuid.New(), allocations, "", "", day(2024, 1, 1))
	require.Len(t, payments, 2)
	assert.Equal(t, PaymentMethodCash, payments[0].Method)

	require.NoError(t, c.ReversePayments(payments, day(2024, 1, 1)))
	assert.Equal(t, "240000.00", c.Outstanding().String())
	assert.False(t, c.HasPayments())
	for _, inst := range c.Installments {
		assert.Equal(t, InstallmentPending, inst.Status)
	}
}

func TestContract_UpdateTerms(t *testing.T) {
	t.Run("regenerates schedule before payments", func(t *testing.T) {
		c := newTestContract(t, nil)
		terms := c.Terms()
		terms.InstallmentsCount = 4
		require.NoError(t, c.UpdateTerms(terms))
		require.Len(t, c.Installments, 4)
		assert.Equal(t, "240000.00", c.ScheduleTotal().String())
	})

	t.Run("locked after a payment", func(t *testing.T) {
		c := newTestContract(t, nil)
		_, err := c.PayFIFO(money("1"), day(2024, 1, 1))
		require.NoError(t, err)
		err = c.UpdateTerms(c.Terms())
		assert.True(t, shared.IsDomainError(err, "CONTRACT_LOCKED"))
	})
}

func TestContract_RecalculateSchedule(t *testing.T) {
	t.Run("keeps paid rows and respreads the rest", func(t *testing.T) {
		c := newTestContract(t, func(tr *Terms) {
			tr.StartDate = day(2024, 1, 1)
			tr.UnitValue = money("100000")
			tr.DownPayment = money("0")
			tr.InstallmentsCount = 4
		})
		_, err := c.PayFIFO(money("50000"), day(2024, 1, 1))
		require.NoError(t, err)

		removed, err := c.RecalculateSchedule()
		require.NoError(t, err)
		assert.Len(t, removed, 2)

		sorted := c.SortedInstallments()
		require.Len(t, sorted, 4)
		assert.Equal(t, 3, sorted[2].SeqNo)
		assert.Equal(t, day(2024, 3, 1), sorted[2].DueDate)
		assert.Equal(t, "25000", sorted[3].Amount.StringFixed(0))
		assert.Equal(t, "100000.00", c.ScheduleTotal().String())
	})

	t.Run("refuses partially paid rows", func(t *testing.T) {
		c := newTestContract(t, nil)
		_, err := c.PayFIFO(money("100"), day(2024, 1, 1))
		require.NoError(t, err)
		_, err = c.RecalculateSchedule()
		assert.True(t, shared.IsDomainError(err, "PARTIAL_INSTALLMENT"))
	})
}

func TestContract_SummaryAndLateFees(t *testing.T) {
	c := newTestContract(t, func(tr *Terms) { tr.StartDate = day(2024, 1, 1) })
	_, err := c.PayFIFO(money("60000"), day(2024, 1, 1))
	require.NoError(t, err)

	today := day(2024, 2, 16)
	s := c.Summarize(today)
	assert.Equal(t, "120000.00", s.TotalPaid.String())
	assert.Equal(t, "180000.00", s.Remaining.String())
	assert.True(t, s.CompletionPercent.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, 1, s.PaidCount)
	assert.Equal(t, 1, s.LateCount)
	assert.Equal(t, 4, s.PendingCount)
	assert.Equal(t, 1, s.PartialCount)
	require.NotNil(t, s.NextDue)
	assert.Equal(t, 2, s.NextDue.SeqNo)

	// installment #2 is due 2024-02-01 with 20000 outstanding, 15 days late
	lines, total := c.LateFees(today, DefaultLateFeePercent)
	require.Len(t, lines, 1)
	assert.Equal(t, 15, lines[0].DaysLate)
	assert.Equal(t, "200.00", lines[0].Fee.String())
	assert.Equal(t, "200.00", total.String())
}
