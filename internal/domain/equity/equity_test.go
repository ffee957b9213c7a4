package equity

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

func pct(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func finalizedGroup(t *testing.T, percents ...string) *PartnersGroup {
	t.Helper()
	g, err := NewPartnersGroup(tenantID, "Tower A", "")
	require.NoError(t, err)
	members := make([]Member, 0, len(percents))
	for _, p := range percents {
		members = append(members, Member{PartnerID: uuid.New(), Percent: pct(p)})
	}
	require.NoError(t, g.SetMembers(members))
	require.NoError(t, g.Finalize(time.Now()))
	return g
}

func TestPartnersGroup_Finalize(t *testing.T) {
	t.Run("requires exactly 100", func(t *testing.T) {
		g, err := NewPartnersGroup(tenantID, "G", "")
		require.NoError(t, err)
		require.NoError(t, g.SetMembers([]Member{
			{PartnerID: uuid.New(), Percent: pct("60")},
			{PartnerID: uuid.New(), Percent: pct("39.99")},
		}))
		err = g.Finalize(time.Now())
		assert.True(t, shared.IsDomainError(err, "INVALID_PERCENT_SUM"))
		assert.Equal(t, GroupDraft, g.Status)
	})

	t.Run("empty group", func(t *testing.T) {
		g, err := NewPartnersGroup(tenantID, "G", "")
		require.NoError(t, err)
		assert.True(t, shared.IsDomainError(g.Finalize(time.Now()), "INVALID_PERCENT_SUM"))
	})

	t.Run("finalized group is locked until reopened", func(t *testing.T) {
		g := finalizedGroup(t, "50", "50")
		assert.Equal(t, GroupFinalized, g.Status)
		assert.NotNil(t, g.FinalizedAt)

		err := g.SetMembers([]Member{{PartnerID: uuid.New(), Percent: pct("100")}})
		assert.True(t, shared.IsDomainError(err, "GROUP_FINALIZED"))

		require.NoError(t, g.Reopen())
		require.NoError(t, g.SetMembers([]Member{{PartnerID: uuid.New(), Percent: pct("100")}}))
	})
}

func TestPartnersGroup_SetMembers(t *testing.T) {
	g, err := NewPartnersGroup(tenantID, "G", "")
	require.NoError(t, err)
	pid := uuid.New()

	tests := []struct {
		name    string
		members []Member
		code    string
	}{
		{"duplicate partner", []Member{{PartnerID: pid, Percent: pct("50")}, {PartnerID: pid, Percent: pct("50")}}, "DUPLICATE_MEMBER"},
		{"zero percent", []Member{{PartnerID: pid, Percent: pct("0")}}, "INVALID_PERCENT"},
		{"over 100", []Member{{PartnerID: pid, Percent: pct("100.01")}}, "INVALID_PERCENT"},
		{"three decimals", []Member{{PartnerID: pid, Percent: pct("33.333")}}, "INVALID_PERCENT"},
		{"missing partner", []Member{{Percent: pct("10")}}, "INVALID_PARTNER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, shared.IsDomainError(g.SetMembers(tt.members), tt.code))
		})
	}
}

func TestPartnersGroup_Distribute(t *testing.T) {
	t.Run("conserves cent-exact shares", func(t *testing.T) {
		g := finalizedGroup(t, "50", "30", "20")
		shares, err := g.Distribute(valueobject.MustMoney("40000"))
		require.NoError(t, err)
		require.Len(t, shares, 3)
		assert.Equal(t, "20000.00", shares[0].Amount.String())
		assert.Equal(t, "12000.00", shares[1].Amount.String())
		assert.Equal(t, "8000.00", shares[2].Amount.String())
		assert.Equal(t, "40000.00", TotalShares(shares).String())
	})

	t.Run("rounds each share half up", func(t *testing.T) {
		g := finalizedGroup(t, "33.33", "33.33", "33.34")
		shares, err := g.Distribute(valueobject.MustMoney("100"))
		require.NoError(t, err)
		assert.Equal(t, "33.33", shares[0].Amount.String())
		assert.Equal(t, "33.34", shares[2].Amount.String())
		assert.Equal(t, "100.00", TotalShares(shares).String())
	})

	t.Run("draft group cannot distribute", func(t *testing.T) {
		g, err := NewPartnersGroup(tenantID, "G", "")
		require.NoError(t, err)
		_, err = g.Distribute(valueobject.MustMoney("1"))
		assert.True(t, shared.IsDomainError(err, "GROUP_NOT_FINALIZED"))
	})

	t.Run("reversal negates distribution", func(t *testing.T) {
		g := finalizedGroup(t, "70", "30")
		shares, err := g.Distribute(valueobject.MustMoney("1000"))
		require.NoError(t, err)
		voucherID := uuid.New()
		entries := NewDistributionEntries(g, shares, voucherID, nil, time.Now())
		reversals := NewReversalEntries(entries, time.Now())
		require.Len(t, reversals, 2)

		sum := decimal.Zero
		for _, e := range append(entries, reversals...) {
			sum = sum.Add(e.Amount)
			assert.Equal(t, voucherID, e.ReceiptVoucherID)
		}
		assert.True(t, sum.IsZero())
		assert.Equal(t, ShareReversal, reversals[0].Kind)
		assert.Empty(t, NewReversalEntries(reversals, time.Now()))
	})
}

func TestPartnersGroup_PercentDrift(t *testing.T) {
	g := &PartnersGroup{Members: []Member{{Percent: pct("50")}, {Percent: pct("49.99")}}}
	assert.True(t, g.IsPercentValid())
	g.Members[1].Percent = pct("49.98")
	assert.False(t, g.IsPercentValid())
}

func TestPartner_ComputeBalance(t *testing.T) {
	p, err := NewPartner(tenantID, "P1", PartnerDetails{
		Name:           "Omar",
		SharePercent:   valueobject.MustPercentage("25"),
		OpeningBalance: valueobject.MustMoney("1000"),
	})
	require.NoError(t, err)

	b := p.ComputeBalance(valueobject.MustMoney("500"), []valueobject.Money{
		valueobject.MustMoney("10000"),
		valueobject.MustMoney("-2000"),
	})
	assert.Equal(t, "2000.00", b.GeneralSafeShare.String())
	assert.Equal(t, "3500.00", b.Total.String())
}
