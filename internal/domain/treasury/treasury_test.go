package treasury

import (
	"testing"
	"time"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tenantID = uuid.New()

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewSafe(t *testing.T) {
	t.Run("general safe", func(t *testing.T) {
		s, err := NewSafe(tenantID, "Main", nil, "")
		require.NoError(t, err)
		assert.True(t, s.IsGeneral())
		assert.True(t, s.IsActive)
	})

	t.Run("partner wallet", func(t *testing.T) {
		pid := uuid.New()
		s, err := NewSafe(tenantID, "Wallet", &pid, "")
		require.NoError(t, err)
		assert.True(t, s.IsPartnerWallet)
		assert.Equal(t, pid, *s.PartnerID)
	})

	t.Run("wallet flag without partner", func(t *testing.T) {
		s := &Safe{Name: "broken", IsPartnerWallet: true}
		assert.True(t, shared.IsDomainError(s.Validate(), "INVALID_WALLET"))
	})

	t.Run("partner on general safe", func(t *testing.T) {
		pid := uuid.New()
		s := &Safe{Name: "broken", PartnerID: &pid}
		assert.True(t, shared.IsDomainError(s.Validate(), "INVALID_WALLET"))
	})

	t.Run("inactive safe", func(t *testing.T) {
		s, err := NewSafe(tenantID, "Main", nil, "")
		require.NoError(t, err)
		s.SetActive(false)
		assert.True(t, shared.IsDomainError(s.EnsureActive(), "SAFE_INACTIVE"))
	})
}

func TestFormatVoucherNumber(t *testing.T) {
	assert.Equal(t, "RV-000001", FormatVoucherNumber(VoucherTypeReceipt, 1))
	assert.Equal(t, "PV-000042", FormatVoucherNumber(VoucherTypePayment, 42))
	assert.Equal(t, "RV-1234567", FormatVoucherNumber(VoucherTypeReceipt, 1234567))
}

func TestNewReceiptVoucher(t *testing.T) {
	in := ReceiptInput{VoucherInput: VoucherInput{
		Date:   day(2024, 1, 1),
		Amount: valueobject.MustMoney("100"),
		SafeID: uuid.New(),
	}}

	rv, err := NewReceiptVoucher(tenantID, "RV-000001", in)
	require.NoError(t, err)
	assert.Equal(t, SourceManual, rv.Source)
	require.Len(t, rv.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeVoucherPosted, rv.GetDomainEvents()[0].EventType())

	bad := in
	bad.Amount = valueobject.MustMoney("0.001")
	_, err = NewReceiptVoucher(tenantID, "RV-000002", bad)
	assert.True(t, shared.IsDomainError(err, "INVALID_AMOUNT"))

	bad = in
	bad.SafeID = uuid.Nil
	_, err = NewReceiptVoucher(tenantID, "RV-000003", bad)
	assert.True(t, shared.IsDomainError(err, "INVALID_SAFE"))
}

func TestNewVoucher_DateNotInFuture(t *testing.T) {
	tomorrow := shared.Today().AddDate(0, 0, 1)
	base := VoucherInput{Amount: valueobject.MustMoney("100"), SafeID: uuid.New()}

	t.Run("today is accepted", func(t *testing.T) {
		in := base
		in.Date = shared.Today()
		_, err := NewPaymentVoucher(tenantID, "PV-000001", PaymentInput{VoucherInput: in})
		assert.NoError(t, err)
	})

	t.Run("receipt dated tomorrow", func(t *testing.T) {
		in := base
		in.Date = tomorrow
		_, err := NewReceiptVoucher(tenantID, "RV-000001", ReceiptInput{VoucherInput: in})
		assert.True(t, shared.IsDomainError(err, "FUTURE_DATE"))
	})

	t.Run("payment dated next month", func(t *testing.T) {
		in := base
		in.Date = shared.Today().AddDate(0, 1, 0)
		_, err := NewPaymentVoucher(tenantID, "PV-000002", PaymentInput{VoucherInput: in})
		assert.True(t, shared.IsDomainError(err, "FUTURE_DATE"))
	})
}

func TestVoucher_Cancel(t *testing.T) {
	pv, err := NewPaymentVoucher(tenantID, "PV-000001", PaymentInput{VoucherInput: VoucherInput{
		Date: day(2024, 1, 1), Amount: valueobject.MustMoney("10"), SafeID: uuid.New(),
	}})
	require.NoError(t, err)

	require.NoError(t, pv.CancelPayment("duplicate", day(2024, 1, 2)))
	assert.True(t, pv.IsCancelled)
	assert.Equal(t, "duplicate", pv.CancelReason)
	assert.True(t, shared.IsDomainError(pv.CancelPayment("again", day(2024, 1, 3)), "ALREADY_CANCELLED"))
}

func TestVoucherSource_CountsAsPartnerExpense(t *testing.T) {
	assert.True(t, SourceManual.CountsAsPartnerExpense())
	assert.False(t, SourceTransfer.CountsAsPartnerExpense())
	assert.False(t, SourceSettlement.CountsAsPartnerExpense())
}

func TestPeriod_Contains(t *testing.T) {
	from, to := day(2024, 1, 1), day(2024, 1, 31)
	p := Period{From: &from, To: &to}
	assert.True(t, p.Contains(day(2024, 1, 1)))
	assert.True(t, p.Contains(day(2024, 1, 31)))
	assert.False(t, p.Contains(day(2024, 2, 1)))
	assert.True(t, AllTime.Contains(day(1999, 1, 1)))
	assert.True(t, AllTime.IsAllTime())
}

func TestBuildCashFlow(t *testing.T) {
	safeID := uuid.New()
	mkReceipt := func(n string, d time.Time, amt string, cancelled bool) ReceiptVoucher {
		rv, err := NewReceiptVoucher(tenantID, n, ReceiptInput{VoucherInput: VoucherInput{Date: d, Amount: valueobject.MustMoney(amt), SafeID: safeID}})
		require.NoError(t, err)
		rv.IsCancelled = cancelled
		return *rv
	}
	mkPayment := func(n string, d time.Time, amt string) PaymentVoucher {
		pv, err := NewPaymentVoucher(tenantID, n, PaymentInput{VoucherInput: VoucherInput{Date: d, Amount: valueobject.MustMoney(amt), SafeID: safeID}})
		require.NoError(t, err)
		return *pv
	}

	receipts := []ReceiptVoucher{
		mkReceipt("RV-000002", day(2024, 1, 3), "50", false),
		mkReceipt("RV-000001", day(2024, 1, 1), "100", false),
		mkReceipt("RV-000003", day(2024, 1, 2), "999", true),
	}
	payments := []PaymentVoucher{mkPayment("PV-000001", day(2024, 1, 2), "30")}

	flow := BuildCashFlow(valueobject.MustMoney("10"), receipts, payments)
	require.Len(t, flow, 3)
	assert.Equal(t, "RV-000001", flow[0].Number)
	assert.Equal(t, "110.00", flow[0].Running.String())
	assert.Equal(t, CashOut, flow[1].Direction)
	assert.Equal(t, "80.00", flow[1].Running.String())
	assert.Equal(t, "130.00", flow[2].Running.String())
}

func TestBalance(t *testing.T) {
	b := Balance{Receipts: valueobject.MustMoney("100"), Payments: valueobject.MustMoney("40")}
	assert.Equal(t, "60.00", b.Net().String())
	assert.True(t, b.Covers(valueobject.MustMoney("60")))
	assert.False(t, b.Covers(valueobject.MustMoney("60.01")))

	total := SafesTotals([]SafeSummary{{Balance: b}, {Balance: b}})
	assert.Equal(t, "120.00", total.Net().String())
}

func TestTransferDescriptions(t *testing.T) {
	out, in := TransferDescriptions("Main", "Site", "cement")
	assert.Equal(t, "Transfer to Site: cement", out)
	assert.Equal(t, "Transfer from Main: cement", in)

	out, in = TransferDescriptions("Main", "Site", "")
	assert.Equal(t, "Transfer to Site", out)
	assert.Equal(t, "Transfer from Main", in)
}
