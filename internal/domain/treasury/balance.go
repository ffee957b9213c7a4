package treasury

import (
	"sort"
	"time"

	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Period bounds a balance query by voucher date; nil ends are open
type Period struct {
	From *time.Time
	To   *time.Time
}

// AllTime is the unbounded period
var AllTime = Period{}

// IsAllTime reports whether neither end is set
func (p Period) IsAllTime() bool {
	return p.From == nil && p.To == nil
}

// Contains reports whether date falls within the period, both ends inclusive
func (p Period) Contains(date time.Time) bool {
	if p.From != nil && date.Before(*p.From) {
		return false
	}
	if p.To != nil && date.After(*p.To) {
		return false
	}
	return true
}

// Balance is the receipts/payments position of a safe over a period
type Balance struct {
	SafeID   uuid.UUID
	Receipts valueobject.Money
	Payments valueobject.Money
}

// Net returns receipts minus payments
func (b Balance) Net() valueobject.Money {
	return b.Receipts.Sub(b.Payments)
}

// Covers reports whether the balance can fund an outgoing amount
func (b Balance) Covers(amount valueobject.Money) bool {
	return b.Net().GreaterThanOrEqual(amount)
}

// CashFlowDirection marks a cash flow line as money in or out
type CashFlowDirection string

const (
	CashIn  CashFlowDirection = "IN"
	CashOut CashFlowDirection = "OUT"
)

// CashFlowEntry is one line of a safe's cash flow statement
type CashFlowEntry struct {
	Date        time.Time
	Direction   CashFlowDirection
	VoucherID   uuid.UUID
	Number      string
	Description string
	Amount      valueobject.Money
	Running     valueobject.Money
	createdAt   time.Time
}

// BuildCashFlow merges non-cancelled receipts and payments in date order and
// carries a running balance starting from opening. Vouchers on the same date
// keep their creation order.
func BuildCashFlow(opening valueobject.Money, receipts []ReceiptVoucher, payments []PaymentVoucher) []CashFlowEntry {
	entries := make([]CashFlowEntry, 0, len(receipts)+len(payments))
	for i := range receipts {
		r := &receipts[i]
		if r.IsCancelled {
			continue
		}
		entries = append(entries, CashFlowEntry{
			Date: r.Date, Direction: CashIn, VoucherID: r.ID, Number: r.Number,
			Description: r.Description, Amount: r.AmountMoney(), createdAt: r.CreatedAt,
		})
	}
	for i := range payments {
		p := &payments[i]
		if p.IsCancelled {
			continue
		}
		entries = append(entries, CashFlowEntry{
			Date: p.Date, Direction: CashOut, VoucherID: p.ID, Number: p.Number,
			Description: p.Description, Amount: p.AmountMoney(), createdAt: p.CreatedAt,
		})
	}
	sort.SliceStable(entries, func(a, b int) bool {
		if !entries[a].Date.Equal(entries[b].Date) {
			return entries[a].Date.Before(entries[b].Date)
		}
		return entries[a].createdAt.Before(entries[b].createdAt)
	})

	running := opening
	for i := range entries {
		if entries[i].Direction == CashIn {
			running = running.Add(entries[i].Amount)
		} else {
			running = running.Sub(entries[i].Amount)
		}
		entries[i].Running = running
	}
	return entries
}

// SafeSummary is the all-time position of one safe
type SafeSummary struct {
	Safe    Safe
	Balance Balance
}

// SafesTotals sums receipts, payments and net balance over a list of safes
func SafesTotals(summaries []SafeSummary) Balance {
	total := Balance{Receipts: valueobject.Zero(), Payments: valueobject.Zero()}
	for _, s := range summaries {
		total.Receipts = total.Receipts.Add(s.Balance.Receipts)
		total.Payments = total.Payments.Add(s.Balance.Payments)
	}
	return total
}
