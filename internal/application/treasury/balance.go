package treasury

import (
	"context"

	"github.com/erp/realestate/internal/domain/treasury"
	"github.com/google/uuid"
)

// BalanceCache stores all-time safe balances between voucher writes.
// Entries are invalidated after every committed voucher change; balance
// checks inside a transaction always read the database.
//
// Every safe carries a generation that Invalidate bumps. A miss returns the
// current generation and Set only stores when it is unchanged, so a balance
// computed before a concurrent write cannot outlive that write's invalidation.
type BalanceCache interface {
	Get(ctx context.Context, tenantID, safeID uuid.UUID) (cached *treasury.Balance, generation uint64, ok bool)
	Set(ctx context.Context, tenantID uuid.UUID, generation uint64, balance treasury.Balance)
	Invalidate(ctx context.Context, tenantID uuid.UUID, safeIDs ...uuid.UUID)
}

type noopBalanceCache struct{}

func (noopBalanceCache) Get(context.Context, uuid.UUID, uuid.UUID) (*treasury.Balance, uint64, bool) {
	return nil, 0, false
}

func (noopBalanceCache) Set(context.Context, uuid.UUID, uint64, treasury.Balance) {}

func (noopBalanceCache) Invalidate(context.Context, uuid.UUID, ...uuid.UUID) {}

// NoopBalanceCache returns a cache that never hits
func NoopBalanceCache() BalanceCache {
	return noopBalanceCache{}
}

// BalanceCalculator recomputes safe balances from non-cancelled vouchers
type BalanceCalculator struct {
	receipts treasury.ReceiptVoucherRepository
	payments treasury.PaymentVoucherRepository
}

// NewBalanceCalculator creates a calculator over the given voucher repositories.
// Pass transactional repositories to read inside an open transaction.
func NewBalanceCalculator(receipts treasury.ReceiptVoucherRepository, payments treasury.PaymentVoucherRepository) BalanceCalculator {
	return BalanceCalculator{receipts: receipts, payments: payments}
}

// Balance returns Σ receipts and Σ payments of the safe within the period
func (c BalanceCalculator) Balance(ctx context.Context, tenantID, safeID uuid.UUID, period treasury.Period) (treasury.Balance, error) {
	filter := treasury.VoucherFilter{SafeID: &safeID, Period: period}
	receipts, err := c.receipts.SumAmount(ctx, tenantID, filter)
	if err != nil {
		return treasury.Balance{}, err
	}
	payments, err := c.payments.SumAmount(ctx, tenantID, filter)
	if err != nil {
		return treasury.Balance{}, err
	}
	return treasury.Balance{SafeID: safeID, Receipts: receipts, Payments: payments}, nil
}
