package treasury

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/realestate/internal/application/uow"
	"github.com/erp/realestate/internal/domain/contract"
	"github.com/erp/realestate/internal/domain/equity"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/erp/realestate/internal/domain/treasury"
	"github.com/google/uuid"
)

// Sequence keys of the per-tenant document counters
const (
	SequenceReceipt = "RV"
	SequencePayment = "PV"
)

// paymentInput describes money received against a contract.
// A nil installmentID spreads the amount FIFO over the whole schedule.
type paymentInput struct {
	tenantID      uuid.UUID
	contractID    uuid.UUID
	installmentID *uuid.UUID
	safeID        uuid.UUID
	partnerID     *uuid.UUID
	amount        valueobject.Money
	date          time.Time
	method        contract.PaymentMethod
	note          string
	createdBy     uuid.UUID
}

type appliedPayment struct {
	contract    *contract.Contract
	receipt     *treasury.ReceiptVoucher
	allocations []contract.Allocation
	unapplied   valueobject.Money
	shares      []equity.Share
}

func (p *appliedPayment) events() []shared.DomainEvent {
	return shared.DrainEvents(p.contract, p.receipt)
}

// paymentApplier posts an installment payment inside an open transaction:
// the receipt voucher, one allocation record per funded installment, the
// updated installment rows and the partner share entries.
type paymentApplier struct {
	repos uow.TransactionalRepositories
}

func (a paymentApplier) apply(ctx context.Context, in paymentInput) (*appliedPayment, error) {
	if !in.amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if in.date.After(shared.Today()) {
		return nil, shared.NewDomainError("FUTURE_DATE", "Payment date cannot be in the future")
	}
	if in.method != "" && !in.method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}

	// Lock the contract before its installments are read
	c, err := a.repos.Contracts().FindByIDForUpdate(ctx, in.tenantID, in.contractID)
	if err != nil {
		return nil, err
	}

	safe, err := a.repos.Safes().FindByIDForTenant(ctx, in.tenantID, in.safeID)
	if err != nil {
		return nil, err
	}
	if err := safe.EnsureActive(); err != nil {
		return nil, err
	}

	today := shared.Today()
	var allocations []contract.Allocation
	unapplied := valueobject.Zero()
	if in.installmentID != nil {
		allocations, unapplied, err = c.PayInstallment(*in.installmentID, in.amount, today)
	} else {
		allocations, err = c.PayFIFO(in.amount, today)
	}
	if err != nil {
		return nil, err
	}
	// The voucher records only the cash that reached the schedule
	received := contract.TotalAllocated(allocations)

	seq, err := a.repos.Sequences().Next(ctx, in.tenantID, SequenceReceipt)
	if err != nil {
		return nil, err
	}
	description := in.note
	if description == "" {
		description = fmt.Sprintf("Installment payment for contract %s", c.Code)
	}
	receipt, err := treasury.NewReceiptVoucher(in.tenantID, treasury.FormatVoucherNumber(treasury.VoucherTypeReceipt, seq), treasury.ReceiptInput{
		VoucherInput: treasury.VoucherInput{
			Date:        in.date,
			Amount:      received,
			SafeID:      safe.ID,
			PartnerID:   in.partnerID,
			Description: description,
			Source:      treasury.SourceInstallment,
			SourceID:    &c.ID,
			CreatedBy:   in.createdBy,
		},
		CustomerID:    &c.CustomerID,
		ContractID:    &c.ID,
		InstallmentID: in.installmentID,
	})
	if err != nil {
		return nil, err
	}
	if err := a.repos.Receipts().Save(ctx, receipt); err != nil {
		return nil, err
	}

	records := contract.NewInstallmentPayments(c, receipt.ID, allocations, in.method, in.note, in.date)
	if err := a.repos.InstallmentPayments().SaveBatch(ctx, records); err != nil {
		return nil, err
	}
	if err := a.repos.Contracts().SaveInstallments(ctx, touchedInstallments(c, allocationIDs(allocations))); err != nil {
		return nil, err
	}

	result := &appliedPayment{contract: c, receipt: receipt, allocations: allocations, unapplied: unapplied}
	if c.PartnersGroupID == nil {
		return result, nil
	}

	// Distribute what was actually applied to the schedule
	group, err := a.repos.Groups().FindByIDForTenant(ctx, in.tenantID, *c.PartnersGroupID)
	if err != nil {
		return nil, err
	}
	shares, err := group.Distribute(received)
	if err != nil {
		return nil, err
	}
	entries := equity.NewDistributionEntries(group, shares, receipt.ID, &c.ID, in.date)
	if err := a.repos.ShareEntries().SaveBatch(ctx, entries); err != nil {
		return nil, err
	}
	result.shares = shares
	return result, nil
}

// reverseReceipt undoes everything a receipt posted and cancels it.
// Installment payments are reversed on the owning contract and every
// distribution entry gets a negated REVERSAL entry.
func (a paymentApplier) reverseReceipt(ctx context.Context, rv *treasury.ReceiptVoucher, reason string, at time.Time) (*contract.Contract, error) {
	payments, err := a.repos.InstallmentPayments().FindActiveByVoucher(ctx, rv.TenantID, rv.ID)
	if err != nil {
		return nil, err
	}

	var c *contract.Contract
	if len(payments) > 0 {
		c, err = a.repos.Contracts().FindByIDForUpdate(ctx, rv.TenantID, payments[0].ContractID)
		if err != nil {
			return nil, err
		}
		if err := c.ReversePayments(payments, shared.DateOf(at)); err != nil {
			return nil, err
		}
		ids := make(map[uuid.UUID]struct{}, len(payments))
		for i := range payments {
			ids[payments[i].InstallmentID] = struct{}{}
			if err := payments[i].MarkReversed(at); err != nil {
				return nil, err
			}
			if err := a.repos.InstallmentPayments().Save(ctx, &payments[i]); err != nil {
				return nil, err
			}
		}
		if err := a.repos.Contracts().SaveInstallments(ctx, touchedInstallments(c, ids)); err != nil {
			return nil, err
		}
	}

	entries, err := a.repos.ShareEntries().FindByVoucher(ctx, rv.TenantID, rv.ID)
	if err != nil {
		return nil, err
	}
	if reversals := equity.NewReversalEntries(entries, at); len(reversals) > 0 {
		if err := a.repos.ShareEntries().SaveBatch(ctx, reversals); err != nil {
			return nil, err
		}
	}

	if err := rv.CancelReceipt(reason, at); err != nil {
		return nil, err
	}
	if err := a.repos.Receipts().Save(ctx, rv); err != nil {
		return nil, err
	}
	return c, nil
}

func allocationIDs(allocations []contract.Allocation) map[uuid.UUID]struct{} {
	ids := make(map[uuid.UUID]struct{}, len(allocations))
	for _, a := range allocations {
		ids[a.InstallmentID] = struct{}{}
	}
	return ids
}

func touchedInstallments(c *contract.Contract, ids map[uuid.UUID]struct{}) []*contract.Installment {
	out := make([]*contract.Installment, 0, len(ids))
	for _, inst := range c.SortedInstallments() {
		if _, ok := ids[inst.ID]; ok {
			out = append(out, inst)
		}
	}
	return out
}
