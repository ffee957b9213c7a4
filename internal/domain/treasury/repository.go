package treasury

import (
	"context"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// SafeRepository defines persistence for safes
type SafeRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Safe, error)

	// FindByIDForUpdate loads the safe and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Safe, error)

	// FindWalletByPartner returns the partner's wallet, nil if none
	FindWalletByPartner(ctx context.Context, tenantID, partnerID uuid.UUID) (*Safe, error)

	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Safe, error)
	FindGeneral(ctx context.Context, tenantID uuid.UUID) ([]Safe, error)
	Save(ctx context.Context, s *Safe) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// VoucherFilter defines filtering options for voucher queries
type VoucherFilter struct {
	shared.Filter
	SafeID            *uuid.UUID
	PartnerID         *uuid.UUID
	CustomerID        *uuid.UUID
	SupplierID        *uuid.UUID
	ProjectID         *uuid.UUID
	ContractID        *uuid.UUID
	Period            Period
	IncludeCancelled  bool
	ExpenseSourceOnly bool
}

// ReceiptVoucherRepository defines persistence for receipt vouchers
type ReceiptVoucherRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ReceiptVoucher, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*ReceiptVoucher, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter VoucherFilter) ([]ReceiptVoucher, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter VoucherFilter) (int64, error)
	Save(ctx context.Context, v *ReceiptVoucher) error

	// SumAmount sums non-cancelled receipts matching the filter
	SumAmount(ctx context.Context, tenantID uuid.UUID, filter VoucherFilter) (valueobject.Money, error)

	// CountBySafe counts vouchers (cancelled included) posted to the safe
	CountBySafe(ctx context.Context, tenantID, safeID uuid.UUID) (int64, error)
}

// PaymentVoucherRepository defines persistence for payment vouchers
type PaymentVoucherRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PaymentVoucher, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*PaymentVoucher, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter VoucherFilter) ([]PaymentVoucher, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter VoucherFilter) (int64, error)
	Save(ctx context.Context, v *PaymentVoucher) error

	// SumAmount sums non-cancelled payments matching the filter
	SumAmount(ctx context.Context, tenantID uuid.UUID, filter VoucherFilter) (valueobject.Money, error)

	CountBySafe(ctx context.Context, tenantID, safeID uuid.UUID) (int64, error)
	CountBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID) (int64, error)
}

// SequenceRepository hands out gap-free per-tenant document numbers
type SequenceRepository interface {
	// Next locks the tenant's counter row for the given key and returns the incremented value
	Next(ctx context.Context, tenantID uuid.UUID, key string) (int64, error)
}
