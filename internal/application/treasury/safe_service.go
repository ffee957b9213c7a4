package treasury

import (
	"context"

	"github.com/erp/realestate/internal/domain/equity"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/treasury"
	"github.com/google/uuid"
)

// SafeService handles safe and partner wallet management
type SafeService struct {
	safeRepo    treasury.SafeRepository
	partnerRepo equity.PartnerRepository
	receiptRepo treasury.ReceiptVoucherRepository
	paymentRepo treasury.PaymentVoucherRepository
}

// NewSafeService creates a new SafeService
func NewSafeService(
	safeRepo treasury.SafeRepository,
	partnerRepo equity.PartnerRepository,
	receiptRepo treasury.ReceiptVoucherRepository,
	paymentRepo treasury.PaymentVoucherRepository,
) *SafeService {
	return &SafeService{
		safeRepo:    safeRepo,
		partnerRepo: partnerRepo,
		receiptRepo: receiptRepo,
		paymentRepo: paymentRepo,
	}
}

// Create creates a general safe, or a partner wallet when a partner is given
func (s *SafeService) Create(ctx context.Context, tenantID uuid.UUID, req CreateSafeRequest) (*SafeResponse, error) {
	if req.PartnerID != nil {
		// The partner must exist and may own one wallet only
		if _, err := s.partnerRepo.FindByIDForTenant(ctx, tenantID, *req.PartnerID); err != nil {
			return nil, err
		}
		existing, err := s.safeRepo.FindWalletByPartner(ctx, tenantID, *req.PartnerID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, shared.NewDomainError("WALLET_EXISTS", "Partner already has a wallet")
		}
	}

	safe, err := treasury.NewSafe(tenantID, req.Name, req.PartnerID, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.safeRepo.Save(ctx, safe); err != nil {
		return nil, err
	}
	response := ToSafeResponse(safe)
	return &response, nil
}

// GetByID retrieves a safe by ID
func (s *SafeService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*SafeResponse, error) {
	safe, err := s.safeRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToSafeResponse(safe)
	return &response, nil
}

// List retrieves all safes of the tenant
func (s *SafeService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]SafeResponse, error) {
	safes, err := s.safeRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]SafeResponse, len(safes))
	for i := range safes {
		out[i] = ToSafeResponse(&safes[i])
	}
	return out, nil
}

// Update renames a safe and toggles whether it takes new vouchers
func (s *SafeService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateSafeRequest) (*SafeResponse, error) {
	safe, err := s.safeRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := safe.Rename(req.Name, req.Description); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		safe.SetActive(*req.IsActive)
	}
	if err := s.safeRepo.Save(ctx, safe); err != nil {
		return nil, err
	}
	response := ToSafeResponse(safe)
	return &response, nil
}

// Delete removes a safe that never carried a voucher
func (s *SafeService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.safeRepo.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	receipts, err := s.receiptRepo.CountBySafe(ctx, tenantID, id)
	if err != nil {
		return err
	}
	payments, err := s.paymentRepo.CountBySafe(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if receipts+payments > 0 {
		return shared.NewHasDependentsError("safe", "vouchers")
	}
	return s.safeRepo.Delete(ctx, tenantID, id)
}
