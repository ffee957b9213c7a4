package equity

import (
	"context"

	"github.com/erp/realestate/internal/application/uow"
	"github.com/erp/realestate/internal/domain/equity"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/erp/realestate/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PartnerService handles partner management
type PartnerService struct {
	txScope     uow.TransactionScope
	partnerRepo equity.PartnerRepository
	groupRepo   equity.PartnersGroupRepository
	safeRepo    treasury.SafeRepository
	receiptRepo treasury.ReceiptVoucherRepository
	paymentRepo treasury.PaymentVoucherRepository
	logger      *zap.Logger
}

// NewPartnerService creates a new PartnerService
func NewPartnerService(
	txScope uow.TransactionScope,
	partnerRepo equity.PartnerRepository,
	groupRepo equity.PartnersGroupRepository,
	safeRepo treasury.SafeRepository,
	receiptRepo treasury.ReceiptVoucherRepository,
	paymentRepo treasury.PaymentVoucherRepository,
	logger *zap.Logger,
) *PartnerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PartnerService{
		txScope:     txScope,
		partnerRepo: partnerRepo,
		groupRepo:   groupRepo,
		safeRepo:    safeRepo,
		receiptRepo: receiptRepo,
		paymentRepo: paymentRepo,
		logger:      logger,
	}
}

func partnerDetails(name, phone string, share, opening decimal.Decimal, notes string) (equity.PartnerDetails, error) {
	pct, err := valueobject.NewPercentage(share)
	if err != nil {
		return equity.PartnerDetails{}, shared.NewDomainError("INVALID_PERCENT", err.Error())
	}
	return equity.PartnerDetails{
		Name:           name,
		Phone:          phone,
		SharePercent:   pct,
		OpeningBalance: valueobject.NewMoney(opening),
		Notes:          notes,
	}, nil
}

// Create creates a partner and, on request, its wallet
func (s *PartnerService) Create(ctx context.Context, tenantID uuid.UUID, req CreatePartnerRequest) (*PartnerResponse, error) {
	exists, err := s.partnerRepo.ExistsByCode(ctx, tenantID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Partner with this code already exists")
	}
	details, err := partnerDetails(req.Name, req.Phone, req.SharePercent, req.OpeningBalance, req.Notes)
	if err != nil {
		return nil, err
	}
	partner, err := equity.NewPartner(tenantID, req.Code, details)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		partner.SetCreatedBy(*req.CreatedBy)
	}

	var wallet *treasury.Safe
	err = s.txScope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		if err := repos.Partners().Save(ctx, partner); err != nil {
			return err
		}
		if !req.CreateWallet {
			return nil
		}
		var err error
		wallet, err = treasury.NewSafe(tenantID, partner.Name+" wallet", &partner.ID, "")
		if err != nil {
			return err
		}
		return repos.Safes().Save(ctx, wallet)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Partner created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("partner_code", partner.Code),
		zap.Bool("wallet", wallet != nil),
	)
	response := ToPartnerResponse(partner)
	if wallet != nil {
		response.WalletID = &wallet.ID
	}
	return &response, nil
}

// GetByID retrieves a partner by ID
func (s *PartnerService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*PartnerResponse, error) {
	partner, err := s.partnerRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToPartnerResponse(partner)
	wallet, err := s.safeRepo.FindWalletByPartner(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		response.WalletID = &wallet.ID
	}
	return &response, nil
}

// List retrieves partners with pagination
func (s *PartnerService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PartnerResponse, int64, error) {
	partners, err := s.partnerRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.partnerRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PartnerResponse, len(partners))
	for i := range partners {
		out[i] = ToPartnerResponse(&partners[i])
	}
	return out, total, nil
}

// Update updates a partner
func (s *PartnerService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdatePartnerRequest) (*PartnerResponse, error) {
	partner, err := s.partnerRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	details, err := partnerDetails(req.Name, req.Phone, req.SharePercent, req.OpeningBalance, req.Notes)
	if err != nil {
		return nil, err
	}
	if err := partner.Update(details); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		partner.SetActive(*req.IsActive)
	}
	if err := s.partnerRepo.Save(ctx, partner); err != nil {
		return nil, err
	}
	response := ToPartnerResponse(partner)
	return &response, nil
}

// Delete removes a partner that belongs to no group and whose wallet is unused
func (s *PartnerService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.partnerRepo.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	groups, err := s.groupRepo.CountGroupsWithPartner(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if groups > 0 {
		return shared.NewHasDependentsError("partner", "partner groups")
	}

	wallet, err := s.safeRepo.FindWalletByPartner(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if wallet != nil {
		receipts, err := s.receiptRepo.CountBySafe(ctx, tenantID, wallet.ID)
		if err != nil {
			return err
		}
		payments, err := s.paymentRepo.CountBySafe(ctx, tenantID, wallet.ID)
		if err != nil {
			return err
		}
		if receipts+payments > 0 {
			return shared.NewHasDependentsError("partner", "wallet vouchers")
		}
	}

	return s.txScope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		if wallet != nil {
			if err := repos.Safes().Delete(ctx, tenantID, wallet.ID); err != nil {
				return err
			}
		}
		return repos.Partners().Delete(ctx, tenantID, id)
	})
}
