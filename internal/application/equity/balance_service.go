package equity

import (
	"context"

	"github.com/erp/realestate/internal/domain/equity"
	"github.com/erp/realestate/internal/domain/settlement"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/erp/realestate/internal/domain/treasury"
	"github.com/google/uuid"
)

// SafeBalancer returns the balance of a safe over a period
type SafeBalancer interface {
	Balance(ctx context.Context, tenantID, safeID uuid.UUID, period treasury.Period) (treasury.Balance, error)
}

// BalanceService derives partner positions from the treasury and the ledgers
type BalanceService struct {
	partnerRepo    equity.PartnerRepository
	safeRepo       treasury.SafeRepository
	shareRepo      equity.ShareEntryRepository
	settlementRepo settlement.Repository
	balances       SafeBalancer
}

// NewBalanceService creates a new BalanceService
func NewBalanceService(
	partnerRepo equity.PartnerRepository,
	safeRepo treasury.SafeRepository,
	shareRepo equity.ShareEntryRepository,
	settlementRepo settlement.Repository,
	balances SafeBalancer,
) *BalanceService {
	return &BalanceService{
		partnerRepo:    partnerRepo,
		safeRepo:       safeRepo,
		shareRepo:      shareRepo,
		settlementRepo: settlementRepo,
		balances:       balances,
	}
}

// PartnerBalance returns opening + own wallet + the partner's share of every general safe
func (s *BalanceService) PartnerBalance(ctx context.Context, tenantID, partnerID uuid.UUID) (*PartnerBalanceResponse, error) {
	partner, err := s.partnerRepo.FindByIDForTenant(ctx, tenantID, partnerID)
	if err != nil {
		return nil, err
	}

	response := &PartnerBalanceResponse{PartnerID: partner.ID, Name: partner.Name, SharePercent: partner.SharePercent}
	walletBalance := valueobject.Zero()
	wallet, err := s.safeRepo.FindWalletByPartner(ctx, tenantID, partnerID)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		b, err := s.balances.Balance(ctx, tenantID, wallet.ID, treasury.AllTime)
		if err != nil {
			return nil, err
		}
		walletBalance = b.Net()
		response.WalletID = &wallet.ID
	}

	generals, err := s.safeRepo.FindGeneral(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	generalBalances := make([]valueobject.Money, 0, len(generals))
	response.GeneralSafes = make([]GeneralSafeLine, 0, len(generals))
	for _, safe := range generals {
		b, err := s.balances.Balance(ctx, tenantID, safe.ID, treasury.AllTime)
		if err != nil {
			return nil, err
		}
		generalBalances = append(generalBalances, b.Net())
		response.GeneralSafes = append(response.GeneralSafes, GeneralSafeLine{SafeID: safe.ID, Name: safe.Name, Balance: b.Net()})
	}

	pb := partner.ComputeBalance(walletBalance, generalBalances)
	response.OpeningBalance = pb.OpeningBalance
	response.WalletBalance = pb.WalletBalance
	response.GeneralSafeShare = pb.GeneralSafeShare
	response.Total = pb.Total
	return response, nil
}

// ShareLedger lists the distribution and reversal entries of a partner
func (s *BalanceService) ShareLedger(ctx context.Context, tenantID, partnerID uuid.UUID, filter equity.ShareEntryFilter) (*ShareLedgerResponse, error) {
	if _, err := s.partnerRepo.FindByIDForTenant(ctx, tenantID, partnerID); err != nil {
		return nil, err
	}
	filter.PartnerID = &partnerID
	entries, err := s.shareRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.shareRepo.SumByPartner(ctx, tenantID, partnerID, filter.GroupID)
	if err != nil {
		return nil, err
	}

	response := &ShareLedgerResponse{
		PartnerID: partnerID,
		GroupID:   filter.GroupID,
		Entries:   make([]ShareEntryResponse, 0, len(entries)),
		Total:     total,
	}
	for _, e := range entries {
		response.Entries = append(response.Entries, ShareEntryResponse{
			ID:               e.ID,
			PartnerID:        e.PartnerID,
			GroupID:          e.GroupID,
			ContractID:       e.ContractID,
			ReceiptVoucherID: e.ReceiptVoucherID,
			Kind:             e.Kind,
			Percent:          e.Percent,
			Amount:           valueobject.NewMoney(e.Amount),
			EntryDate:        e.EntryDate,
		})
	}
	return response, nil
}

// SettlementBalance returns completed settlements received minus paid
func (s *BalanceService) SettlementBalance(ctx context.Context, tenantID, partnerID uuid.UUID, groupID *uuid.UUID) (*SettlementBalanceResponse, error) {
	if _, err := s.partnerRepo.FindByIDForTenant(ctx, tenantID, partnerID); err != nil {
		return nil, err
	}
	received, err := s.settlementRepo.SumCompleted(ctx, tenantID, partnerID, true, groupID)
	if err != nil {
		return nil, err
	}
	paid, err := s.settlementRepo.SumCompleted(ctx, tenantID, partnerID, false, groupID)
	if err != nil {
		return nil, err
	}
	return &SettlementBalanceResponse{
		PartnerID: partnerID,
		GroupID:   groupID,
		Received:  received,
		Paid:      paid,
		Balance:   received.Sub(paid),
	}, nil
}
