// Package audit runs the report-only integrity checks over a tenant's data.
package audit

import (
	"context"
	"time"

	appequity "github.com/erp/realestate/internal/application/equity"
	"github.com/erp/realestate/internal/domain/audit"
	"github.com/erp/realestate/internal/domain/contract"
	"github.com/erp/realestate/internal/domain/equity"
	"github.com/erp/realestate/internal/domain/inventory"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/treasury"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SafeBalancer returns the balance of a safe over a period
type SafeBalancer interface {
	Balance(ctx context.Context, tenantID, safeID uuid.UUID, period treasury.Period) (treasury.Balance, error)
}

// StockLevels returns the stock level of every item
type StockLevels interface {
	Levels(ctx context.Context, tenantID uuid.UUID) ([]inventory.StockLevel, error)
}

// PartnerBalancer derives a partner's position
type PartnerBalancer interface {
	PartnerBalance(ctx context.Context, tenantID, partnerID uuid.UUID) (*appequity.PartnerBalanceResponse, error)
}

// AuditService checks stored data against the invariants it should satisfy
type AuditService struct {
	contractRepo contract.ContractRepository
	safeRepo     treasury.SafeRepository
	groupRepo    equity.PartnersGroupRepository
	partnerRepo  equity.PartnerRepository
	safes        SafeBalancer
	stock        StockLevels
	partners     PartnerBalancer
	logger       *zap.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(
	contractRepo contract.ContractRepository,
	safeRepo treasury.SafeRepository,
	groupRepo equity.PartnersGroupRepository,
	partnerRepo equity.PartnerRepository,
	safes SafeBalancer,
	stock StockLevels,
	partners PartnerBalancer,
	logger *zap.Logger,
) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		contractRepo: contractRepo,
		safeRepo:     safeRepo,
		groupRepo:    groupRepo,
		partnerRepo:  partnerRepo,
		safes:        safes,
		stock:        stock,
		partners:     partners,
		logger:       logger,
	}
}

// Run checks every contract, safe, item, group and partner of the tenant.
// Nothing is corrected; the report lists what was found.
func (s *AuditService) Run(ctx context.Context, tenantID uuid.UUID) (*audit.Report, error) {
	today := shared.Today()
	report := audit.NewReport(tenantID, time.Now())

	contracts, err := s.contractRepo.FindAllForTenant(ctx, tenantID, contract.ContractFilter{})
	if err != nil {
		return nil, err
	}
	for _, c := range contracts {
		// List rows come without installments
		full, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, c.ID)
		if err != nil {
			return nil, err
		}
		report.Add("contract", audit.Contract(full, today)...)
	}

	safes, err := s.safeRepo.FindAllForTenant(ctx, tenantID, shared.Filter{})
	if err != nil {
		return nil, err
	}
	for _, safe := range safes {
		balance, err := s.safes.Balance(ctx, tenantID, safe.ID, treasury.AllTime)
		if err != nil {
			return nil, err
		}
		report.Add("safe", audit.SafeBalance(safe.ID, safe.Name, balance.Net())...)
	}

	levels, err := s.stock.Levels(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, level := range levels {
		report.Add("item", audit.Stock(level)...)
	}

	groups, err := s.groupRepo.FindAllForTenant(ctx, tenantID, shared.Filter{})
	if err != nil {
		return nil, err
	}
	for i := range groups {
		report.Add("partners_group", audit.Group(&groups[i])...)
	}

	partners, err := s.partnerRepo.FindAllForTenant(ctx, tenantID, shared.Filter{})
	if err != nil {
		return nil, err
	}
	for i := range partners {
		balance, err := s.partners.PartnerBalance(ctx, tenantID, partners[i].ID)
		if err != nil {
			return nil, err
		}
		report.Add("partner", audit.PartnerBalance(&partners[i], balance.Total)...)
	}

	if errCount := report.Count(audit.SeverityError); errCount > 0 {
		s.logger.Warn("Integrity audit found errors",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("errors", errCount),
			zap.Int("warnings", report.Count(audit.SeverityWarning)),
		)
	} else {
		s.logger.Info("Integrity audit finished",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("warnings", report.Count(audit.SeverityWarning)),
		)
	}
	return report, nil
}
