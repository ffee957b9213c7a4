package sales

import (
	"context"

	"github.com/erp/realestate/internal/application/uow"
	"github.com/erp/realestate/internal/domain/contract"
	"github.com/erp/realestate/internal/domain/party"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/erp/realestate/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ContractService handles installment contracts and their schedules
type ContractService struct {
	txScope        uow.TransactionScope
	contractRepo   contract.ContractRepository
	paymentRepo    contract.InstallmentPaymentRepository
	customerRepo   party.CustomerRepository
	lateFeePercent decimal.Decimal
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewContractService creates a new ContractService
func NewContractService(
	txScope uow.TransactionScope,
	contractRepo contract.ContractRepository,
	paymentRepo contract.InstallmentPaymentRepository,
	customerRepo party.CustomerRepository,
	logger *zap.Logger,
) *ContractService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContractService{
		txScope:        txScope,
		contractRepo:   contractRepo,
		paymentRepo:    paymentRepo,
		customerRepo:   customerRepo,
		lateFeePercent: contract.DefaultLateFeePercent,
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ContractService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLateFeePercent overrides the default monthly late fee rate
func (s *ContractService) SetLateFeePercent(pct decimal.Decimal) {
	if pct.IsPositive() {
		s.lateFeePercent = pct
	}
}

// Create creates a contract, generates its schedule and marks the unit sold
func (s *ContractService) Create(ctx context.Context, tenantID uuid.UUID, req CreateContractRequest) (*ContractResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "contract", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrCustomerID, req.CustomerID.String(),
	)

	// Check if code already exists
	exists, err := s.contractRepo.ExistsByCode(ctx, tenantID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Contract with this code already exists")
	}
	if _, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, req.CustomerID); err != nil {
		return nil, err
	}
	startDate, err := shared.ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}

	var c *contract.Contract
	err = s.txScope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		unit, err := repos.Units().FindByIDForUpdate(ctx, tenantID, req.UnitID)
		if err != nil {
			return err
		}
		underContract, err := repos.Contracts().ExistsForUnit(ctx, tenantID, unit.ID)
		if err != nil {
			return err
		}
		if underContract {
			return shared.NewDomainErrorf("UNIT_ALREADY_SOLD", "Unit %s is already under contract", unit.Code)
		}
		if err := unit.MarkSold(); err != nil {
			return err
		}

		// A contract without explicit terms takes the unit's price and partners group
		unitValue := valueobject.NewMoney(req.UnitValue)
		if unitValue.IsZero() {
			unitValue = valueobject.NewMoney(unit.PriceTotal)
		}
		groupID := req.PartnersGroupID
		if groupID == nil {
			groupID = unit.PartnersGroupID
		}
		if err := ensureFinalizedGroup(ctx, repos, tenantID, groupID); err != nil {
			return err
		}

		c, err = contract.NewContract(tenantID, contract.Terms{
			Code:              req.Code,
			CustomerID:        req.CustomerID,
			UnitID:            unit.ID,
			UnitValue:         unitValue,
			DownPayment:       valueobject.NewMoney(req.DownPayment),
			InstallmentsCount: req.InstallmentsCount,
			ScheduleType:      contract.ScheduleType(req.ScheduleType),
			StartDate:         startDate,
			PartnersGroupID:   groupID,
			Notes:             req.Notes,
		})
		if err != nil {
			return err
		}
		if req.CreatedBy != nil {
			c.SetCreatedBy(*req.CreatedBy)
		}
		if err := repos.Contracts().Save(ctx, c); err != nil {
			return err
		}
		return repos.Units().Save(ctx, unit)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, c)
	s.logger.Info("Contract created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("contract_code", c.Code),
		zap.String("unit_value", valueobject.NewMoney(c.UnitValue).String()),
		zap.Int("installments", len(c.Installments)),
	)
	response := ToContractResponse(c, shared.Today())
	return &response, nil
}

func ensureFinalizedGroup(ctx context.Context, repos uow.TransactionalRepositories, tenantID uuid.UUID, groupID *uuid.UUID) error {
	if groupID == nil {
		return nil
	}
	group, err := repos.Groups().FindByIDForTenant(ctx, tenantID, *groupID)
	if err != nil {
		return err
	}
	return group.EnsureFinalized()
}

// GetByID retrieves a contract with its schedule
func (s *ContractService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ContractResponse, error) {
	c, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToContractResponse(c, shared.Today())
	return &response, nil
}

// List retrieves contracts with pagination
func (s *ContractService) List(ctx context.Context, tenantID uuid.UUID, filter contract.ContractFilter) ([]ContractListItem, int64, error) {
	contracts, err := s.contractRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.contractRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ContractListItem, len(contracts))
	for i := range contracts {
		out[i] = ToContractListItem(&contracts[i])
	}
	return out, total, nil
}

// Update changes the terms of a contract without payments and regenerates its schedule
func (s *ContractService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateContractRequest) (*ContractResponse, error) {
	startDate, err := shared.ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	if _, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, req.CustomerID); err != nil {
		return nil, err
	}

	var c *contract.Contract
	err = s.txScope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		c, err = repos.Contracts().FindByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if err := ensureFinalizedGroup(ctx, repos, tenantID, req.PartnersGroupID); err != nil {
			return err
		}
		terms := c.Terms()
		terms.CustomerID = req.CustomerID
		terms.UnitValue = valueobject.NewMoney(req.UnitValue)
		terms.DownPayment = valueobject.NewMoney(req.DownPayment)
		terms.InstallmentsCount = req.InstallmentsCount
		terms.ScheduleType = contract.ScheduleType(req.ScheduleType)
		terms.StartDate = startDate
		terms.PartnersGroupID = req.PartnersGroupID
		terms.Notes = req.Notes
		if err := c.UpdateTerms(terms); err != nil {
			return err
		}
		return repos.Contracts().Save(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, c)
	response := ToContractResponse(c, shared.Today())
	return &response, nil
}

// Delete removes a contract without payments and frees its unit
func (s *ContractService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		c, err := repos.Contracts().FindByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if c.HasPayments() {
			return shared.NewDomainError("CONTRACT_LOCKED", "A contract with paid installments cannot be deleted")
		}
		unit, err := repos.Units().FindByIDForTenant(ctx, tenantID, c.UnitID)
		if err != nil {
			return err
		}
		unit.Release()
		if err := repos.Units().Save(ctx, unit); err != nil {
			return err
		}
		return repos.Contracts().Delete(ctx, tenantID, id)
	})
}

// Summary returns the payment progress of a contract
func (s *ContractService) Summary(ctx context.Context, tenantID, id uuid.UUID) (*SummaryResponse, error) {
	c, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	today := shared.Today()
	sum := c.Summarize(today)
	response := &SummaryResponse{
		ContractID:        sum.ContractID,
		UnitValue:         sum.UnitValue,
		DownPayment:       sum.DownPayment,
		InstallmentsTotal: sum.InstallmentsTotal,
		InstallmentsPaid:  sum.InstallmentsPaid,
		TotalPaid:         sum.TotalPaid,
		Remaining:         sum.Remaining,
		CompletionPercent: sum.CompletionPercent,
		PaidCount:         sum.PaidCount,
		LateCount:         sum.LateCount,
		PendingCount:      sum.PendingCount,
		PartialCount:      sum.PartialCount,
	}
	if sum.NextDue != nil {
		next := ToInstallmentResponse(sum.NextDue, today)
		response.NextDue = &next
	}
	return response, nil
}

// LateFees returns the advisory late fees of a contract. A nil percent uses
// the configured rate.
func (s *ContractService) LateFees(ctx context.Context, tenantID, id uuid.UUID, percent *decimal.Decimal) (*LateFeesResponse, error) {
	c, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	pct := s.lateFeePercent
	if percent != nil {
		if percent.IsNegative() {
			return nil, shared.NewDomainError("INVALID_PERCENT", "Late fee percent cannot be negative")
		}
		pct = *percent
	}

	lines, total := c.LateFees(shared.Today(), pct)
	response := &LateFeesResponse{ContractID: c.ID, Percent: pct, Total: total, Lines: make([]LateFeeLineResponse, 0, len(lines))}
	for _, l := range lines {
		response.Lines = append(response.Lines, LateFeeLineResponse{
			InstallmentID: l.InstallmentID,
			SeqNo:         l.SeqNo,
			DueDate:       l.DueDate,
			Remaining:     l.Remaining,
			DaysLate:      l.DaysLate,
			Fee:           l.Fee,
		})
	}
	return response, nil
}

// Reschedule rebuilds every unpaid installment of a contract
func (s *ContractService) Reschedule(ctx context.Context, tenantID, id uuid.UUID) (*ContractResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "contract", "reschedule")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrContractID, id.String())

	var c *contract.Contract
	err := s.txScope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		c, err = repos.Contracts().FindByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		removed, err := c.RecalculateSchedule()
		if err != nil {
			return err
		}
		telemetry.SetAttribute(span, "installments_replaced", len(removed))
		return repos.Contracts().Save(ctx, c)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, c)
	s.logger.Info("Contract rescheduled",
		zap.String("tenant_id", tenantID.String()),
		zap.String("contract_code", c.Code),
		zap.Int("installments", len(c.Installments)),
	)
	response := ToContractResponse(c, shared.Today())
	return &response, nil
}

// Installments lists installments across contracts
func (s *ContractService) Installments(ctx context.Context, tenantID uuid.UUID, filter contract.InstallmentFilter) ([]InstallmentResponse, error) {
	installments, err := s.contractRepo.FindInstallments(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	today := shared.Today()
	out := make([]InstallmentResponse, len(installments))
	for i := range installments {
		out[i] = ToInstallmentResponse(&installments[i], today)
	}
	return out, nil
}

// Payments lists the allocation records of a contract, reversed ones included
func (s *ContractService) Payments(ctx context.Context, tenantID, id uuid.UUID) ([]InstallmentPaymentResponse, error) {
	if _, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindByContract(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	out := make([]InstallmentPaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = InstallmentPaymentResponse{
			ID:               p.ID,
			InstallmentID:    p.InstallmentID,
			ReceiptVoucherID: p.ReceiptVoucherID,
			Amount:           valueobject.NewMoney(p.Amount),
			Method:           p.Method,
			Note:             p.Note,
			PaidOn:           p.PaidOn,
			ReversedAt:       p.ReversedAt,
		}
	}
	return out, nil
}

// RefreshStatuses persists the derived LATE status of overdue installments
// for every contract of the tenant and returns how many rows changed
func (s *ContractService) RefreshStatuses(ctx context.Context, tenantID uuid.UUID) (int, error) {
	status := contract.InstallmentPending
	candidates, err := s.contractRepo.FindInstallments(ctx, tenantID, contract.InstallmentFilter{Status: &status, UnpaidOnly: true})
	if err != nil {
		return 0, err
	}
	today := shared.Today()
	contractIDs := make(map[uuid.UUID]struct{})
	for i := range candidates {
		if candidates[i].DeriveStatus(today) != candidates[i].Status {
			contractIDs[candidates[i].ContractID] = struct{}{}
		}
	}

	changed := 0
	for id := range contractIDs {
		err := s.txScope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
			c, err := repos.Contracts().FindByIDForUpdate(ctx, tenantID, id)
			if err != nil {
				return err
			}
			rows := c.RefreshStatuses(today)
			if len(rows) == 0 {
				return nil
			}
			changed += len(rows)
			return repos.Contracts().SaveInstallments(ctx, rows)
		})
		if err != nil {
			return changed, err
		}
	}
	if changed > 0 {
		s.logger.Info("Installment statuses refreshed",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("changed", changed),
		)
	}
	return changed, nil
}

func (s *ContractService) publish(ctx context.Context, c *contract.Contract) {
	if err := shared.PublishEvents(ctx, s.eventPublisher, shared.DrainEvents(c)); err != nil {
		s.logger.Warn("Failed to publish contract events",
			zap.String("contract_id", c.ID.String()),
			zap.Error(err),
		)
	}
}
