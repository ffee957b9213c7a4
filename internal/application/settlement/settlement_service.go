package settlement

import (
	"context"
	"time"

	apptreasury "github.com/erp/realestate/internal/application/treasury"
	"github.com/erp/realestate/internal/application/uow"
	"github.com/erp/realestate/internal/domain/equity"
	"github.com/erp/realestate/internal/domain/settlement"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/treasury"
	"github.com/erp/realestate/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SequenceSettlement numbers settlements per tenant (ST-000001)
const SequenceSettlement = "ST"

// SettlementService computes, persists and executes partner settlements
type SettlementService struct {
	txScope        uow.TransactionScope
	settlementRepo settlement.Repository
	groupRepo      equity.PartnersGroupRepository
	paymentRepo    treasury.PaymentVoucherRepository
	cache          apptreasury.BalanceCache
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(
	txScope uow.TransactionScope,
	settlementRepo settlement.Repository,
	groupRepo equity.PartnersGroupRepository,
	paymentRepo treasury.PaymentVoucherRepository,
	logger *zap.Logger,
) *SettlementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettlementService{
		txScope:        txScope,
		settlementRepo: settlementRepo,
		groupRepo:      groupRepo,
		paymentRepo:    paymentRepo,
		cache:          apptreasury.NoopBalanceCache(),
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SettlementService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBalanceCache sets the cache invalidated after an execution
func (s *SettlementService) SetBalanceCache(cache apptreasury.BalanceCache) {
	if cache != nil {
		s.cache = cache
	}
}

// calculate loads the group and sums each member's expense payments within the scope
func (s *SettlementService) calculate(ctx context.Context, tenantID uuid.UUID, scope settlement.Scope) (settlement.Result, error) {
	group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, scope.PartnersGroupID)
	if err != nil {
		return settlement.Result{}, err
	}
	if err := group.EnsureFinalized(); err != nil {
		return settlement.Result{}, err
	}

	period := treasury.Period{From: scope.PeriodFrom, To: scope.PeriodTo}
	spends := make([]settlement.MemberSpend, 0, len(group.Members))
	for _, m := range group.Members {
		partnerID := m.PartnerID
		actual, err := s.paymentRepo.SumAmount(ctx, tenantID, treasury.VoucherFilter{
			PartnerID:         &partnerID,
			ProjectID:         scope.ProjectID,
			Period:            period,
			ExpenseSourceOnly: true,
		})
		if err != nil {
			return settlement.Result{}, err
		}
		spends = append(spends, settlement.MemberSpend{PartnerID: partnerID, Percent: m.Percent, Actual: actual})
	}
	return settlement.Calculate(spends), nil
}

// Compute previews the positions and transfers of a settlement without writing anything
func (s *SettlementService) Compute(ctx context.Context, tenantID uuid.UUID, req ComputeRequest) (*ComputeResponse, error) {
	scope, err := req.scope()
	if err != nil {
		return nil, err
	}
	result, err := s.calculate(ctx, tenantID, scope)
	if err != nil {
		return nil, err
	}
	return &ComputeResponse{
		PartnersGroupID: scope.PartnersGroupID,
		ProjectID:       scope.ProjectID,
		PeriodFrom:      scope.PeriodFrom,
		PeriodTo:        scope.PeriodTo,
		Total:           result.Total,
		Positions:       result.Positions,
		Transfers:       result.Transfers,
	}, nil
}

// Create persists the calculated transfers as pending settlements under a new run
func (s *SettlementService) Create(ctx context.Context, tenantID uuid.UUID, req ComputeRequest) (*RunResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrGroupID, req.PartnersGroupID.String(),
	)

	scope, err := req.scope()
	if err != nil {
		return nil, err
	}
	result, err := s.calculate(ctx, tenantID, scope)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if len(result.Transfers) == 0 {
		return nil, shared.NewDomainError("NOTHING_TO_SETTLE", "All partners are already at their expected share")
	}

	run := settlement.NewRun(tenantID, scope, result, req.Notes)
	if req.CreatedBy != nil {
		run.SetCreatedBy(*req.CreatedBy)
	}
	today := shared.Today()
	created := make([]*settlement.Settlement, 0, len(result.Transfers))
	err = s.txScope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		if err := repos.Settlements().SaveRun(ctx, run); err != nil {
			return err
		}
		for _, t := range result.Transfers {
			seq, err := repos.Sequences().Next(ctx, tenantID, SequenceSettlement)
			if err != nil {
				return err
			}
			st, err := settlement.NewSettlement(tenantID, settlement.FormatNumber(seq), scope, t, today, req.Notes)
			if err != nil {
				return err
			}
			st.RunID = &run.ID
			if req.CreatedBy != nil {
				st.SetCreatedBy(*req.CreatedBy)
			}
			created = append(created, st)
		}
		return repos.Settlements().SaveBatch(ctx, created)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Settlement run created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("run_id", run.ID.String()),
		zap.Int("settlements", len(created)),
		zap.String("total", result.Total.String()),
	)
	response := ToRunResponse(run)
	for _, st := range created {
		response.Settlements = append(response.Settlements, ToSettlementResponse(st))
	}
	return &response, nil
}

// Execute realizes a pending settlement: a payment voucher on the debtor's
// wallet and a receipt voucher on the creditor's wallet, in one transaction
func (s *SettlementService) Execute(ctx context.Context, tenantID, id uuid.UUID, req ExecuteRequest) (*ExecuteResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "execute")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrSettlementID, id.String(),
	)

	date := shared.Today()
	if req.Date != "" {
		parsed, err := shared.ParseDate(req.Date)
		if err != nil {
			return nil, err
		}
		date = parsed
	}
	var createdBy uuid.UUID
	if req.CreatedBy != nil {
		createdBy = *req.CreatedBy
	}

	var (
		st      *settlement.Settlement
		payment *treasury.PaymentVoucher
		receipt *treasury.ReceiptVoucher
	)
	err := s.txScope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		st, err = repos.Settlements().FindByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if st.Status != settlement.StatusPending {
			return shared.NewDomainErrorf("INVALID_STATE", "Settlement %s is %s and cannot be executed", st.Number, st.Status)
		}

		// Both partners need a wallet to carry the paired vouchers
		fromWallet, err := repos.Safes().FindWalletByPartner(ctx, tenantID, st.FromPartnerID)
		if err != nil {
			return err
		}
		toWallet, err := repos.Safes().FindWalletByPartner(ctx, tenantID, st.ToPartnerID)
		if err != nil {
			return err
		}
		if fromWallet == nil || toWallet == nil {
			return shared.NewDomainError("WALLET_REQUIRED", "Both partners need a wallet to execute a settlement")
		}

		description := req.Description
		if description == "" {
			description = "Settlement " + st.Number
		}
		payment, err = apptreasury.PostPayment(ctx, repos, tenantID, treasury.PaymentInput{
			VoucherInput: treasury.VoucherInput{
				Date:        date,
				Amount:      st.AmountMoney(),
				SafeID:      fromWallet.ID,
				PartnerID:   &st.FromPartnerID,
				Description: description,
				Source:      treasury.SourceSettlement,
				SourceID:    &st.ID,
				CreatedBy:   createdBy,
			},
		})
		if err != nil {
			return err
		}
		receipt, err = apptreasury.PostReceipt(ctx, repos, tenantID, treasury.ReceiptInput{
			VoucherInput: treasury.VoucherInput{
				Date:        date,
				Amount:      st.AmountMoney(),
				SafeID:      toWallet.ID,
				PartnerID:   &st.ToPartnerID,
				Description: description,
				Source:      treasury.SourceSettlement,
				SourceID:    &st.ID,
				CreatedBy:   createdBy,
			},
		})
		if err != nil {
			return err
		}

		if err := st.Complete(payment.ID, receipt.ID, time.Now()); err != nil {
			return err
		}
		return repos.Settlements().Save(ctx, st)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.cache.Invalidate(ctx, tenantID, payment.SafeID, receipt.SafeID)
	if err := shared.PublishEvents(ctx, s.eventPublisher, shared.DrainEvents(st, payment, receipt)); err != nil {
		s.logger.Warn("Failed to publish settlement events", zap.Error(err))
	}
	s.logger.Info("Settlement executed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("settlement_number", st.Number),
		zap.String("payment_number", payment.Number),
		zap.String("receipt_number", receipt.Number),
		zap.String("amount", st.AmountMoney().String()),
	)
	return &ExecuteResponse{
		Settlement:           ToSettlementResponse(st),
		PaymentVoucherNumber: payment.Number,
		ReceiptVoucherNumber: receipt.Number,
	}, nil
}

// Cancel abandons a pending settlement
func (s *SettlementService) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*SettlementResponse, error) {
	var st *settlement.Settlement
	err := s.txScope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		st, err = repos.Settlements().FindByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if err := st.Cancel(time.Now()); err != nil {
			return err
		}
		return repos.Settlements().Save(ctx, st)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Settlement cancelled",
		zap.String("tenant_id", tenantID.String()),
		zap.String("settlement_number", st.Number),
	)
	response := ToSettlementResponse(st)
	return &response, nil
}

// GetByID retrieves a settlement
func (s *SettlementService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*SettlementResponse, error) {
	st, err := s.settlementRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToSettlementResponse(st)
	return &response, nil
}

// List retrieves settlements with pagination
func (s *SettlementService) List(ctx context.Context, tenantID uuid.UUID, filter settlement.Filter) ([]SettlementResponse, int64, error) {
	items, err := s.settlementRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.settlementRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]SettlementResponse, len(items))
	for i := range items {
		out[i] = ToSettlementResponse(&items[i])
	}
	return out, total, nil
}

// Runs lists settlement runs, optionally for one group
func (s *SettlementService) Runs(ctx context.Context, tenantID uuid.UUID, groupID *uuid.UUID, filter shared.Filter) ([]RunResponse, error) {
	runs, err := s.settlementRepo.FindRuns(ctx, tenantID, groupID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]RunResponse, len(runs))
	for i := range runs {
		out[i] = ToRunResponse(&runs[i])
	}
	return out, nil
}

// GetRun retrieves a run with the settlements it created
func (s *SettlementService) GetRun(ctx context.Context, tenantID, id uuid.UUID) (*RunResponse, error) {
	run, err := s.settlementRepo.FindRunByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	items, err := s.settlementRepo.FindAllForTenant(ctx, tenantID, settlement.Filter{RunID: &run.ID})
	if err != nil {
		return nil, err
	}
	response := ToRunResponse(run)
	for i := range items {
		response.Settlements = append(response.Settlements, ToSettlementResponse(&items[i]))
	}
	return &response, nil
}
