package treasury

import (
	"context"
	"time"

	"github.com/erp/realestate/internal/application/uow"
	"github.com/erp/realestate/internal/domain/contract"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/erp/realestate/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService records customer payments against contract installments
type PaymentService struct {
	txScope        uow.TransactionScope
	contractRepo   contract.ContractRepository
	cache          BalanceCache
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(txScope uow.TransactionScope, contractRepo contract.ContractRepository, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		txScope:      txScope,
		contractRepo: contractRepo,
		cache:        noopBalanceCache{},
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBalanceCache sets the cache invalidated after each payment
func (s *PaymentService) SetBalanceCache(cache BalanceCache) {
	if cache != nil {
		s.cache = cache
	}
}

// PayInstallment applies a payment to one installment. Any excess carries over
// to the contract's later unpaid installments and the rest comes back as
// Unapplied on the response.
func (s *PaymentService) PayInstallment(ctx context.Context, tenantID, installmentID uuid.UUID, req PayInstallmentRequest) (*PaymentRecordResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "pay_installment")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrInstallmentID, installmentID.String(),
		telemetry.SpanAttrSafeID, req.SafeID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	owner, err := s.contractRepo.FindByInstallmentID(ctx, tenantID, installmentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	result, err := s.pay(ctx, tenantID, owner.ID, &installmentID, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.AddEvent(span, "installment_paid",
		telemetry.SpanAttrVoucherNumber, result.Voucher.Number,
		"allocations", len(result.Allocations),
	)
	return result, nil
}

// PayContract spreads a payment over the contract's unpaid installments, oldest first
func (s *PaymentService) PayContract(ctx context.Context, tenantID, contractID uuid.UUID, req PayContractRequest) (*PaymentRecordResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "pay_contract")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrContractID, contractID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	result, err := s.pay(ctx, tenantID, contractID, nil, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

func (s *PaymentService) pay(ctx context.Context, tenantID, contractID uuid.UUID, installmentID *uuid.UUID, req PayInstallmentRequest) (*PaymentRecordResponse, error) {
	date, err := parseDateOr(req.PaymentDate, time.Now())
	if err != nil {
		return nil, err
	}
	in := paymentInput{
		tenantID:      tenantID,
		contractID:    contractID,
		installmentID: installmentID,
		safeID:        req.SafeID,
		amount:        valueobject.NewMoney(req.Amount),
		date:          date,
		method:        req.Method,
		note:          req.Note,
		createdBy:     userID(req.CreatedBy),
	}

	var applied *appliedPayment
	err = s.txScope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		applied, err = paymentApplier{repos: repos}.apply(ctx, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, tenantID, applied.receipt.SafeID)
	response := toPaymentRecordResponse(applied)
	if err := shared.PublishEvents(ctx, s.eventPublisher, applied.events()); err != nil {
		s.logger.Warn("Failed to publish payment events",
			zap.String("voucher_number", applied.receipt.Number),
			zap.Error(err),
		)
	}

	s.logger.Info("Installment payment recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("contract_id", contractID.String()),
		zap.String("voucher_number", applied.receipt.Number),
		zap.String("amount", applied.receipt.Amount.StringFixed(2)),
		zap.Int("allocations", len(applied.allocations)),
	)
	if applied.unapplied.IsPositive() {
		s.logger.Warn("Payment exceeded what the schedule could absorb",
			zap.String("voucher_number", applied.receipt.Number),
			zap.String("unapplied", applied.unapplied.String()),
		)
	}
	return response, nil
}
