package treasury

import (
	"context"
	"time"

	"github.com/erp/realestate/internal/application/uow"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/erp/realestate/internal/domain/treasury"
	"github.com/erp/realestate/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VoucherService records and cancels receipt and payment vouchers
type VoucherService struct {
	txScope        uow.TransactionScope
	receiptRepo    treasury.ReceiptVoucherRepository
	paymentRepo    treasury.PaymentVoucherRepository
	cache          BalanceCache
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewVoucherService creates a new VoucherService
func NewVoucherService(
	txScope uow.TransactionScope,
	receiptRepo treasury.ReceiptVoucherRepository,
	paymentRepo treasury.PaymentVoucherRepository,
	logger *zap.Logger,
) *VoucherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VoucherService{
		txScope:     txScope,
		receiptRepo: receiptRepo,
		paymentRepo: paymentRepo,
		cache:       noopBalanceCache{},
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *VoucherService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBalanceCache sets the cache invalidated after voucher writes
func (s *VoucherService) SetBalanceCache(cache BalanceCache) {
	if cache != nil {
		s.cache = cache
	}
}

// RecordReceipt records money received into a safe. A receipt naming an
// installment goes through the installment payment flow.
func (s *VoucherService) RecordReceipt(ctx context.Context, tenantID uuid.UUID, req RecordReceiptRequest) (*VoucherResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "voucher", "record_receipt")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrSafeID, req.SafeID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	date, err := parseDateOr(req.Date, time.Now())
	if err != nil {
		return nil, err
	}
	amount := valueobject.NewMoney(req.Amount)

	var receipt *treasury.ReceiptVoucher
	var events []shared.DomainEvent
	err = s.txScope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		if req.InstallmentID != nil {
			owner, err := repos.Contracts().FindByInstallmentID(ctx, tenantID, *req.InstallmentID)
			if err != nil {
				return err
			}
			applied, err := paymentApplier{repos: repos}.apply(ctx, paymentInput{
				tenantID:      tenantID,
				contractID:    owner.ID,
				installmentID: req.InstallmentID,
				safeID:        req.SafeID,
				partnerID:     req.PartnerID,
				amount:        amount,
				date:          date,
				method:        req.Method,
				note:          req.Description,
				createdBy:     userID(req.CreatedBy),
			})
			if err != nil {
				return err
			}
			receipt = applied.receipt
			events = applied.events()
			return nil
		}

		var err error
		receipt, err = PostReceipt(ctx, repos, tenantID, treasury.ReceiptInput{
			VoucherInput: treasury.VoucherInput{
				Date:        date,
				Amount:      amount,
				SafeID:      req.SafeID,
				PartnerID:   req.PartnerID,
				Description: req.Description,
				Source:      treasury.SourceManual,
				CreatedBy:   userID(req.CreatedBy),
			},
			CustomerID: req.CustomerID,
			ContractID: req.ContractID,
		})
		if err != nil {
			return err
		}
		events = shared.DrainEvents(receipt)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.afterWrite(ctx, tenantID, events, receipt.SafeID)
	s.logger.Info("Receipt voucher recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("voucher_number", receipt.Number),
		zap.String("amount", amount.String()),
	)
	telemetry.SetAttribute(span, telemetry.SpanAttrVoucherNumber, receipt.Number)
	response := ToReceiptResponse(receipt)
	return &response, nil
}

// RecordPayment records money paid out of a safe. The safe row is locked and
// its balance recomputed before the voucher is written.
func (s *VoucherService) RecordPayment(ctx context.Context, tenantID uuid.UUID, req RecordPaymentRequest) (*VoucherResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "voucher", "record_payment")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrSafeID, req.SafeID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	date, err := parseDateOr(req.Date, time.Now())
	if err != nil {
		return nil, err
	}
	amount := valueobject.NewMoney(req.Amount)

	var payment *treasury.PaymentVoucher
	err = s.txScope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		payment, err = PostPayment(ctx, repos, tenantID, treasury.PaymentInput{
			VoucherInput: treasury.VoucherInput{
				Date:        date,
				Amount:      amount,
				SafeID:      req.SafeID,
				PartnerID:   req.PartnerID,
				Description: req.Description,
				Source:      treasury.SourceManual,
				CreatedBy:   userID(req.CreatedBy),
			},
			SupplierID:  req.SupplierID,
			ProjectID:   req.ProjectID,
			ExpenseHead: req.ExpenseHead,
		})
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.afterWrite(ctx, tenantID, shared.DrainEvents(payment), payment.SafeID)
	s.logger.Info("Payment voucher recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("voucher_number", payment.Number),
		zap.String("amount", amount.String()),
	)
	telemetry.SetAttribute(span, telemetry.SpanAttrVoucherNumber, payment.Number)
	response := ToPaymentResponse(payment)
	return &response, nil
}

// PostPayment locks the safe, checks its balance and writes a payment voucher
// inside an open transaction
func PostPayment(ctx context.Context, repos uow.TransactionalRepositories, tenantID uuid.UUID, in treasury.PaymentInput) (*treasury.PaymentVoucher, error) {
	safe, err := repos.Safes().FindByIDForUpdate(ctx, tenantID, in.SafeID)
	if err != nil {
		return nil, err
	}
	if err := safe.EnsureActive(); err != nil {
		return nil, err
	}
	if !in.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Voucher amount must be positive")
	}

	balance, err := NewBalanceCalculator(repos.Receipts(), repos.Payments()).Balance(ctx, tenantID, safe.ID, treasury.AllTime)
	if err != nil {
		return nil, err
	}
	if !balance.Covers(in.Amount) {
		return nil, shared.NewDomainErrorf("INSUFFICIENT_BALANCE",
			"Safe %s balance %s does not cover %s", safe.Name, balance.Net().String(), in.Amount.String())
	}

	seq, err := repos.Sequences().Next(ctx, tenantID, SequencePayment)
	if err != nil {
		return nil, err
	}
	payment, err := treasury.NewPaymentVoucher(tenantID, treasury.FormatVoucherNumber(treasury.VoucherTypePayment, seq), in)
	if err != nil {
		return nil, err
	}
	if err := repos.Payments().Save(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// PostReceipt writes a receipt voucher on an active safe inside an open transaction
func PostReceipt(ctx context.Context, repos uow.TransactionalRepositories, tenantID uuid.UUID, in treasury.ReceiptInput) (*treasury.ReceiptVoucher, error) {
	safe, err := repos.Safes().FindByIDForTenant(ctx, tenantID, in.SafeID)
	if err != nil {
		return nil, err
	}
	if err := safe.EnsureActive(); err != nil {
		return nil, err
	}
	seq, err := repos.Sequences().Next(ctx, tenantID, SequenceReceipt)
	if err != nil {
		return nil, err
	}
	receipt, err := treasury.NewReceiptVoucher(tenantID, treasury.FormatVoucherNumber(treasury.VoucherTypeReceipt, seq), in)
	if err != nil {
		return nil, err
	}
	if err := repos.Receipts().Save(ctx, receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

// CancelReceipt cancels a receipt voucher and reverses what it posted
func (s *VoucherService) CancelReceipt(ctx context.Context, tenantID, id uuid.UUID, req CancelVoucherRequest) (*VoucherResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "voucher", "cancel_receipt")
	defer span.End()

	var receipt *treasury.ReceiptVoucher
	var events []shared.DomainEvent
	err := s.txScope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		receipt, err = repos.Receipts().FindByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if err := ensureCancellable(&receipt.Voucher); err != nil {
			return err
		}
		// the cash may already have been paid out of the safe
		safe, err := repos.Safes().FindByIDForUpdate(ctx, tenantID, receipt.SafeID)
		if err != nil {
			return err
		}
		balance, err := NewBalanceCalculator(repos.Receipts(), repos.Payments()).Balance(ctx, tenantID, safe.ID, treasury.AllTime)
		if err != nil {
			return err
		}
		if !balance.Covers(receipt.AmountMoney()) {
			return shared.NewDomainErrorf("INSUFFICIENT_BALANCE",
				"Safe %s balance %s does not cover reversing %s", safe.Name, balance.Net().String(), receipt.AmountMoney().String())
		}
		c, err := paymentApplier{repos: repos}.reverseReceipt(ctx, receipt, req.Reason, time.Now())
		if err != nil {
			return err
		}
		if c != nil {
			events = append(events, shared.DrainEvents(c)...)
		}
		events = append(events, shared.DrainEvents(receipt)...)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.afterWrite(ctx, tenantID, events, receipt.SafeID)
	s.logger.Info("Receipt voucher cancelled",
		zap.String("tenant_id", tenantID.String()),
		zap.String("voucher_number", receipt.Number),
		zap.String("reason", req.Reason),
	)
	response := ToReceiptResponse(receipt)
	return &response, nil
}

// CancelPayment cancels a payment voucher
func (s *VoucherService) CancelPayment(ctx context.Context, tenantID, id uuid.UUID, req CancelVoucherRequest) (*VoucherResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "voucher", "cancel_payment")
	defer span.End()

	var payment *treasury.PaymentVoucher
	err := s.txScope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		payment, err = repos.Payments().FindByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if err := ensureCancellable(&payment.Voucher); err != nil {
			return err
		}
		if err := payment.CancelPayment(req.Reason, time.Now()); err != nil {
			return err
		}
		return repos.Payments().Save(ctx, payment)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.afterWrite(ctx, tenantID, shared.DrainEvents(payment), payment.SafeID)
	s.logger.Info("Payment voucher cancelled",
		zap.String("tenant_id", tenantID.String()),
		zap.String("voucher_number", payment.Number),
		zap.String("reason", req.Reason),
	)
	response := ToPaymentResponse(payment)
	return &response, nil
}

// Vouchers created by transfers and settlements come in pairs and are only
// undone through their own workflow.
func ensureCancellable(v *treasury.Voucher) error {
	if v.Source == treasury.SourceTransfer || v.Source == treasury.SourceSettlement {
		return shared.NewDomainErrorf("VOUCHER_LOCKED", "Voucher %s was created by a %s and cannot be cancelled on its own",
			v.Number, v.Source)
	}
	return nil
}

// GetReceipt retrieves a receipt voucher by ID
func (s *VoucherService) GetReceipt(ctx context.Context, tenantID, id uuid.UUID) (*VoucherResponse, error) {
	v, err := s.receiptRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToReceiptResponse(v)
	return &response, nil
}

// GetPayment retrieves a payment voucher by ID
func (s *VoucherService) GetPayment(ctx context.Context, tenantID, id uuid.UUID) (*VoucherResponse, error) {
	v, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(v)
	return &response, nil
}

// ListReceipts lists receipt vouchers with the total amount of every match
func (s *VoucherService) ListReceipts(ctx context.Context, tenantID uuid.UUID, filter treasury.VoucherFilter) (*VoucherListResponse, error) {
	vouchers, err := s.receiptRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.receiptRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	amount, err := s.receiptRepo.SumAmount(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]VoucherResponse, len(vouchers))
	for i := range vouchers {
		items[i] = ToReceiptResponse(&vouchers[i])
	}
	return &VoucherListResponse{Items: items, Total: total, TotalAmount: amount}, nil
}

// ListPayments lists payment vouchers with the total amount of every match
func (s *VoucherService) ListPayments(ctx context.Context, tenantID uuid.UUID, filter treasury.VoucherFilter) (*VoucherListResponse, error) {
	vouchers, err := s.paymentRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.paymentRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	amount, err := s.paymentRepo.SumAmount(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]VoucherResponse, len(vouchers))
	for i := range vouchers {
		items[i] = ToPaymentResponse(&vouchers[i])
	}
	return &VoucherListResponse{Items: items, Total: total, TotalAmount: amount}, nil
}

// Stats counts and sums non-cancelled vouchers, optionally for one safe and period
func (s *VoucherService) Stats(ctx context.Context, tenantID uuid.UUID, safeID *uuid.UUID, period treasury.Period) (*VoucherStatsResponse, error) {
	filter := treasury.VoucherFilter{SafeID: safeID, Period: period}
	receiptCount, err := s.receiptRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	receiptTotal, err := s.receiptRepo.SumAmount(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	paymentCount, err := s.paymentRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	paymentTotal, err := s.paymentRepo.SumAmount(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	return &VoucherStatsResponse{
		SafeID:       safeID,
		ReceiptCount: receiptCount,
		ReceiptTotal: receiptTotal,
		PaymentCount: paymentCount,
		PaymentTotal: paymentTotal,
		Net:          receiptTotal.Sub(paymentTotal),
	}, nil
}

func (s *VoucherService) afterWrite(ctx context.Context, tenantID uuid.UUID, events []shared.DomainEvent, safeIDs ...uuid.UUID) {
	s.cache.Invalidate(ctx, tenantID, safeIDs...)
	if err := shared.PublishEvents(ctx, s.eventPublisher, events); err != nil {
		s.logger.Warn("Failed to publish voucher events", zap.Error(err))
	}
}
