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

// TreasuryService answers balance questions and moves money between safes
type TreasuryService struct {
	txScope        uow.TransactionScope
	safeRepo       treasury.SafeRepository
	receiptRepo    treasury.ReceiptVoucherRepository
	paymentRepo    treasury.PaymentVoucherRepository
	calculator     BalanceCalculator
	cache          BalanceCache
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewTreasuryService creates a new TreasuryService
func NewTreasuryService(
	txScope uow.TransactionScope,
	safeRepo treasury.SafeRepository,
	receiptRepo treasury.ReceiptVoucherRepository,
	paymentRepo treasury.PaymentVoucherRepository,
	logger *zap.Logger,
) *TreasuryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TreasuryService{
		txScope:     txScope,
		safeRepo:    safeRepo,
		receiptRepo: receiptRepo,
		paymentRepo: paymentRepo,
		calculator:  NewBalanceCalculator(receiptRepo, paymentRepo),
		cache:       noopBalanceCache{},
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *TreasuryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBalanceCache sets the all-time balance cache
func (s *TreasuryService) SetBalanceCache(cache BalanceCache) {
	if cache != nil {
		s.cache = cache
	}
}

// Balance returns the safe balance over the period. All-time balances are
// served from the cache when possible.
func (s *TreasuryService) Balance(ctx context.Context, tenantID, safeID uuid.UUID, period treasury.Period) (treasury.Balance, error) {
	if !period.IsAllTime() {
		return s.calculator.Balance(ctx, tenantID, safeID, period)
	}
	cached, generation, ok := s.cache.Get(ctx, tenantID, safeID)
	if ok {
		return *cached, nil
	}
	balance, err := s.calculator.Balance(ctx, tenantID, safeID, period)
	if err != nil {
		return treasury.Balance{}, err
	}
	s.cache.Set(ctx, tenantID, generation, balance)
	return balance, nil
}

// SafeBalance returns Σ receipts − Σ payments of a safe within [from, to]
func (s *TreasuryService) SafeBalance(ctx context.Context, tenantID, safeID uuid.UUID, period treasury.Period) (*BalanceResponse, error) {
	if _, err := s.safeRepo.FindByIDForTenant(ctx, tenantID, safeID); err != nil {
		return nil, err
	}
	balance, err := s.Balance(ctx, tenantID, safeID, period)
	if err != nil {
		return nil, err
	}
	response := toBalanceResponse(balance, period)
	return &response, nil
}

// CashFlow lists the safe's vouchers in date order with a running balance.
// The opening balance is everything posted before the period starts.
func (s *TreasuryService) CashFlow(ctx context.Context, tenantID, safeID uuid.UUID, period treasury.Period) (*CashFlowResponse, error) {
	if _, err := s.safeRepo.FindByIDForTenant(ctx, tenantID, safeID); err != nil {
		return nil, err
	}

	opening := valueobject.Zero()
	if period.From != nil {
		before := period.From.AddDate(0, 0, -1)
		b, err := s.calculator.Balance(ctx, tenantID, safeID, treasury.Period{To: &before})
		if err != nil {
			return nil, err
		}
		opening = b.Net()
	}

	// PageSize 0 lists every matching voucher
	filter := treasury.VoucherFilter{SafeID: &safeID, Period: period}
	receipts, err := s.receiptRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	entries := treasury.BuildCashFlow(opening, receipts, payments)
	response := &CashFlowResponse{
		SafeID:  safeID,
		From:    period.From,
		To:      period.To,
		Opening: opening,
		Closing: opening,
		Entries: make([]CashFlowLine, 0, len(entries)),
	}
	for _, e := range entries {
		response.Entries = append(response.Entries, CashFlowLine{
			Date:        e.Date,
			Direction:   e.Direction,
			VoucherID:   e.VoucherID,
			Number:      e.Number,
			Description: e.Description,
			Amount:      e.Amount,
			Running:     e.Running,
		})
		response.Closing = e.Running
	}
	return response, nil
}

// Summary returns every safe with its all-time balance plus the totals
func (s *TreasuryService) Summary(ctx context.Context, tenantID uuid.UUID) (*SummaryResponse, error) {
	safes, err := s.safeRepo.FindAllForTenant(ctx, tenantID, shared.Filter{})
	if err != nil {
		return nil, err
	}

	summaries := make([]treasury.SafeSummary, 0, len(safes))
	for _, safe := range safes {
		balance, err := s.Balance(ctx, tenantID, safe.ID, treasury.AllTime)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, treasury.SafeSummary{Safe: safe, Balance: balance})
	}

	totals := treasury.SafesTotals(summaries)
	response := &SummaryResponse{
		Safes:         make([]SafeBalanceLine, 0, len(summaries)),
		TotalReceipts: totals.Receipts,
		TotalPayments: totals.Payments,
		TotalBalance:  totals.Net(),
	}
	for _, sm := range summaries {
		response.Safes = append(response.Safes, SafeBalanceLine{
			SafeID:          sm.Safe.ID,
			Name:            sm.Safe.Name,
			IsPartnerWallet: sm.Safe.IsPartnerWallet,
			IsActive:        sm.Safe.IsActive,
			Receipts:        sm.Balance.Receipts,
			Payments:        sm.Balance.Payments,
			Balance:         sm.Balance.Net(),
		})
	}
	return response, nil
}

// Transfer moves money between two safes with a payment voucher on the
// source and a receipt voucher on the destination
func (s *TreasuryService) Transfer(ctx context.Context, tenantID uuid.UUID, req TransferRequest) (*TransferResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "treasury", "transfer")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		"from_safe_id", req.FromSafeID.String(),
		"to_safe_id", req.ToSafeID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	if req.FromSafeID == req.ToSafeID {
		return nil, shared.NewDomainError("SAME_SAFE", "Source and destination safes must differ")
	}
	amount := valueobject.NewMoney(req.Amount)
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transfer amount must be positive")
	}
	date, err := parseDateOr(req.Date, time.Now())
	if err != nil {
		return nil, err
	}

	transferID := uuid.New()
	var payment *treasury.PaymentVoucher
	var receipt *treasury.ReceiptVoucher
	err = s.txScope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		from, to, err := lockSafePair(ctx, repos, tenantID, req.FromSafeID, req.ToSafeID)
		if err != nil {
			return err
		}
		if err := to.EnsureActive(); err != nil {
			return err
		}
		outDesc, inDesc := treasury.TransferDescriptions(from.Name, to.Name, req.Description)

		payment, err = PostPayment(ctx, repos, tenantID, treasury.PaymentInput{
			VoucherInput: treasury.VoucherInput{
				Date:        date,
				Amount:      amount,
				SafeID:      from.ID,
				PartnerID:   from.PartnerID,
				Description: outDesc,
				Source:      treasury.SourceTransfer,
				SourceID:    &transferID,
				CreatedBy:   userID(req.CreatedBy),
			},
		})
		if err != nil {
			return err
		}
		receipt, err = PostReceipt(ctx, repos, tenantID, treasury.ReceiptInput{
			VoucherInput: treasury.VoucherInput{
				Date:        date,
				Amount:      amount,
				SafeID:      to.ID,
				PartnerID:   to.PartnerID,
				Description: inDesc,
				Source:      treasury.SourceTransfer,
				SourceID:    &transferID,
				CreatedBy:   userID(req.CreatedBy),
			},
		})
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.cache.Invalidate(ctx, tenantID, req.FromSafeID, req.ToSafeID)
	if err := shared.PublishEvents(ctx, s.eventPublisher, shared.DrainEvents(payment, receipt)); err != nil {
		s.logger.Warn("Failed to publish transfer events", zap.Error(err))
	}
	s.logger.Info("Safe transfer recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("payment_number", payment.Number),
		zap.String("receipt_number", receipt.Number),
		zap.String("amount", amount.String()),
	)
	return &TransferResponse{
		TransferID: transferID,
		Payment:    ToPaymentResponse(payment),
		Receipt:    ToReceiptResponse(receipt),
	}, nil
}

// lockSafePair locks both safes in id order so concurrent transfers in
// opposite directions cannot deadlock. PostPayment re-reads the source row
// under the lock it already holds.
func lockSafePair(ctx context.Context, repos uow.TransactionalRepositories, tenantID, fromID, toID uuid.UUID) (*treasury.Safe, *treasury.Safe, error) {
	first, second := fromID, toID
	if second.String() < first.String() {
		first, second = second, first
	}
	a, err := repos.Safes().FindByIDForUpdate(ctx, tenantID, first)
	if err != nil {
		return nil, nil, err
	}
	b, err := repos.Safes().FindByIDForUpdate(ctx, tenantID, second)
	if err != nil {
		return nil, nil, err
	}
	if a.ID == fromID {
		return a, b, nil
	}
	return b, a, nil
}

// PartnerTransactions lists the vouchers posted to the partner's wallet or
// tagged with the partner
func (s *TreasuryService) PartnerTransactions(ctx context.Context, tenantID, partnerID uuid.UUID, period treasury.Period) (*PartnerTransactionsResponse, error) {
	response := &PartnerTransactionsResponse{PartnerID: partnerID}
	wallet, err := s.safeRepo.FindWalletByPartner(ctx, tenantID, partnerID)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		response.WalletID = &wallet.ID
	}

	filter := treasury.VoucherFilter{PartnerID: &partnerID, Period: period}
	receipts, err := s.receiptRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	response.Receipts = make([]VoucherResponse, len(receipts))
	response.TotalReceipts = valueobject.Zero()
	for i := range receipts {
		response.Receipts[i] = ToReceiptResponse(&receipts[i])
		response.TotalReceipts = response.TotalReceipts.Add(receipts[i].AmountMoney())
	}
	response.Payments = make([]VoucherResponse, len(payments))
	response.TotalPayments = valueobject.Zero()
	for i := range payments {
		response.Payments[i] = ToPaymentResponse(&payments[i])
		response.TotalPayments = response.TotalPayments.Add(payments[i].AmountMoney())
	}
	response.Net = response.TotalReceipts.Sub(response.TotalPayments)
	return response, nil
}
