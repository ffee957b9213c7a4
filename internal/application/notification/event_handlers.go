package notification

import (
	"context"
	"fmt"

	"github.com/erp/realestate/internal/domain/contract"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/erp/realestate/internal/domain/treasury"
	"go.uber.org/zap"
)

// ContractCreatedHandler notifies users when a contract is created
type ContractCreatedHandler struct {
	service *NotificationService
	logger  *zap.Logger
}

// NewContractCreatedHandler creates a new ContractCreatedHandler
func NewContractCreatedHandler(service *NotificationService, logger *zap.Logger) *ContractCreatedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContractCreatedHandler{service: service, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ContractCreatedHandler) EventTypes() []string {
	return []string{contract.EventTypeContractCreated}
}

// Handle processes a ContractCreated event
func (h *ContractCreatedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*contract.ContractCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected *contract.ContractCreatedEvent, got %T", event)
	}
	if err := h.service.NotifyContractCreated(ctx, e.TenantID(), e.ContractID, e.Code, e.CustomerID, e.CreatedBy); err != nil {
		h.logger.Error("Failed to create contract notification",
			zap.String("contract_code", e.Code),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// ReceiptPostedHandler notifies users when a customer receipt is posted
type ReceiptPostedHandler struct {
	service     *NotificationService
	receiptRepo treasury.ReceiptVoucherRepository
	logger      *zap.Logger
}

// NewReceiptPostedHandler creates a new ReceiptPostedHandler
func NewReceiptPostedHandler(service *NotificationService, receiptRepo treasury.ReceiptVoucherRepository, logger *zap.Logger) *ReceiptPostedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptPostedHandler{service: service, receiptRepo: receiptRepo, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ReceiptPostedHandler) EventTypes() []string {
	return []string{treasury.EventTypeVoucherPosted}
}

// Handle processes a VoucherPosted event. Only customer money is announced:
// transfers and settlements move money between the tenant's own safes.
func (h *ReceiptPostedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*treasury.VoucherEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected *treasury.VoucherEvent, got %T", event)
	}
	if e.VoucherType != treasury.VoucherTypeReceipt {
		return nil
	}
	if e.Source != treasury.SourceInstallment && e.Source != treasury.SourceManual {
		return nil
	}

	rv, err := h.receiptRepo.FindByIDForTenant(ctx, e.TenantID(), e.AggregateID())
	if err != nil {
		return err
	}
	if rv.CustomerID == nil && rv.ContractID == nil {
		return nil
	}
	err = h.service.NotifyPaymentReceived(ctx, e.TenantID(), rv.ID, rv.Number, valueobject.NewMoney(rv.Amount), rv.CustomerID, rv.ContractID, e.CreatedBy)
	if err != nil {
		h.logger.Error("Failed to create payment notification",
			zap.String("voucher_number", rv.Number),
			zap.Error(err),
		)
		return err
	}
	return nil
}

var (
	_ shared.EventHandler = (*ContractCreatedHandler)(nil)
	_ shared.EventHandler = (*ReceiptPostedHandler)(nil)
)
