package event

import (
	"github.com/erp/realestate/internal/domain/contract"
	"github.com/erp/realestate/internal/domain/settlement"
	"github.com/erp/realestate/internal/domain/treasury"
)

// RegisterAllEvents registers every domain event the ledger raises so
// consumers of the exchange can decode envelopes back into typed events
func RegisterAllEvents(serializer *EventSerializer) {
	serializer.Register(contract.EventTypeContractCreated, &contract.ContractCreatedEvent{})
	serializer.Register(contract.EventTypeScheduleRegenerated, &contract.ScheduleRegeneratedEvent{})
	serializer.Register(contract.EventTypePaymentApplied, &contract.PaymentAppliedEvent{})

	serializer.Register(treasury.EventTypeVoucherPosted, &treasury.VoucherEvent{})
	serializer.Register(treasury.EventTypeVoucherCancelled, &treasury.VoucherEvent{})

	serializer.Register(settlement.EventTypeSettlementExecuted, &settlement.ExecutedEvent{})
}
