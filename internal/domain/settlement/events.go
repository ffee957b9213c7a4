package settlement

import (
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventTypeSettlementExecuted is raised when a settlement is realized with vouchers
const EventTypeSettlementExecuted = "SettlementExecuted"

// ExecutedEvent carries the realized transfer
type ExecutedEvent struct {
	shared.BaseDomainEvent
	Number        string          `json:"number"`
	FromPartnerID uuid.UUID       `json:"from_partner_id"`
	ToPartnerID   uuid.UUID       `json:"to_partner_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewSettlementExecutedEvent creates an ExecutedEvent
func NewSettlementExecutedEvent(s *Settlement) *ExecutedEvent {
	return &ExecutedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSettlementExecuted, "Settlement", s.ID, s.TenantID),
		Number:          s.Number,
		FromPartnerID:   s.FromPartnerID,
		ToPartnerID:     s.ToPartnerID,
		Amount:          s.Amount,
	}
}
