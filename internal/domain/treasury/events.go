package treasury

import (
	"time"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type names
const (
	EventTypeVoucherPosted    = "VoucherPosted"
	EventTypeVoucherCancelled = "VoucherCancelled"
)

// VoucherEvent is raised when a voucher is posted or cancelled
type VoucherEvent struct {
	shared.BaseDomainEvent
	VoucherType VoucherType     `json:"voucher_type"`
	Number      string          `json:"number"`
	SafeID      uuid.UUID       `json:"safe_id"`
	PartnerID   *uuid.UUID      `json:"partner_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Source      VoucherSource   `json:"source"`
	CreatedBy   *uuid.UUID      `json:"created_by,omitempty"`
}

func newVoucherEvent(eventType string, v *Voucher, t VoucherType) *VoucherEvent {
	return &VoucherEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, string(t)+"_VOUCHER", v.ID, v.TenantID),
		VoucherType:     t,
		Number:          v.Number,
		SafeID:          v.SafeID,
		PartnerID:       v.PartnerID,
		Amount:          v.Amount,
		Date:            v.Date,
		Source:          v.Source,
		CreatedBy:       v.CreatedBy,
	}
}

// NewVoucherPostedEvent creates a VoucherPosted event
func NewVoucherPostedEvent(v *Voucher, t VoucherType) *VoucherEvent {
	return newVoucherEvent(EventTypeVoucherPosted, v, t)
}

// NewVoucherCancelledEvent creates a VoucherCancelled event
func NewVoucherCancelledEvent(v *Voucher, t VoucherType) *VoucherEvent {
	return newVoucherEvent(EventTypeVoucherCancelled, v, t)
}
