package settlement

import (
	"time"

	"github.com/erp/realestate/internal/domain/settlement"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ComputeRequest scopes a settlement calculation to a group and optionally a
// project and/or a period
type ComputeRequest struct {
	PartnersGroupID uuid.UUID  `json:"partners_group_id" binding:"required"`
	ProjectID       *uuid.UUID `json:"project_id"`
	PeriodFrom      string     `json:"period_from" binding:"omitempty,datetime=2006-01-02"`
	PeriodTo        string     `json:"period_to" binding:"omitempty,datetime=2006-01-02"`
	Notes           string     `json:"notes" binding:"max=500"`
	CreatedBy       *uuid.UUID `json:"-"`
}

func (r ComputeRequest) scope() (settlement.Scope, error) {
	scope := settlement.Scope{PartnersGroupID: r.PartnersGroupID, ProjectID: r.ProjectID}
	if r.PeriodFrom != "" {
		from, err := shared.ParseDate(r.PeriodFrom)
		if err != nil {
			return scope, err
		}
		scope.PeriodFrom = &from
	}
	if r.PeriodTo != "" {
		to, err := shared.ParseDate(r.PeriodTo)
		if err != nil {
			return scope, err
		}
		scope.PeriodTo = &to
	}
	return scope, scope.Validate()
}

// ComputeResponse is the preview of a settlement calculation
type ComputeResponse struct {
	PartnersGroupID uuid.UUID             `json:"partners_group_id"`
	ProjectID       *uuid.UUID            `json:"project_id,omitempty"`
	PeriodFrom      *time.Time            `json:"period_from,omitempty"`
	PeriodTo        *time.Time            `json:"period_to,omitempty"`
	Total           valueobject.Money     `json:"total"`
	Positions       []settlement.Position `json:"positions"`
	Transfers       []settlement.Transfer `json:"transfers"`
}

// ExecuteRequest carries the voucher details of an executed settlement
type ExecuteRequest struct {
	Date        string     `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Description string     `json:"description" binding:"max=500"`
	CreatedBy   *uuid.UUID `json:"-"`
}

// SettlementResponse represents a settlement in API responses
type SettlementResponse struct {
	ID               uuid.UUID         `json:"id"`
	Number           string            `json:"number"`
	RunID            *uuid.UUID        `json:"run_id,omitempty"`
	FromPartnerID    uuid.UUID         `json:"from_partner_id"`
	ToPartnerID      uuid.UUID         `json:"to_partner_id"`
	Amount           valueobject.Money `json:"amount"`
	Status           settlement.Status `json:"status"`
	PartnersGroupID  uuid.UUID         `json:"partners_group_id"`
	ProjectID        *uuid.UUID        `json:"project_id,omitempty"`
	PeriodFrom       *time.Time        `json:"period_from,omitempty"`
	PeriodTo         *time.Time        `json:"period_to,omitempty"`
	SettlementDate   time.Time         `json:"settlement_date"`
	Notes            string            `json:"notes"`
	PaymentVoucherID *uuid.UUID        `json:"payment_voucher_id,omitempty"`
	ReceiptVoucherID *uuid.UUID        `json:"receipt_voucher_id,omitempty"`
	ExecutedAt       *time.Time        `json:"executed_at,omitempty"`
	CancelledAt      *time.Time        `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

// ToSettlementResponse converts a settlement to a response
func ToSettlementResponse(s *settlement.Settlement) SettlementResponse {
	return SettlementResponse{
		ID:               s.ID,
		Number:           s.Number,
		RunID:            s.RunID,
		FromPartnerID:    s.FromPartnerID,
		ToPartnerID:      s.ToPartnerID,
		Amount:           s.AmountMoney(),
		Status:           s.Status,
		PartnersGroupID:  s.PartnersGroupID,
		ProjectID:        s.ProjectID,
		PeriodFrom:       s.PeriodFrom,
		PeriodTo:         s.PeriodTo,
		SettlementDate:   s.SettlementDate,
		Notes:            s.Notes,
		PaymentVoucherID: s.PaymentVoucherID,
		ReceiptVoucherID: s.ReceiptVoucherID,
		ExecutedAt:       s.ExecutedAt,
		CancelledAt:      s.CancelledAt,
		CreatedAt:        s.CreatedAt,
	}
}

// RunResponse represents a settlement run with the settlements it created
type RunResponse struct {
	ID              uuid.UUID             `json:"id"`
	PartnersGroupID uuid.UUID             `json:"partners_group_id"`
	ProjectID       *uuid.UUID            `json:"project_id,omitempty"`
	PeriodFrom      *time.Time            `json:"period_from,omitempty"`
	PeriodTo        *time.Time            `json:"period_to,omitempty"`
	Total           valueobject.Money     `json:"total"`
	PreBalances     []settlement.Position `json:"pre_balances"`
	PostBalances    []settlement.Position `json:"post_balances"`
	Details         []settlement.Transfer `json:"details"`
	Notes           string                `json:"notes"`
	Settlements     []SettlementResponse  `json:"settlements,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

// ToRunResponse converts a run to a response
func ToRunResponse(r *settlement.Run) RunResponse {
	return RunResponse{
		ID:              r.ID,
		PartnersGroupID: r.PartnersGroupID,
		ProjectID:       r.ProjectID,
		PeriodFrom:      r.PeriodFrom,
		PeriodTo:        r.PeriodTo,
		Total:           valueobject.NewMoney(r.Total),
		PreBalances:     r.PreBalances,
		PostBalances:    r.PostBalances,
		Details:         r.Details,
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt,
	}
}

// ExecuteResponse is an executed settlement with its paired vouchers
type ExecuteResponse struct {
	Settlement           SettlementResponse `json:"settlement"`
	PaymentVoucherNumber string             `json:"payment_voucher_number"`
	ReceiptVoucherNumber string             `json:"receipt_voucher_number"`
}
