package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a settlement transfer
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// FormatNumber renders a settlement sequence as ST-000001
func FormatNumber(seq int64) string {
	return fmt.Sprintf("ST-%06d", seq)
}

// Scope narrows a settlement to a period and/or a project
type Scope struct {
	PartnersGroupID uuid.UUID
	ProjectID       *uuid.UUID
	PeriodFrom      *time.Time
	PeriodTo        *time.Time
}

// Validate checks the scope bounds
func (s Scope) Validate() error {
	if s.PartnersGroupID == uuid.Nil {
		return shared.NewDomainError("INVALID_GROUP", "Partners group is required")
	}
	if s.PeriodFrom != nil && s.PeriodTo != nil && s.PeriodFrom.After(*s.PeriodTo) {
		return shared.NewDomainError("INVALID_PERIOD", "Period start must not be after period end")
	}
	return nil
}

// Settlement is one pending or realized transfer between two partners
type Settlement struct {
	shared.TenantAggregateRoot
	Number           string
	RunID            *uuid.UUID
	FromPartnerID    uuid.UUID
	ToPartnerID      uuid.UUID
	Amount           decimal.Decimal
	Status           Status
	PartnersGroupID  uuid.UUID
	ProjectID        *uuid.UUID
	PeriodFrom       *time.Time
	PeriodTo         *time.Time
	SettlementDate   time.Time
	Notes            string
	PaymentVoucherID *uuid.UUID
	ReceiptVoucherID *uuid.UUID
	ExecutedAt       *time.Time
	CancelledAt      *time.Time
}

// NewSettlement creates a pending settlement for a calculated transfer
func NewSettlement(tenantID uuid.UUID, number string, scope Scope, t Transfer, date time.Time, notes string) (*Settlement, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if t.FromPartnerID == uuid.Nil || t.ToPartnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTNER", "Both partners are required")
	}
	if t.FromPartnerID == t.ToPartnerID {
		return nil, shared.NewDomainError("INVALID_PARTNER", "A partner cannot settle with itself")
	}
	if !t.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Settlement amount must be positive")
	}
	if notes == "" {
		notes = "Automatic settlement"
	}
	s := &Settlement{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		FromPartnerID:       t.FromPartnerID,
		ToPartnerID:         t.ToPartnerID,
		Amount:              t.Amount.Amount(),
		Status:              StatusPending,
		PartnersGroupID:     scope.PartnersGroupID,
		ProjectID:           scope.ProjectID,
		PeriodFrom:          scope.PeriodFrom,
		PeriodTo:            scope.PeriodTo,
		SettlementDate:      shared.DateOf(date),
		Notes:               notes,
	}
	return s, nil
}

// AmountMoney returns the amount as Money
func (s *Settlement) AmountMoney() valueobject.Money {
	return valueobject.NewMoney(s.Amount)
}

// Complete records the paired vouchers that realized the transfer
func (s *Settlement) Complete(paymentVoucherID, receiptVoucherID uuid.UUID, at time.Time) error {
	if s.Status != StatusPending {
		return shared.NewDomainErrorf("INVALID_STATE", "Settlement %s is %s and cannot be executed", s.Number, s.Status)
	}
	s.Status = StatusCompleted
	s.PaymentVoucherID = &paymentVoucherID
	s.ReceiptVoucherID = &receiptVoucherID
	s.ExecutedAt = &at
	s.UpdatedAt = at
	s.IncrementVersion()
	s.AddDomainEvent(NewSettlementExecutedEvent(s))
	return nil
}

// Cancel abandons a pending settlement
func (s *Settlement) Cancel(at time.Time) error {
	if s.Status != StatusPending {
		return shared.NewDomainErrorf("INVALID_STATE", "Settlement %s is %s and cannot be cancelled", s.Number, s.Status)
	}
	s.Status = StatusCancelled
	s.CancelledAt = &at
	s.UpdatedAt = at
	s.IncrementVersion()
	return nil
}

// DaysPending returns how long a pending settlement has waited
func (s *Settlement) DaysPending(today time.Time) int {
	if s.Status != StatusPending {
		return 0
	}
	return shared.DaysBetween(s.CreatedAt, today)
}

// Run is the snapshot of one period/project settlement calculation
type Run struct {
	shared.TenantAggregateRoot
	PartnersGroupID uuid.UUID
	ProjectID       *uuid.UUID
	PeriodFrom      *time.Time
	PeriodTo        *time.Time
	Total           decimal.Decimal
	PreBalances     []Position
	PostBalances    []Position
	Details         []Transfer
	Notes           string
}

// NewRun captures a calculation result
func NewRun(tenantID uuid.UUID, scope Scope, result Result, notes string) *Run {
	return &Run{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PartnersGroupID:     scope.PartnersGroupID,
		ProjectID:           scope.ProjectID,
		PeriodFrom:          scope.PeriodFrom,
		PeriodTo:            scope.PeriodTo,
		Total:               result.Total.Amount(),
		PreBalances:         result.Positions,
		PostBalances:        ApplyTransfers(result.Positions, result.Transfers),
		Details:             result.Transfers,
		Notes:               notes,
	}
}

// Filter defines filtering options for settlement queries
type Filter struct {
	shared.Filter
	PartnerID       *uuid.UUID
	PartnersGroupID *uuid.UUID
	ProjectID       *uuid.UUID
	Status          *Status
	RunID           *uuid.UUID
	CreatedBefore   *time.Time
}

// Repository defines persistence for settlements and runs
type Repository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Settlement, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Settlement, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]Settlement, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter Filter) (int64, error)
	Save(ctx context.Context, s *Settlement) error
	SaveBatch(ctx context.Context, settlements []*Settlement) error

	// SumCompleted sums completed settlements paid (from) or received (to) by the partner
	SumCompleted(ctx context.Context, tenantID, partnerID uuid.UUID, received bool, groupID *uuid.UUID) (valueobject.Money, error)

	SaveRun(ctx context.Context, run *Run) error
	FindRunByID(ctx context.Context, tenantID, id uuid.UUID) (*Run, error)
	FindRuns(ctx context.Context, tenantID uuid.UUID, groupID *uuid.UUID, filter shared.Filter) ([]Run, error)
}
