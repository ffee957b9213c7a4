package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/google/uuid"
)

// Type classifies a notification
type Type string

const (
	TypeInstallmentDue     Type = "installment_due"
	TypeInstallmentOverdue Type = "installment_overdue"
	TypeLowStock           Type = "low_stock"
	TypeProjectBudget      Type = "project_budget"
	TypeSettlementPending  Type = "settlement_pending"
	TypeContractCreated    Type = "contract_created"
	TypePaymentReceived    Type = "payment_received"
	TypeVoucherCreated     Type = "voucher_created"
	TypeGeneral            Type = "general"
)

// AllTypes lists every type in display order
var AllTypes = []Type{
	TypeInstallmentDue,
	TypeInstallmentOverdue,
	TypeLowStock,
	TypeProjectBudget,
	TypeSettlementPending,
	TypeContractCreated,
	TypePaymentReceived,
	TypeVoucherCreated,
	TypeGeneral,
}

// IsValid checks if the type is known
func (t Type) IsValid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Priority orders notifications by urgency
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid checks if the priority is known
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Notification is a message addressed to one user
type Notification struct {
	shared.BaseEntity
	TenantID  uuid.UUID
	UserID    uuid.UUID
	Type      Type
	Priority  Priority
	Title     string
	Message   string
	Link      string
	SubjectID *uuid.UUID
	// DedupKey is unique per user; the generator uses it to skip repeats
	DedupKey string
	IsRead   bool
	ReadAt   *time.Time
}

// New creates an unread notification
func New(tenantID, userID uuid.UUID, t Type, p Priority, title, message, link string) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Notification user is required")
	}
	if !t.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Unknown notification type")
	}
	if !p.IsValid() {
		return nil, shared.NewDomainError("INVALID_PRIORITY", "Unknown notification priority")
	}
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Notification title cannot be empty")
	}
	return &Notification{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		UserID:     userID,
		Type:       t,
		Priority:   p,
		Title:      title,
		Message:    message,
		Link:       link,
	}, nil
}

// MarkRead flags the notification as read once
func (n *Notification) MarkRead(at time.Time) {
	if n.IsRead {
		return
	}
	n.IsRead = true
	n.ReadAt = &at
	n.UpdatedAt = at
}

// DailyKey de-duplicates a subject per calendar day
func DailyKey(t Type, subjectID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("%s:%s:%s", t, subjectID, shared.DateOf(day).Format(shared.DateLayout))
}

// WeeklyKey de-duplicates a subject per ISO week
func WeeklyKey(t Type, subjectID uuid.UUID, day time.Time) string {
	year, week := day.ISOWeek()
	return fmt.Sprintf("%s:%s:%d-W%02d", t, subjectID, year, week)
}

// Settings are one user's notification preferences
type Settings struct {
	TenantID                 uuid.UUID
	UserID                   uuid.UUID
	NotifyInstallmentDue     bool
	InstallmentDueDays       int
	NotifyInstallmentOverdue bool
	NotifyLowStock           bool
	NotifyProjectBudget      bool
	BudgetThresholdPercent   int
	NotifySettlements        bool
	EmailNotifications       bool
	UpdatedAt                time.Time
}

// DefaultSettings returns the settings a user starts with
func DefaultSettings(tenantID, userID uuid.UUID) Settings {
	return Settings{
		TenantID:                 tenantID,
		UserID:                   userID,
		NotifyInstallmentDue:     true,
		InstallmentDueDays:       7,
		NotifyInstallmentOverdue: true,
		NotifyLowStock:           true,
		NotifyProjectBudget:      true,
		BudgetThresholdPercent:   80,
		NotifySettlements:        true,
	}
}

// Validate checks the numeric settings
func (s Settings) Validate() error {
	if s.InstallmentDueDays < 1 || s.InstallmentDueDays > 90 {
		return shared.NewDomainError("INVALID_SETTINGS", "Installment due days must be between 1 and 90")
	}
	if s.BudgetThresholdPercent < 1 || s.BudgetThresholdPercent > 100 {
		return shared.NewDomainError("INVALID_SETTINGS", "Budget threshold must be between 1 and 100")
	}
	return nil
}

// Summary counts a user's notifications
type Summary struct {
	Total  int64          `json:"total"`
	Unread int64          `json:"unread"`
	Urgent int64          `json:"urgent"`
	High   int64          `json:"high"`
	ByType map[Type]int64 `json:"by_type"`
}

// Filter defines filtering options for notification queries
type Filter struct {
	shared.Filter
	UnreadOnly bool
	Type       *Type
}

// Repository defines persistence for notifications and settings
type Repository interface {
	// Create inserts the notification unless one with the same user and
	// dedup key exists. It reports whether a row was written.
	Create(ctx context.Context, n *Notification) (bool, error)
	FindForUser(ctx context.Context, tenantID, userID uuid.UUID, filter Filter) ([]Notification, error)
	CountForUser(ctx context.Context, tenantID, userID uuid.UUID, filter Filter) (int64, error)
	MarkRead(ctx context.Context, tenantID, userID uuid.UUID, ids []uuid.UUID, at time.Time) (int64, error)
	Summary(ctx context.Context, tenantID, userID uuid.UUID) (*Summary, error)
	DeleteReadBefore(ctx context.Context, tenantID uuid.UUID, before time.Time) (int64, error)

	FindSettings(ctx context.Context, tenantID, userID uuid.UUID) (*Settings, error)
	SaveSettings(ctx context.Context, s *Settings) error
	FindAllSettings(ctx context.Context, tenantID uuid.UUID) ([]Settings, error)
}
