package notification

import (
	"time"

	"github.com/erp/realestate/internal/domain/notification"
	"github.com/google/uuid"
)

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID        uuid.UUID             `json:"id"`
	Type      notification.Type     `json:"type"`
	Priority  notification.Priority `json:"priority"`
	Title     string                `json:"title"`
	Message   string                `json:"message"`
	Link      string                `json:"link,omitempty"`
	SubjectID *uuid.UUID            `json:"subject_id,omitempty"`
	IsRead    bool                  `json:"is_read"`
	ReadAt    *time.Time            `json:"read_at,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

// ToNotificationResponse converts a notification to a response
func ToNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Priority:  n.Priority,
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		SubjectID: n.SubjectID,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// MarkReadRequest marks notifications as read; no ids marks all of them
type MarkReadRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

// SettingsRequest replaces a user's notification preferences
type SettingsRequest struct {
	NotifyInstallmentDue     bool `json:"notify_installment_due"`
	InstallmentDueDays       int  `json:"installment_due_days" binding:"min=1,max=90"`
	NotifyInstallmentOverdue bool `json:"notify_installment_overdue"`
	NotifyLowStock           bool `json:"notify_low_stock"`
	NotifyProjectBudget      bool `json:"notify_project_budget"`
	BudgetThresholdPercent   int  `json:"budget_threshold_percent" binding:"min=1,max=100"`
	NotifySettlements        bool `json:"notify_settlements"`
	EmailNotifications       bool `json:"email_notifications"`
}

// SettingsResponse represents a user's notification preferences
type SettingsResponse struct {
	UserID                   uuid.UUID `json:"user_id"`
	NotifyInstallmentDue     bool      `json:"notify_installment_due"`
	InstallmentDueDays       int       `json:"installment_due_days"`
	NotifyInstallmentOverdue bool      `json:"notify_installment_overdue"`
	NotifyLowStock           bool      `json:"notify_low_stock"`
	NotifyProjectBudget      bool      `json:"notify_project_budget"`
	BudgetThresholdPercent   int       `json:"budget_threshold_percent"`
	NotifySettlements        bool      `json:"notify_settlements"`
	EmailNotifications       bool      `json:"email_notifications"`
}

// ToSettingsResponse converts settings to a response
func ToSettingsResponse(s *notification.Settings) SettingsResponse {
	return SettingsResponse{
		UserID:                   s.UserID,
		NotifyInstallmentDue:     s.NotifyInstallmentDue,
		InstallmentDueDays:       s.InstallmentDueDays,
		NotifyInstallmentOverdue: s.NotifyInstallmentOverdue,
		NotifyLowStock:           s.NotifyLowStock,
		NotifyProjectBudget:      s.NotifyProjectBudget,
		BudgetThresholdPercent:   s.BudgetThresholdPercent,
		NotifySettlements:        s.NotifySettlements,
		EmailNotifications:       s.EmailNotifications,
	}
}

// GenerateResponse reports how many notifications a sweep wrote
type GenerateResponse struct {
	Users   int `json:"users"`
	Created int `json:"created"`
}
