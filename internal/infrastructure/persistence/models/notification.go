package models

import (
	"time"

	"github.com/erp/realestate/internal/domain/notification"
	"github.com/google/uuid"
)

// NotificationModel is the persistence model for a user notification.
// (user_id, dedup_key) is unique so repeated sweeps insert nothing new.
type NotificationModel struct {
	BaseModel
	TenantID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID             `gorm:"type:uuid;not null;index;uniqueIndex:idx_notification_dedup,priority:1"`
	Type      notification.Type     `gorm:"type:varchar(30);not null;index"`
	Priority  notification.Priority `gorm:"type:varchar(10);not null;default:'medium'"`
	Title     string                `gorm:"type:varchar(200);not null"`
	Message   string                `gorm:"type:text"`
	Link      string                `gorm:"type:varchar(500)"`
	SubjectID *uuid.UUID            `gorm:"type:uuid"`
	DedupKey  *string               `gorm:"type:varchar(200);uniqueIndex:idx_notification_dedup,priority:2"`
	IsRead    bool                  `gorm:"not null;default:false;index"`
	ReadAt    *time.Time
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification.
func (m *NotificationModel) ToDomain() *notification.Notification {
	n := &notification.Notification{
		BaseEntity: m.entity(),
		TenantID:  m.TenantID,
		UserID:    m.UserID,
		Type:      m.Type,
		Priority:  m.Priority,
		Title:     m.Title,
		Message:   m.Message,
		Link:      m.Link,
		SubjectID: m.SubjectID,
		IsRead:    m.IsRead,
		ReadAt:    m.ReadAt,
	}
	if m.DedupKey != nil {
		n.DedupKey = *m.DedupKey
	}
	return n
}

// NotificationModelFromDomain creates a new persistence model from a domain Notification.
// An empty dedup key is stored as NULL so it never collides.
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	m := &NotificationModel{
		TenantID:  n.TenantID,
		UserID:    n.UserID,
		Type:      n.Type,
		Priority:  n.Priority,
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		SubjectID: n.SubjectID,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
	}
	if n.DedupKey != "" {
		key := n.DedupKey
		m.DedupKey = &key
	}
	m.setEntity(n.BaseEntity)
	return m
}

// NotificationSettingsModel stores one user's notification preferences.
type NotificationSettingsModel struct {
	TenantID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	NotifyInstallmentDue     bool      `gorm:"not null;default:true"`
	InstallmentDueDays       int       `gorm:"not null;default:7"`
	NotifyInstallmentOverdue bool      `gorm:"not null;default:true"`
	NotifyLowStock           bool      `gorm:"not null;default:true"`
	NotifyProjectBudget      bool      `gorm:"not null;default:true"`
	BudgetThresholdPercent   int       `gorm:"not null;default:80"`
	NotifySettlements        bool      `gorm:"not null;default:true"`
	EmailNotifications       bool      `gorm:"not null;default:false"`
	UpdatedAt                time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (NotificationSettingsModel) TableName() string {
	return "notification_settings"
}

// ToDomain converts the persistence model to domain Settings.
func (m *NotificationSettingsModel) ToDomain() *notification.Settings {
	return &notification.Settings{
		TenantID:                 m.TenantID,
		UserID:                   m.UserID,
		NotifyInstallmentDue:     m.NotifyInstallmentDue,
		InstallmentDueDays:       m.InstallmentDueDays,
		NotifyInstallmentOverdue: m.NotifyInstallmentOverdue,
		NotifyLowStock:           m.NotifyLowStock,
		NotifyProjectBudget:      m.NotifyProjectBudget,
		BudgetThresholdPercent:   m.BudgetThresholdPercent,
		NotifySettlements:        m.NotifySettlements,
		EmailNotifications:       m.EmailNotifications,
		UpdatedAt:                m.UpdatedAt,
	}
}

// NotificationSettingsModelFromDomain creates a new persistence model from domain Settings.
func NotificationSettingsModelFromDomain(s *notification.Settings) *NotificationSettingsModel {
	return &NotificationSettingsModel{
		TenantID:                 s.TenantID,
		UserID:                   s.UserID,
		NotifyInstallmentDue:     s.NotifyInstallmentDue,
		InstallmentDueDays:       s.InstallmentDueDays,
		NotifyInstallmentOverdue: s.NotifyInstallmentOverdue,
		NotifyLowStock:           s.NotifyLowStock,
		NotifyProjectBudget:      s.NotifyProjectBudget,
		BudgetThresholdPercent:   s.BudgetThresholdPercent,
		NotifySettlements:        s.NotifySettlements,
		EmailNotifications:       s.EmailNotifications,
		UpdatedAt:                s.UpdatedAt,
	}
}
