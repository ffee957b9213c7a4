package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/realestate/internal/domain/notification"
	"github.com/erp/realestate/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create inserts the notification unless (user_id, dedup_key) already exists.
// Rows without a dedup key never conflict.
func (r *GormNotificationRepository) Create(ctx context.Context, n *notification.Notification) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(models.NotificationModelFromDomain(n))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindForUser lists a user's notifications, newest first
func (r *GormNotificationRepository) FindForUser(ctx context.Context, tenantID, userID uuid.UUID, filter notification.Filter) ([]notification.Notification, error) {
	var notificationModels []models.NotificationModel
	query := r.userQuery(ctx, tenantID, userID, filter)
	query = applyPagination(applyOrder(query, filter.Filter, NotificationSortFields, "created_at DESC, id ASC"), filter.Filter)
	if err := query.Find(&notificationModels).Error; err != nil {
		return nil, err
	}

	notifications := make([]notification.Notification, len(notificationModels))
	for i, model := range notificationModels {
		notifications[i] = *model.ToDomain()
	}
	return notifications, nil
}

// CountForUser counts a user's notifications matching the filter
func (r *GormNotificationRepository) CountForUser(ctx context.Context, tenantID, userID uuid.UUID, filter notification.Filter) (int64, error) {
	var count int64
	if err := r.userQuery(ctx, tenantID, userID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead marks the given notifications read; with no ids every unread one is marked
func (r *GormNotificationRepository) MarkRead(ctx context.Context, tenantID, userID uuid.UUID, ids []uuid.UUID, at time.Time) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("tenant_id = ? AND user_id = ? AND is_read = ?", tenantID, userID, false)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	result := query.Updates(map[string]any{"is_read": true, "read_at": at})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

type notificationSummaryRow struct {
	Type     notification.Type
	Priority notification.Priority
	IsRead   bool
	Count    int64
}

// Summary counts a user's notifications. Urgent, High and ByType count unread rows only.
func (r *GormNotificationRepository) Summary(ctx context.Context, tenantID, userID uuid.UUID) (*notification.Summary, error) {
	var rows []notificationSummaryRow
	if err := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Select("type, priority, is_read, COUNT(*) AS count").
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Group("type, priority, is_read").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	summary := &notification.Summary{ByType: make(map[notification.Type]int64)}
	for _, row := range rows {
		summary.Total += row.Count
		if row.IsRead {
			continue
		}
		summary.Unread += row.Count
		summary.ByType[row.Type] += row.Count
		switch row.Priority {
		case notification.PriorityUrgent:
			summary.Urgent += row.Count
		case notification.PriorityHigh:
			summary.High += row.Count
		}
	}
	return summary, nil
}

// DeleteReadBefore removes read notifications created before the cutoff
func (r *GormNotificationRepository) DeleteReadBefore(ctx context.Context, tenantID uuid.UUID, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_read = ? AND created_at < ?", tenantID, true, before).
		Delete(&models.NotificationModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// FindSettings returns the user's settings, nil if never saved
func (r *GormNotificationRepository) FindSettings(ctx context.Context, tenantID, userID uuid.UUID) (*notification.Settings, error) {
	var model models.NotificationSettingsModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SaveSettings upserts the user's settings row
func (r *GormNotificationRepository) SaveSettings(ctx context.Context, s *notification.Settings) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(models.NotificationSettingsModelFromDomain(s)).Error
}

// FindAllSettings lists every settings row of the tenant
func (r *GormNotificationRepository) FindAllSettings(ctx context.Context, tenantID uuid.UUID) ([]notification.Settings, error) {
	var settingsModels []models.NotificationSettingsModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("user_id ASC").
		Find(&settingsModels).Error; err != nil {
		return nil, err
	}
	settings := make([]notification.Settings, len(settingsModels))
	for i, model := range settingsModels {
		settings[i] = *model.ToDomain()
	}
	return settings, nil
}

func (r *GormNotificationRepository) userQuery(ctx context.Context, tenantID, userID uuid.UUID, filter notification.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID)
	query = applySearch(query, filter.Search, "title", "message")
	if filter.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	return query
}

// Ensure GormNotificationRepository implements notification.Repository
var _ notification.Repository = (*GormNotificationRepository)(nil)
