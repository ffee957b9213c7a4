package handler

import (
	notificationapp "github.com/erp/realestate/internal/application/notification"
	"github.com/erp/realestate/internal/domain/notification"
	"github.com/gin-gonic/gin"
)

// NotificationHandler handles the calling user's notifications
type NotificationHandler struct {
	BaseHandler
	notificationService *notificationapp.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *notificationapp.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List handles GET /notifications?unread_only=&type=
func (h *NotificationHandler) List(c *gin.Context) {
	tenantID, userID, ok := h.principal(c)
	if !ok {
		return
	}
	base, ok := h.listFilter(c)
	if !ok {
		return
	}
	filter := notification.Filter{Filter: base}
	unread, ok := h.queryBool(c, "unread_only")
	if !ok {
		return
	}
	filter.UnreadOnly = unread != nil && *unread
	if filter.Type, ok = queryEnum(&h.BaseHandler, c, "type", notification.Type.IsValid); !ok {
		return
	}

	items, total, err := h.notificationService.List(c.Request.Context(), tenantID, userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, base.Page, base.PageSize)
}

// MarkRead handles POST /notifications/read. An empty id list marks everything read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	tenantID, userID, ok := h.principal(c)
	if !ok {
		return
	}

	var req notificationapp.MarkReadRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	updated, err := h.notificationService.MarkRead(c.Request.Context(), tenantID, userID, req.IDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"updated": updated})
}

// Summary handles GET /notifications/summary
func (h *NotificationHandler) Summary(c *gin.Context) {
	tenantID, userID, ok := h.principal(c)
	if !ok {
		return
	}

	summary, err := h.notificationService.Summary(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// GetSettings handles GET /notifications/settings
func (h *NotificationHandler) GetSettings(c *gin.Context) {
	tenantID, userID, ok := h.principal(c)
	if !ok {
		return
	}

	settings, err := h.notificationService.GetSettings(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}

// UpdateSettings handles PUT /notifications/settings
func (h *NotificationHandler) UpdateSettings(c *gin.Context) {
	tenantID, userID, ok := h.principal(c)
	if !ok {
		return
	}

	var req notificationapp.SettingsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	settings, err := h.notificationService.UpdateSettings(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}

// Generate handles POST /notifications/generate for the calling user
func (h *NotificationHandler) Generate(c *gin.Context) {
	tenantID, userID, ok := h.principal(c)
	if !ok {
		return
	}

	result, err := h.notificationService.Generate(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
