package handler

import (
	equityapp "github.com/erp/realestate/internal/application/equity"
	"github.com/gin-gonic/gin"
)

// PartnerGroupHandler handles partners group endpoints
type PartnerGroupHandler struct {
	BaseHandler
	groupService *equityapp.GroupService
}

// NewPartnerGroupHandler creates a new PartnerGroupHandler
func NewPartnerGroupHandler(groupService *equityapp.GroupService) *PartnerGroupHandler {
	return &PartnerGroupHandler{groupService: groupService}
}

// Create handles POST /partner-groups
func (h *PartnerGroupHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req equityapp.CreateGroupRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actor(c)

	group, err := h.groupService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, group)
}

// GetByID handles GET /partner-groups/:id
func (h *PartnerGroupHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	groupID, ok := h.pathID(c, "id", "partners group")
	if !ok {
		return
	}

	group, err := h.groupService.GetByID(c.Request.Context(), tenantID, groupID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, group)
}

// List handles GET /partner-groups
func (h *PartnerGroupHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}

	groups, total, err := h.groupService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, groups, total, filter.Page, filter.PageSize)
}

// Update handles PUT /partner-groups/:id. Only DRAFT groups are editable.
func (h *PartnerGroupHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	groupID, ok := h.pathID(c, "id", "partners group")
	if !ok {
		return
	}

	var req equityapp.UpdateGroupRequest
	if !h.bindJSON(c, &req) {
		return
	}

	group, err := h.groupService.Update(c.Request.Context(), tenantID, groupID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, group)
}

// Delete handles DELETE /partner-groups/:id
func (h *PartnerGroupHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	groupID, ok := h.pathID(c, "id", "partners group")
	if !ok {
		return
	}

	if err := h.groupService.Delete(c.Request.Context(), tenantID, groupID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Finalize handles POST /partner-groups/:id/finalize.
// Member percentages must sum to exactly 100.
func (h *PartnerGroupHandler) Finalize(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	groupID, ok := h.pathID(c, "id", "partners group")
	if !ok {
		return
	}

	group, err := h.groupService.Finalize(c.Request.Context(), tenantID, groupID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, group)
}

// Reopen handles POST /partner-groups/:id/reopen
func (h *PartnerGroupHandler) Reopen(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	groupID, ok := h.pathID(c, "id", "partners group")
	if !ok {
		return
	}

	group, err := h.groupService.Reopen(c.Request.Context(), tenantID, groupID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, group)
}
