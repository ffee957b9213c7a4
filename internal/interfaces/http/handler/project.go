package handler

import (
	projectapp "github.com/erp/realestate/internal/application/project"
	"github.com/erp/realestate/internal/domain/project"
	"github.com/gin-gonic/gin"
)

// ProjectHandler handles construction project endpoints
type ProjectHandler struct {
	BaseHandler
	projectService *projectapp.ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projectService *projectapp.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// Create handles POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req projectapp.CreateProjectRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actor(c)

	result, err := h.projectService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetByID handles GET /projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c, "id", "project")
	if !ok {
		return
	}

	result, err := h.projectService.GetByID(c.Request.Context(), tenantID, projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List handles GET /projects?status=&type=
func (h *ProjectHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	base, ok := h.listFilter(c)
	if !ok {
		return
	}
	filter := project.Filter{Filter: base}
	if filter.Status, ok = queryEnum(&h.BaseHandler, c, "status", project.Status.IsValid); !ok {
		return
	}
	if filter.Type, ok = queryEnum(&h.BaseHandler, c, "type", project.Type.IsValid); !ok {
		return
	}

	items, total, err := h.projectService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, base.Page, base.PageSize)
}

// Update handles PUT /projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c, "id", "project")
	if !ok {
		return
	}

	var req projectapp.UpdateProjectRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.projectService.Update(c.Request.Context(), tenantID, projectID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete handles DELETE /projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c, "id", "project")
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), tenantID, projectID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Budget handles GET /projects/:id/budget
func (h *ProjectHandler) Budget(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c, "id", "project")
	if !ok {
		return
	}

	result, err := h.projectService.Budget(c.Request.Context(), tenantID, projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Budgets handles GET /projects/budgets
func (h *ProjectHandler) Budgets(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	result, err := h.projectService.Budgets(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
