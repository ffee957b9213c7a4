package handler

import (
	auditapp "github.com/erp/realestate/internal/application/audit"
	"github.com/gin-gonic/gin"
)

// AuditHandler exposes the integrity audit
type AuditHandler struct {
	BaseHandler
	auditService *auditapp.AuditService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(auditService *auditapp.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// Integrity handles GET /audit/integrity. Findings are reported, never repaired.
func (h *AuditHandler) Integrity(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	report, err := h.auditService.Run(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
