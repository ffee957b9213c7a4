package handler

import (
	"runtime"
	"slices"
	"time"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// SystemHandler reports build and session details
type SystemHandler struct {
	BaseHandler
	name    string
	version string
	started time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string) *SystemHandler {
	return &SystemHandler{name: name, version: version, started: time.Now()}
}

// BuildInfo is returned by GET /system/info
type BuildInfo struct {
	Service      string `json:"service"`
	Version      string `json:"version"`
	Runtime      string `json:"runtime"`
	StartedAt    string `json:"started_at"`
	UptimeSec    int64  `json:"uptime_seconds"`
	BusinessDate string `json:"business_date"`
}

// GetSystemInfo handles GET /system/info
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, BuildInfo{
		Service:      h.name,
		Version:      h.version,
		Runtime:      runtime.Version(),
		StartedAt:    h.started.UTC().Format(time.RFC3339),
		UptimeSec:    int64(time.Since(h.started) / time.Second),
		BusinessDate: shared.Today().Format(shared.DateLayout),
	})
}

// Ping handles GET /system/ping
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, gin.H{"pong": true, "at": time.Now().UTC().Format(time.RFC3339)})
}

// Session describes the authenticated caller
type Session struct {
	TenantID  string   `json:"tenant_id"`
	UserID    string   `json:"user_id"`
	Username  string   `json:"username"`
	Roles     []string `json:"roles"`
	ExpiresAt string   `json:"expires_at,omitempty"`
}

// Whoami handles GET /system/whoami
func (h *SystemHandler) Whoami(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		h.Unauthorized(c, "authentication required")
		return
	}
	s := Session{
		TenantID: p.TenantID.String(),
		UserID:   p.UserID.String(),
		Username: p.Username,
		Roles:    slices.Sorted(slices.Values(p.Roles)),
	}
	if !p.ExpiresAt.IsZero() {
		s.ExpiresAt = p.ExpiresAt.UTC().Format(time.RFC3339)
	}
	h.Success(c, s)
}
