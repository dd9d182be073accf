package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"calltrack_backend/internal/analytics/service"
	"calltrack_backend/internal/analytics/transport"
	userstransport "calltrack_backend/internal/users/transport"
	"calltrack_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidRequest = "invalid request"

// Handler handles HTTP requests for reporting.
type Handler struct {
	svc *service.Service
}

// New creates a new analytics handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the reporting routes. Salespeople only reach their
// own performance view; managers and admins address one by id.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/performance", httpkit.RequireRole(userstransport.RoleSalesperson), h.Performance)

	managed := rg.Group("")
	managed.Use(httpkit.RequireRole(userstransport.RoleAdmin, userstransport.RoleManager))
	managed.GET("/performance/:id", h.PerformanceByID)
	managed.GET("/overall", h.Overall)
	managed.GET("/leaderboard", h.Leaderboard)
	managed.GET("/export", h.Export)
}

// Overall handles GET /api/v1/analytics/overall
func (h *Handler) Overall(c *gin.Context) {
	req, ok := bindDateRange(c)
	if !ok {
		return
	}

	summary, err := h.svc.Overall(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"summary": summary})
}

// Leaderboard handles GET /api/v1/analytics/leaderboard
func (h *Handler) Leaderboard(c *gin.Context) {
	req, ok := bindDateRange(c)
	if !ok {
		return
	}

	board, err := h.svc.Leaderboard(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"leaderboard": board})
}

// Performance handles GET /api/v1/analytics/performance — the caller's own numbers.
func (h *Handler) Performance(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	h.performance(c, id.UserID())
}

// PerformanceByID handles GET /api/v1/analytics/performance/:id
func (h *Handler) PerformanceByID(c *gin.Context) {
	target, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	h.performance(c, target)
}

func (h *Handler) performance(c *gin.Context, target uuid.UUID) {
	req, ok := bindDateRange(c)
	if !ok {
		return
	}

	perf, err := h.svc.Performance(c.Request.Context(), target, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"performance": perf})
}

// Export handles GET /api/v1/analytics/export?type=calls|leads|followups
func (h *Handler) Export(c *gin.Context) {
	typ := transport.ExportType(c.Query("type"))
	switch typ {
	case transport.ExportCalls, transport.ExportLeads, transport.ExportFollowups:
	default:
		httpkit.Error(c, http.StatusBadRequest, "unknown export type", nil)
		return
	}

	// Build the whole document before touching the response so a store
	// failure still yields a proper error status instead of a truncated body.
	var buf bytes.Buffer
	if err := h.svc.Export(c.Request.Context(), typ, &buf); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("%s-%s.csv", typ, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func bindDateRange(c *gin.Context) (transport.DateRangeRequest, bool) {
	var req transport.DateRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return req, false
	}
	return req, true
}
