package handler

import (
	"net/http"

	"calltrack_backend/internal/followups/service"
	"calltrack_backend/internal/followups/transport"
	userstransport "calltrack_backend/internal/users/transport"
	"calltrack_backend/platform/httpkit"
	"calltrack_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for follow-ups.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new followups handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the follow-up routes. Creating and completing a
// follow-up belongs to the salesperson working the lead.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := httpkit.RequireRole(userstransport.RoleSalesperson)
	rg.POST("", sales, h.Create)
	rg.GET("/my", sales, h.ListMine)
	rg.GET("/lead/:leadId", h.ListForLead)
	rg.PUT("/:id", h.Update)
	rg.PATCH("/:id/complete", sales, h.Complete)

	managed := rg.Group("")
	managed.Use(httpkit.RequireRole(userstransport.RoleAdmin, userstransport.RoleManager))
	managed.GET("", h.List)
	managed.POST("/mark-missed", h.MarkMissed)

	rg.DELETE("/:id", httpkit.RequireRole(userstransport.RoleAdmin), h.Delete)
}

// Create handles POST /api/v1/followups
func (h *Handler) Create(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.CreateFollowupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	followup, err := h.svc.Create(c.Request.Context(), id.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, gin.H{"followup": followup})
}

// List handles GET /api/v1/followups
func (h *Handler) List(c *gin.Context) {
	var req transport.ListFollowupsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	followups, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"followups": followups})
}

// ListMine handles GET /api/v1/followups/my
func (h *Handler) ListMine(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var status *transport.FollowupStatus
	if raw := c.Query("status"); raw != "" {
		s := transport.FollowupStatus(raw)
		status = &s
	}

	followups, err := h.svc.ListMine(c.Request.Context(), id.UserID(), status)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"followups": followups})
}

// ListForLead handles GET /api/v1/followups/lead/:leadId
func (h *Handler) ListForLead(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	followups, err := h.svc.ListForLead(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"followups": followups})
}

// Update handles PUT /api/v1/followups/:id
func (h *Handler) Update(c *gin.Context) {
	followupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateFollowupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	followup, err := h.svc.Update(c.Request.Context(), followupID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"followup": followup})
}

// Complete handles PATCH /api/v1/followups/:id/complete
func (h *Handler) Complete(c *gin.Context) {
	followupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.CompleteFollowupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	followup, err := h.svc.Complete(c.Request.Context(), followupID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"followup": followup})
}

// MarkMissed handles POST /api/v1/followups/mark-missed
func (h *Handler) MarkMissed(c *gin.Context) {
	result, err := h.svc.SweepMissed(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"result": result})
}

// Delete handles DELETE /api/v1/followups/:id
func (h *Handler) Delete(c *gin.Context) {
	followupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), followupID); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "followup deleted"})
}
