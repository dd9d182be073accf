package handler

import (
	"net/http"

	"calltrack_backend/internal/calls/service"
	"calltrack_backend/internal/calls/transport"
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

// Handler handles HTTP requests for call sessions.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new calls handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the call session routes. Sessions are opened and
// closed by the salesperson making the call; managers and admins only read.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := httpkit.RequireRole(userstransport.RoleSalesperson)
	rg.POST("/start", sales, h.Start)
	rg.PATCH("/:id/end", sales, h.End)
	rg.GET("/my", sales, h.ListMine)
	rg.GET("/lead/:leadId", h.ListForLead)
	rg.GET("/stats", h.Stats)
	rg.GET("", httpkit.RequireRole(userstransport.RoleAdmin, userstransport.RoleManager), h.List)
}

// Start handles POST /api/v1/calls/start
func (h *Handler) Start(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.StartCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	call, err := h.svc.Open(c.Request.Context(), id.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, gin.H{"call": call})
}

// End handles PATCH /api/v1/calls/:id/end
func (h *Handler) End(c *gin.Context) {
	callID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.EndCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Close(c.Request.Context(), callID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"call": result.Call, "lead_status": result.LeadStatus})
}

// List handles GET /api/v1/calls
func (h *Handler) List(c *gin.Context) {
	var req transport.ListCallsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	calls, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"calls": calls})
}

// ListMine handles GET /api/v1/calls/my
func (h *Handler) ListMine(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	calls, err := h.svc.ListMine(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"calls": calls})
}

// ListForLead handles GET /api/v1/calls/lead/:leadId
func (h *Handler) ListForLead(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	calls, err := h.svc.ListForLead(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"calls": calls})
}

// Stats handles GET /api/v1/calls/stats
// Salespeople get their own numbers; managers and admins get the global view
// or any salesperson's via ?salesperson_id.
func (h *Handler) Stats(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var scope *uuid.UUID
	if id.HasRole(userstransport.RoleAdmin, userstransport.RoleManager) {
		if raw := c.Query("salesperson_id"); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
				return
			}
			scope = &parsed
		}
	} else {
		self := id.UserID()
		scope = &self
	}

	stats, err := h.svc.Stats(c.Request.Context(), scope)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"stats": stats})
}
