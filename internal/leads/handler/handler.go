package handler

import (
	"net/http"

	"calltrack_backend/internal/leads/service"
	"calltrack_backend/internal/leads/transport"
	userstransport "calltrack_backend/internal/users/transport"
	"calltrack_backend/platform/httpkit"
	"calltrack_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"

	maxUploadBytes = 5 << 20 // 5 MiB CSV cap
)

// Handler handles HTTP requests for leads.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new leads handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the lead routes. Salespeople only see their own
// assignments; managers and admins manage the pool.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/my", h.ListMine)
	rg.GET("/:id", h.Get)

	managed := rg.Group("")
	managed.Use(httpkit.RequireRole(userstransport.RoleAdmin, userstransport.RoleManager))
	managed.GET("", h.List)
	managed.POST("", h.Create)
	managed.POST("/upload", h.Upload)
	managed.PATCH("/:id/assign", h.Assign)

	admin := rg.Group("")
	admin.Use(httpkit.RequireRole(userstransport.RoleAdmin))
	admin.PUT("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
}

// List handles GET /api/v1/leads
func (h *Handler) List(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	leads, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"leads": leads})
}

// ListMine handles GET /api/v1/leads/my
func (h *Handler) ListMine(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var status *transport.LeadStatus
	if raw := c.Query("status"); raw != "" {
		s := transport.LeadStatus(raw)
		status = &s
	}

	leads, err := h.svc.ListMine(c.Request.Context(), id.UserID(), status)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"leads": leads})
}

// Get handles GET /api/v1/leads/:id
func (h *Handler) Get(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	lead, err := h.svc.GetByID(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	// Salespeople can only open leads assigned to them.
	if !id.HasRole(userstransport.RoleAdmin, userstransport.RoleManager) {
		if lead.AssignedTo == nil || *lead.AssignedTo != id.UserID() {
			httpkit.Error(c, http.StatusForbidden, "forbidden", nil)
			return
		}
	}

	httpkit.OK(c, gin.H{"lead": lead})
}

// Create handles POST /api/v1/leads
func (h *Handler) Create(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), id.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, gin.H{"lead": lead})
}

// Upload handles POST /api/v1/leads/upload (CSV import).
func (h *Handler) Upload(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "missing csv file", nil)
		return
	}
	defer file.Close()

	result, err := h.svc.ImportCSV(c.Request.Context(), id.UserID(), http.MaxBytesReader(c.Writer, file, maxUploadBytes))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"result": result})
}

// Update handles PUT /api/v1/leads/:id
func (h *Handler) Update(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Update(c.Request.Context(), leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"lead": lead})
}

// Assign handles PATCH /api/v1/leads/:id/assign
func (h *Handler) Assign(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.AssignLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	lead, err := h.svc.Assign(c.Request.Context(), leadID, req.AssignedTo)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"lead": lead})
}

// Delete handles DELETE /api/v1/leads/:id
func (h *Handler) Delete(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), leadID); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "lead deleted"})
}
