// Package followups provides the follow-up scheduling module.
package followups

import (
	"calltrack_backend/internal/events"
	"calltrack_backend/internal/followups/handler"
	"calltrack_backend/internal/followups/repository"
	"calltrack_backend/internal/followups/service"
	apphttp "calltrack_backend/internal/http"
	leadsrepo "calltrack_backend/internal/leads/repository"
	"calltrack_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the follow-up scheduling domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new followups module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, leads *leadsrepo.Repository, bus events.Bus, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, leads, bus)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Service exposes the followups service for the background worker, which
// runs the missed sweep outside the HTTP surface.
func (m *Module) Service() *service.Service {
	return m.service
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "followups"
}

// RegisterRoutes registers the module's routes under /api/v1/followups.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	followups := ctx.Protected.Group("/followups")
	m.handler.RegisterRoutes(followups)
}

var _ apphttp.Module = (*Module)(nil)
