// Package calls provides the call session module.
package calls

import (
	"calltrack_backend/internal/calls/handler"
	"calltrack_backend/internal/calls/repository"
	"calltrack_backend/internal/calls/service"
	"calltrack_backend/internal/events"
	apphttp "calltrack_backend/internal/http"
	leadsrepo "calltrack_backend/internal/leads/repository"
	"calltrack_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the call session domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new calls module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, leads *leadsrepo.Repository, bus events.Bus, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, leads, bus)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "calls"
}

// RegisterRoutes registers the module's routes under /api/v1/calls.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	calls := ctx.Protected.Group("/calls")
	m.handler.RegisterRoutes(calls)
}

var _ apphttp.Module = (*Module)(nil)
