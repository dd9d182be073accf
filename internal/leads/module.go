// Package leads provides the lead directory module.
package leads

import (
	apphttp "calltrack_backend/internal/http"
	"calltrack_backend/internal/leads/handler"
	"calltrack_backend/internal/leads/repository"
	"calltrack_backend/internal/leads/service"
	"calltrack_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the leads domain module.
type Module struct {
	handler    *handler.Handler
	repository *repository.Repository
	service    *service.Service
}

// NewModule creates a new leads module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc, val)

	return &Module{handler: h, repository: repo, service: svc}
}

// Repository exposes the leads repository to sibling modules
// (calls needs existence checks before opening a session).
func (m *Module) Repository() *repository.Repository {
	return m.repository
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "leads"
}

// RegisterRoutes registers the module's routes under /api/v1/leads.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leads := ctx.Protected.Group("/leads")
	m.handler.RegisterRoutes(leads)
}

var _ apphttp.Module = (*Module)(nil)
