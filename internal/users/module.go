// Package users provides the user directory module.
package users

import (
	apphttp "calltrack_backend/internal/http"
	"calltrack_backend/internal/users/handler"
	"calltrack_backend/internal/users/repository"
	"calltrack_backend/internal/users/service"
	"calltrack_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the users domain module.
type Module struct {
	handler    *handler.Handler
	repository *repository.Repository
	service    *service.Service
}

// NewModule creates a new users module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc, val)

	return &Module{handler: h, repository: repo, service: svc}
}

// Repository exposes the users repository to sibling modules
// (notification needs email lookups).
func (m *Module) Repository() *repository.Repository {
	return m.repository
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "users"
}

// RegisterRoutes registers the module's routes under /api/v1/users.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	users := ctx.Protected.Group("/users")
	m.handler.RegisterRoutes(users)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
