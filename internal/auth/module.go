// Package auth provides the authentication module.
package auth

import (
	"calltrack_backend/internal/auth/handler"
	"calltrack_backend/internal/auth/password"
	"calltrack_backend/internal/auth/repository"
	"calltrack_backend/internal/auth/service"
	apphttp "calltrack_backend/internal/http"
	userrepo "calltrack_backend/internal/users/repository"
	"calltrack_backend/platform/config"
	"calltrack_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the auth domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new auth module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, val *validator.Validator) *Module {
	repo := repository.New(pool)
	users := userrepo.New(pool)
	svc := service.New(repo, users, cfg, password.Compare)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Service exposes the auth service for composition.
func (m *Module) Service() *service.Service {
	return m.service
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "auth"
}

// RegisterRoutes registers the module's routes under /api/v1/auth.
// Auth endpoints are public but rate limited aggressively.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	auth := ctx.V1.Group("/auth")
	auth.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(auth)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
