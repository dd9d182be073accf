// Package analytics provides the reporting module.
package analytics

import (
	"calltrack_backend/internal/analytics/handler"
	"calltrack_backend/internal/analytics/repository"
	"calltrack_backend/internal/analytics/service"
	apphttp "calltrack_backend/internal/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the reporting domain module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates a new analytics module with all dependencies wired.
func NewModule(pool *pgxpool.Pool) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc)

	return &Module{handler: h}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "analytics"
}

// RegisterRoutes registers the module's routes under /api/v1/analytics.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	analytics := ctx.Protected.Group("/analytics")
	m.handler.RegisterRoutes(analytics)
}

var _ apphttp.Module = (*Module)(nil)
