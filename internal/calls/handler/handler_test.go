package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"calltrack_backend/internal/calls/repository"
	"calltrack_backend/internal/calls/service"
	"calltrack_backend/internal/events"
	userstransport "calltrack_backend/internal/users/transport"
	"calltrack_backend/platform/apperr"
	"calltrack_backend/platform/httpkit"
	"calltrack_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeStore struct {
	calls map[uuid.UUID]*repository.Call
}

func (f *fakeStore) Create(_ context.Context, call *repository.Call) error {
	f.calls[call.ID] = call
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*repository.Call, error) {
	call, ok := f.calls[id]
	if !ok {
		return nil, apperr.NotFound("call not found")
	}
	cp := *call
	return &cp, nil
}

func (f *fakeStore) CloseAndProjectStatus(context.Context, uuid.UUID, repository.CloseParams) error {
	return nil
}

func (f *fakeStore) List(context.Context, repository.ListParams) ([]repository.Call, error) {
	return nil, nil
}

func (f *fakeStore) Stats(context.Context, *uuid.UUID) (*repository.StatsRow, error) {
	return &repository.StatsRow{}, nil
}

type fakeLeads struct{}

func (fakeLeads) Exists(context.Context, uuid.UUID) (bool, error) { return true, nil }

type nopBus struct{}

func (nopBus) Publish(context.Context, events.Event) {}

func (nopBus) PublishSync(context.Context, events.Event) error { return nil }

func (nopBus) Subscribe(string, events.Handler) {}

func newTestRouter(role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, uuid.New())
		c.Set(httpkit.ContextRoleKey, role)
		c.Set(httpkit.ContextFullNameKey, "Test User")
	})

	svc := service.New(&fakeStore{calls: map[uuid.UUID]*repository.Call{}}, fakeLeads{}, nopBus{})
	New(svc, validator.New()).RegisterRoutes(engine.Group("/calls"))
	return engine
}

func TestStartRequiresSalespersonRole(t *testing.T) {
	body := `{"lead_id":"` + uuid.NewString() + `"}`

	for _, role := range []string{userstransport.RoleManager, userstransport.RoleAdmin} {
		t.Run(role, func(t *testing.T) {
			engine := newTestRouter(role)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/calls/start", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			engine.ServeHTTP(rec, req)

			if rec.Code != http.StatusForbidden {
				t.Errorf("POST /calls/start as %s = %d, want %d", role, rec.Code, http.StatusForbidden)
			}
		})
	}

	engine := newTestRouter(userstransport.RoleSalesperson)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/calls/start", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("POST /calls/start as salesperson = %d, want %d", rec.Code, http.StatusCreated)
	}
}

func TestEndRequiresSalespersonRole(t *testing.T) {
	body := `{"outcome":"connected"}`

	for _, role := range []string{userstransport.RoleManager, userstransport.RoleAdmin} {
		t.Run(role, func(t *testing.T) {
			engine := newTestRouter(role)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPatch, "/calls/"+uuid.NewString()+"/end", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			engine.ServeHTTP(rec, req)

			if rec.Code != http.StatusForbidden {
				t.Errorf("PATCH /calls/:id/end as %s = %d, want %d", role, rec.Code, http.StatusForbidden)
			}
		})
	}
}

func TestListRequiresManagerRole(t *testing.T) {
	engine := newTestRouter(userstransport.RoleSalesperson)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/calls", nil))

	if rec.Code != http.StatusForbidden {
		t.Errorf("GET /calls as salesperson = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
