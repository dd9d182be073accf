package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"calltrack_backend/internal/events"
	"calltrack_backend/internal/followups/repository"
	"calltrack_backend/internal/followups/service"
	userstransport "calltrack_backend/internal/users/transport"
	"calltrack_backend/platform/apperr"
	"calltrack_backend/platform/httpkit"
	"calltrack_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeStore struct {
	followups map[uuid.UUID]*repository.Followup
}

func (f *fakeStore) Create(_ context.Context, fu *repository.Followup) error {
	f.followups[fu.ID] = fu
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*repository.Followup, error) {
	fu, ok := f.followups[id]
	if !ok {
		return nil, apperr.NotFound("followup not found")
	}
	cp := *fu
	return &cp, nil
}

func (f *fakeStore) Update(context.Context, *repository.Followup) error { return nil }

func (f *fakeStore) Complete(context.Context, uuid.UUID, string, time.Time) error { return nil }

func (f *fakeStore) Delete(context.Context, uuid.UUID) error { return nil }

func (f *fakeStore) List(context.Context, repository.ListParams) ([]repository.Followup, error) {
	return nil, nil
}

func (f *fakeStore) SweepMissed(context.Context, time.Time) ([]repository.MissedRow, error) {
	return nil, nil
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

	svc := service.New(&fakeStore{followups: map[uuid.UUID]*repository.Followup{}}, fakeLeads{}, nopBus{})
	New(svc, validator.New()).RegisterRoutes(engine.Group("/followups"))
	return engine
}

func createBody() string {
	return `{"lead_id":"` + uuid.NewString() + `","scheduled_date":"2025-05-01T10:00:00Z"}`
}

func TestCreateRequiresSalespersonRole(t *testing.T) {
	for _, role := range []string{userstransport.RoleManager, userstransport.RoleAdmin} {
		t.Run(role, func(t *testing.T) {
			engine := newTestRouter(role)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/followups", strings.NewReader(createBody()))
			req.Header.Set("Content-Type", "application/json")
			engine.ServeHTTP(rec, req)

			if rec.Code != http.StatusForbidden {
				t.Errorf("POST /followups as %s = %d, want %d", role, rec.Code, http.StatusForbidden)
			}
		})
	}

	engine := newTestRouter(userstransport.RoleSalesperson)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/followups", strings.NewReader(createBody()))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("POST /followups as salesperson = %d, want %d", rec.Code, http.StatusCreated)
	}
}

func TestCompleteRequiresSalespersonRole(t *testing.T) {
	engine := newTestRouter(userstransport.RoleManager)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/followups/"+uuid.NewString()+"/complete", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("PATCH /followups/:id/complete as manager = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestMarkMissedRequiresManagerRole(t *testing.T) {
	engine := newTestRouter(userstransport.RoleSalesperson)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/followups/mark-missed", nil))

	if rec.Code != http.StatusForbidden {
		t.Errorf("POST /followups/mark-missed as salesperson = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
