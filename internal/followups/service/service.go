package service

import (
	"context"
	"time"

	"calltrack_backend/internal/events"
	"calltrack_backend/internal/followups/repository"
	"calltrack_backend/internal/followups/transport"
	"calltrack_backend/platform/apperr"

	"github.com/google/uuid"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, f *repository.Followup) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Followup, error)
	Update(ctx context.Context, f *repository.Followup) error
	Complete(ctx context.Context, id uuid.UUID, notes string, completedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params repository.ListParams) ([]repository.Followup, error)
	SweepMissed(ctx context.Context, now time.Time) ([]repository.MissedRow, error)
}

// LeadChecker verifies lead existence before a follow-up is scheduled.
type LeadChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service implements follow-up scheduling operations.
type Service struct {
	store Store
	leads LeadChecker
	bus   events.Bus
	now   func() time.Time
}

// New creates a new followups service.
func New(store Store, leads LeadChecker, bus events.Bus) *Service {
	return &Service{store: store, leads: leads, bus: bus, now: time.Now}
}

// Create schedules a follow-up for an existing lead on behalf of a
// salesperson. The call link, when present, is stored as given.
func (s *Service) Create(ctx context.Context, salespersonID uuid.UUID, req transport.CreateFollowupRequest) (*transport.FollowupResponse, error) {
	exists, err := s.leads.Exists(ctx, req.LeadID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to check lead", err)
	}
	if !exists {
		return nil, apperr.NotFound("lead not found")
	}

	now := s.now()
	f := &repository.Followup{
		ID:            uuid.New(),
		LeadID:        req.LeadID,
		CallID:        req.CallID,
		SalespersonID: salespersonID,
		ScheduledDate: req.ScheduledDate,
		Status:        string(transport.FollowupStatusPending),
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Create(ctx, f); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create followup", err)
	}

	return s.GetByID(ctx, f.ID)
}

// GetByID returns a single follow-up with display fields resolved.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.FollowupResponse, error) {
	f, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(f), nil
}

// Update replaces the follow-up's schedule and notes, and optionally its
// status. Completion timestamps only move through Complete.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateFollowupRequest) (*transport.FollowupResponse, error) {
	f, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	f.ScheduledDate = req.ScheduledDate
	f.Notes = req.Notes
	if req.Status != nil {
		f.Status = string(*req.Status)
	}
	f.UpdatedAt = s.now()

	if err := s.store.Update(ctx, f); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// Complete marks the follow-up done as of now, overwriting its notes.
// Completing again re-stamps the completion time.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, req transport.CompleteFollowupRequest) (*transport.FollowupResponse, error) {
	if err := s.store.Complete(ctx, id, req.Notes, s.now()); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a follow-up. Administrative path only.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

// List returns follow-ups matching the given filters.
func (s *Service) List(ctx context.Context, req transport.ListFollowupsRequest) ([]transport.FollowupResponse, error) {
	params := repository.ListParams{
		SalespersonID: req.SalespersonID,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	}
	if req.Status != nil {
		str := string(*req.Status)
		params.Status = &str
	}

	followups, err := s.store.List(ctx, params)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list followups", err)
	}

	return toResponses(followups), nil
}

// ListMine returns the salesperson's own follow-ups.
func (s *Service) ListMine(ctx context.Context, salespersonID uuid.UUID, status *transport.FollowupStatus) ([]transport.FollowupResponse, error) {
	return s.List(ctx, transport.ListFollowupsRequest{SalespersonID: &salespersonID, Status: status})
}

// ListForLead returns all follow-ups against one lead.
func (s *Service) ListForLead(ctx context.Context, leadID uuid.UUID) ([]transport.FollowupResponse, error) {
	followups, err := s.store.List(ctx, repository.ListParams{LeadID: &leadID})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list lead followups", err)
	}
	return toResponses(followups), nil
}

// SweepMissed transitions every overdue pending follow-up to missed and
// publishes the result. Safe to run repeatedly; an empty sweep publishes
// nothing.
func (s *Service) SweepMissed(ctx context.Context) (*transport.SweepResult, error) {
	now := s.now()
	missed, err := s.store.SweepMissed(ctx, now)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to sweep missed followups", err)
	}

	result := &transport.SweepResult{Marked: int64(len(missed))}
	if len(missed) == 0 || s.bus == nil {
		return result, nil
	}

	refs := make([]events.MissedRef, 0, len(missed))
	for _, m := range missed {
		refs = append(refs, events.MissedRef{
			FollowupID:    m.ID,
			LeadID:        m.LeadID,
			SalespersonID: m.SalespersonID,
			ScheduledDate: m.ScheduledDate,
		})
	}

	s.bus.Publish(ctx, events.FollowupsMarkedMissed{
		BaseEvent: events.NewBaseEvent(),
		Marked:    result.Marked,
		SweptAt:   now,
		Missed:    refs,
	})

	return result, nil
}

func toResponse(f *repository.Followup) *transport.FollowupResponse {
	return &transport.FollowupResponse{
		ID:              f.ID,
		LeadID:          f.LeadID,
		CallID:          f.CallID,
		SalespersonID:   f.SalespersonID,
		ScheduledDate:   f.ScheduledDate,
		Status:          transport.FollowupStatus(f.Status),
		CompletedDate:   f.CompletedDate,
		Notes:           f.Notes,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
		CompanyName:     f.CompanyName,
		ContactPerson:   f.ContactPerson,
		SalespersonName: f.SalespersonName,
	}
}

func toResponses(followups []repository.Followup) []transport.FollowupResponse {
	out := make([]transport.FollowupResponse, 0, len(followups))
	for i := range followups {
		out = append(out, *toResponse(&followups[i]))
	}
	return out
}
