package service

import (
	"context"
	"time"

	"calltrack_backend/internal/calls/repository"
	"calltrack_backend/internal/calls/transport"
	"calltrack_backend/internal/events"
	leadstransport "calltrack_backend/internal/leads/transport"
	"calltrack_backend/platform/apperr"
	"calltrack_backend/platform/mathutil"

	"github.com/google/uuid"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, call *repository.Call) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Call, error)
	CloseAndProjectStatus(ctx context.Context, id uuid.UUID, params repository.CloseParams) error
	List(ctx context.Context, params repository.ListParams) ([]repository.Call, error)
	Stats(ctx context.Context, salespersonID *uuid.UUID) (*repository.StatsRow, error)
}

// LeadChecker verifies lead existence before a session is opened.
type LeadChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service implements call session operations.
type Service struct {
	store Store
	leads LeadChecker
	bus   events.Bus
	now   func() time.Time
}

// New creates a new calls service.
func New(store Store, leads LeadChecker, bus events.Bus) *Service {
	return &Service{store: store, leads: leads, bus: bus, now: time.Now}
}

// Open starts a call session against an existing lead. There is no
// constraint against a second open session for the same lead.
func (s *Service) Open(ctx context.Context, salespersonID uuid.UUID, req transport.StartCallRequest) (*transport.CallResponse, error) {
	exists, err := s.leads.Exists(ctx, req.LeadID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to check lead", err)
	}
	if !exists {
		return nil, apperr.NotFound("lead not found")
	}

	now := s.now()
	call := &repository.Call{
		ID:            uuid.New(),
		LeadID:        req.LeadID,
		SalespersonID: salespersonID,
		StartTime:     now,
		CreatedAt:     now,
	}

	if err := s.store.Create(ctx, call); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to open call", err)
	}

	return s.GetByID(ctx, call.ID)
}

// Close ends an open session with an outcome. The duration is the elapsed
// whole seconds between start and end, fractions dropped. The outcome's
// lead-status projection is applied in the same transaction as the close, so
// a session never ends without its status effect and vice versa.
func (s *Service) Close(ctx context.Context, id uuid.UUID, req transport.EndCallRequest) (*transport.CloseCallResponse, error) {
	call, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if call.EndTime != nil {
		return nil, apperr.Conflict("call already ended")
	}

	endTime := s.now()
	duration := int(endTime.Sub(call.StartTime).Seconds())
	if duration < 0 {
		duration = 0
	}

	params := repository.CloseParams{
		EndTime:         endTime,
		DurationSeconds: duration,
		Outcome:         string(req.Outcome),
		Notes:           req.Notes,
	}

	var projected *leadstransport.LeadStatus
	if status, ok := transport.LeadStatusForOutcome(req.Outcome); ok {
		projected = &status
		str := string(status)
		params.LeadStatus = &str
	}

	if err := s.store.CloseAndProjectStatus(ctx, id, params); err != nil {
		return nil, err
	}

	s.publishClosed(ctx, call, req.Outcome, duration, projected)

	closed, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &transport.CloseCallResponse{Call: *closed, LeadStatus: projected}, nil
}

// GetByID returns a single call with joined display fields.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.CallResponse, error) {
	call, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(call), nil
}

// List returns calls matching the given filters.
func (s *Service) List(ctx context.Context, req transport.ListCallsRequest) ([]transport.CallResponse, error) {
	params := repository.ListParams{
		SalespersonID: req.SalespersonID,
		LeadID:        req.LeadID,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	}
	if req.Outcome != nil {
		str := string(*req.Outcome)
		params.Outcome = &str
	}

	calls, err := s.store.List(ctx, params)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list calls", err)
	}

	return toResponses(calls), nil
}

// ListMine returns the salesperson's own calls.
func (s *Service) ListMine(ctx context.Context, salespersonID uuid.UUID) ([]transport.CallResponse, error) {
	return s.List(ctx, transport.ListCallsRequest{SalespersonID: &salespersonID})
}

// ListForLead returns all calls against one lead, newest first.
func (s *Service) ListForLead(ctx context.Context, leadID uuid.UUID) ([]transport.CallResponse, error) {
	return s.List(ctx, transport.ListCallsRequest{LeadID: &leadID})
}

// Stats summarizes call activity, optionally scoped to one salesperson.
func (s *Service) Stats(ctx context.Context, salespersonID *uuid.UUID) (*transport.CallStats, error) {
	row, err := s.store.Stats(ctx, salespersonID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to aggregate call stats", err)
	}

	stats := &transport.CallStats{
		TotalCalls:         row.TotalCalls,
		AvgDurationSeconds: row.AvgDuration,
		ByOutcome:          map[transport.Outcome]int{},
	}
	stats.ConversionRate = mathutil.Rate2(row.Converted, row.TotalCalls)
	for outcome, count := range row.ByOutcome {
		stats.ByOutcome[transport.Outcome(outcome)] = count
	}

	return stats, nil
}

func (s *Service) publishClosed(ctx context.Context, call *repository.Call, outcome transport.Outcome, duration int, projected *leadstransport.LeadStatus) {
	if s.bus == nil {
		return
	}

	s.bus.Publish(ctx, events.CallEnded{
		BaseEvent:       events.NewBaseEvent(),
		CallID:          call.ID,
		LeadID:          call.LeadID,
		SalespersonID:   call.SalespersonID,
		Outcome:         string(outcome),
		DurationSeconds: duration,
	})

	if projected != nil {
		s.bus.Publish(ctx, events.LeadStatusChanged{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    call.LeadID,
			NewStatus: string(*projected),
			CallID:    call.ID,
		})
	}
}

func toResponse(call *repository.Call) *transport.CallResponse {
	resp := &transport.CallResponse{
		ID:              call.ID,
		LeadID:          call.LeadID,
		SalespersonID:   call.SalespersonID,
		StartTime:       call.StartTime,
		EndTime:         call.EndTime,
		DurationSeconds: call.DurationSeconds,
		Notes:           call.Notes,
		CreatedAt:       call.CreatedAt,
		CompanyName:     call.CompanyName,
		ContactPerson:   call.ContactPerson,
		SalespersonName: call.SalespersonName,
	}
	if call.Outcome != nil {
		o := transport.Outcome(*call.Outcome)
		resp.Outcome = &o
	}
	return resp
}

func toResponses(calls []repository.Call) []transport.CallResponse {
	out := make([]transport.CallResponse, 0, len(calls))
	for i := range calls {
		out = append(out, *toResponse(&calls[i]))
	}
	return out
}
