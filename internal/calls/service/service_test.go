package service

import (
	"context"
	"testing"
	"time"

	"calltrack_backend/internal/calls/repository"
	"calltrack_backend/internal/calls/transport"
	"calltrack_backend/internal/events"
	leadstransport "calltrack_backend/internal/leads/transport"
	"calltrack_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeStore struct {
	calls        map[uuid.UUID]*repository.Call
	leadStatuses map[uuid.UUID]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		calls:        map[uuid.UUID]*repository.Call{},
		leadStatuses: map[uuid.UUID]string{},
	}
}

func (f *fakeStore) Create(_ context.Context, call *repository.Call) error {
	cp := *call
	f.calls[call.ID] = &cp
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

func (f *fakeStore) CloseAndProjectStatus(_ context.Context, id uuid.UUID, params repository.CloseParams) error {
	call, ok := f.calls[id]
	if !ok {
		return apperr.NotFound("call not found")
	}
	if call.EndTime != nil {
		return apperr.Conflict("call already ended")
	}

	end := params.EndTime
	dur := params.DurationSeconds
	outcome := params.Outcome
	call.EndTime = &end
	call.DurationSeconds = &dur
	call.Outcome = &outcome
	call.Notes = params.Notes

	if params.LeadStatus != nil {
		f.leadStatuses[call.LeadID] = *params.LeadStatus
	}
	return nil
}

func (f *fakeStore) List(_ context.Context, _ repository.ListParams) ([]repository.Call, error) {
	out := []repository.Call{}
	for _, c := range f.calls {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeStore) Stats(_ context.Context, _ *uuid.UUID) (*repository.StatsRow, error) {
	row := &repository.StatsRow{ByOutcome: map[string]int{}}
	for _, c := range f.calls {
		row.TotalCalls++
		if c.Outcome != nil {
			row.ByOutcome[*c.Outcome]++
			if *c.Outcome == "converted" {
				row.Converted++
			}
		}
	}
	return row, nil
}

type fakeLeads struct {
	existing map[uuid.UUID]bool
}

func (f *fakeLeads) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return f.existing[id], nil
}

type fakeBus struct {
	published []events.Event
}

func (f *fakeBus) Publish(_ context.Context, event events.Event) {
	f.published = append(f.published, event)
}

func (f *fakeBus) PublishSync(ctx context.Context, event events.Event) error {
	f.Publish(ctx, event)
	return nil
}

func (f *fakeBus) Subscribe(string, events.Handler) {}

func newTestService(leadIDs ...uuid.UUID) (*Service, *fakeStore, *fakeBus) {
	store := newFakeStore()
	leads := &fakeLeads{existing: map[uuid.UUID]bool{}}
	for _, id := range leadIDs {
		leads.existing[id] = true
	}
	bus := &fakeBus{}
	return New(store, leads, bus), store, bus
}

func TestOpenUnknownLead(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Open(context.Background(), uuid.New(), transport.StartCallRequest{LeadID: uuid.New()})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestOpenAllowsConcurrentSessionsPerLead(t *testing.T) {
	leadID := uuid.New()
	svc, store, _ := newTestService(leadID)

	salesperson := uuid.New()
	first, err := svc.Open(context.Background(), salesperson, transport.StartCallRequest{LeadID: leadID})
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	second, err := svc.Open(context.Background(), salesperson, transport.StartCallRequest{LeadID: leadID})
	if err != nil {
		t.Fatalf("second open against same lead should be permitted: %v", err)
	}
	if first.ID == second.ID {
		t.Error("sessions should be distinct")
	}
	if len(store.calls) != 2 {
		t.Errorf("expected 2 stored sessions, got %d", len(store.calls))
	}
}

func TestCloseComputesWholeSecondDuration(t *testing.T) {
	leadID := uuid.New()
	svc, _, _ := newTestService(leadID)

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	opened, err := svc.Open(context.Background(), uuid.New(), transport.StartCallRequest{LeadID: leadID})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	// 2m5.9s elapsed; fractional second is dropped.
	svc.now = func() time.Time { return start.Add(125*time.Second + 900*time.Millisecond) }

	closed, err := svc.Close(context.Background(), opened.ID, transport.EndCallRequest{Outcome: transport.OutcomeConnected})
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Call.DurationSeconds == nil || *closed.Call.DurationSeconds != 125 {
		t.Errorf("duration = %v, want 125", closed.Call.DurationSeconds)
	}
}

func TestCloseTwiceConflicts(t *testing.T) {
	leadID := uuid.New()
	svc, _, _ := newTestService(leadID)

	opened, err := svc.Open(context.Background(), uuid.New(), transport.StartCallRequest{LeadID: leadID})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, err := svc.Close(context.Background(), opened.ID, transport.EndCallRequest{Outcome: transport.OutcomeBusy}); err != nil {
		t.Fatalf("first close: %v", err)
	}

	_, err = svc.Close(context.Background(), opened.ID, transport.EndCallRequest{Outcome: transport.OutcomeConverted})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("second close should conflict, got %v", err)
	}
}

func TestCloseUnknownCall(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Close(context.Background(), uuid.New(), transport.EndCallRequest{Outcome: transport.OutcomeBusy})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCloseProjectsLeadStatus(t *testing.T) {
	tests := []struct {
		outcome    transport.Outcome
		wantStatus string
		wantMove   bool
	}{
		{transport.OutcomeConverted, "converted", true},
		{transport.OutcomeInterested, "qualified", true},
		{transport.OutcomeConnected, "contacted", true},
		{transport.OutcomeNotInterested, "lost", true},
		{transport.OutcomeCallback, "follow_up", true},
		{transport.OutcomeNoAnswer, "", false},
		{transport.OutcomeBusy, "", false},
		{transport.OutcomeVoicemail, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			leadID := uuid.New()
			svc, store, _ := newTestService(leadID)

			opened, err := svc.Open(context.Background(), uuid.New(), transport.StartCallRequest{LeadID: leadID})
			if err != nil {
				t.Fatalf("open: %v", err)
			}

			closed, err := svc.Close(context.Background(), opened.ID, transport.EndCallRequest{Outcome: tt.outcome})
			if err != nil {
				t.Fatalf("close: %v", err)
			}

			status, moved := store.leadStatuses[leadID]
			if moved != tt.wantMove {
				t.Fatalf("lead moved = %v, want %v", moved, tt.wantMove)
			}
			if moved && status != tt.wantStatus {
				t.Errorf("lead status = %q, want %q", status, tt.wantStatus)
			}
			if tt.wantMove {
				if closed.LeadStatus == nil || string(*closed.LeadStatus) != tt.wantStatus {
					t.Errorf("response lead status = %v, want %q", closed.LeadStatus, tt.wantStatus)
				}
			} else if closed.LeadStatus != nil {
				t.Errorf("response lead status = %v, want nil", closed.LeadStatus)
			}
		})
	}
}

func TestClosePublishesEvents(t *testing.T) {
	leadID := uuid.New()
	svc, _, bus := newTestService(leadID)

	opened, err := svc.Open(context.Background(), uuid.New(), transport.StartCallRequest{LeadID: leadID})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := svc.Close(context.Background(), opened.ID, transport.EndCallRequest{Outcome: transport.OutcomeCallback}); err != nil {
		t.Fatalf("close: %v", err)
	}

	if len(bus.published) != 2 {
		t.Fatalf("expected 2 events, got %d", len(bus.published))
	}

	ended, ok := bus.published[0].(events.CallEnded)
	if !ok {
		t.Fatalf("first event = %T, want CallEnded", bus.published[0])
	}
	if ended.Outcome != string(transport.OutcomeCallback) {
		t.Errorf("CallEnded outcome = %q", ended.Outcome)
	}

	changed, ok := bus.published[1].(events.LeadStatusChanged)
	if !ok {
		t.Fatalf("second event = %T, want LeadStatusChanged", bus.published[1])
	}
	if changed.NewStatus != string(leadstransport.LeadStatusFollowUp) {
		t.Errorf("LeadStatusChanged status = %q", changed.NewStatus)
	}
}

func TestCloseWithoutProjectionPublishesOnlyCallEnded(t *testing.T) {
	leadID := uuid.New()
	svc, _, bus := newTestService(leadID)

	opened, err := svc.Open(context.Background(), uuid.New(), transport.StartCallRequest{LeadID: leadID})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := svc.Close(context.Background(), opened.ID, transport.EndCallRequest{Outcome: transport.OutcomeNoAnswer}); err != nil {
		t.Fatalf("close: %v", err)
	}

	if len(bus.published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(bus.published))
	}
	if _, ok := bus.published[0].(events.CallEnded); !ok {
		t.Fatalf("event = %T, want CallEnded", bus.published[0])
	}
}

func TestStatsConversionRate(t *testing.T) {
	leadID := uuid.New()
	svc, _, _ := newTestService(leadID)

	outcomes := []transport.Outcome{
		transport.OutcomeConverted,
		transport.OutcomeNoAnswer,
		transport.OutcomeBusy,
	}
	for _, outcome := range outcomes {
		opened, err := svc.Open(context.Background(), uuid.New(), transport.StartCallRequest{LeadID: leadID})
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if _, err := svc.Close(context.Background(), opened.ID, transport.EndCallRequest{Outcome: outcome}); err != nil {
			t.Fatalf("close: %v", err)
		}
	}

	stats, err := svc.Stats(context.Background(), nil)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalCalls != 3 {
		t.Errorf("total calls = %d, want 3", stats.TotalCalls)
	}
	if stats.ConversionRate != 33.33 {
		t.Errorf("conversion rate = %v, want 33.33", stats.ConversionRate)
	}
	if stats.ByOutcome[transport.OutcomeConverted] != 1 {
		t.Errorf("converted count = %d, want 1", stats.ByOutcome[transport.OutcomeConverted])
	}
}

func TestStatsEmpty(t *testing.T) {
	svc, _, _ := newTestService()

	stats, err := svc.Stats(context.Background(), nil)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ConversionRate != 0 {
		t.Errorf("conversion rate with no calls = %v, want 0", stats.ConversionRate)
	}
}
