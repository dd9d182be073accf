package service

import (
	"context"
	"testing"
	"time"

	"calltrack_backend/internal/events"
	"calltrack_backend/internal/followups/repository"
	"calltrack_backend/internal/followups/transport"
	"calltrack_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeStore struct {
	followups map[uuid.UUID]*repository.Followup
}

func newFakeStore() *fakeStore {
	return &fakeStore{followups: map[uuid.UUID]*repository.Followup{}}
}

func (f *fakeStore) Create(_ context.Context, fu *repository.Followup) error {
	cp := *fu
	f.followups[fu.ID] = &cp
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

func (f *fakeStore) Update(_ context.Context, fu *repository.Followup) error {
	stored, ok := f.followups[fu.ID]
	if !ok {
		return apperr.NotFound("followup not found")
	}
	stored.ScheduledDate = fu.ScheduledDate
	stored.Notes = fu.Notes
	stored.Status = fu.Status
	stored.UpdatedAt = fu.UpdatedAt
	return nil
}

func (f *fakeStore) Complete(_ context.Context, id uuid.UUID, notes string, completedAt time.Time) error {
	fu, ok := f.followups[id]
	if !ok {
		return apperr.NotFound("followup not found")
	}
	fu.Status = string(transport.FollowupStatusCompleted)
	fu.CompletedDate = &completedAt
	fu.Notes = notes
	fu.UpdatedAt = completedAt
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.followups[id]; !ok {
		return apperr.NotFound("followup not found")
	}
	delete(f.followups, id)
	return nil
}

func (f *fakeStore) List(_ context.Context, _ repository.ListParams) ([]repository.Followup, error) {
	out := []repository.Followup{}
	for _, fu := range f.followups {
		out = append(out, *fu)
	}
	return out, nil
}

func (f *fakeStore) SweepMissed(_ context.Context, now time.Time) ([]repository.MissedRow, error) {
	missed := []repository.MissedRow{}
	for _, fu := range f.followups {
		if fu.Status == string(transport.FollowupStatusPending) && fu.ScheduledDate.Before(now) {
			fu.Status = string(transport.FollowupStatusMissed)
			fu.UpdatedAt = now
			missed = append(missed, repository.MissedRow{
				ID:            fu.ID,
				LeadID:        fu.LeadID,
				SalespersonID: fu.SalespersonID,
				ScheduledDate: fu.ScheduledDate,
			})
		}
	}
	return missed, nil
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

func TestCreateUnknownLead(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), uuid.New(), transport.CreateFollowupRequest{
		LeadID:        uuid.New(),
		ScheduledDate: time.Now().Add(24 * time.Hour),
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCompleteRestampsCompletionTime(t *testing.T) {
	leadID := uuid.New()
	svc, _, _ := newTestService(leadID)

	created, err := svc.Create(context.Background(), uuid.New(), transport.CreateFollowupRequest{
		LeadID:        leadID,
		ScheduledDate: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return first }
	completed, err := svc.Complete(context.Background(), created.ID, transport.CompleteFollowupRequest{Notes: "spoke to contact"})
	if err != nil {
		t.Fatalf("first complete: %v", err)
	}
	if completed.CompletedDate == nil || !completed.CompletedDate.Equal(first) {
		t.Fatalf("completed date = %v, want %v", completed.CompletedDate, first)
	}

	second := first.Add(2 * time.Hour)
	svc.now = func() time.Time { return second }
	recompleted, err := svc.Complete(context.Background(), created.ID, transport.CompleteFollowupRequest{Notes: "updated"})
	if err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if recompleted.CompletedDate == nil || !recompleted.CompletedDate.Equal(second) {
		t.Errorf("re-completed date = %v, want %v", recompleted.CompletedDate, second)
	}
	if recompleted.Notes != "updated" {
		t.Errorf("notes = %q, want overwritten", recompleted.Notes)
	}
}

func TestSweepMarksOnlyOverduePending(t *testing.T) {
	leadID := uuid.New()
	svc, store, _ := newTestService(leadID)

	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	overdue, _ := svc.Create(context.Background(), uuid.New(), transport.CreateFollowupRequest{
		LeadID: leadID, ScheduledDate: now.Add(-time.Hour),
	})
	future, _ := svc.Create(context.Background(), uuid.New(), transport.CreateFollowupRequest{
		LeadID: leadID, ScheduledDate: now.Add(time.Hour),
	})
	done, _ := svc.Create(context.Background(), uuid.New(), transport.CreateFollowupRequest{
		LeadID: leadID, ScheduledDate: now.Add(-2 * time.Hour),
	})
	if _, err := svc.Complete(context.Background(), done.ID, transport.CompleteFollowupRequest{}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	result, err := svc.SweepMissed(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Marked != 1 {
		t.Fatalf("marked = %d, want 1", result.Marked)
	}

	if got := store.followups[overdue.ID].Status; got != string(transport.FollowupStatusMissed) {
		t.Errorf("overdue status = %q, want missed", got)
	}
	if got := store.followups[future.ID].Status; got != string(transport.FollowupStatusPending) {
		t.Errorf("future status = %q, want pending", got)
	}
	if got := store.followups[done.ID].Status; got != string(transport.FollowupStatusCompleted) {
		t.Errorf("completed status = %q, want untouched", got)
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	leadID := uuid.New()
	svc, _, bus := newTestService(leadID)

	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if _, err := svc.Create(context.Background(), uuid.New(), transport.CreateFollowupRequest{
		LeadID: leadID, ScheduledDate: now.Add(-time.Minute),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := svc.SweepMissed(context.Background())
	if err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if first.Marked != 1 {
		t.Fatalf("first sweep marked = %d, want 1", first.Marked)
	}

	second, err := svc.SweepMissed(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if second.Marked != 0 {
		t.Errorf("second sweep marked = %d, want 0", second.Marked)
	}

	// Only the productive sweep publishes.
	if len(bus.published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(bus.published))
	}
	swept, ok := bus.published[0].(events.FollowupsMarkedMissed)
	if !ok {
		t.Fatalf("event = %T, want FollowupsMarkedMissed", bus.published[0])
	}
	if swept.Marked != 1 || len(swept.Missed) != 1 {
		t.Errorf("event marked = %d refs = %d, want 1 and 1", swept.Marked, len(swept.Missed))
	}
}
