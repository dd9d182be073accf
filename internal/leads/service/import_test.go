package service

import (
	"context"
	"strings"
	"testing"

	"calltrack_backend/internal/leads/repository"
	"calltrack_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeStore struct {
	leads   map[uuid.UUID]*repository.Lead
	batches [][]repository.Lead
}

func newFakeStore() *fakeStore {
	return &fakeStore{leads: map[uuid.UUID]*repository.Lead{}}
}

func (f *fakeStore) Create(_ context.Context, lead *repository.Lead) error {
	cp := *lead
	f.leads[lead.ID] = &cp
	return nil
}

func (f *fakeStore) CreateBatch(_ context.Context, leads []repository.Lead) error {
	f.batches = append(f.batches, leads)
	for i := range leads {
		cp := leads[i]
		f.leads[cp.ID] = &cp
	}
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return nil, apperr.NotFound("lead not found")
	}
	cp := *lead
	return &cp, nil
}

func (f *fakeStore) List(_ context.Context, _ repository.ListParams) ([]repository.Lead, error) {
	out := []repository.Lead{}
	for _, l := range f.leads {
		out = append(out, *l)
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, lead *repository.Lead) error {
	if _, ok := f.leads[lead.ID]; !ok {
		return apperr.NotFound("lead not found")
	}
	cp := *lead
	f.leads[lead.ID] = &cp
	return nil
}

func (f *fakeStore) Assign(_ context.Context, id uuid.UUID, assignedTo *uuid.UUID) error {
	lead, ok := f.leads[id]
	if !ok {
		return apperr.NotFound("lead not found")
	}
	lead.AssignedTo = assignedTo
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.leads[id]; !ok {
		return apperr.NotFound("lead not found")
	}
	delete(f.leads, id)
	return nil
}

func TestImportCSV(t *testing.T) {
	csvBody := strings.Join([]string{
		"Company,Contact,Email,Phone,Priority,Notes",
		"Acme BV,Jan Smit,jan@acme.example,(415) 555-2671,high,warm intro",
		"NoPhone Inc,Piet,,,medium,",
		"Globex,Eva Vries,eva@globex.example,+31 20 794 0000,bogus,",
	}, "\n")

	store := newFakeStore()
	svc := New(store)

	result, err := svc.ImportCSV(context.Background(), uuid.New(), strings.NewReader(csvBody))
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if result.Imported != 2 {
		t.Errorf("imported = %d, want 2", result.Imported)
	}
	if result.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", result.Skipped)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "line 3") {
		t.Errorf("errors = %v, want one for line 3", result.Errors)
	}

	if len(store.batches) != 1 {
		t.Fatalf("batches = %d, want 1 single-transaction batch", len(store.batches))
	}
	batch := store.batches[0]
	if len(batch) != 2 {
		t.Fatalf("batch size = %d, want 2", len(batch))
	}
	if batch[0].Phone != "+14155552671" {
		t.Errorf("phone = %q, want normalized +14155552671", batch[0].Phone)
	}
	if batch[0].Priority != "high" {
		t.Errorf("priority = %q, want high", batch[0].Priority)
	}
	if batch[1].Priority != "medium" {
		t.Errorf("unknown priority = %q, want medium fallback", batch[1].Priority)
	}
	if batch[0].Status != "new" {
		t.Errorf("status = %q, want new", batch[0].Status)
	}
	if batch[0].CompanyName != "Acme BV" || batch[0].ContactPerson != "Jan Smit" {
		t.Errorf("header aliasing failed: %+v", batch[0])
	}
}

func TestImportCSVEmpty(t *testing.T) {
	svc := New(newFakeStore())
	if _, err := svc.ImportCSV(context.Background(), uuid.New(), strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty csv")
	}
}

func TestImportCSVAllRowsInvalid(t *testing.T) {
	csvBody := "company_name,phone\n,\n,\n"

	store := newFakeStore()
	svc := New(store)

	result, err := svc.ImportCSV(context.Background(), uuid.New(), strings.NewReader(csvBody))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Imported != 0 || result.Skipped != 2 {
		t.Errorf("result = %+v, want 0 imported / 2 skipped", result)
	}
	if len(store.batches) != 0 {
		t.Errorf("no batch should be written when nothing imports")
	}
}
