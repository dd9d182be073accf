package service

import (
	"context"
	"testing"

	"calltrack_backend/internal/leads/transport"

	"github.com/google/uuid"
)

func TestCreateLeadDefaults(t *testing.T) {
	store := newFakeStore()
	svc := New(store)

	lead, err := svc.Create(context.Background(), uuid.New(), transport.CreateLeadRequest{
		CompanyName:   "Acme BV",
		ContactPerson: "Jan Smit",
		Phone:         "(415) 555-2671",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if lead.Status != transport.LeadStatusNew {
		t.Errorf("status = %q, want new", lead.Status)
	}
	if lead.Priority != transport.LeadPriorityMedium {
		t.Errorf("priority = %q, want medium default", lead.Priority)
	}
	if lead.Phone != "+14155552671" {
		t.Errorf("phone = %q, want normalized", lead.Phone)
	}
}

func TestAssignAndUnassign(t *testing.T) {
	store := newFakeStore()
	svc := New(store)

	created, err := svc.Create(context.Background(), uuid.New(), transport.CreateLeadRequest{
		CompanyName:   "Globex",
		ContactPerson: "Eva Vries",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	salesperson := uuid.New()
	assigned, err := svc.Assign(context.Background(), created.ID, &salesperson)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.AssignedTo == nil || *assigned.AssignedTo != salesperson {
		t.Errorf("assigned_to = %v, want %v", assigned.AssignedTo, salesperson)
	}

	unassigned, err := svc.Assign(context.Background(), created.ID, nil)
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if unassigned.AssignedTo != nil {
		t.Errorf("assigned_to = %v, want nil", unassigned.AssignedTo)
	}
}
