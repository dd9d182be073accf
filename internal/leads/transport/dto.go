package transport

import (
	"time"

	"github.com/google/uuid"
)

// LeadStatus is the lifecycle status of a lead. It is only ever moved by a
// call outcome projection or an administrative edit, never directly by a
// salesperson.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusFollowUp  LeadStatus = "follow_up"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"
)

// LeadPriority is the triage priority of a lead.
type LeadPriority string

const (
	LeadPriorityLow    LeadPriority = "low"
	LeadPriorityMedium LeadPriority = "medium"
	LeadPriorityHigh   LeadPriority = "high"
)

// CreateLeadRequest is the request body for creating a lead.
type CreateLeadRequest struct {
	CompanyName   string       `json:"company_name" validate:"required,min=1,max=300"`
	ContactPerson string       `json:"contact_person" validate:"required,min=1,max=200"`
	Email         string       `json:"email" validate:"omitempty,email"`
	Phone         string       `json:"phone" validate:"max=40"`
	AssignedTo    *uuid.UUID   `json:"assigned_to,omitempty"`
	Priority      LeadPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	Notes         string       `json:"notes" validate:"max=5000"`
}

// UpdateLeadRequest is the request body for an administrative lead edit.
// Status may be overridden here; this is the only client path that sets it.
type UpdateLeadRequest struct {
	CompanyName   string       `json:"company_name" validate:"required,min=1,max=300"`
	ContactPerson string       `json:"contact_person" validate:"required,min=1,max=200"`
	Email         string       `json:"email" validate:"omitempty,email"`
	Phone         string       `json:"phone" validate:"max=40"`
	Status        LeadStatus   `json:"status" validate:"required,oneof=new contacted qualified follow_up converted lost"`
	AssignedTo    *uuid.UUID   `json:"assigned_to,omitempty"`
	Priority      LeadPriority `json:"priority" validate:"required,oneof=low medium high"`
	Notes         string       `json:"notes" validate:"max=5000"`
}

// AssignLeadRequest is the request body for assigning a lead to a salesperson.
type AssignLeadRequest struct {
	AssignedTo *uuid.UUID `json:"assigned_to"`
}

// ListLeadsRequest is the query parameters for listing leads.
type ListLeadsRequest struct {
	Status     *LeadStatus   `form:"status" validate:"omitempty,oneof=new contacted qualified follow_up converted lost"`
	AssignedTo *uuid.UUID    `form:"assigned_to"`
	Priority   *LeadPriority `form:"priority" validate:"omitempty,oneof=low medium high"`
}

// LeadResponse is the response body for a lead.
type LeadResponse struct {
	ID             uuid.UUID    `json:"id"`
	CompanyName    string       `json:"company_name"`
	ContactPerson  string       `json:"contact_person"`
	Email          string       `json:"email,omitempty"`
	Phone          string       `json:"phone,omitempty"`
	Status         LeadStatus   `json:"status"`
	Priority       LeadPriority `json:"priority"`
	AssignedTo     *uuid.UUID   `json:"assigned_to,omitempty"`
	AssignedToName *string      `json:"assigned_to_name,omitempty"`
	UploadedBy     uuid.UUID    `json:"uploaded_by"`
	UploadedByName *string      `json:"uploaded_by_name,omitempty"`
	Notes          string       `json:"notes,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// ImportResult reports the outcome of a CSV lead upload.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
