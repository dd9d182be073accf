package transport

import (
	"time"

	"github.com/google/uuid"
)

// FollowupStatus is the state of a scheduled follow-up.
type FollowupStatus string

const (
	FollowupStatusPending   FollowupStatus = "pending"
	FollowupStatusCompleted FollowupStatus = "completed"
	FollowupStatusMissed    FollowupStatus = "missed"
)

// CreateFollowupRequest schedules a follow-up against a lead. The optional
// call_id links it to the call that prompted it; it is not cross-checked
// against the lead.
type CreateFollowupRequest struct {
	LeadID        uuid.UUID  `json:"lead_id" validate:"required"`
	CallID        *uuid.UUID `json:"call_id,omitempty"`
	ScheduledDate time.Time  `json:"scheduled_date" validate:"required"`
	Notes         string     `json:"notes" validate:"max=5000"`
}

// UpdateFollowupRequest replaces a follow-up's schedule and notes. Status may
// be set here for administrative corrections; completed_date only moves
// through Complete.
type UpdateFollowupRequest struct {
	ScheduledDate time.Time       `json:"scheduled_date" validate:"required"`
	Notes         string          `json:"notes" validate:"max=5000"`
	Status        *FollowupStatus `json:"status,omitempty" validate:"omitempty,oneof=pending completed missed"`
}

// CompleteFollowupRequest closes out a follow-up.
type CompleteFollowupRequest struct {
	Notes string `json:"notes" validate:"max=5000"`
}

// ListFollowupsRequest is the query parameters for listing follow-ups.
type ListFollowupsRequest struct {
	SalespersonID *uuid.UUID      `form:"salesperson_id"`
	Status        *FollowupStatus `form:"status" validate:"omitempty,oneof=pending completed missed"`
	StartDate     *time.Time      `form:"start_date" time_format:"2006-01-02"`
	EndDate       *time.Time      `form:"end_date" time_format:"2006-01-02"`
}

// FollowupResponse is the response body for a follow-up.
type FollowupResponse struct {
	ID            uuid.UUID      `json:"id"`
	LeadID        uuid.UUID      `json:"lead_id"`
	CallID        *uuid.UUID     `json:"call_id,omitempty"`
	SalespersonID uuid.UUID      `json:"salesperson_id"`
	ScheduledDate time.Time      `json:"scheduled_date"`
	Status        FollowupStatus `json:"status"`
	CompletedDate *time.Time     `json:"completed_date,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	CompanyName     string  `json:"company_name,omitempty"`
	ContactPerson   string  `json:"contact_person,omitempty"`
	SalespersonName *string `json:"salesperson_name,omitempty"`
}

// SweepResult reports a missed-followup sweep.
type SweepResult struct {
	Marked int64 `json:"marked"`
}
