package transport

import (
	"time"

	leadstransport "calltrack_backend/internal/leads/transport"

	"github.com/google/uuid"
)

// Outcome is the disposition recorded when a call session is closed.
type Outcome string

const (
	OutcomeNoAnswer      Outcome = "no_answer"
	OutcomeBusy          Outcome = "busy"
	OutcomeVoicemail     Outcome = "voicemail"
	OutcomeConnected     Outcome = "connected"
	OutcomeInterested    Outcome = "interested"
	OutcomeNotInterested Outcome = "not_interested"
	OutcomeCallback      Outcome = "callback"
	OutcomeConverted     Outcome = "converted"
)

// outcomeStatus is the fixed outcome-to-lead-status projection. Outcomes
// absent from the map (no_answer, busy, voicemail) leave the lead untouched.
var outcomeStatus = map[Outcome]leadstransport.LeadStatus{
	OutcomeConverted:     leadstransport.LeadStatusConverted,
	OutcomeInterested:    leadstransport.LeadStatusQualified,
	OutcomeConnected:     leadstransport.LeadStatusContacted,
	OutcomeNotInterested: leadstransport.LeadStatusLost,
	OutcomeCallback:      leadstransport.LeadStatusFollowUp,
}

// LeadStatusForOutcome returns the lead status an outcome projects to.
// ok is false when the outcome leaves the lead status unchanged.
func LeadStatusForOutcome(outcome Outcome) (status leadstransport.LeadStatus, ok bool) {
	status, ok = outcomeStatus[outcome]
	return status, ok
}

// StartCallRequest opens a call session against a lead.
type StartCallRequest struct {
	LeadID uuid.UUID `json:"lead_id" validate:"required"`
}

// EndCallRequest closes an open call session with an outcome.
type EndCallRequest struct {
	Outcome Outcome `json:"outcome" validate:"required,oneof=no_answer busy voicemail connected interested not_interested callback converted"`
	Notes   string  `json:"notes" validate:"max=5000"`
}

// ListCallsRequest is the query parameters for listing calls.
type ListCallsRequest struct {
	SalespersonID *uuid.UUID `form:"salesperson_id"`
	LeadID        *uuid.UUID `form:"lead_id"`
	Outcome       *Outcome   `form:"outcome" validate:"omitempty,oneof=no_answer busy voicemail connected interested not_interested callback converted"`
	StartDate     *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate       *time.Time `form:"end_date" time_format:"2006-01-02"`
}

// CallResponse is the response body for a call session.
type CallResponse struct {
	ID              uuid.UUID  `json:"id"`
	LeadID          uuid.UUID  `json:"lead_id"`
	SalespersonID   uuid.UUID  `json:"salesperson_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
	Outcome         *Outcome   `json:"outcome,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`

	CompanyName     string  `json:"company_name,omitempty"`
	ContactPerson   string  `json:"contact_person,omitempty"`
	SalespersonName *string `json:"salesperson_name,omitempty"`
}

// CloseCallResponse reports the closed session plus the status the outcome
// moved the lead to, if any.
type CloseCallResponse struct {
	Call       CallResponse               `json:"call"`
	LeadStatus *leadstransport.LeadStatus `json:"lead_status,omitempty"`
}

// CallStats summarizes call activity, optionally filtered by salesperson.
type CallStats struct {
	TotalCalls         int             `json:"total_calls"`
	AvgDurationSeconds int             `json:"avg_duration_seconds"`
	ConversionRate     float64         `json:"conversion_rate"`
	ByOutcome          map[Outcome]int `json:"by_outcome"`
}
