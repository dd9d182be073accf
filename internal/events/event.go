// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"calltrack_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Call Domain Events
// =============================================================================

// CallEnded is published when a call session is closed with an outcome.
type CallEnded struct {
	BaseEvent
	CallID          uuid.UUID `json:"callId"`
	LeadID          uuid.UUID `json:"leadId"`
	SalespersonID   uuid.UUID `json:"salespersonId"`
	Outcome         string    `json:"outcome"`
	DurationSeconds int       `json:"durationSeconds"`
}

func (e CallEnded) EventName() string { return "calls.call.ended" }

// LeadStatusChanged is published when a call outcome moves a lead to a new status.
type LeadStatusChanged struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	NewStatus string    `json:"newStatus"`
	CallID    uuid.UUID `json:"callId"`
}

func (e LeadStatusChanged) EventName() string { return "leads.status.changed" }

// =============================================================================
// Follow-up Domain Events
// =============================================================================

// FollowupsMarkedMissed is published after a sweep transitions overdue
// pending follow-ups to missed.
type FollowupsMarkedMissed struct {
	BaseEvent
	Marked  int64       `json:"marked"`
	SweptAt time.Time   `json:"sweptAt"`
	Missed  []MissedRef `json:"missed"`
}

// MissedRef identifies a single follow-up flipped to missed, with enough
// context for notifications.
type MissedRef struct {
	FollowupID    uuid.UUID `json:"followupId"`
	LeadID        uuid.UUID `json:"leadId"`
	SalespersonID uuid.UUID `json:"salespersonId"`
	ScheduledDate time.Time `json:"scheduledDate"`
}

func (e FollowupsMarkedMissed) EventName() string { return "followups.marked_missed" }
