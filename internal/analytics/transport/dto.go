package transport

import (
	"time"

	"github.com/google/uuid"
)

// DateRangeRequest is the optional inclusive date window applied to call
// start times. Follow-up completion and lead totals are deliberately not
// windowed; they describe the book as it stands.
type DateRangeRequest struct {
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02"`
}

// DayCount is one calendar day's call count.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// OverallSummary is the dashboard aggregate.
type OverallSummary struct {
	TotalCalls             int            `json:"total_calls"`
	TotalLeads             int            `json:"total_leads"`
	ActiveSalespeople      int            `json:"active_salespeople"`
	AvgDurationSeconds     int            `json:"avg_duration_seconds"`
	ConversionRate         float64        `json:"conversion_rate"`
	FollowupCompletionRate float64        `json:"followup_completion_rate"`
	CallsPerDay            []DayCount     `json:"calls_per_day"`
	CallsByOutcome         map[string]int `json:"calls_by_outcome"`
	LeadsByStatus          map[string]int `json:"leads_by_status"`
}

// LeaderboardEntry ranks one active salesperson. ConversionRate is null for
// salespeople with no calls in the window rather than a misleading zero.
type LeaderboardEntry struct {
	SalespersonID      uuid.UUID `json:"salesperson_id"`
	FullName           string    `json:"full_name"`
	TotalCalls         int       `json:"total_calls"`
	AvgDurationSeconds int       `json:"avg_duration_seconds"`
	Conversions        int       `json:"conversions"`
	ConversionRate     *float64  `json:"conversion_rate"`
}

// Performance is one salesperson's detail view.
type Performance struct {
	SalespersonID      uuid.UUID      `json:"salesperson_id"`
	TotalCalls         int            `json:"total_calls"`
	AvgDurationSeconds int            `json:"avg_duration_seconds"`
	ConversionRate     float64        `json:"conversion_rate"`
	AssignedLeads      int            `json:"assigned_leads"`
	PendingFollowups   int            `json:"pending_followups"`
	MissedFollowups    int            `json:"missed_followups"`
	CallsPerDay        []DayCount     `json:"calls_per_day"`
	CallsByOutcome     map[string]int `json:"calls_by_outcome"`
}

// ExportType selects which table an export streams.
type ExportType string

const (
	ExportCalls     ExportType = "calls"
	ExportLeads     ExportType = "leads"
	ExportFollowups ExportType = "followups"
)
