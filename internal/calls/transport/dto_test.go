package transport

import (
	"testing"

	leadstransport "calltrack_backend/internal/leads/transport"
)

func TestLeadStatusForOutcome(t *testing.T) {
	tests := []struct {
		outcome    Outcome
		wantStatus leadstransport.LeadStatus
		wantMove   bool
	}{
		{OutcomeConverted, leadstransport.LeadStatusConverted, true},
		{OutcomeInterested, leadstransport.LeadStatusQualified, true},
		{OutcomeConnected, leadstransport.LeadStatusContacted, true},
		{OutcomeNotInterested, leadstransport.LeadStatusLost, true},
		{OutcomeCallback, leadstransport.LeadStatusFollowUp, true},
		{OutcomeNoAnswer, "", false},
		{OutcomeBusy, "", false},
		{OutcomeVoicemail, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			status, ok := LeadStatusForOutcome(tt.outcome)
			if ok != tt.wantMove {
				t.Fatalf("LeadStatusForOutcome(%q) ok = %v, want %v", tt.outcome, ok, tt.wantMove)
			}
			if ok && status != tt.wantStatus {
				t.Errorf("LeadStatusForOutcome(%q) = %q, want %q", tt.outcome, status, tt.wantStatus)
			}
		})
	}
}

func TestLeadStatusForOutcomeUnknown(t *testing.T) {
	if _, ok := LeadStatusForOutcome(Outcome("wrong_number")); ok {
		t.Error("unknown outcome should not move the lead")
	}
}
