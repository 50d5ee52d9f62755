// ABOUTME: Tests for follow-up detection precedence
// ABOUTME: Custom follow-up date beats next-step date beats nothing
package views

import (
	"testing"
	"time"

	"github.com/harperreed/fiveyard/models"
)

func datePtr(t time.Time) *time.Time { return &t }

func TestEvaluateFollowUpPrecedence(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	tests := []struct {
		name       string
		nextStep   string
		followUp   *time.Time
		wantNeeds  bool
		wantReason string
	}{
		{"no signals", "call back eventually", nil, false, ""},
		{"custom date passed", "", datePtr(yesterday), true, ReasonCustomFollowUp},
		{"custom date today", "", datePtr(now), true, ReasonCustomFollowUp},
		{"custom date future", "", datePtr(tomorrow), false, ""},
		{"next step passed", "2024-03-10", nil, true, ReasonNextStepPassed},
		{"next step today", "2024-03-15", nil, true, ReasonNextStepPassed},
		{"next step future", "2024-03-20", nil, false, ""},
		{"next step slash format", "3/10/2024", nil, true, ReasonNextStepPassed},
		{"next step prose", "waiting on quote", nil, false, ""},
		{"custom wins over next step", "2024-03-01", datePtr(yesterday), true, ReasonCustomFollowUp},
		{"future custom does not mask next step", "2024-03-01", datePtr(tomorrow), true, ReasonNextStepPassed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opp := &models.Opportunity{NextStep: tt.nextStep}
			var pref *models.UserPreference
			if tt.followUp != nil {
				pref = &models.UserPreference{FollowUpDate: tt.followUp}
			}
			needs, reason := EvaluateFollowUp(opp, pref, now)
			if needs != tt.wantNeeds {
				t.Errorf("needsFollowUp = %v, want %v", needs, tt.wantNeeds)
			}
			if tt.wantReason == "" {
				if reason != nil {
					t.Errorf("followUpReason = %q, want nil", *reason)
				}
			} else if reason == nil || *reason != tt.wantReason {
				t.Errorf("followUpReason = %v, want %q", reason, tt.wantReason)
			}
		})
	}
}

func TestEvaluateFollowUpNilPreference(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	needs, reason := EvaluateFollowUp(&models.Opportunity{NextStep: "Jan 2, 2024"}, nil, now)
	if !needs || reason == nil || *reason != ReasonNextStepPassed {
		t.Fatalf("got (%v, %v), want next-step follow-up", needs, reason)
	}
}
