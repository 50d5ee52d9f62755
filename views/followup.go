// ABOUTME: Follow-up detection over annotated opportunity rows
// ABOUTME: Custom follow-up dates take precedence over next-step dates
package views

import (
	"strings"
	"time"

	"github.com/harperreed/fiveyard/models"
)

// Follow-up reasons surfaced to the client.
const (
	ReasonCustomFollowUp = "Custom follow-up date reached"
	ReasonNextStepPassed = "Next step date passed"
)

// nextStepLayouts are the date formats agents actually type into the
// free-text next-step field.
var nextStepLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"Jan 2, 2006",
	"January 2, 2006",
}

// EvaluateFollowUp decides whether an opportunity needs attention right
// now. A pure function of the stored row at query time: an explicit
// follow-up date at or before today wins; otherwise a next-step value
// that parses as a date at or before today; otherwise nothing.
func EvaluateFollowUp(opp *models.Opportunity, pref *models.UserPreference, now time.Time) (bool, *string) {
	today := dateOnly(now)

	if pref != nil && pref.FollowUpDate != nil {
		if !dateOnly(*pref.FollowUpDate).After(today) {
			reason := ReasonCustomFollowUp
			return true, &reason
		}
	}

	if stepDate, ok := parseNextStepDate(opp.NextStep); ok {
		if !dateOnly(stepDate).After(today) {
			reason := ReasonNextStepPassed
			return true, &reason
		}
	}

	return false, nil
}

func parseNextStepDate(nextStep string) (time.Time, bool) {
	trimmed := strings.TrimSpace(nextStep)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range nextStepLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
