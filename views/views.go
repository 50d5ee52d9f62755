// ABOUTME: Read-side view service over the synchronized opportunity store
// ABOUTME: Applies filters and decorates rows with user annotations
package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/harperreed/fiveyard/models"
	"github.com/harperreed/fiveyard/store"
)

// topLimit bounds the default view to the most recently modified deals.
const topLimit = 100

// nearCloseWindow is how far out a close date still counts as "closing".
const nearCloseWindow = 30 * 24 * time.Hour

// excludedNameParts is standing business policy, not a per-request filter.
var excludedNameParts = []string{"upgrade", "design"}

// ViewOpportunity is an opportunity row decorated with the caller's
// annotations and the derived follow-up signal.
type ViewOpportunity struct {
	models.Opportunity

	ParsedName models.ParsedName `json:"parsedName"`

	Priority       string     `json:"priority"`
	IntentLevel    int        `json:"intentLevel"`
	FiveYardLine   bool       `json:"fiveYardLine"`
	FollowUpDate   *time.Time `json:"followUpDate,omitempty"`
	Notes          string     `json:"notes"`
	PositionX      *float64   `json:"positionX,omitempty"`
	PositionY      *float64   `json:"positionY,omitempty"`
	NeedsFollowUp  bool       `json:"needsFollowUp"`
	FollowUpReason *string    `json:"followUpReason"`
}

// Filter narrows the opportunity list. Every field is AND-combined and
// the zero value means unconstrained.
type Filter struct {
	UserID         string
	Week           string   // ISO-8601 week, e.g. "2024-W05"
	Priority       string   // annotation color
	ExcludedOwners []string // case-insensitive substring match
	NearClose      bool
	ShowAll        bool
}

// Service answers filtered, annotated queries over the local store.
type Service struct {
	store *store.Store
	log   *logrus.Entry
	now   func() time.Time
}

func NewService(st *store.Store, log *logrus.Logger) *Service {
	return &Service{
		store: st,
		log:   log.WithField("component", "views"),
		now:   time.Now,
	}
}

// List returns the filtered, board-ordered opportunity list for one user.
func (s *Service) List(ctx context.Context, f Filter) ([]*ViewOpportunity, error) {
	listFilter := store.ListFilter{}
	if !f.ShowAll {
		listFilter.Limit = topLimit
	}
	if f.Week != "" {
		start, end, err := WeekBounds(f.Week)
		if err != nil {
			return nil, fmt.Errorf("week filter: %w", err)
		}
		listFilter.CreatedFrom = &start
		listFilter.CreatedTo = &end
	}

	opps, err := s.store.ListOpportunities(ctx, listFilter)
	if err != nil {
		return nil, err
	}

	prefs, err := s.store.GetPreferences(ctx, f.UserID)
	if err != nil {
		return nil, err
	}
	prefByOpp := make(map[string]*models.UserPreference, len(prefs))
	for i := range prefs {
		prefByOpp[prefs[i].OpportunityID] = &prefs[i]
	}

	now := s.now()
	result := make([]*ViewOpportunity, 0, len(opps))
	for i := range opps {
		opp := &opps[i]
		if excludedByName(opp.Name) || excludedByOwner(opp.OwnerName, f.ExcludedOwners) {
			continue
		}
		if f.NearClose && !nearClose(opp, now) {
			continue
		}
		row := decorate(opp, prefByOpp[opp.SFID], now)
		if f.Priority != "" && row.Priority != f.Priority {
			continue
		}
		result = append(result, row)
	}

	SortForBoard(result)
	s.log.WithFields(logrus.Fields{"rows": len(result), "filter": f.Week}).Debug("listed opportunities")
	return result, nil
}

func decorate(opp *models.Opportunity, pref *models.UserPreference, now time.Time) *ViewOpportunity {
	row := &ViewOpportunity{
		Opportunity: *opp,
		ParsedName:  models.ParseName(opp.Name),
		Priority:    models.PriorityGray,
		IntentLevel: models.DefaultIntentLevel,
	}
	if pref != nil {
		row.Priority = pref.Priority
		row.IntentLevel = pref.IntentLevel
		row.FiveYardLine = pref.FiveYardLine
		row.FollowUpDate = pref.FollowUpDate
		row.Notes = pref.Notes
		row.PositionX = pref.PositionX
		row.PositionY = pref.PositionY
	}
	row.NeedsFollowUp, row.FollowUpReason = EvaluateFollowUp(opp, pref, now)
	return row
}

func excludedByName(name string) bool {
	lower := strings.ToLower(name)
	for _, part := range excludedNameParts {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}

func excludedByOwner(owner string, excluded []string) bool {
	lower := strings.ToLower(owner)
	for _, ex := range excluded {
		if ex != "" && strings.Contains(lower, strings.ToLower(ex)) {
			return true
		}
	}
	return false
}

func nearClose(opp *models.Opportunity, now time.Time) bool {
	if models.LateStages[opp.Stage] {
		return true
	}
	if opp.CloseDate == nil {
		return false
	}
	return !opp.CloseDate.After(now.Add(nearCloseWindow))
}
