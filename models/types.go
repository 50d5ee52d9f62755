// ABOUTME: Data models for synced opportunities and user annotations
// ABOUTME: Defines Opportunity, SyncLogEntry, UserPreference and vocabularies
package models

import (
	"time"
)

// Opportunity is a locally mirrored CRM opportunity. All fields except
// UpdatedAt are remote-authoritative; LastContactDate is derived during
// sync from related task/event activity.
type Opportunity struct {
	SFID             string     `json:"sfId"`
	Name             string     `json:"name"`
	Stage            string     `json:"stage"`
	Amount           float64    `json:"amount,omitempty"`
	CreatedDate      time.Time  `json:"createdDate"`
	LastModifiedDate time.Time  `json:"lastModifiedDate"`
	CloseDate        *time.Time `json:"closeDate,omitempty"`
	LastContactDate  *time.Time `json:"lastContactDate,omitempty"`
	OwnerName        string     `json:"ownerName,omitempty"`
	AccountID        string     `json:"-"`
	AccountName      string     `json:"accountName,omitempty"`
	AccountPhone     string     `json:"accountPhone,omitempty"`
	NextStep         string     `json:"nextStep,omitempty"`
	Description      string     `json:"description,omitempty"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// SyncLogEntry is an append-only record of one sync attempt.
type SyncLogEntry struct {
	ID            string    `json:"id"`
	SyncType      string    `json:"syncType"`
	Status        string    `json:"status"`
	RecordsSynced int       `json:"recordsSynced"`
	ErrorMessage  *string   `json:"errorMessage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Sync outcome constants.
const (
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
)

// UserPreference is a client-owned annotation layered on an opportunity.
// It weakly references the opportunity by SF id; annotations may outlive
// the opportunity they describe.
type UserPreference struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	OpportunityID string     `json:"opportunityId" validate:"required"`
	Priority      string     `json:"priority" validate:"omitempty,oneof=gray red yellow blue green"`
	IntentLevel   int        `json:"intentLevel" validate:"omitempty,min=1,max=10"`
	FiveYardLine  bool       `json:"fiveYardLine"`
	FollowUpDate  *time.Time `json:"followUpDate,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	PositionX     *float64   `json:"positionX,omitempty"`
	PositionY     *float64   `json:"positionY,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// DefaultUserID is the shared identity used when a caller supplies none.
// The system models a single shared workspace, not multi-tenant users.
const DefaultUserID = "default"

// Priority color constants.
const (
	PriorityGray   = "gray"
	PriorityRed    = "red"
	PriorityYellow = "yellow"
	PriorityBlue   = "blue"
	PriorityGreen  = "green"
)

// DefaultIntentLevel is the midpoint of the 1-10 intent scale.
const DefaultIntentLevel = 5

// priorityRanks orders the board: red hottest, green coldest.
var priorityRanks = map[string]int{
	PriorityRed:    1,
	PriorityYellow: 2,
	PriorityBlue:   3,
	PriorityGray:   4,
	PriorityGreen:  5,
}

// PriorityRank returns the sort rank for a priority color. Unknown colors
// rank with gray.
func PriorityRank(color string) int {
	if rank, ok := priorityRanks[color]; ok {
		return rank
	}
	return priorityRanks[PriorityGray]
}

// ColorForRank maps a 1-5 priority rank back to its color. Returns ""
// for out-of-range ranks.
func ColorForRank(rank int) string {
	for color, r := range priorityRanks {
		if r == rank {
			return color
		}
	}
	return ""
}

// ValidPriority reports whether color is one of the five priority colors.
func ValidPriority(color string) bool {
	_, ok := priorityRanks[color]
	return ok
}

// ApplyDefaults fills zero-valued annotation fields. A preference write is
// a full replacement: absent fields fall back to defaults, not to
// previously stored values.
func (p *UserPreference) ApplyDefaults() {
	if p.UserID == "" {
		p.UserID = DefaultUserID
	}
	if p.Priority == "" {
		p.Priority = PriorityGray
	}
	if p.IntentLevel == 0 {
		p.IntentLevel = DefaultIntentLevel
	}
}

// Stage labels follow the remote CRM's vocabulary. The set is externally
// defined; these constants cover the stages the views reason about.
const (
	StageClosedWon   = "Closed Won"
	StageClosedLost  = "Closed Lost"
	StageProposal    = "Proposal/Price Quote"
	StageNegotiation = "Negotiation/Review"
)

// LateStages are the stages treated as near-close regardless of close date.
var LateStages = map[string]bool{
	StageProposal:    true,
	StageNegotiation: true,
}
