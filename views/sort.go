// ABOUTME: Board ordering for the active deals view
// ABOUTME: Priority rank first, open deals before closed ones within a rank
package views

import (
	"sort"
	"time"

	"github.com/harperreed/fiveyard/models"
)

// stageBucket orders stages within a priority rank. Won deals float to
// the top of the rank, lost deals sink, everything else keeps its
// incoming order.
func stageBucket(stage string) int {
	switch stage {
	case models.StageClosedWon:
		return 0
	case models.StageClosedLost:
		return 2
	default:
		return 1
	}
}

// SortForBoard orders opportunities for the kanban board. Stable so
// ties preserve the store's last-modified ordering.
func SortForBoard(opps []*ViewOpportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		ri, rj := models.PriorityRank(opps[i].Priority), models.PriorityRank(opps[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return stageBucket(opps[i].Stage) < stageBucket(opps[j].Stage)
	})
}

// GroupByWeekday buckets opportunities by the weekday they were
// created, Monday through Friday. Weekend arrivals land on Friday.
func GroupByWeekday(opps []*ViewOpportunity) map[string][]*ViewOpportunity {
	grouped := map[string][]*ViewOpportunity{
		"Monday":    {},
		"Tuesday":   {},
		"Wednesday": {},
		"Thursday":  {},
		"Friday":    {},
	}
	for _, opp := range opps {
		day := opp.CreatedDate.Weekday()
		if day == time.Saturday || day == time.Sunday {
			day = time.Friday
		}
		grouped[day.String()] = append(grouped[day.String()], opp)
	}
	return grouped
}
