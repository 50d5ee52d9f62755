// ABOUTME: ISO-8601 week arithmetic for the weekly board filter
// ABOUTME: Parses YYYY-Www strings into Monday-start week bounds
package views

import (
	"fmt"
	"time"
)

// WeekBounds resolves an ISO-8601 week string ("2024-W05") to its
// Monday-start span. The returned end is exclusive (midnight of the next
// Monday), so a timestamp t is in the week when start <= t < end.
//
// Week 1 is the week containing the first Thursday of January, which is
// always the week containing January 4th.
func WeekBounds(week string) (time.Time, time.Time, error) {
	var year, num int
	if _, err := fmt.Sscanf(week, "%d-W%d", &year, &num); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid ISO week %q: %w", week, err)
	}
	if num < 1 || num > 53 {
		return time.Time{}, time.Time{}, fmt.Errorf("ISO week number %d out of range", num)
	}

	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	daysSinceMonday := (int(jan4.Weekday()) + 6) % 7
	week1Monday := jan4.AddDate(0, 0, -daysSinceMonday)

	start := week1Monday.AddDate(0, 0, (num-1)*7)
	end := start.AddDate(0, 0, 7)
	return start, end, nil
}
