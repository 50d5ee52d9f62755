// ABOUTME: Tests for ISO week bound computation
// ABOUTME: Covers Thursday-pinned week 1 and year-boundary weeks
package views

import (
	"testing"
	"time"
)

func TestWeekBounds(t *testing.T) {
	tests := []struct {
		week  string
		start string
		end   string
	}{
		{"2024-W05", "2024-01-29", "2024-02-05"},
		{"2024-W01", "2024-01-01", "2024-01-08"},
		// 2021-01-01 is a Friday and belongs to 2020-W53
		{"2021-W01", "2021-01-04", "2021-01-11"},
		{"2020-W53", "2020-12-28", "2021-01-04"},
		{"2015-W01", "2014-12-29", "2015-01-05"},
	}
	for _, tt := range tests {
		start, end, err := WeekBounds(tt.week)
		if err != nil {
			t.Fatalf("WeekBounds(%q): %v", tt.week, err)
		}
		if got := start.Format("2006-01-02"); got != tt.start {
			t.Errorf("WeekBounds(%q) start = %s, want %s", tt.week, got, tt.start)
		}
		if got := end.Format("2006-01-02"); got != tt.end {
			t.Errorf("WeekBounds(%q) end = %s, want %s", tt.week, got, tt.end)
		}
		if start.Weekday() != time.Monday {
			t.Errorf("WeekBounds(%q) start is a %s, want Monday", tt.week, start.Weekday())
		}
	}
}

func TestWeekBoundsRejectsBadInput(t *testing.T) {
	for _, week := range []string{"", "2024", "2024-05", "banana", "2024-W99"} {
		if _, _, err := WeekBounds(week); err == nil {
			t.Errorf("WeekBounds(%q) succeeded, want error", week)
		}
	}
}

func TestWeekBoundsEndIsExclusive(t *testing.T) {
	start, end, err := WeekBounds("2024-W05")
	if err != nil {
		t.Fatal(err)
	}
	sunday := time.Date(2024, 2, 4, 23, 59, 59, 0, time.UTC)
	if sunday.Before(start) || !sunday.Before(end) {
		t.Errorf("Sunday 23:59:59 should fall inside [%s, %s)", start, end)
	}
	nextMonday := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
	if nextMonday.Before(end) {
		t.Errorf("next Monday midnight should be outside the week")
	}
}
