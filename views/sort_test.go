// ABOUTME: Tests for board ordering and weekday grouping
// ABOUTME: Verifies priority rank order and closed-stage tie-breaks
package views

import (
	"testing"
	"time"

	"github.com/harperreed/fiveyard/models"
)

func boardRow(name, priority, stage string) *ViewOpportunity {
	return &ViewOpportunity{
		Opportunity: models.Opportunity{SFID: name, Name: name, Stage: stage},
		Priority:    priority,
	}
}

func TestSortForBoardPriorityOrder(t *testing.T) {
	rows := []*ViewOpportunity{
		boardRow("a", "green", "Qualification"),
		boardRow("b", "red", "Qualification"),
		boardRow("c", "gray", "Qualification"),
		boardRow("d", "yellow", "Qualification"),
	}
	SortForBoard(rows)

	want := []string{"b", "d", "c", "a"}
	for i, name := range want {
		if rows[i].Name != name {
			t.Fatalf("position %d = %s, want %s", i, rows[i].Name, name)
		}
	}
}

func TestSortForBoardClosedStageTieBreak(t *testing.T) {
	rows := []*ViewOpportunity{
		boardRow("open1", "red", "Qualification"),
		boardRow("lost", "red", models.StageClosedLost),
		boardRow("won", "red", models.StageClosedWon),
		boardRow("open2", "red", "Negotiation/Review"),
	}
	SortForBoard(rows)

	want := []string{"won", "open1", "open2", "lost"}
	for i, name := range want {
		if rows[i].Name != name {
			t.Fatalf("position %d = %s, want %s", i, rows[i].Name, name)
		}
	}
}

func TestSortForBoardIsStable(t *testing.T) {
	rows := []*ViewOpportunity{
		boardRow("first", "blue", "Qualification"),
		boardRow("second", "blue", "Prospecting"),
		boardRow("third", "blue", "Qualification"),
	}
	SortForBoard(rows)

	want := []string{"first", "second", "third"}
	for i, name := range want {
		if rows[i].Name != name {
			t.Fatalf("position %d = %s, want %s", i, rows[i].Name, name)
		}
	}
}

func TestGroupByWeekday(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC)
	}
	rows := []*ViewOpportunity{
		{Opportunity: models.Opportunity{SFID: "mon", CreatedDate: day(4)}},
		{Opportunity: models.Opportunity{SFID: "wed", CreatedDate: day(6)}},
		{Opportunity: models.Opportunity{SFID: "sat", CreatedDate: day(9)}},
		{Opportunity: models.Opportunity{SFID: "sun", CreatedDate: day(10)}},
	}
	grouped := GroupByWeekday(rows)

	if len(grouped["Monday"]) != 1 || grouped["Monday"][0].SFID != "mon" {
		t.Errorf("Monday bucket = %v", grouped["Monday"])
	}
	if len(grouped["Wednesday"]) != 1 {
		t.Errorf("Wednesday bucket = %v", grouped["Wednesday"])
	}
	if len(grouped["Friday"]) != 2 {
		t.Errorf("weekend rows should land on Friday, got %v", grouped["Friday"])
	}
	if len(grouped["Tuesday"]) != 0 || len(grouped["Thursday"]) != 0 {
		t.Errorf("unexpected rows in empty buckets")
	}
}
