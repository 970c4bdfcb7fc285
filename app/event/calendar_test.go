package event

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/lysyi3m/event-comb/app/database"
)

func TestCalendar_Run(t *testing.T) {
	setupTestConfig()
	calendar := NewCalendar()

	provider := database.Provider{Name: "stockholm", Type: "meetup"}
	body, err := calendar.Run(provider, testEvents())
	if err != nil {
		t.Fatalf("Failed to generate calendar: %v", err)
	}

	parsed, err := ics.ParseCalendar(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Generated calendar does not parse: %v", err)
	}

	events := parsed.Events()
	if len(events) != 2 {
		t.Fatalf("Expected 2 calendar events, got %d", len(events))
	}

	first := events[0]
	if got := first.GetProperty(ics.ComponentPropertySummary).Value; got != "ETH Meetup" {
		t.Errorf("Expected summary 'ETH Meetup', got %q", got)
	}
	if got := first.GetProperty(ics.ComponentPropertyLocation).Value; got != "Stockholm" {
		t.Errorf("Expected location 'Stockholm', got %q", got)
	}

	start, err := first.GetStartAt()
	if err != nil {
		t.Fatalf("Failed to read start: %v", err)
	}
	if !start.Equal(time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected start time: %v", start)
	}

	end, err := first.GetEndAt()
	if err != nil {
		t.Fatalf("Failed to read end: %v", err)
	}
	if end.Sub(start) != calendarEventDuration {
		t.Errorf("Expected %v duration, got %v", calendarEventDuration, end.Sub(start))
	}

	if events[1].GetProperty(ics.ComponentPropertyUrl) != nil {
		t.Error("Expected no URL for a linkless event")
	}
}

func TestCalendar_StableUIDs(t *testing.T) {
	setupTestConfig()
	calendar := NewCalendar()
	events := testEvents()

	if calendar.uid(events[0]) != calendar.uid(events[0]) {
		t.Error("Expected UID to be stable")
	}
	if calendar.uid(events[0]) == calendar.uid(events[1]) {
		t.Error("Expected distinct events to get distinct UIDs")
	}
	if !strings.HasSuffix(calendar.uid(events[0]), "@event-comb") {
		t.Errorf("Unexpected UID format: %s", calendar.uid(events[0]))
	}
}
