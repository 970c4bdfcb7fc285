package event

import (
	"testing"
	"time"
)

func TestFilterer_Expired(t *testing.T) {
	f := NewFilterer(nil, nil)
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

	if !f.Expired(RawEvent{}, now) {
		t.Error("Expected event without start time to be expired")
	}
	if !f.Expired(RawEvent{Start: now}, now) {
		t.Error("Expected event starting exactly now to be expired")
	}
	if !f.Expired(RawEvent{Start: now.Add(-time.Minute)}, now) {
		t.Error("Expected past event to be expired")
	}
	if f.Expired(RawEvent{Start: now.Add(time.Millisecond)}, now) {
		t.Error("Expected future event to be kept")
	}
}

func TestFilterer_CheckVenue(t *testing.T) {
	f := NewFilterer([]string{"Spam-Group", " shills "}, nil)
	se := Venue{Address: &Address{City: strPtr("Stockholm"), Country: "se"}}

	tests := []struct {
		name    string
		raw     RawEvent
		venue   Venue
		country string
		reason  Reason
	}{
		{"no venue", RawEvent{}, Venue{}, "", ReasonNoVenue},
		{"no venue wins over country", RawEvent{}, Venue{}, "SE", ReasonNoVenue},
		{"country match is case-insensitive", RawEvent{}, se, "SE", ""},
		{"country mismatch", RawEvent{}, se, "NO", ReasonCountry},
		{"unrestricted country", RawEvent{}, se, "", ""},
		{"excluded organizer", RawEvent{GroupID: "spam-group"}, se, "SE", ReasonExcluded},
		{"excluded organizer trimmed", RawEvent{GroupID: "SHILLS"}, se, "", ReasonExcluded},
		{"other organizer", RawEvent{GroupID: "crypto-stockholm"}, se, "SE", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.CheckVenue(tt.raw, tt.venue, tt.country); got != tt.reason {
				t.Errorf("Expected reason %q, got %q", tt.reason, got)
			}
		})
	}
}

func TestFilterer_Match_NoFilters(t *testing.T) {
	f := NewFilterer(nil, nil)

	ok, reason := f.Match(Event{Title: "Anything"})
	if !ok || reason != "" {
		t.Errorf("Expected event to pass without filters, got (%v, %q)", ok, reason)
	}
}

func TestFilterer_Match_Includes(t *testing.T) {
	f := NewFilterer(nil, []ConfigFilter{
		{Field: "title", Includes: []string{"bitcoin", "ethereum"}},
	})

	if ok, _ := f.Match(Event{Title: "Ethereum Meetup"}); !ok {
		t.Error("Expected case-insensitive include match")
	}

	ok, reason := f.Match(Event{Title: "Stock Trading 101"})
	if ok {
		t.Error("Expected event without included keyword to be filtered")
	}
	if reason == "" {
		t.Error("Expected a filter reason")
	}
}

func TestFilterer_Match_Excludes(t *testing.T) {
	f := NewFilterer(nil, []ConfigFilter{
		{Field: "description", Excludes: []string{"ICO"}},
		{Field: "city", Includes: []string{"berlin"}},
	})

	if ok, _ := f.Match(Event{Description: "Our new ico launch", City: "Berlin"}); ok {
		t.Error("Expected excluded description to be filtered")
	}
	if ok, _ := f.Match(Event{Description: "Talks", City: "Hamburg"}); ok {
		t.Error("Expected city include filter to apply")
	}
	if ok, _ := f.Match(Event{Description: "Talks", City: "Berlin"}); !ok {
		t.Error("Expected event matching every filter to pass")
	}
}

func TestFilterer_Match_Link(t *testing.T) {
	f := NewFilterer(nil, []ConfigFilter{
		{Field: "link", Excludes: []string{"promo.example"}},
	})

	if ok, _ := f.Match(Event{Link: "https://promo.example/e/1"}); ok {
		t.Error("Expected link exclude to apply")
	}
}
