package event

import (
	"strings"
	"testing"
	"time"
)

func strPtr(s string) *string {
	return &s
}

func TestTruncatedTitle(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{"sponsor tag removed", "ETH Meetup [Sponsored]", "ETH Meetup"},
		{"no bracket", "Bitcoin Night", "Bitcoin Night"},
		{"only bracket falls back", "[Sponsored]", "[Sponsored]"},
		{"whitespace before bracket falls back", "   [Live]", "   [Live]"},
		{"first bracket wins", "DeFi Day [Online] [Free]", "DeFi Day"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncatedTitle(tt.title); got != tt.expected {
				t.Errorf("TruncatedTitle(%q) = %q, expected %q", tt.title, got, tt.expected)
			}
		})
	}
}

func TestGroupTitle(t *testing.T) {
	if got := GroupTitle("Monthly Drinks", "Crypto Berlin"); got != "Monthly Drinks - Crypto Berlin" {
		t.Errorf("Expected group appended, got %q", got)
	}
	if got := GroupTitle("Crypto Berlin: Monthly Drinks", "Crypto Berlin"); got != "Crypto Berlin: Monthly Drinks" {
		t.Errorf("Expected title unchanged when it names the group, got %q", got)
	}
}

func TestCleanCity(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"111 22 Stockholm", "Stockholm"},
		{"Stockholm", "Stockholm"},
		{"10115 Berlin", "Berlin"},
		{"22", ""},
		{"  Oslo  ", "Oslo"},
	}

	for _, tt := range tests {
		if got := CleanCity(tt.input); got != tt.expected {
			t.Errorf("CleanCity(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestNormalizer_City(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name     string
		addr     *Address
		expected string
		ok       bool
	}{
		{"nil address", nil, "", false},
		{"postal code stripped", &Address{City: strPtr("111 22 Stockholm")}, "Stockholm", true},
		{"digits only", &Address{City: strPtr("22")}, "", false},
		{"lowercase", &Address{City: strPtr("berlin")}, "", false},
		{"region fallback", &Address{Region: strPtr("Bavaria")}, "Bavaria", true},
		{"city preferred over region", &Address{City: strPtr("Munich"), Region: strPtr("Bavaria")}, "Munich", true},
		{"neither city nor region", &Address{Country: "DE"}, "", false},
		{"non-ASCII uppercase", &Address{City: strPtr("Örebro")}, "Örebro", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city, ok := n.City(tt.addr)
			if ok != tt.ok || city != tt.expected {
				t.Errorf("City() = (%q, %v), expected (%q, %v)", city, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestNormalizer_Description(t *testing.T) {
	n := NewNormalizer()

	if desc, ok := n.Description(RawEvent{Description: strPtr("plain")}); !ok || desc != "plain" {
		t.Errorf("Expected plain description, got (%q, %v)", desc, ok)
	}
	if desc, ok := n.Description(RawEvent{Description: strPtr("")}); !ok || desc != "" {
		t.Errorf("Expected empty description to be accepted, got (%q, %v)", desc, ok)
	}
	if _, ok := n.Description(RawEvent{}); ok {
		t.Error("Expected missing description without markup to be rejected")
	}

	html := `<html><body><article><p>Join us for an evening of talks about Ethereum scaling, rollups and the road ahead for layer two networks in the Nordics.</p></article></body></html>`
	desc, ok := n.Description(RawEvent{DescriptionHTML: html})
	if !ok {
		t.Fatal("Expected markup description to be accepted")
	}
	if strings.Contains(desc, "<p>") {
		t.Errorf("Expected markup to be stripped, got %q", desc)
	}
}

func TestNormalizer_Run(t *testing.T) {
	n := NewNormalizer()
	p := &fakeProvider{name: "test", titleFn: TruncatedTitle}
	start := time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC)

	raw := RawEvent{
		Title:       strPtr("ETH Meetup [Sponsored]"),
		Start:       start,
		Link:        "https://example.com/e/1",
		Description: strPtr("Talks and drinks"),
		IsFree:      true,
	}
	venue := Venue{Address: &Address{City: strPtr("111 22 Stockholm"), Country: "SE"}}

	ev, reason := n.Run(p, raw, venue)
	if reason != "" {
		t.Fatalf("Unexpected drop: %s", reason)
	}

	if ev.Title != "ETH Meetup" {
		t.Errorf("Expected title 'ETH Meetup', got %q", ev.Title)
	}
	if ev.City != "Stockholm" {
		t.Errorf("Expected city 'Stockholm', got %q", ev.City)
	}
	if ev.Date != start.UnixMilli() {
		t.Errorf("Expected date %d, got %d", start.UnixMilli(), ev.Date)
	}
	if !ev.Free {
		t.Error("Expected free event")
	}
	if ev.Link != raw.Link || ev.Description != "Talks and drinks" {
		t.Errorf("Unexpected link/description: %+v", ev)
	}
}

func TestNormalizer_Run_Drops(t *testing.T) {
	n := NewNormalizer()
	p := &fakeProvider{name: "test"}
	start := time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC)
	goodVenue := Venue{Address: &Address{City: strPtr("Oslo")}}

	tests := []struct {
		name   string
		raw    RawEvent
		venue  Venue
		reason Reason
	}{
		{"digits-only city", RawEvent{Title: strPtr("A"), Start: start, Description: strPtr("")}, Venue{Address: &Address{City: strPtr("22")}}, ReasonCity},
		{"missing title", RawEvent{Start: start, Description: strPtr("")}, goodVenue, ReasonMalformed},
		{"empty title", RawEvent{Title: strPtr(""), Start: start, Description: strPtr("")}, goodVenue, ReasonMalformed},
		{"missing description", RawEvent{Title: strPtr("A"), Start: start}, goodVenue, ReasonMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, reason := n.Run(p, tt.raw, tt.venue)
			if reason != tt.reason {
				t.Errorf("Expected reason %q, got %q", tt.reason, reason)
			}
		})
	}
}
