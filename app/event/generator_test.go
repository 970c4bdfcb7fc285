package event

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/lysyi3m/event-comb/app/cfg"
	"github.com/lysyi3m/event-comb/app/database"
)

func setupTestConfig() {
	// Clear os.Args to prevent config parsing from failing
	oldArgs := os.Args
	os.Args = []string{"test"}
	defer func() { os.Args = oldArgs }()

	if os.Getenv("PORT") == "" {
		os.Setenv("PORT", "8080")
	}

	cfg.Load()
}

func testEvents() []database.Event {
	return []database.Event{
		{
			Title:       "ETH Meetup",
			Date:        time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC).UnixMilli(),
			City:        "Stockholm",
			Link:        "https://example.com/e/1",
			Description: "Talks & drinks <3",
			Free:        true,
			ContentHash: "hash-1",
		},
		{
			Title:       "DeFi Day",
			Date:        time.Date(2030, 5, 2, 9, 30, 0, 0, time.UTC).UnixMilli(),
			City:        "Oslo",
			ContentHash: "hash-2",
		},
	}
}

func TestGenerator_Run(t *testing.T) {
	setupTestConfig()
	generator := NewGenerator()

	collected := time.Date(2030, 4, 1, 12, 0, 0, 0, time.UTC)
	provider := database.Provider{Name: "stockholm", Type: "meetup", LastCollectedAt: &collected}

	rss, err := generator.Run(provider, testEvents())
	if err != nil {
		t.Fatalf("Failed to generate RSS: %v", err)
	}

	if !strings.HasPrefix(rss, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Error("RSS should start with XML declaration")
	}
	if !strings.Contains(rss, "/providers/stockholm/feed") {
		t.Error("RSS should contain the self link")
	}
	if !strings.Contains(rss, "Talks &amp; drinks &lt;3") {
		t.Error("Description should be XML escaped")
	}

	parsed, err := gofeed.NewParser().ParseString(rss)
	if err != nil {
		t.Fatalf("Generated RSS does not parse: %v", err)
	}

	if parsed.Title != "stockholm events" {
		t.Errorf("Expected channel title 'stockholm events', got %q", parsed.Title)
	}
	if len(parsed.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(parsed.Items))
	}

	first := parsed.Items[0]
	if first.Title != "ETH Meetup" {
		t.Errorf("Expected first item title 'ETH Meetup', got %q", first.Title)
	}
	if first.Link != "https://example.com/e/1" {
		t.Errorf("Expected first item link, got %q", first.Link)
	}
	if first.GUID != "https://example.com/e/1" {
		t.Errorf("Expected link to be used as GUID, got %q", first.GUID)
	}
	if first.PublishedParsed == nil || !first.PublishedParsed.Equal(time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected pubDate to be the event start, got %v", first.PublishedParsed)
	}
	if len(first.Categories) != 2 || first.Categories[0] != "Stockholm" || first.Categories[1] != "free" {
		t.Errorf("Expected categories [Stockholm free], got %v", first.Categories)
	}

	second := parsed.Items[1]
	if second.GUID != "hash-2" {
		t.Errorf("Expected content hash GUID for linkless event, got %q", second.GUID)
	}
	if second.Description != "No description available" {
		t.Errorf("Expected placeholder description, got %q", second.Description)
	}
}

func TestGenerator_Run_Empty(t *testing.T) {
	setupTestConfig()
	generator := NewGenerator()

	rss, err := generator.Run(database.Provider{Name: "empty", Type: "eventbrite"}, nil)
	if err != nil {
		t.Fatalf("Failed to generate RSS: %v", err)
	}

	parsed, err := gofeed.NewParser().ParseString(rss)
	if err != nil {
		t.Fatalf("Generated RSS does not parse: %v", err)
	}
	if len(parsed.Items) != 0 {
		t.Errorf("Expected no items, got %d", len(parsed.Items))
	}
}

func TestContentHash(t *testing.T) {
	ev := Event{Title: "A", Link: "https://a", Date: 1}

	if ContentHash(ev) != ContentHash(ev) {
		t.Error("Expected content hash to be stable")
	}

	moved := ev
	moved.Date = 2
	if ContentHash(ev) == ContentHash(moved) {
		t.Error("Expected rescheduled event to hash differently")
	}
	if len(ContentHash(ev)) != 64 {
		t.Errorf("Expected hex encoded sha256, got %q", ContentHash(ev))
	}
}
