package event

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/lysyi3m/event-comb/app/cfg"
	"github.com/lysyi3m/event-comb/app/database"
)

// Events have no end time upstream, so each calendar entry gets a fixed span.
const calendarEventDuration = 2 * time.Hour

type Calendar struct{}

func NewCalendar() *Calendar {
	return &Calendar{}
}

// Run renders the stored events of a provider as an iCalendar document.
func (c *Calendar) Run(provider database.Provider, events []database.Event) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(fmt.Sprintf("-//Event-Comb//%s//EN", cfg.Get().Version))
	cal.SetName(fmt.Sprintf("%s events", provider.Name))
	cal.SetXWRCalName(fmt.Sprintf("%s events", provider.Name))

	stamp := time.Now().UTC()
	if provider.LastCollectedAt != nil {
		stamp = provider.LastCollectedAt.UTC()
	}

	for _, ev := range events {
		start := time.UnixMilli(ev.Date).UTC()

		vevent := cal.AddEvent(c.uid(ev))
		vevent.SetDtStampTime(stamp)
		vevent.SetStartAt(start)
		vevent.SetEndAt(start.Add(calendarEventDuration))
		vevent.SetSummary(ev.Title)
		vevent.SetLocation(ev.City)
		if ev.Link != "" {
			vevent.SetURL(ev.Link)
		}
		if ev.Description != "" {
			vevent.SetDescription(ev.Description)
		}
	}

	return cal.Serialize(), nil
}

// uid is stable across collections so calendar clients update entries in
// place instead of duplicating them.
func (c *Calendar) uid(ev database.Event) string {
	key := ev.ContentHash
	if key == "" {
		key = fmt.Sprintf("%s|%s|%d", ev.Title, ev.Link, ev.Date)
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String() + "@event-comb"
}
