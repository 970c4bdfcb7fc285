package provider

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/lysyi3m/event-comb/app/event"
)

const (
	meetupBaseURL  = "https://api.meetup.com"
	meetupPageSize = 200
)

// Meetup searches open events on api.meetup.com. Pages are addressed by
// offset and venues come embedded in each event.
type Meetup struct {
	name     string
	token    string
	country  string
	category string
	api      *apiClient
}

var _ event.Provider = (*Meetup)(nil)

func NewMeetup(config *event.Config, client *http.Client, userAgent string) *Meetup {
	baseURL := config.URL
	if baseURL == "" {
		baseURL = meetupBaseURL
	}

	return &Meetup{
		name:     config.Name,
		token:    config.Token,
		country:  config.Country,
		category: config.Category,
		api:      newAPIClient(config.Name, baseURL, client, userAgent),
	}
}

func (m *Meetup) Name() string { return m.name }

func (m *Meetup) Validate() error {
	switch {
	case m.token == "":
		return &event.ConfigError{Provider: m.name, Field: "token"}
	case m.category == "":
		return &event.ConfigError{Provider: m.name, Field: "category"}
	case m.country == "":
		return &event.ConfigError{Provider: m.name, Field: "country"}
	}
	return nil
}

func (m *Meetup) FirstPage() int { return 0 }

func (m *Meetup) TargetCountry() string { return m.country }

func (m *Meetup) FetchPage(ctx context.Context, query string, page int) (*event.Page, error) {
	params := url.Values{}
	params.Set("text", query)
	params.Set("category", m.category)
	params.Set("page", strconv.Itoa(meetupPageSize))
	params.Set("text_format", "plain")
	params.Set("offset", strconv.Itoa(page))
	params.Set("key", m.token)

	doc, err := m.api.get(ctx, "search", "/2/open_events", params)
	if err != nil {
		return nil, err
	}

	items := doc.Get("results").Array()
	result := &event.Page{
		Events:  make([]event.RawEvent, 0, len(items)),
		HasMore: doc.Get("meta.next").String() != "",
		Next:    page + 1,
	}
	for _, item := range items {
		result.Events = append(result.Events, decodeMeetupEvent(item))
	}

	return result, nil
}

func (m *Meetup) Title(raw event.RawEvent) string {
	return event.GroupTitle(*raw.Title, raw.GroupName)
}

func (m *Meetup) Free(raw event.RawEvent) bool {
	return !raw.HasFee
}

func decodeMeetupEvent(item gjson.Result) event.RawEvent {
	raw := event.RawEvent{
		ID:        item.Get("id").String(),
		Title:     stringField(item.Get("name")),
		GroupName: item.Get("group.name").String(),
		GroupID:   item.Get("group.urlname").String(),
		Link:      item.Get("event_url").String(),
		HasFee:    item.Get("fee").Exists(),
	}

	if ms := item.Get("time"); ms.Type == gjson.Number {
		raw.Start = time.UnixMilli(ms.Int())
	}

	if venue := item.Get("venue"); venue.IsObject() {
		raw.Venue = &event.Venue{
			Address: &event.Address{
				City:    stringField(venue.Get("city")),
				Region:  stringField(venue.Get("state")),
				Country: venue.Get("country").String(),
			},
		}
	}

	description := item.Get("description")
	switch {
	case description.Type == gjson.String:
		raw.Description = stringField(description)
	case !description.Exists():
		empty := ""
		raw.Description = &empty
	}

	return raw
}
