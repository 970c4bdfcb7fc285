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

const eventbriteBaseURL = "https://www.eventbriteapi.com/v3"

// Eventbrite searches eventbriteapi.com. Events only reference their venue,
// which is looked up separately.
type Eventbrite struct {
	name  string
	token string
	api   *apiClient
}

var (
	_ event.Provider     = (*Eventbrite)(nil)
	_ event.VenueFetcher = (*Eventbrite)(nil)
)

func NewEventbrite(config *event.Config, client *http.Client, userAgent string) *Eventbrite {
	baseURL := config.URL
	if baseURL == "" {
		baseURL = eventbriteBaseURL
	}

	return &Eventbrite{
		name:  config.Name,
		token: config.Token,
		api:   newAPIClient(config.Name, baseURL, client, userAgent),
	}
}

func (e *Eventbrite) Name() string { return e.name }

func (e *Eventbrite) Validate() error {
	if e.token == "" {
		return &event.ConfigError{Provider: e.name, Field: "token"}
	}
	return nil
}

func (e *Eventbrite) FirstPage() int { return 1 }

func (e *Eventbrite) TargetCountry() string { return "" }

func (e *Eventbrite) FetchPage(ctx context.Context, query string, page int) (*event.Page, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))

	doc, err := e.api.get(ctx, "search", "/events/search/", params)
	if err != nil {
		return nil, err
	}

	items := doc.Get("events").Array()
	result := &event.Page{
		Events:  make([]event.RawEvent, 0, len(items)),
		HasMore: doc.Get("pagination.has_more_items").Bool(),
		Next:    page + 1,
	}
	for _, item := range items {
		result.Events = append(result.Events, decodeEventbriteEvent(item))
	}

	return result, nil
}

func (e *Eventbrite) FetchVenue(ctx context.Context, id string) (event.Venue, error) {
	doc, err := e.api.get(ctx, "venue", "/venues/"+url.PathEscape(id)+"/", nil)
	if err != nil {
		return event.Venue{}, err
	}
	return decodeEventbriteVenue(doc), nil
}

func (e *Eventbrite) Title(raw event.RawEvent) string {
	return event.TruncatedTitle(*raw.Title)
}

func (e *Eventbrite) Free(raw event.RawEvent) bool {
	return raw.IsFree
}

func decodeEventbriteEvent(item gjson.Result) event.RawEvent {
	raw := event.RawEvent{
		ID:      item.Get("id").String(),
		Title:   stringField(item.Get("name.text")),
		GroupID: item.Get("organizer_id").String(),
		Start:   eventbriteStart(item.Get("start")),
		VenueID: item.Get("venue_id").String(),
		Link:    item.Get("url").String(),
		IsFree:  item.Get("is_free").Bool(),
	}

	if venue := item.Get("venue"); venue.IsObject() {
		decoded := decodeEventbriteVenue(venue)
		raw.Venue = &decoded
	}

	text := item.Get("description.text")
	switch {
	case text.Type == gjson.String:
		raw.Description = stringField(text)
	case item.Get("description.html").Type == gjson.String:
		raw.DescriptionHTML = item.Get("description.html").Str
	case !text.Exists():
		empty := ""
		raw.Description = &empty
	}

	return raw
}

func decodeEventbriteVenue(doc gjson.Result) event.Venue {
	address := doc.Get("address")
	if !address.IsObject() {
		return event.Venue{}
	}

	return event.Venue{
		Address: &event.Address{
			City:    firstSegment(stringField(address.Get("city"))),
			Region:  firstSegment(stringField(address.Get("region"))),
			Country: address.Get("country").String(),
		},
	}
}

// eventbriteStart prefers the UTC timestamp and falls back to the local one.
func eventbriteStart(start gjson.Result) time.Time {
	if utc := start.Get("utc").String(); utc != "" {
		if t, err := time.Parse(time.RFC3339, utc); err == nil {
			return t
		}
	}
	if local := start.Get("local").String(); local != "" {
		if t, err := time.ParseInLocation("2006-01-02T15:04:05", local, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
