package event

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Reason names the predicate that dropped an event.
type Reason string

const (
	ReasonExpired   Reason = "expired"
	ReasonNoVenue   Reason = "no_venue"
	ReasonCountry   Reason = "country"
	ReasonExcluded  Reason = "excluded"
	ReasonCity      Reason = "city"
	ReasonMalformed Reason = "malformed"
	ReasonFiltered  Reason = "filtered"
	ReasonCancelled Reason = "cancelled"
)

var filterFields = map[string]bool{
	"title":       true,
	"description": true,
	"city":        true,
	"link":        true,
}

type Filterer struct {
	exclude map[string]bool
	filters []ConfigFilter
}

func NewFilterer(exclude []string, filters []ConfigFilter) *Filterer {
	set := make(map[string]bool, len(exclude))
	for _, group := range exclude {
		set[fold(strings.TrimSpace(group))] = true
	}

	return &Filterer{
		exclude: set,
		filters: filters,
	}
}

// Expired reports whether raw does not start after now. Events without a
// start time count as expired.
func (f *Filterer) Expired(raw RawEvent, now time.Time) bool {
	return raw.Start.IsZero() || !raw.Start.After(now)
}

// CheckVenue runs the venue, country and organizer predicates in that order.
func (f *Filterer) CheckVenue(raw RawEvent, venue Venue, country string) Reason {
	if venue.Address == nil {
		return ReasonNoVenue
	}

	if country != "" && fold(venue.Address.Country) != fold(country) {
		return ReasonCountry
	}

	if raw.GroupID != "" && f.exclude[fold(raw.GroupID)] {
		return ReasonExcluded
	}

	return ""
}

// Match applies the configured keyword filters to a normalized event and
// returns a description of the first rule that rejects it.
func (f *Filterer) Match(ev Event) (bool, string) {
	for _, filter := range f.filters {
		value := f.getFieldValue(ev, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return false, fmt.Sprintf("excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return false, fmt.Sprintf("excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
			}
		}
	}

	return true, ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(fold(value), fold(pattern))
}

func (f *Filterer) getFieldValue(ev Event, field string) string {
	switch field {
	case "title":
		return ev.Title
	case "description":
		return ev.Description
	case "city":
		return ev.City
	case "link":
		return ev.Link
	default:
		return ""
	}
}

// A cases.Caser keeps state, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}
