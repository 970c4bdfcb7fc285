package event

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Postal codes such as "111 22" are embedded in some venue city names.
var postalCodePattern = regexp.MustCompile(`\d+\s?\d+`)

type Normalizer struct {
	extractor *ContentExtractor
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		extractor: NewContentExtractor(),
	}
}

// Run builds the canonical event for raw, whose venue has already been
// resolved. The returned reason is empty on success.
func (n *Normalizer) Run(p Provider, raw RawEvent, venue Venue) (Event, Reason) {
	city, ok := n.City(venue.Address)
	if !ok {
		return Event{}, ReasonCity
	}

	if raw.Title == nil || *raw.Title == "" {
		return Event{}, ReasonMalformed
	}

	description, ok := n.Description(raw)
	if !ok {
		return Event{}, ReasonMalformed
	}

	return Event{
		Title:       p.Title(raw),
		Date:        raw.Start.UnixMilli(),
		City:        city,
		Link:        raw.Link,
		Description: description,
		Free:        p.Free(raw),
	}, ""
}

// City picks the city (or the region when the city is unusable), strips
// postal codes and checks that the result starts with an uppercase letter.
func (n *Normalizer) City(addr *Address) (string, bool) {
	if addr == nil {
		return "", false
	}

	source := addr.City
	if source == nil {
		source = addr.Region
	}
	if source == nil {
		return "", false
	}

	city := CleanCity(*source)
	first, _ := utf8.DecodeRuneInString(city)
	if city == "" || !unicode.IsUpper(first) {
		return "", false
	}

	return city, true
}

func (n *Normalizer) Description(raw RawEvent) (string, bool) {
	if raw.Description != nil {
		return *raw.Description, true
	}
	if raw.DescriptionHTML == "" {
		return "", false
	}

	text, err := n.extractor.Run(raw.DescriptionHTML)
	if err != nil {
		return "", true
	}
	return text, true
}

func CleanCity(city string) string {
	return strings.TrimSpace(postalCodePattern.ReplaceAllString(city, ""))
}

// TruncatedTitle drops everything from the first "[" on, e.g. sponsor tags.
func TruncatedTitle(title string) string {
	before, _, _ := strings.Cut(title, "[")
	if truncated := strings.TrimSpace(before); truncated != "" {
		return truncated
	}
	return title
}

// GroupTitle appends the organizing group unless the title already names it.
func GroupTitle(title, group string) string {
	if strings.Contains(title, group) {
		return title
	}
	return title + " - " + group
}
