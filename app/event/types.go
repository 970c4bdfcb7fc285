package event

import (
	"time"
)

// Event processing types

// Event is the canonical record produced for every provider.
type Event struct {
	Title       string `json:"title"`
	Date        int64  `json:"date"` // epoch milliseconds
	City        string `json:"city"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Free        bool   `json:"free"`
}

func (e Event) Time() time.Time {
	return time.UnixMilli(e.Date)
}

// RawEvent is a provider event decoded just far enough to run the filter
// chain. Pointer fields are nil when the provider value is absent or is not a
// string.
type RawEvent struct {
	ID              string
	Title           *string
	GroupName       string
	GroupID         string
	Start           time.Time
	VenueID         string
	Venue           *Venue
	Link            string
	Description     *string
	DescriptionHTML string
	IsFree          bool // explicit provider flag
	HasFee          bool // a fee object is attached
}

type Venue struct {
	Address *Address
}

type Address struct {
	City    *string
	Region  *string
	Country string
}

type Page struct {
	Events  []RawEvent
	HasMore bool
	Next    int
}

// Configuration types

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	Type     string         `yaml:"type"`
	URL      string         `yaml:"url"` // API base override
	Token    string         `yaml:"token"`
	Country  string         `yaml:"country"`
	Category string         `yaml:"category"`
	Query    string         `yaml:"query"`
	Exclude  []string       `yaml:"exclude"`
	Settings ConfigSettings `yaml:"settings"`
	Filters  []ConfigFilter `yaml:"filters"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	Timeout         int  `yaml:"timeout"`          // seconds
	MaxPages        int  `yaml:"max_pages"`        // 0 = follow the provider until it stops
	Concurrency     int  `yaml:"concurrency"`      // items processed at once within a page, 0 = unbounded
}

type ConfigFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}
