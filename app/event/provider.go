package event

import (
	"context"
)

// Provider carries everything that differs between event listing services.
// A single Pipeline drives every implementation.
type Provider interface {
	Name() string
	// Validate reports a *ConfigError when a required credential or
	// parameter is missing. It must not touch the network.
	Validate() error
	FirstPage() int
	FetchPage(ctx context.Context, query string, page int) (*Page, error)
	Title(raw RawEvent) string
	Free(raw RawEvent) bool
	// TargetCountry returns the country venues must be in, or "" when the
	// provider is not restricted.
	TargetCountry() string
}

// VenueFetcher is implemented by providers that only return a venue
// identifier with their events.
type VenueFetcher interface {
	FetchVenue(ctx context.Context, id string) (Venue, error)
}

// Logger is the logging capability handed to pipeline components.
// *slog.Logger satisfies it.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Recorder receives pipeline measurements.
type Recorder interface {
	PageFetched(provider string, err error)
	VenueResolved(provider string, err error)
	Dropped(provider string, reason Reason)
	Collected(provider string, count int)
}

type nopRecorder struct{}

func (nopRecorder) PageFetched(string, error)   {}
func (nopRecorder) VenueResolved(string, error) {}
func (nopRecorder) Dropped(string, Reason)      {}
func (nopRecorder) Collected(string, int)       {}
