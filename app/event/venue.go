package event

import (
	"context"
)

// VenueResolver looks up venues for providers that only reference them by
// identifier. Lookup failures resolve to an empty Venue.
type VenueResolver struct {
	provider string
	fetcher  VenueFetcher
	logger   Logger
	recorder Recorder
}

func NewVenueResolver(provider string, fetcher VenueFetcher, logger Logger, recorder Recorder) *VenueResolver {
	return &VenueResolver{
		provider: provider,
		fetcher:  fetcher,
		logger:   logger,
		recorder: recorder,
	}
}

func (r *VenueResolver) Resolve(ctx context.Context, id string) Venue {
	venue, err := r.fetcher.FetchVenue(ctx, id)
	r.recorder.VenueResolved(r.provider, err)
	if err != nil {
		r.logger.Error("Venue lookup failed", "provider", r.provider, "venue_id", id, "error", err)
		return Venue{}
	}
	return venue
}
