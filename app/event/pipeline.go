package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Result is the outcome of one pipeline run. Err records what ended the run
// early, if anything; Events always holds what was collected before that.
type Result struct {
	Provider  string
	Events    []Event
	Pages     int
	Dropped   map[Reason]int
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

type Option func(*Pipeline)

func WithLogger(logger Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

func WithRecorder(recorder Recorder) Option {
	return func(p *Pipeline) { p.recorder = recorder }
}

// WithConcurrency caps the number of items processed at once within a page.
// Zero or less leaves the fan-out unbounded.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) { p.concurrency = n }
}

func WithMaxPages(n int) Option {
	return func(p *Pipeline) { p.maxPages = n }
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// Pipeline pages through one provider's search results and turns them into
// canonical events. Pages are fetched strictly one after another; the items
// of a page are processed concurrently.
type Pipeline struct {
	provider    Provider
	resolver    *VenueResolver
	filterer    *Filterer
	normalizer  *Normalizer
	logger      Logger
	recorder    Recorder
	concurrency int
	maxPages    int
	now         func() time.Time
}

func NewPipeline(provider Provider, filterer *Filterer, opts ...Option) *Pipeline {
	p := &Pipeline{
		provider:   provider,
		filterer:   filterer,
		normalizer: NewNormalizer(),
		logger:     slog.Default(),
		recorder:   nopRecorder{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	if fetcher, ok := provider.(VenueFetcher); ok {
		p.resolver = NewVenueResolver(provider.Name(), fetcher, p.logger, p.recorder)
	}

	return p
}

// Collect runs the pipeline and returns only the events.
func (p *Pipeline) Collect(ctx context.Context, query string) []Event {
	return p.Run(ctx, query).Events
}

func (p *Pipeline) Run(ctx context.Context, query string) *Result {
	name := p.provider.Name()
	agg := newAggregator(name, p.now())

	if err := p.provider.Validate(); err != nil {
		p.logger.Error("Provider configuration incomplete", "provider", name, "error", err)
		return agg.fail(err, p.now())
	}

	page := p.provider.FirstPage()
	for {
		if p.maxPages > 0 && agg.pages >= p.maxPages {
			break
		}
		if err := ctx.Err(); err != nil {
			p.logger.Error("Collection interrupted", "provider", name, "page", page, "error", err)
			agg.err = err
			break
		}

		result, err := p.provider.FetchPage(ctx, query, page)
		p.recorder.PageFetched(name, err)
		if err != nil {
			p.logger.Error("Page request failed", "provider", name, "page", page, "error", err)
			agg.err = err
			break
		}

		events, dropped := p.processPage(ctx, result.Events, agg.startedAt)
		agg.add(events, dropped)

		if err := ctx.Err(); err != nil {
			p.logger.Error("Collection interrupted", "provider", name, "page", page, "error", err)
			agg.err = err
			break
		}
		if !result.HasMore {
			break
		}
		page = result.Next
	}

	res := agg.finish(p.now())
	p.recorder.Collected(name, len(res.Events))
	p.logger.Info(fmt.Sprintf("Found %d events for %s", len(res.Events), name),
		"provider", name,
		"count", len(res.Events),
		"pages", res.Pages,
		"dropped", res.Dropped,
		"duration", res.Duration)

	return res
}

func (p *Pipeline) processPage(ctx context.Context, raws []RawEvent, now time.Time) ([]Event, map[Reason]int) {
	events := make([]Event, 0, len(raws))
	dropped := make(map[Reason]int)
	if len(raws) == 0 {
		return events, dropped
	}

	limit := p.concurrency
	if limit <= 0 {
		limit = len(raws)
	}
	sem := semaphore.NewWeighted(int64(limit))

	var wg sync.WaitGroup
	var mu sync.Mutex

	for i, raw := range raws {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Items never started still count, so a cut-short page is visible.
			mu.Lock()
			for range raws[i:] {
				p.recorder.Dropped(p.provider.Name(), ReasonCancelled)
				dropped[ReasonCancelled]++
			}
			mu.Unlock()
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			ev, reason := p.process(ctx, raw, now)

			mu.Lock()
			defer mu.Unlock()
			if reason != "" {
				dropped[reason]++
				return
			}
			events = append(events, ev)
		}()
	}

	wg.Wait()
	return events, dropped
}

func (p *Pipeline) process(ctx context.Context, raw RawEvent, now time.Time) (Event, Reason) {
	ev, reason := p.evaluate(ctx, raw, now)
	if reason != "" {
		p.recorder.Dropped(p.provider.Name(), reason)
	}
	return ev, reason
}

func (p *Pipeline) evaluate(ctx context.Context, raw RawEvent, now time.Time) (Event, Reason) {
	if p.filterer.Expired(raw, now) {
		return Event{}, ReasonExpired
	}

	venue := p.venue(ctx, raw)
	if reason := p.filterer.CheckVenue(raw, venue, p.provider.TargetCountry()); reason != "" {
		return Event{}, reason
	}

	ev, reason := p.normalizer.Run(p.provider, raw, venue)
	if reason != "" {
		return Event{}, reason
	}

	if ok, _ := p.filterer.Match(ev); !ok {
		return Event{}, ReasonFiltered
	}

	return ev, ""
}

func (p *Pipeline) venue(ctx context.Context, raw RawEvent) Venue {
	if raw.Venue != nil {
		return *raw.Venue
	}
	if raw.VenueID == "" || p.resolver == nil {
		return Venue{}
	}
	return p.resolver.Resolve(ctx, raw.VenueID)
}

// aggregator folds page outputs together in page order.
type aggregator struct {
	provider  string
	startedAt time.Time
	events    []Event
	pages     int
	dropped   map[Reason]int
	err       error
}

func newAggregator(provider string, startedAt time.Time) *aggregator {
	return &aggregator{
		provider:  provider,
		startedAt: startedAt,
		events:    []Event{},
		dropped:   make(map[Reason]int),
	}
}

func (a *aggregator) add(events []Event, dropped map[Reason]int) {
	a.pages++
	a.events = append(a.events, events...)
	for reason, n := range dropped {
		a.dropped[reason] += n
	}
}

func (a *aggregator) fail(err error, now time.Time) *Result {
	a.err = err
	return a.finish(now)
}

func (a *aggregator) finish(now time.Time) *Result {
	return &Result{
		Provider:  a.provider,
		Events:    a.events,
		Pages:     a.pages,
		Dropped:   a.dropped,
		Err:       a.err,
		StartedAt: a.startedAt,
		Duration:  now.Sub(a.startedAt),
	}
}
