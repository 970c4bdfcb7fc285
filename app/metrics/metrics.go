package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lysyi3m/event-comb/app/event"
)

// Recorder exports pipeline and collection measurements to Prometheus.
type Recorder struct {
	gatherer prometheus.Gatherer

	pagesTotal      *prometheus.CounterVec
	venueLookups    *prometheus.CounterVec
	eventsDropped   *prometheus.CounterVec
	eventsCollected *prometheus.GaugeVec
	collectDuration *prometheus.HistogramVec
	lastSuccessTS   *prometheus.GaugeVec
}

var _ event.Recorder = (*Recorder)(nil)

// New registers the collectors with reg. Pass a fresh prometheus.Registry
// in tests.
func New(reg *prometheus.Registry) *Recorder {
	r := &Recorder{gatherer: reg}

	r.pagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventcomb",
		Name:      "pages_total",
		Help:      "Provider search pages requested, by outcome",
	}, []string{"provider", "status"})
	r.venueLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventcomb",
		Name:      "venue_lookups_total",
		Help:      "Venue lookups, by outcome",
	}, []string{"provider", "status"})
	r.eventsDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventcomb",
		Name:      "events_dropped_total",
		Help:      "Provider events rejected by the filter chain, by reason",
	}, []string{"provider", "reason"})
	r.eventsCollected = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "eventcomb",
		Name:      "events_collected",
		Help:      "Events returned by the most recent collection",
	}, []string{"provider"})
	r.collectDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "eventcomb",
		Name:      "collection_duration_seconds",
		Help:      "Time spent collecting events from a provider",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
	}, []string{"provider", "status"})
	r.lastSuccessTS = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "eventcomb",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last collection without errors",
	}, []string{"provider"})

	reg.MustRegister(
		r.pagesTotal, r.venueLookups, r.eventsDropped,
		r.eventsCollected, r.collectDuration, r.lastSuccessTS,
	)

	return r
}

func (r *Recorder) PageFetched(provider string, err error) {
	r.pagesTotal.WithLabelValues(provider, outcome(err)).Inc()
}

func (r *Recorder) VenueResolved(provider string, err error) {
	r.venueLookups.WithLabelValues(provider, outcome(err)).Inc()
}

func (r *Recorder) Dropped(provider string, reason event.Reason) {
	r.eventsDropped.WithLabelValues(provider, string(reason)).Inc()
}

func (r *Recorder) Collected(provider string, count int) {
	r.eventsCollected.WithLabelValues(provider).Set(float64(count))
}

// ObserveCollection records a finished collection run with its stored status.
func (r *Recorder) ObserveCollection(provider, status string, duration time.Duration, finishedAt time.Time) {
	r.collectDuration.WithLabelValues(provider, status).Observe(duration.Seconds())
	if status == "success" {
		r.lastSuccessTS.WithLabelValues(provider).Set(float64(finishedAt.Unix()))
	}
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
