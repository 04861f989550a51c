package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nao1215/egocrawl/internal/model"
)

// Recorder holds the crawl metrics of one process.
type Recorder struct {
	registry *prometheus.Registry

	// VisitsTotal counts committed visit records.
	VisitsTotal prometheus.Counter

	// EdgesTotal counts stored edge rows.
	EdgesTotal prometheus.Counter

	// SoftFailuresTotal counts profiles skipped after a soft fetch failure.
	SoftFailuresTotal prometheus.Counter

	// PassAttemptsTotal counts started pass attempts.
	PassAttemptsTotal prometheus.Counter

	// PassFailuresTotal counts failed pass attempts.
	PassFailuresTotal prometheus.Counter

	// FrontierSize is the frontier size of the most recently expanded seed.
	FrontierSize prometheus.Gauge

	// SeedsExpandedTotal counts seeds whose frontier was computed.
	SeedsExpandedTotal prometheus.Counter
}

// NewRecorder creates a Recorder with its own registry, so several recorders
// never collide on metric names.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		VisitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "egocrawl_visits_total",
				Help: "Total number of committed profile visits",
			},
		),
		EdgesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "egocrawl_edges_total",
				Help: "Total number of stored edges",
			},
		),
		SoftFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "egocrawl_soft_failures_total",
				Help: "Total number of profiles skipped after a soft fetch failure",
			},
		),
		PassAttemptsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "egocrawl_pass_attempts_total",
				Help: "Total number of started pass attempts",
			},
		),
		PassFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "egocrawl_pass_failures_total",
				Help: "Total number of failed pass attempts",
			},
		),
		FrontierSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "egocrawl_frontier_size",
				Help: "Frontier size of the most recently expanded seed",
			},
		),
		SeedsExpandedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "egocrawl_seeds_expanded_total",
				Help: "Total number of seeds whose frontier was computed",
			},
		),
	}
}

// Registry returns the registry holding the metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Visited implements crawler.Observer.
func (r *Recorder) Visited(_, _ model.ProfileID, neighbors int) {
	r.VisitsTotal.Inc()
	r.EdgesTotal.Add(float64(neighbors))
}

// SoftFailed implements crawler.Observer.
func (r *Recorder) SoftFailed(_, _ model.ProfileID) {
	r.SoftFailuresTotal.Inc()
}

// FrontierSelected implements crawler.Observer.
func (r *Recorder) FrontierSelected(_ model.ProfileID, size int) {
	r.SeedsExpandedTotal.Inc()
	r.FrontierSize.Set(float64(size))
}

// AttemptStarted implements pipeline.AttemptObserver.
func (r *Recorder) AttemptStarted(int) {
	r.PassAttemptsTotal.Inc()
}

// AttemptFailed implements pipeline.AttemptObserver.
func (r *Recorder) AttemptFailed(int, error) {
	r.PassFailuresTotal.Inc()
}
