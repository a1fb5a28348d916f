package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	WordsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ferrite_words_total",
			Help: "Number of distinct terms in an index's Words dictionary",
		},
		[]string{"index"},
	)

	SynonymsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ferrite_synonyms_total",
			Help: "Number of source tokens in an index's Synonyms dictionary",
		},
		[]string{"index"},
	)

	DocumentsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ferrite_documents_total",
			Help: "Number of documents stored in an index",
		},
		[]string{"index"},
	)

	UpdateQueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ferrite_update_queue_depth",
			Help: "Number of updates waiting to be applied",
		},
		[]string{"index"},
	)

	UpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ferrite_updates_total",
			Help: "Total number of updates applied, by type and result",
		},
		[]string{"index", "type", "result"},
	)

	UpdateApplyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ferrite_update_apply_duration_seconds",
			Help:    "Time spent applying one update inside its storage transaction",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"index", "type"},
	)

	UpdateQueueLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ferrite_update_queue_latency_seconds",
			Help:    "Time an update spent queued before the worker began applying it",
			Buckets: []float64{.001, .01, .1, .5, 1, 5, 10, 30, 60},
		},
		[]string{"index", "type"},
	)
)

func init() {
	prometheus.MustRegister(WordsTotal)
	prometheus.MustRegister(SynonymsTotal)
	prometheus.MustRegister(DocumentsTotal)
	prometheus.MustRegister(UpdateQueueDepth)
	prometheus.MustRegister(UpdatesTotal)
	prometheus.MustRegister(UpdateApplyDuration)
	prometheus.MustRegister(UpdateQueueLatency)
}

// Handler returns the Prometheus HTTP handler, for an operator process
// that wants to expose these metrics itself; this package never starts
// a server on its own.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
