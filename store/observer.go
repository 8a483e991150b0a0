package store

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/xcube-dev/xcube-cci/config"
)

// FetchEvent and FetchObserver are defined in the config package so that
// config.Config (which carries an Observer field) doesn't need to import
// store. Aliased here so store's own API reads naturally.
type FetchEvent = config.FetchEvent
type FetchObserver = config.FetchObserver

// NoopObserver discards every event.
var NoopObserver = config.NoopObserver

// PrometheusObserver records every fetch as Prometheus counter/histogram
// observations, grounded on the pack's only cache/fetch-path instrumentation
// example (mohammed-shakir-h3-spatial-cache).
type PrometheusObserver struct {
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// NewPrometheusObserver builds a PrometheusObserver and registers its
// collectors with reg.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	o := &PrometheusObserver{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "xcube_cci",
			Name:      "chunk_fetch_duration_seconds",
			Help:      "Duration of OPeNDAP chunk fetches by variable.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"variable"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xcube_cci",
			Name:      "chunk_fetch_failures_total",
			Help:      "Count of failed OPeNDAP chunk fetches by variable.",
		}, []string{"variable"}),
	}
	reg.MustRegister(o.duration, o.failures)
	return o
}

func (o *PrometheusObserver) OnFetch(e FetchEvent) {
	o.duration.WithLabelValues(e.Variable).Observe(e.Duration.Seconds())
	if e.Err != nil {
		o.failures.WithLabelValues(e.Variable).Inc()
	}
}

// ChannelObserver fans fetch events into a bounded channel, the shape
// observer dispatch moves to once observers become concurrent. A full
// channel drops the event rather than blocking the fetcher.
type ChannelObserver struct {
	Events chan FetchEvent
}

// NewChannelObserver builds a ChannelObserver with the given channel
// capacity.
func NewChannelObserver(capacity int) *ChannelObserver {
	return &ChannelObserver{Events: make(chan FetchEvent, capacity)}
}

func (o *ChannelObserver) OnFetch(e FetchEvent) {
	select {
	case o.Events <- e:
	default:
	}
}
