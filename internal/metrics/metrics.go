package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutcomeOK labels a successful fetch; failures use the error kind name.
const OutcomeOK = "ok"

// Metrics holds Prometheus collectors for balance fetches
type Metrics struct {
	fetchTotal    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "token_balance",
			Name:      "fetch_total",
			Help:      "Number of token balance fetches by outcome",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "token_balance",
			Name:      "fetch_duration_seconds",
			Help:      "Time spent on a token balance fetch, including the RPC round trip",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.fetchTotal, m.fetchDuration)
	return m
}

// ObserveFetch records one fetch with its outcome and duration
func (m *Metrics) ObserveFetch(outcome string, d time.Duration) {
	m.fetchTotal.WithLabelValues(outcome).Inc()
	m.fetchDuration.WithLabelValues(outcome).Observe(d.Seconds())
}
