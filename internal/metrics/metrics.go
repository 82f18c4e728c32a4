package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels healthy domain fetches.
	OutcomeSuccess = "success"
	// OutcomeError labels fetches that ended in a terminal error.
	OutcomeError = "error"
)

var (
	domainFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "obsctl",
			Name:      "domain_fetches_total",
			Help:      "Total number of domain fetches, partitioned by domain and outcome.",
		},
		[]string{"domain", "outcome"},
	)

	retryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "obsctl",
			Name:      "retry_attempts_total",
			Help:      "Retries spent on transient failures, partitioned by domain.",
		},
		[]string{"domain"},
	)

	investigationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "obsctl",
			Name:      "investigation_seconds",
			Help:      "End-to-end investigation latency in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 3, 4, 5, 6, 8, 10},
		},
	)
)

// Register attaches obsctl collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		domainFetchesTotal,
		retryAttemptsTotal,
		investigationDurationSeconds,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveFetch records one domain fetch outcome and the retries it spent.
func ObserveFetch(domain string, retries int, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	domainFetchesTotal.WithLabelValues(domain, label).Inc()
	if retries > 0 {
		retryAttemptsTotal.WithLabelValues(domain).Add(float64(retries))
	}
}

// ObserveInvestigation records an end-to-end investigation duration.
func ObserveInvestigation(duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	investigationDurationSeconds.Observe(duration.Seconds())
}
