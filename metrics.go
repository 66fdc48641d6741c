package stripe

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records the requests made to the Stripe API by a Client.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the request metrics and registers them with the given
// prometheus.Registerer. This will panic if the metrics have already been
// registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stripe",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total number of requests made to the Stripe API",
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stripe",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Duration of requests made to the Stripe API in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	reg.MustRegister(m.requests, m.duration)
	return m
}

// observe records a single request. A status of 0 means no response was
// received.
func (m *Metrics) observe(method string, status int, d time.Duration) {
	if m == nil {
		return
	}

	label := "error"

	if status > 0 {
		label = strconv.Itoa(status)
	}

	m.requests.WithLabelValues(method, label).Inc()
	m.duration.WithLabelValues(method).Observe(d.Seconds())
}
