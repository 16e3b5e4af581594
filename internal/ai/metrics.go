package ai

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess       = "success"
	outcomeUnavailable   = "unavailable"
	outcomeBlocked       = "blocked"
	outcomeEmpty         = "empty_response"
	outcomeMalformedJSON = "malformed_json"
	outcomeJSONParse     = "json_parse_error"
)

// Metrics records model calls. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the model call metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "plottwist",
				Name:      "ai_requests_total",
				Help:      "Total number of generative model calls by backend and outcome.",
			},
			[]string{"backend", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "plottwist",
				Name:      "ai_request_duration_seconds",
				Help:      "Duration of generative model calls.",
				Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
			},
			[]string{"backend"},
		),
	}
}

func (m *Metrics) observe(backend, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(backend, outcome).Inc()
	if d > 0 {
		m.duration.WithLabelValues(backend).Observe(d.Seconds())
	}
}
