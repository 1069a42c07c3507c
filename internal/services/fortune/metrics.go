package fortune

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "golf_fortune",
		Name:      "generations_total",
		Help:      "Fortunes generated, by source.",
	}, []string{"source"})

	remoteRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "golf_fortune",
		Name:      "remote_requests_total",
		Help:      "Text generation calls, by outcome.",
	}, []string{"outcome"})

	remoteLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "golf_fortune",
		Name:      "remote_request_duration_seconds",
		Help:      "Latency of text generation calls.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 15, 20, 30},
	})

	backfilledSections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "golf_fortune",
		Name:      "backfilled_sections_total",
		Help:      "Sections filled from templates after a partial response.",
	}, []string{"section"})
)
