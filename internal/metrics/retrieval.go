package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval Prometheus metrics.
var (
	IndexBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pitchlens",
			Name:      "index_builds_total",
			Help:      "Index initializations by source",
		},
		[]string{"source"}, // "cache" / "built"
	)

	RetrievalRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pitchlens",
			Name:      "retrieval_requests_total",
			Help:      "Total retrieval queries",
		},
		[]string{"status"}, // "success" / "error"
	)

	RetrievalMatches = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pitchlens",
			Name:      "retrieval_matches",
			Help:      "Number of matches returned per retrieval query",
			Buckets:   []float64{0, 1, 2, 3, 5, 7, 10, 15},
		},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers Prometheus retrieval metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexBuildsTotal)
	prometheus.MustRegister(RetrievalRequestsTotal)
	prometheus.MustRegister(RetrievalMatches)
	retrievalMetricsRegistered = true
}
