package metrics

import "github.com/prometheus/client_golang/prometheus"

// Record store Prometheus metrics.
var (
	RecordsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stringdex",
			Name:      "records_created_total",
			Help:      "Total number of analyzed strings stored",
		},
	)

	RecordsDeletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stringdex",
			Name:      "records_deleted_total",
			Help:      "Total number of records deleted",
		},
		[]string{"mode"}, // "single" / "bulk"
	)

	NaturalLanguageQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stringdex",
			Name:      "natural_language_queries_total",
			Help:      "Natural-language filter queries by interpretation outcome",
		},
		[]string{"outcome"}, // "interpreted" / "empty"
	)
)

var recordMetricsRegistered bool

// RegisterRecordMetrics registers record metrics. Must be called once from main.
func RegisterRecordMetrics() {
	if recordMetricsRegistered {
		return
	}
	prometheus.MustRegister(RecordsCreatedTotal)
	prometheus.MustRegister(RecordsDeletedTotal)
	prometheus.MustRegister(NaturalLanguageQueriesTotal)
	recordMetricsRegistered = true
}
