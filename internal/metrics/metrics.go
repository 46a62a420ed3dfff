package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metric definitions. Labels stay low-cardinality: operation names, market
// names and node URLs only.
var (
	queryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "infinity_bot",
			Name:      "queries_total",
			Help:      "Total number of contract queries issued",
		},
		[]string{"status", "query"},
	)

	queryLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "infinity_bot",
			Name:      "query_latency_seconds",
			Help:      "Contract query latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"query"},
	)

	txCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "infinity_bot",
			Name:      "transactions_total",
			Help:      "Total number of transactions submitted",
		},
		[]string{"status", "operation", "market"},
	)

	txDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "infinity_bot",
			Name:      "transaction_duration_seconds",
			Help:      "Transaction submission duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"operation", "market"},
	)

	websocketConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "infinity_bot",
			Name:      "websocket_connections",
			Help:      "Number of open event subscriptions",
		},
	)

	quoteGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "infinity_bot",
			Name:      "best_quote",
			Help:      "Best observed quote per collection and side, in base denom units",
		},
		[]string{"collection", "side"},
	)

	endpointErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "infinity_bot",
			Name:      "endpoint_errors_total",
			Help:      "Total number of failed requests per LCD endpoint",
		},
		[]string{"endpoint"},
	)
)
