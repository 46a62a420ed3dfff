// Package metrics exposes the bot's prometheus instrumentation behind a
// collector type so callers never touch metric vectors directly.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the registered metric set.
type Collector struct {
	registry *prometheus.Registry
}

// NewCollector registers all bot metrics on a fresh registry.
func NewCollector() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}
	c.registry.MustRegister(
		queryCounter,
		queryLatency,
		txCounter,
		txDuration,
		websocketConnections,
		quoteGauge,
		endpointErrors,
	)
	return c
}

// Registry returns the underlying registry for the /metrics handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordQuery records one contract query and its latency.
func (c *Collector) RecordQuery(query string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	queryCounter.WithLabelValues(status, query).Inc()
	queryLatency.WithLabelValues(query).Observe(duration.Seconds())
}

// RecordTransaction records one submitted transaction.
func (c *Collector) RecordTransaction(operation, market string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	txCounter.WithLabelValues(status, operation, market).Inc()
	txDuration.WithLabelValues(operation, market).Observe(duration.Seconds())
}

// RecordEndpointError counts a failed request against one LCD endpoint.
func (c *Collector) RecordEndpointError(endpoint string) {
	endpointErrors.WithLabelValues(endpoint).Inc()
}

// SetWebsocketConnections sets the open subscription gauge.
func (c *Collector) SetWebsocketConnections(n int) {
	websocketConnections.Set(float64(n))
}

// SetBestQuote publishes the best observed quote for a collection side.
func (c *Collector) SetBestQuote(collection, side string, amount float64) {
	quoteGauge.WithLabelValues(collection, side).Set(amount)
}
