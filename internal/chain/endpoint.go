package chain

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrNoActiveEndpoints is returned when every LCD endpoint has been marked
// unhealthy.
var ErrNoActiveEndpoints = fmt.Errorf("no active LCD endpoints available")

// Endpoint is a single LCD node with health state and rolling metrics.
type Endpoint struct {
	BaseURL string

	mu     sync.RWMutex
	active bool

	successCount uint64
	errorCount   uint64
	latencyMu    sync.Mutex
	latency      time.Duration
}

// NewEndpoint builds an endpoint from an LCD base URL.
func NewEndpoint(baseURL string) *Endpoint {
	return &Endpoint{
		BaseURL: strings.TrimRight(baseURL, "/"),
		active:  true,
	}
}

// IsActive reports whether the endpoint is currently in rotation.
func (e *Endpoint) IsActive() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active
}

// SetActive moves the endpoint in or out of rotation.
func (e *Endpoint) SetActive(state bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = state
}

// UpdateMetrics folds one request outcome into the endpoint stats.
func (e *Endpoint) UpdateMetrics(success bool, latency time.Duration) {
	if success {
		atomic.AddUint64(&e.successCount, 1)
	} else {
		atomic.AddUint64(&e.errorCount, 1)
	}
	e.latencyMu.Lock()
	e.latency = (e.latency + latency) / 2
	e.latencyMu.Unlock()
}

// Stats returns success count, error count and smoothed latency.
func (e *Endpoint) Stats() (uint64, uint64, time.Duration) {
	e.latencyMu.Lock()
	lat := e.latency
	e.latencyMu.Unlock()
	return atomic.LoadUint64(&e.successCount), atomic.LoadUint64(&e.errorCount), lat
}

// EndpointPool rotates across LCD endpoints, skipping unhealthy ones.
type EndpointPool struct {
	mu        sync.Mutex
	endpoints []*Endpoint
	currIndex int
	logger    *zap.Logger
}

// NewEndpointPool builds a pool from LCD base URLs.
func NewEndpointPool(urls []string, logger *zap.Logger) (*EndpointPool, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("endpoint pool requires at least one URL")
	}
	endpoints := make([]*Endpoint, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			return nil, fmt.Errorf("endpoint URL cannot be empty")
		}
		endpoints = append(endpoints, NewEndpoint(u))
	}
	return &EndpointPool{endpoints: endpoints, logger: logger}, nil
}

// Next returns the next active endpoint in round-robin order, or an error
// when none remain.
func (p *EndpointPool) Next() (*Endpoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := 0; i < len(p.endpoints); i++ {
		p.currIndex = (p.currIndex + 1) % len(p.endpoints)
		if p.endpoints[p.currIndex].IsActive() {
			return p.endpoints[p.currIndex], nil
		}
	}
	return nil, ErrNoActiveEndpoints
}

// MarkDown takes an endpoint out of rotation. When it was the last active
// one the whole pool is revived, since a fully dead pool can only recover
// by retrying.
func (p *EndpointPool) MarkDown(e *Endpoint) {
	e.SetActive(false)
	p.logger.Warn("LCD endpoint marked down", zap.String("endpoint", e.BaseURL))

	if !p.HasActive() {
		p.logger.Warn("all LCD endpoints down, reviving pool")
		p.mu.Lock()
		for _, ep := range p.endpoints {
			ep.SetActive(true)
		}
		p.mu.Unlock()
	}
}

// HasActive reports whether any endpoint is still in rotation.
func (p *EndpointPool) HasActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.endpoints {
		if e.IsActive() {
			return true
		}
	}
	return false
}

// Endpoints returns the pool members for inspection.
func (p *EndpointPool) Endpoints() []*Endpoint {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Endpoint, len(p.endpoints))
	copy(out, p.endpoints)
	return out
}
