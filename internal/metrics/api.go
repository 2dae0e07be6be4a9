package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetrics tracks the HTTP surface and the project watcher
type APIMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	websocketConns  *prometheus.GaugeVec
	watcherEvents   *prometheus.CounterVec
}

// NewAPIMetrics registers API metrics with the collector
func NewAPIMetrics(collector *Collector) *APIMetrics {
	return &APIMetrics{
		requestsTotal: collector.RegisterCounter(
			MetricAPIRequestsTotal,
			"Total HTTP requests by method, endpoint, and status",
			[]string{LabelMethod, LabelEndpoint, LabelStatus},
		),
		requestDuration: collector.RegisterHistogram(
			MetricAPIRequestDuration,
			"API request latency in seconds",
			[]string{LabelMethod, LabelEndpoint},
			prometheus.DefBuckets,
		),
		websocketConns: collector.RegisterGauge(
			MetricAPIWebsocketConns,
			"Connected websocket clients",
			nil,
		),
		watcherEvents: collector.RegisterCounter(
			MetricWatcherEventsTotal,
			"File system events seen by the project watcher",
			[]string{LabelOperation},
		),
	}
}

// RecordAPIRequest records an API request
func (m *APIMetrics) RecordAPIRequest(method, endpoint, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	m.requestsTotal.WithLabelValues(method, endpoint, status).Inc()
}

// WebsocketConnected adjusts the websocket client gauge by delta
func (m *APIMetrics) WebsocketConnected(delta int) {
	if m == nil {
		return
	}
	m.websocketConns.WithLabelValues().Add(float64(delta))
}

// RecordWatcherEvent counts a file system event by operation (create, write, ...)
func (m *APIMetrics) RecordWatcherEvent(op string) {
	if m == nil {
		return
	}
	m.watcherEvents.WithLabelValues(op).Inc()
}
