package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ExplorerMetrics tracks file-tree operations. A nil *ExplorerMetrics is a
// valid no-op recorder.
type ExplorerMetrics struct {
	operationsTotal    *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	compensationsTotal *prometheus.CounterVec
	treeFiles          *prometheus.GaugeVec
	treeFolders        *prometheus.GaugeVec
	recentFiles        *prometheus.GaugeVec
	eventsTotal        *prometheus.CounterVec
}

// NewExplorerMetrics registers explorer metrics with the collector
func NewExplorerMetrics(collector *Collector) *ExplorerMetrics {
	return &ExplorerMetrics{
		operationsTotal: collector.RegisterCounter(
			MetricExplorerOperationsTotal,
			"Total explorer operations by operation and status",
			[]string{LabelOperation, LabelStatus},
		),
		operationDuration: collector.RegisterHistogram(
			MetricExplorerOperationDuration,
			"Explorer operation latency in seconds, storage I/O included",
			[]string{LabelOperation},
			[]float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		),
		compensationsTotal: collector.RegisterCounter(
			MetricExplorerCompensationsTotal,
			"Data-file compensations after a failed config-file step",
			[]string{LabelOperation, LabelStatus},
		),
		treeFiles: collector.RegisterGauge(
			MetricExplorerTreeFiles,
			"Files currently in the project tree",
			nil,
		),
		treeFolders: collector.RegisterGauge(
			MetricExplorerTreeFolders,
			"Folders currently in the project tree",
			nil,
		),
		recentFiles: collector.RegisterGauge(
			MetricExplorerRecentFiles,
			"Files currently open in the session",
			nil,
		),
		eventsTotal: collector.RegisterCounter(
			MetricExplorerEventsTotal,
			"Notifications emitted by the explorer",
			[]string{LabelEventType},
		),
	}
}

// RecordOperation records one operation outcome and its latency
func (m *ExplorerMetrics) RecordOperation(operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCompensation records an attempted rollback of the data file
func (m *ExplorerMetrics) RecordCompensation(operation string, err error) {
	if m == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.compensationsTotal.WithLabelValues(operation, status).Inc()
}

// UpdateTree sets the tree size gauges
func (m *ExplorerMetrics) UpdateTree(files, folders int) {
	if m == nil {
		return
	}
	m.treeFiles.WithLabelValues().Set(float64(files))
	m.treeFolders.WithLabelValues().Set(float64(folders))
}

// UpdateRecentFiles sets the open file gauge
func (m *ExplorerMetrics) UpdateRecentFiles(n int) {
	if m == nil {
		return
	}
	m.recentFiles.WithLabelValues().Set(float64(n))
}

// RecordEvent counts an emitted notification
func (m *ExplorerMetrics) RecordEvent(eventType string) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(eventType).Inc()
}
