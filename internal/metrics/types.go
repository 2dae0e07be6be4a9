package metrics

// Metric name constants following Prometheus naming conventions
// Format: schemadesk_{component}_{metric}_{unit}

// Explorer metrics
const (
	MetricExplorerOperationsTotal    = "schemadesk_explorer_operations_total"
	MetricExplorerOperationDuration  = "schemadesk_explorer_operation_duration_seconds"
	MetricExplorerCompensationsTotal = "schemadesk_explorer_compensations_total"
	MetricExplorerTreeFiles          = "schemadesk_explorer_tree_files"
	MetricExplorerTreeFolders        = "schemadesk_explorer_tree_folders"
	MetricExplorerRecentFiles        = "schemadesk_explorer_recent_files"
	MetricExplorerEventsTotal        = "schemadesk_explorer_events_total"
)

// API metrics
const (
	MetricAPIRequestsTotal   = "schemadesk_api_requests_total"
	MetricAPIRequestDuration = "schemadesk_api_request_duration_seconds"
	MetricAPIWebsocketConns  = "schemadesk_api_websocket_connections"
	MetricWatcherEventsTotal = "schemadesk_watcher_events_total"
)

// Label name constants
const (
	LabelOperation = "operation"
	LabelStatus    = "status"
	LabelEventType = "event_type"
	LabelMethod    = "method"
	LabelEndpoint  = "endpoint"
)

// Operation status values
const (
	StatusOK       = "ok"
	StatusError    = "error"
	StatusNotFound = "not_found"
	StatusConflict = "conflict"
)
