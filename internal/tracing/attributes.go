package tracing

// Span attribute keys following OpenTelemetry semantic conventions
const (
	// Project attributes
	AttrProjectRoot = "schemadesk.project.root"
	AttrPath        = "schemadesk.path"
	AttrSourcePath  = "schemadesk.path.source"
	AttrTargetPath  = "schemadesk.path.target"
	AttrConfigPath  = "schemadesk.path.config"
	AttrFileCount   = "schemadesk.file.count"
	AttrFolderCount = "schemadesk.folder.count"
	AttrBytes       = "schemadesk.bytes"

	// Event attributes
	AttrEventType  = "schemadesk.event.type"
	AttrEventCount = "schemadesk.event.count"

	// Persistent state attributes
	AttrStateKey = "schemadesk.state.key"

	// Operation attributes
	AttrOperation   = "schemadesk.operation"
	AttrStatus      = "schemadesk.status"
	AttrError       = "schemadesk.error"
	AttrCompensated = "schemadesk.compensated"

	// HTTP attributes (OpenTelemetry semantic conventions)
	AttrHTTPMethod       = "http.method"
	AttrHTTPRoute        = "http.route"
	AttrHTTPStatusCode   = "http.status_code"
	AttrHTTPUserAgent    = "http.user_agent"
	AttrHTTPRequestSize  = "http.request.size"
	AttrHTTPResponseSize = "http.response.size"
)
