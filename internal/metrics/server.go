package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/schemadesk/engine/internal/httpserver"
)

// Server serves /metrics on its own listener, apart from the API
type Server struct {
	*httpserver.Server
}

// NewServer exposes the collector's registry, or the default registry when
// collector is nil
func NewServer(addr string, collector *Collector) *Server {
	handler := promhttp.Handler()
	if collector != nil {
		handler = collector.Handler()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	return &Server{Server: httpserver.New("metrics", addr, mux)}
}
