package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/schemadesk/engine/internal/api/http/handlers"
	"github.com/schemadesk/engine/internal/api/http/middleware"
	"github.com/schemadesk/engine/internal/logger"
	"github.com/schemadesk/engine/internal/metrics"
)

// Router manages HTTP routes and middleware
type Router struct {
	mux          chi.Router
	fileHandlers *handlers.FileHandlers
	hub          *handlers.Hub
	ready        handlers.ReadyChecker
}

// NewRouter creates a new router. A nil hub disables the websocket route.
func NewRouter(explorer handlers.Explorer, hub *handlers.Hub, ready handlers.ReadyChecker, m *metrics.APIMetrics) *Router {
	r := &Router{
		mux:          chi.NewRouter(),
		fileHandlers: handlers.NewFileHandlers(explorer),
		hub:          hub,
		ready:        ready,
	}

	r.setupRoutes(m)

	return r
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// setupRoutes sets up all HTTP routes
func (r *Router) setupRoutes(m *metrics.APIMetrics) {
	log := logger.WithComponent("http.middleware")
	r.mux.Use(
		middleware.Recovery(log),
		middleware.Tracing(),
		middleware.Metrics(m),
		middleware.Logging(log),
	)

	r.mux.Get("/health", handlers.HealthCheck)
	r.mux.Get("/ready", handlers.ReadinessCheck(r.ready))

	if r.hub != nil {
		r.mux.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
			handlers.ServeWebSocket(r.hub, w, req)
		})
	}

	h := r.fileHandlers
	r.mux.Route("/api/v1", func(api chi.Router) {
		api.Get("/tree", h.GetTree)
		api.Post("/refresh", h.Refresh)

		api.Route("/files", func(files chi.Router) {
			files.Post("/", h.CreateFile)
			files.Delete("/", h.DeleteFile)
			files.Post("/rename", h.RenameFile)
			files.Get("/data", h.GetData)
			files.Put("/data", h.PutData)
			files.Get("/config", h.GetConfig)
			files.Get("/defaults", h.GetDefaults)
		})

		api.Route("/session", func(session chi.Router) {
			session.Get("/", h.GetSession)
			session.Post("/current", h.SetCurrent)
			session.Post("/close", h.Close)
		})
	})
}
