package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"lfsrcrack/internal/auth"
	"lfsrcrack/internal/httpserver/handlers"
	"lfsrcrack/internal/search"
)

type Deps struct {
	Monitor  *search.Monitor
	Hits     *search.Collector
	Runs     handlers.RunReader // optional
	Gatherer prometheus.Gatherer
	// JWTSecret enables bearer auth on /v1 routes when set.
	JWTSecret string
	Logger    *zap.SugaredLogger
}

// NewRouter serves the read-only status API of a running search.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop().Sugar()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(api chi.Router) {
		if d.JWTSecret != "" {
			api.Use(auth.JWTAuth(d.JWTSecret))
		}
		api.Get("/v1/progress", handlers.Progress(d.Monitor))
		if d.Runs != nil {
			api.Get("/v1/runs/{id}", handlers.GetRun(d.Runs))
		}
		api.Group(func(hits chi.Router) {
			if d.JWTSecret != "" {
				hits.Use(auth.RequireRole(auth.RoleHits))
			}
			hits.Get("/v1/hits", handlers.Hits(d.Hits, d.Logger))
		})
	})
	return r
}
