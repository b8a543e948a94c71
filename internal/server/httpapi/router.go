package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/melitton/internal/common"
	"github.com/dmitrijs2005/melitton/internal/logging"
	"github.com/dmitrijs2005/melitton/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Options tune the router. An empty SecretKey leaves the API open.
type Options struct {
	SecretKey    []byte
	MaxBodyBytes int64
}

// NewRouter wires the API under /api, the health probe and /metrics.
func NewRouter(h *Handler, logger logging.Logger, m *metrics.Metrics, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger, m))

	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route(common.APIPrefix, func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
		})

		r.Group(func(r chi.Router) {
			r.Use(limitBody(opts.MaxBodyBytes))
			if len(opts.SecretKey) > 0 {
				r.Use(requireBearer(opts.SecretKey, logger, m))
			}
			h.Register(r)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}
