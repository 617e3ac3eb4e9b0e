// Package api assembles the vannot HTTP API.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/aria-lang/vannot-go/api/handlers"
	"github.com/aria-lang/vannot-go/api/middleware"
	"github.com/aria-lang/vannot-go/internal/config"
)

// NewRouter returns the API routes. cfg selects the aligners used by the
// align endpoint.
func NewRouter(cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/coords", func(r chi.Router) {
			r.Post("/parse", handlers.ParseCoordsHandler)
			r.Post("/relations", handlers.RelationsHandler)
			r.Post("/tiling", handlers.TilingHandler)
		})

		r.Route("/alignment", func(r chi.Router) {
			r.Post("/seed", handlers.SeedHandler)
			r.Post("/flanks", handlers.FlanksHandler)
			r.Post("/join", handlers.JoinHandler)
			r.Post("/confidence", handlers.ConfidenceHandler)
			r.Post("/align", handlers.NewAlignHandler(cfg))
		})

		r.Route("/sequence", func(r chi.Router) {
			r.Post("/info", handlers.SequenceInfoHandler)
			r.Post("/set", handlers.SequenceSetStatsHandler)
			r.Post("/classify", handlers.ClassifyHandler)
		})
	})

	return r
}
