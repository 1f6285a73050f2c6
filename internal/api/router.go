package api

import (
	"context"
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/beamlak/srts/internal/config"
	"github.com/beamlak/srts/internal/services"
)

// Pinger reports whether a backing dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the collaborators served by the router
type Dependencies struct {
	Search  services.SearchGateway
	History services.HistoryService
	Relay   services.SubtitleRelay
	Health  Pinger       // optional; /healthz always succeeds when nil
	UI      http.Handler // optional; mounted at / when set
}

// NewRouter creates the HTTP handler exposing the JSON API, health check and Web UI
func NewRouter(deps Dependencies, cfg *config.Config) *chi.Mux {
	srv := newServer(deps)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(requestLogger)
	r.Use(instrument)
	if sentry.CurrentHub().Client() != nil {
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	r.Use(cors.Handler(corsOptions(cfg.CORS.AllowedOrigins)))

	r.Get("/healthz", srv.healthz)

	r.Route("/api/subtitles", func(r chi.Router) {
		r.Get("/search", srv.searchSubtitles)
		r.Get("/download", srv.downloadSubtitle)
		r.Get("/history", srv.listHistory)
		r.With(maxBodySize(maxJSONBody)).Post("/history", srv.appendHistory)
	})

	if deps.UI != nil {
		r.Handle("/", deps.UI)
		r.Handle("/static/*", deps.UI)
	}

	return r
}
