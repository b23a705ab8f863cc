package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)

	// The websocket connection outlives any request timeout
	if h.Ws != nil {
		r.Get("/ws", h.Ws)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		if h.staticServer != nil {
			r.Handle("/static/*", http.StripPrefix("/static/", h.staticServer))
		}

		// Game pages
		r.Get("/", h.handleIndex)
		r.Get("/championship/{id}", h.handleSeasonPage)

		r.Get("/api/health", h.handleHealth)

		// Settings
		r.Get("/api/settings", h.handleGetSettings)
		r.Put("/api/settings", h.handleUpdateSettings)
		r.Post("/api/settings/sound", h.handleToggleSound)

		// Race
		r.Get("/api/race", h.handleGetRace)
		r.Post("/api/race/start", h.handleStartRace)
		r.Post("/api/race/react", h.handleReact)
		r.Post("/api/race/reset", h.handleResetRace)

		// History & Stats
		r.Get("/api/history", h.handleGetHistory)
		r.Delete("/api/history", h.handleClearHistory)
		r.Get("/api/stats", h.handleGetStats)

		// Championships
		r.Get("/api/championships", h.handleListChampionships)
		r.Post("/api/championships", h.handleStartChampionship)
		r.Get("/api/championships/current", h.handleCurrentChampionship)
		r.Get("/api/championships/{id}", h.handleGetChampionship)
		r.Get("/api/championships/{id}/qr", h.handleChampionshipQR)
		r.Post("/api/championships/{id}/races/{raceID}/start", h.handleStartChampionshipRace)
	})

	return r
}

// urlParam extracts a chi URL parameter
func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
