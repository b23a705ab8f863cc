package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/abrezinsky/lightsout/internal/logger"
	"github.com/abrezinsky/lightsout/internal/repository"
	"github.com/abrezinsky/lightsout/internal/services"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// PageData holds the data passed to the game page
type PageData struct {
	Title    string
	SeasonID string
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Settings     services.SettingsServicer
	Race         services.RaceServicer
	Championship services.ChampionshipServicer
	Stats        services.StatsServicer
	Health       repository.HealthRepository
	Ws           http.HandlerFunc
	Log          logger.Logger
	index        *template.Template
	staticServer http.Handler
}

// New creates a new Handlers instance with all dependencies
func New(
	settings services.SettingsServicer,
	race services.RaceServicer,
	championship services.ChampionshipServicer,
	stats services.StatsServicer,
	health repository.HealthRepository,
	ws http.HandlerFunc,
	templatesFS fs.FS,
	staticServer http.Handler,
	log logger.Logger,
) (*Handlers, error) {
	index, err := template.ParseFS(templatesFS, "index.html")
	if err != nil {
		return nil, fmt.Errorf("index template: %w", err)
	}

	h := NewForTesting(settings, race, championship, stats, health, log)
	h.Ws = ws
	h.index = index
	h.staticServer = staticServer
	return h, nil
}

// NewForTesting creates a Handlers instance without templates or a
// websocket endpoint, for exercising the JSON API
func NewForTesting(
	settings services.SettingsServicer,
	race services.RaceServicer,
	championship services.ChampionshipServicer,
	stats services.StatsServicer,
	health repository.HealthRepository,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Settings:     settings,
		Race:         race,
		Championship: championship,
		Stats:        stats,
		Health:       health,
		Log:          log,
	}
}

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, PageData{Title: "Lights Out"})
}

// handleSeasonPage serves the game page opened from a shared season link
func (h *Handlers) handleSeasonPage(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	season, err := h.Championship.Get(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	h.renderPage(w, PageData{Title: season.Name, SeasonID: season.ID})
}

func (h *Handlers) renderPage(w http.ResponseWriter, data PageData) {
	if h.index == nil {
		http.Error(w, "page not available", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.index.Execute(w, data); err != nil {
		h.Log.Error("Failed to render page", "error", err)
	}
}
