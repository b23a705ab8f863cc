package handlers

import (
	"net/http"

	"github.com/abrezinsky/lightsout/internal/services"
	"github.com/abrezinsky/lightsout/internal/stats"
)

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.Health != nil {
		if err := h.Health.Ping(r.Context()); err != nil {
			h.Log.Warn("Health check failed", "error", err)
			respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
			return
		}
	}
	respondOK(w, HealthResponse{Status: "ok"})
}

func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Settings.Get(r.Context()))
}

func (h *Handlers) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	settings, err := h.Settings.Update(r.Context(), services.SettingsPatch{
		Difficulty:      req.Difficulty,
		NumberOfDrivers: req.NumberOfDrivers,
		SoundEnabled:    req.SoundEnabled,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, settings)
}

func (h *Handlers) handleToggleSound(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.ToggleSound(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, settings)
}

func (h *Handlers) handleGetRace(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Race.State(r.Context()))
}

func (h *Handlers) handleStartRace(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Race.StartQuickRace(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, snap)
}

func (h *Handlers) handleReact(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.Race.React(r.Context())
	respondOK(w, RaceActionResponse{Accepted: ok, Race: snap})
}

func (h *Handlers) handleResetRace(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.Race.Reset(r.Context())
	respondOK(w, RaceActionResponse{Accepted: ok, Race: snap})
}

func (h *Handlers) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	difficulty, err := parseDifficultyQuery(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	history := h.Stats.History(r.Context(), difficulty)
	respondOK(w, HistoryResponse{ReactionTimes: history, Best: stats.Best(history)})
}

func (h *Handlers) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	h.Stats.ClearHistory(r.Context())
	respondDeleted(w)
}

func (h *Handlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	difficulty, err := parseDifficultyQuery(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, h.Stats.Summary(r.Context(), difficulty))
}
