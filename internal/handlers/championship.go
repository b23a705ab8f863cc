package handlers

import (
	"net/http"
	"strconv"

	"github.com/abrezinsky/lightsout/internal/models"
)

func (h *Handlers) withShareURL(r *http.Request, season models.ChampionshipSeason) ChampionshipResponse {
	resp := ChampionshipResponse{ChampionshipSeason: season}
	// The link is optional until the server knows its address
	if url, err := h.Championship.SeasonURL(r.Context(), season.ID); err == nil {
		resp.ShareURL = url
	}
	return resp
}

func (h *Handlers) handleListChampionships(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Championship.List(r.Context()))
}

func (h *Handlers) handleStartChampionship(w http.ResponseWriter, r *http.Request) {
	season, err := h.Championship.StartSeason(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, h.withShareURL(r, season))
}

func (h *Handlers) handleCurrentChampionship(w http.ResponseWriter, r *http.Request) {
	season, err := h.Championship.Current(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, h.withShareURL(r, season))
}

func (h *Handlers) handleGetChampionship(w http.ResponseWriter, r *http.Request) {
	season, err := h.Championship.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, h.withShareURL(r, season))
}

func (h *Handlers) handleChampionshipQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.Championship.SeasonQR(r.Context(), urlParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Write(png)
}

func (h *Handlers) handleStartChampionshipRace(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Race.StartChampionshipRace(r.Context(), urlParam(r, "id"), urlParam(r, "raceID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, snap)
}
