package handlers

import (
	"github.com/abrezinsky/lightsout/internal/models"
	"github.com/abrezinsky/lightsout/internal/race"
)

// HealthResponse is the response for the health check
type HealthResponse struct {
	Status string `json:"status"`
}

// RaceActionResponse is the response for react and reset. Accepted is false
// when the action did not apply to the current state.
type RaceActionResponse struct {
	Accepted bool          `json:"accepted"`
	Race     race.Snapshot `json:"race"`
}

// HistoryResponse is the response for the quick race history
type HistoryResponse struct {
	ReactionTimes []models.ReactionTimeRecord `json:"reaction_times"`
	Best          *models.ReactionTimeRecord  `json:"best"`
}

// ChampionshipResponse wraps a season with its share link
type ChampionshipResponse struct {
	models.ChampionshipSeason
	ShareURL string `json:"share_url,omitempty"`
}
