package handlers

import "github.com/abrezinsky/lightsout/internal/models"

// SettingsUpdateRequest represents a partial settings update. Omitted fields
// keep their current value.
type SettingsUpdateRequest struct {
	Difficulty      *models.Difficulty `json:"difficulty"`
	NumberOfDrivers *int               `json:"number_of_drivers"`
	SoundEnabled    *bool              `json:"sound_enabled"`
}
