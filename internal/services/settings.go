package services

import (
	"context"
	"sync"

	"github.com/abrezinsky/lightsout/internal/logger"
	"github.com/abrezinsky/lightsout/internal/models"
)

// SettingsStore is the part of the store the settings service needs
type SettingsStore interface {
	Settings() models.GameSettings
	SaveSettings(g models.GameSettings) error
}

// SoundSwitch mutes or unmutes the cue sink
type SoundSwitch interface {
	SetEnabled(enabled bool)
}

// SettingsPatch is a partial settings update; nil fields are left unchanged
type SettingsPatch struct {
	Difficulty      *models.Difficulty `json:"difficulty,omitempty"`
	NumberOfDrivers *int               `json:"number_of_drivers,omitempty"`
	SoundEnabled    *bool              `json:"sound_enabled,omitempty"`
}

// SettingsService handles player preferences. Updates are serialized so a
// read-modify-save never loses a concurrent change.
type SettingsService struct {
	mu          sync.Mutex
	log         logger.Logger
	store       SettingsStore
	sound       SoundSwitch
	broadcaster Broadcaster
}

// NewSettingsService creates a new SettingsService. The sound switch is
// synced to the stored preference.
func NewSettingsService(log logger.Logger, store SettingsStore, sound SoundSwitch) *SettingsService {
	s := &SettingsService{log: log, store: store, sound: sound}
	if sound != nil {
		sound.SetEnabled(store.Settings().SoundEnabled)
	}
	return s
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *SettingsService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Get returns the current settings
func (s *SettingsService) Get(ctx context.Context) models.GameSettings {
	return s.store.Settings()
}

// Update applies patch and persists the result. Invalid values are rejected
// with InvalidArgument and nothing changes.
func (s *SettingsService) Update(ctx context.Context, patch SettingsPatch) (models.GameSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(patch)
}

func (s *SettingsService) updateLocked(patch SettingsPatch) (models.GameSettings, error) {
	next := s.store.Settings()
	if patch.Difficulty != nil {
		next.Difficulty = *patch.Difficulty
	}
	if patch.NumberOfDrivers != nil {
		next.NumberOfDrivers = *patch.NumberOfDrivers
	}
	if patch.SoundEnabled != nil {
		next.SoundEnabled = *patch.SoundEnabled
	}
	if err := s.store.SaveSettings(next); err != nil {
		return s.store.Settings(), err
	}
	s.applied(next)
	return next, nil
}

// ToggleSound flips the sound preference
func (s *SettingsService) ToggleSound(ctx context.Context) (models.GameSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	enabled := !s.store.Settings().SoundEnabled
	return s.updateLocked(SettingsPatch{SoundEnabled: &enabled})
}

func (s *SettingsService) applied(g models.GameSettings) {
	if s.sound != nil {
		s.sound.SetEnabled(g.SoundEnabled)
	}
	s.log.Debug("Settings updated",
		"difficulty", g.Difficulty,
		"drivers", g.NumberOfDrivers,
		"sound", g.SoundEnabled,
	)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastSettings(g)
	}
}
