// Package store keeps the player's settings, quick race history and
// championship seasons in memory and mirrors every change to the repository
// as a JSON snapshot.
//
// The in-memory copy is authoritative. A failed write is logged and dropped;
// the next change writes the full snapshot again.
package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"time"

	"github.com/abrezinsky/lightsout/internal/errors"
	"github.com/abrezinsky/lightsout/internal/logger"
	"github.com/abrezinsky/lightsout/internal/models"
	"github.com/abrezinsky/lightsout/internal/repository"
)

// Keys of the persisted snapshots
const (
	KeySettings      = "gameSettings"
	KeyReactionTimes = "reactionTimes"
	KeyChampionships = "championships"
)

// MaxReactionTimes caps the quick race history
const MaxReactionTimes = 20

const writeTimeout = 5 * time.Second

// Store is the explicit home of all persisted game state. Safe for
// concurrent use.
type Store struct {
	log  logger.Logger
	repo repository.StateRepository

	mu        sync.RWMutex
	settings  models.GameSettings
	reactions []models.ReactionTimeRecord
	seasons   []models.ChampionshipSeason
}

// Open loads every snapshot from repo. Keys that are missing or unreadable
// fall back to their defaults.
func Open(ctx context.Context, log logger.Logger, repo repository.StateRepository) *Store {
	s := &Store{
		log:      log,
		repo:     repo,
		settings: models.DefaultSettings(),
	}

	var settings models.GameSettings
	if s.load(ctx, KeySettings, &settings) {
		if err := ValidateSettings(settings); err != nil {
			log.Warn("Stored settings are invalid, using defaults", "error", err)
		} else {
			s.settings = settings
		}
	}

	var reactions []models.ReactionTimeRecord
	if s.load(ctx, KeyReactionTimes, &reactions) {
		if len(reactions) > MaxReactionTimes {
			reactions = reactions[:MaxReactionTimes]
		}
		s.reactions = reactions
	}

	var seasons []models.ChampionshipSeason
	if s.load(ctx, KeyChampionships, &seasons) {
		s.seasons = seasons
	}

	log.Debug("State loaded",
		"difficulty", s.settings.Difficulty,
		"reaction_times", len(s.reactions),
		"seasons", len(s.seasons),
	)
	return s
}

// load decodes key into v and reports whether a value was found
func (s *Store) load(ctx context.Context, key string, v any) bool {
	raw, err := s.repo.Get(ctx, key)
	if err != nil {
		if !stderrors.Is(err, repository.ErrNotFound) {
			s.log.Warn("Failed to read state", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.log.Warn("Failed to decode state", "key", key, "error", err)
		return false
	}
	return true
}

// write persists v under key. Failures are logged and dropped.
func (s *Store) write(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("Failed to encode state", "key", key, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := s.repo.Set(ctx, key, string(data)); err != nil {
		s.log.Warn("Failed to persist state, keeping in-memory copy", "key", key, "error", err)
	}
}

// ValidateSettings checks the difficulty and the driver count bounds
func ValidateSettings(g models.GameSettings) error {
	if !g.Difficulty.Valid() {
		return errors.InvalidArgumentf("unknown difficulty %q", g.Difficulty)
	}
	if g.NumberOfDrivers < models.MinDrivers || g.NumberOfDrivers > models.MaxDrivers {
		return errors.InvalidArgumentf("number of drivers must be between %d and %d, got %d",
			models.MinDrivers, models.MaxDrivers, g.NumberOfDrivers)
	}
	return nil
}

// Settings returns the current settings
func (s *Store) Settings() models.GameSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SaveSettings validates and stores g
func (s *Store) SaveSettings(g models.GameSettings) error {
	if err := ValidateSettings(g); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = g
	s.write(KeySettings, g)
	return nil
}

// ReactionTimes returns the quick race history, newest first
func (s *Store) ReactionTimes() []models.ReactionTimeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ReactionTimeRecord, len(s.reactions))
	copy(out, s.reactions)
	return out
}

// AddReactionTime prepends r to the history, dropping the oldest records
// past MaxReactionTimes.
func (s *Store) AddReactionTime(r models.ReactionTimeRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]models.ReactionTimeRecord, 0, len(s.reactions)+1)
	next = append(next, r)
	next = append(next, s.reactions...)
	if len(next) > MaxReactionTimes {
		next = next[:MaxReactionTimes]
	}
	s.reactions = next
	s.write(KeyReactionTimes, next)
}

// ClearReactionTimes forgets the quick race history
func (s *Store) ClearReactionTimes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reactions = nil

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := s.repo.Delete(ctx, KeyReactionTimes); err != nil {
		s.log.Warn("Failed to clear reaction times", "error", err)
	}
}

// Championships returns the stored seasons, newest first
func (s *Store) Championships() []models.ChampionshipSeason {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ChampionshipSeason, len(s.seasons))
	for i, season := range s.seasons {
		out[i] = season.Clone()
	}
	return out
}

// SaveChampionships replaces the stored seasons
func (s *Store) SaveChampionships(seasons []models.ChampionshipSeason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seasons = make([]models.ChampionshipSeason, len(seasons))
	for i, season := range seasons {
		s.seasons[i] = season.Clone()
	}
	s.write(KeyChampionships, s.seasons)
}
