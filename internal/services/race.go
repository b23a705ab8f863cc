package services

import (
	"context"

	"github.com/abrezinsky/lightsout/internal/championship"
	"github.com/abrezinsky/lightsout/internal/errors"
	"github.com/abrezinsky/lightsout/internal/logger"
	"github.com/abrezinsky/lightsout/internal/models"
	"github.com/abrezinsky/lightsout/internal/race"
)

// SettingsReader exposes the current settings
type SettingsReader interface {
	Settings() models.GameSettings
}

// HistoryStore holds the quick race reaction history
type HistoryStore interface {
	AddReactionTime(r models.ReactionTimeRecord)
	ReactionTimes() []models.ReactionTimeRecord
	ClearReactionTimes()
}

// SeasonTracker is the championship state a race needs
type SeasonTracker interface {
	Current() (models.ChampionshipSeason, error)
	Season(id string) (models.ChampionshipSeason, error)
	CompleteRace(ctx context.Context, raceID string, results []models.RankedResult) (models.ChampionshipSeason, error)
}

// RaceService runs the player's race session
type RaceService struct {
	log         logger.Logger
	session     *race.Session
	settings    SettingsReader
	history     HistoryStore
	seasons     SeasonTracker
	broadcaster Broadcaster
}

// NewRaceService creates a new RaceService
func NewRaceService(log logger.Logger, session *race.Session, settings SettingsReader, history HistoryStore, seasons SeasonTracker) *RaceService {
	return &RaceService{
		log:      log,
		session:  session,
		settings: settings,
		history:  history,
		seasons:  seasons,
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *RaceService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// StartQuickRace starts a race with the configured difficulty and field size.
// A valid reaction is added to the history; jump starts are not.
func (s *RaceService) StartQuickRace(ctx context.Context) (race.Snapshot, error) {
	settings := s.settings.Settings()
	err := s.session.Start(race.Attempt{
		Mode:       race.ModeQuick,
		Difficulty: settings.Difficulty,
		Drivers:    settings.NumberOfDrivers,
		OnFinish:   s.recordQuickRace,
	})
	if err != nil {
		return race.Snapshot{}, err
	}
	return s.session.Snapshot(), nil
}

func (s *RaceService) recordQuickRace(o race.Outcome) []models.RankedResult {
	if o.JumpStart {
		s.log.Debug("Jump start not recorded in history")
		return nil
	}
	s.history.AddReactionTime(models.ReactionTimeRecord{
		Time:       o.ReactionTime,
		Timestamp:  o.FinishedAt.UTC(),
		Difficulty: o.Difficulty,
	})
	return nil
}

// StartChampionshipRace starts raceID of season seasonID. The season must
// be current and raceID must be its next race.
func (s *RaceService) StartChampionshipRace(ctx context.Context, seasonID, raceID string) (race.Snapshot, error) {
	season, err := s.seasons.Season(seasonID)
	if err != nil {
		return race.Snapshot{}, err
	}
	current, err := s.seasons.Current()
	if err != nil || current.ID != season.ID {
		return race.Snapshot{}, ErrSeasonNotCurrent
	}
	if season.RaceIndex(raceID) < 0 {
		return race.Snapshot{}, errors.NotFoundf("race %s not found in season %s", raceID, seasonID)
	}
	next := season.NextRace()
	if next == nil {
		return race.Snapshot{}, ErrSeasonCompleted
	}
	if next.ID != raceID {
		return race.Snapshot{}, ErrNotNextRace
	}

	err = s.session.Start(race.Attempt{
		Mode:       race.ModeChampionship,
		RaceID:     raceID,
		Difficulty: next.Difficulty,
		Drivers:    championship.RaceDrivers,
		OnFinish:   s.completeChampionshipRace,
	})
	if err != nil {
		return race.Snapshot{}, err
	}
	s.log.Info("Championship race started", "season", seasonID, "race", next.Name)
	return s.session.Snapshot(), nil
}

// completeChampionshipRace records the race with the manager, which writes
// the awarded points onto o.Results for the session to show.
func (s *RaceService) completeChampionshipRace(o race.Outcome) []models.RankedResult {
	season, err := s.seasons.CompleteRace(context.Background(), o.RaceID, o.Results)
	if err != nil {
		s.log.Error("Failed to record championship race", "race", o.RaceID, "error", err)
		return nil
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastSeason(season)
	}
	return o.Results
}

// React delivers the player's reaction and reports whether it was accepted
func (s *RaceService) React(ctx context.Context) (race.Snapshot, bool) {
	accepted := s.session.React()
	return s.session.Snapshot(), accepted
}

// Reset returns a finished race to ready and reports whether it did
func (s *RaceService) Reset(ctx context.Context) (race.Snapshot, bool) {
	reset := s.session.Reset()
	return s.session.Snapshot(), reset
}

// Abort abandons any race in progress
func (s *RaceService) Abort(ctx context.Context) {
	s.session.Abort()
}

// State returns the current race snapshot
func (s *RaceService) State(ctx context.Context) race.Snapshot {
	return s.session.Snapshot()
}
