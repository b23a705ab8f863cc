// Package championship manages multi-race seasons: scheduling, points and
// standings.
package championship

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/abrezinsky/lightsout/internal/clock"
	"github.com/abrezinsky/lightsout/internal/errors"
	"github.com/abrezinsky/lightsout/internal/logger"
	"github.com/abrezinsky/lightsout/internal/models"
)

// RacesPerSeason is the number of races scheduled in a season
const RacesPerSeason = 5

// RaceDrivers is the AI field size of every championship race
const RaceDrivers = 5

// Points awarded by finishing position; positions past the table score 0
var Points = []int{25, 18, 15, 12, 10, 8, 6, 4, 2, 1}

// RaceCatalog lists the Grands Prix a season is drawn from
var RaceCatalog = []string{
	"Monaco Grand Prix",
	"British Grand Prix",
	"Italian Grand Prix",
	"Belgian Grand Prix",
	"Japanese Grand Prix",
	"Brazilian Grand Prix",
	"Abu Dhabi Grand Prix",
	"Australian Grand Prix",
	"Spanish Grand Prix",
	"Canadian Grand Prix",
}

// PointsFor returns the points for a 1-based finishing position
func PointsFor(position int) int {
	if position < 1 || position > len(Points) {
		return 0
	}
	return Points[position-1]
}

// Persister receives the full season collection after every change
type Persister interface {
	SaveChampionships(seasons []models.ChampionshipSeason)
}

// Picker chooses n distinct names at random
type Picker interface {
	Pick(names []string, n int) []string
}

// Config holds a Manager's collaborators and initial state
type Config struct {
	Log    logger.Logger
	Store  Persister
	Picker Picker
	Clock  clock.Clock
	// NewID generates season and race ids; defaults to uuid.NewString
	NewID func() string
	// Seasons is the loaded collection, newest first
	Seasons []models.ChampionshipSeason
}

// Manager owns the season collection. Safe for concurrent use.
type Manager struct {
	log    logger.Logger
	store  Persister
	picker Picker
	clock  clock.Clock
	newID  func() string

	mu      sync.RWMutex
	seasons []models.ChampionshipSeason
	current string
}

// New creates a Manager. The current season is the first incomplete season
// of the loaded collection.
func New(cfg Config) *Manager {
	m := &Manager{
		log:    cfg.Log,
		store:  cfg.Store,
		picker: cfg.Picker,
		clock:  cfg.Clock,
		newID:  cfg.NewID,
	}
	if m.newID == nil {
		m.newID = uuid.NewString
	}
	m.seasons = make([]models.ChampionshipSeason, len(cfg.Seasons))
	for i, s := range cfg.Seasons {
		m.seasons[i] = s.Clone()
	}
	for _, s := range m.seasons {
		if !s.Completed {
			m.current = s.ID
			break
		}
	}
	return m
}

// StartSeason schedules a new season at difficulty d and makes it current.
// A previously current season is kept as is, even when incomplete.
func (m *Manager) StartSeason(ctx context.Context, d models.Difficulty) (models.ChampionshipSeason, error) {
	if err := ctx.Err(); err != nil {
		return models.ChampionshipSeason{}, err
	}
	if !d.Valid() {
		return models.ChampionshipSeason{}, errors.InvalidArgumentf("unknown difficulty %q", d)
	}

	now := m.clock.Now().UTC()
	names := m.picker.Pick(RaceCatalog, RacesPerSeason)
	races := make([]models.ChampionshipRace, len(names))
	for i, name := range names {
		races[i] = models.ChampionshipRace{
			ID:            m.newID(),
			Name:          name,
			ScheduledDate: now.AddDate(0, 0, i),
			Difficulty:    d,
		}
	}
	season := models.ChampionshipSeason{
		ID:        m.newID(),
		Name:      fmt.Sprintf("F1 Season %d", now.Year()),
		Races:     races,
		Standings: []models.ChampionshipStanding{},
	}

	m.mu.Lock()
	if prev := m.findLocked(m.current); prev >= 0 && !m.seasons[prev].Completed {
		m.log.Warn("Starting a new season while another is incomplete", "previous", m.current)
	}
	m.seasons = append([]models.ChampionshipSeason{season}, m.seasons...)
	m.current = season.ID
	m.persistLocked()
	m.mu.Unlock()

	m.log.Info("Season started", "season", season.ID, "difficulty", d, "races", len(races))
	return season.Clone(), nil
}

// CompleteRace records results for a race of the current season, awards
// points, updates standings and advances the season. Points are written onto
// results as well as the stored copy. Nothing changes when an error is
// returned.
func (m *Manager) CompleteRace(ctx context.Context, raceID string, results []models.RankedResult) (models.ChampionshipSeason, error) {
	if err := ctx.Err(); err != nil {
		return models.ChampionshipSeason{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.findLocked(m.current)
	if idx < 0 {
		return models.ChampionshipSeason{}, errors.NotFound("no current championship season")
	}
	season := m.seasons[idx].Clone()
	raceIdx := season.RaceIndex(raceID)
	if raceIdx < 0 {
		return models.ChampionshipSeason{}, errors.NotFoundf("race %s is not part of the current season", raceID)
	}
	race := &season.Races[raceIdx]
	if race.Completed {
		return models.ChampionshipSeason{}, errors.InvalidStatef("race %s is already completed", raceID)
	}

	for i := range results {
		pts := PointsFor(results[i].Position)
		results[i].Points = &pts
		season.Standings = upsertStanding(season.Standings, results[i], pts)
	}

	race.Results = models.CloneResults(results)
	race.Completed = true
	race.UserReactionTime = 0
	if user := race.UserResult(); user != nil {
		race.UserReactionTime = user.Time
	}
	sort.SliceStable(season.Standings, func(i, j int) bool {
		return season.Standings[i].Points > season.Standings[j].Points
	})

	season.CurrentRaceIndex = raceIdx + 1
	season.Completed = season.CurrentRaceIndex >= len(season.Races)

	m.seasons[idx] = season
	m.persistLocked()

	m.log.Info("Championship race completed",
		"season", season.ID,
		"race", race.Name,
		"user_time", race.UserReactionTime,
		"season_completed", season.Completed,
	)
	return season.Clone(), nil
}

func upsertStanding(standings []models.ChampionshipStanding, r models.RankedResult, pts int) []models.ChampionshipStanding {
	for i := range standings {
		s := &standings[i]
		if s.DriverName != r.Name {
			continue
		}
		s.Points += pts
		s.RacesEntered++
		if r.Position < s.BestPosition {
			s.BestPosition = r.Position
		}
		return standings
	}
	return append(standings, models.ChampionshipStanding{
		DriverName:   r.Name,
		Points:       pts,
		IsUser:       r.IsUser,
		BestPosition: r.Position,
		RacesEntered: 1,
	})
}

// Current returns the active season
func (m *Manager) Current() (models.ChampionshipSeason, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := m.findLocked(m.current)
	if idx < 0 {
		return models.ChampionshipSeason{}, errors.NotFound("no current championship season")
	}
	return m.seasons[idx].Clone(), nil
}

// Season returns the season with the given id
func (m *Manager) Season(id string) (models.ChampionshipSeason, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := m.findLocked(id)
	if idx < 0 {
		return models.ChampionshipSeason{}, errors.NotFoundf("season %s not found", id)
	}
	return m.seasons[idx].Clone(), nil
}

// Seasons returns every season, newest first
func (m *Manager) Seasons() []models.ChampionshipSeason {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneAll(m.seasons)
}

// NextRace returns the current season's next unplayed race
func (m *Manager) NextRace() (models.ChampionshipRace, error) {
	season, err := m.Current()
	if err != nil {
		return models.ChampionshipRace{}, err
	}
	next := season.NextRace()
	if next == nil {
		return models.ChampionshipRace{}, errors.InvalidStatef("season %s is completed", season.ID)
	}
	return *next, nil
}

func (m *Manager) findLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range m.seasons {
		if m.seasons[i].ID == id {
			return i
		}
	}
	return -1
}

// persistLocked hands a copy of the collection to the store. Caller holds m.mu.
func (m *Manager) persistLocked() {
	if m.store != nil {
		m.store.SaveChampionships(cloneAll(m.seasons))
	}
}

func cloneAll(seasons []models.ChampionshipSeason) []models.ChampionshipSeason {
	out := make([]models.ChampionshipSeason, len(seasons))
	for i, s := range seasons {
		out[i] = s.Clone()
	}
	return out
}
