package services

import (
	"context"

	"github.com/abrezinsky/lightsout/internal/models"
	"github.com/abrezinsky/lightsout/internal/race"
)

// Broadcaster pushes state changes to connected clients
type Broadcaster interface {
	BroadcastSettings(settings models.GameSettings)
	BroadcastSeason(season models.ChampionshipSeason)
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	Get(ctx context.Context) models.GameSettings
	Update(ctx context.Context, patch SettingsPatch) (models.GameSettings, error)
	ToggleSound(ctx context.Context) (models.GameSettings, error)
	SetBroadcaster(b Broadcaster)
}

// RaceServicer defines the interface for race operations
type RaceServicer interface {
	StartQuickRace(ctx context.Context) (race.Snapshot, error)
	StartChampionshipRace(ctx context.Context, seasonID, raceID string) (race.Snapshot, error)
	React(ctx context.Context) (race.Snapshot, bool)
	Reset(ctx context.Context) (race.Snapshot, bool)
	Abort(ctx context.Context)
	State(ctx context.Context) race.Snapshot
	SetBroadcaster(b Broadcaster)
}

// ChampionshipServicer defines the interface for championship operations
type ChampionshipServicer interface {
	StartSeason(ctx context.Context) (models.ChampionshipSeason, error)
	Current(ctx context.Context) (models.ChampionshipSeason, error)
	List(ctx context.Context) []models.ChampionshipSeason
	Get(ctx context.Context, id string) (models.ChampionshipSeason, error)
	SeasonURL(ctx context.Context, id string) (string, error)
	SeasonQR(ctx context.Context, id string) ([]byte, error)
	SetBaseURL(url string)
	BaseURL() string
	SetBroadcaster(b Broadcaster)
}

// StatsServicer defines the interface for statistics operations
type StatsServicer interface {
	Summary(ctx context.Context, difficulty *models.Difficulty) models.Statistics
	History(ctx context.Context, difficulty *models.Difficulty) []models.ReactionTimeRecord
	ClearHistory(ctx context.Context)
	Best(ctx context.Context) *models.ReactionTimeRecord
}

// Ensure concrete types implement interfaces
var (
	_ SettingsServicer     = (*SettingsService)(nil)
	_ RaceServicer         = (*RaceService)(nil)
	_ ChampionshipServicer = (*ChampionshipService)(nil)
	_ StatsServicer        = (*StatsService)(nil)
)
