package services

import (
	"context"

	"github.com/abrezinsky/lightsout/internal/logger"
	"github.com/abrezinsky/lightsout/internal/models"
	"github.com/abrezinsky/lightsout/internal/stats"
)

// SeasonLister lists championship seasons
type SeasonLister interface {
	Seasons() []models.ChampionshipSeason
}

// StatsService reports player statistics
type StatsService struct {
	log     logger.Logger
	history HistoryStore
	seasons SeasonLister
}

// NewStatsService creates a new StatsService
func NewStatsService(log logger.Logger, history HistoryStore, seasons SeasonLister) *StatsService {
	return &StatsService{log: log, history: history, seasons: seasons}
}

// Summary aggregates history and championships, optionally at one difficulty
func (s *StatsService) Summary(ctx context.Context, difficulty *models.Difficulty) models.Statistics {
	return stats.Summarize(s.history.ReactionTimes(), s.seasons.Seasons(), difficulty)
}

// History returns quick race records, newest first
func (s *StatsService) History(ctx context.Context, difficulty *models.Difficulty) []models.ReactionTimeRecord {
	records := s.history.ReactionTimes()
	if difficulty != nil {
		return stats.Filter(records, *difficulty)
	}
	return records
}

// ClearHistory removes every quick race record
func (s *StatsService) ClearHistory(ctx context.Context) {
	s.history.ClearReactionTimes()
	s.log.Info("Reaction time history cleared")
}

// Best returns the fastest quick race record, or nil
func (s *StatsService) Best(ctx context.Context) *models.ReactionTimeRecord {
	return stats.Best(s.history.ReactionTimes())
}
