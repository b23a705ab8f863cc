package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/lightsout/internal/logger"
	"github.com/abrezinsky/lightsout/internal/models"
)

// SeasonManager creates and reads championship seasons
type SeasonManager interface {
	StartSeason(ctx context.Context, d models.Difficulty) (models.ChampionshipSeason, error)
	Current() (models.ChampionshipSeason, error)
	Season(id string) (models.ChampionshipSeason, error)
	Seasons() []models.ChampionshipSeason
}

// ChampionshipService handles championship seasons
type ChampionshipService struct {
	log         logger.Logger
	manager     SeasonManager
	settings    SettingsReader
	broadcaster Broadcaster

	mu      sync.RWMutex
	baseURL string
}

// NewChampionshipService creates a new ChampionshipService
func NewChampionshipService(log logger.Logger, manager SeasonManager, settings SettingsReader) *ChampionshipService {
	return &ChampionshipService{log: log, manager: manager, settings: settings}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *ChampionshipService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetBaseURL sets the address season links are built from
func (s *ChampionshipService) SetBaseURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseURL = strings.TrimSuffix(url, "/")
}

// BaseURL returns the configured base URL
func (s *ChampionshipService) BaseURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseURL
}

// StartSeason starts a season at the configured difficulty
func (s *ChampionshipService) StartSeason(ctx context.Context) (models.ChampionshipSeason, error) {
	season, err := s.manager.StartSeason(ctx, s.settings.Settings().Difficulty)
	if err != nil {
		return models.ChampionshipSeason{}, err
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastSeason(season)
	}
	return season, nil
}

// Current returns the season in progress
func (s *ChampionshipService) Current(ctx context.Context) (models.ChampionshipSeason, error) {
	season, err := s.manager.Current()
	if err != nil {
		return models.ChampionshipSeason{}, ErrNoCurrentSeason
	}
	return season, nil
}

// List returns every season, newest first
func (s *ChampionshipService) List(ctx context.Context) []models.ChampionshipSeason {
	return s.manager.Seasons()
}

// Get returns a season by id
func (s *ChampionshipService) Get(ctx context.Context, id string) (models.ChampionshipSeason, error) {
	return s.manager.Season(id)
}

// SeasonURL returns the shareable link of a season
func (s *ChampionshipService) SeasonURL(ctx context.Context, id string) (string, error) {
	if _, err := s.manager.Season(id); err != nil {
		return "", err
	}
	base := s.BaseURL()
	if base == "" {
		return "", ErrBaseURLNotSet
	}
	return fmt.Sprintf("%s/championship/%s", base, id), nil
}

// SeasonQR returns a PNG QR code of the season link
func (s *ChampionshipService) SeasonQR(ctx context.Context, id string) ([]byte, error) {
	url, err := s.SeasonURL(ctx, id)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(url, qrcode.Medium, 256)
}
