package services_test

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/abrezinsky/lightsout/internal/championship"
	"github.com/abrezinsky/lightsout/internal/clock"
	"github.com/abrezinsky/lightsout/internal/drivers"
	"github.com/abrezinsky/lightsout/internal/lights"
	"github.com/abrezinsky/lightsout/internal/logger"
	"github.com/abrezinsky/lightsout/internal/models"
	"github.com/abrezinsky/lightsout/internal/race"
	"github.com/abrezinsky/lightsout/internal/repository/mock"
	"github.com/abrezinsky/lightsout/internal/services"
	"github.com/abrezinsky/lightsout/internal/sound"
	"github.com/abrezinsky/lightsout/internal/store"
	"github.com/abrezinsky/lightsout/internal/testutil"
)

var start = time.Date(2024, 6, 30, 14, 0, 0, 0, time.UTC)

// longestStart covers the countdown, the lights and the longest hold of any difficulty
const longestStart = race.CountdownFrom*race.CountdownStep + lights.Count*lights.Interval + 3*time.Second

type recordingBroadcaster struct {
	mu       sync.Mutex
	settings []models.GameSettings
	seasons  []models.ChampionshipSeason
}

func (b *recordingBroadcaster) BroadcastSettings(s models.GameSettings) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settings = append(b.settings, s)
}

func (b *recordingBroadcaster) BroadcastSeason(s models.ChampionshipSeason) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seasons = append(b.seasons, s)
}

type env struct {
	repo    *mock.Repository
	store   *store.Store
	clock   *clock.Manual
	sound   *sound.Switch
	cues    *sound.Recorder
	manager *championship.Manager
	session *race.Session

	settings      *services.SettingsService
	races         *services.RaceService
	championships *services.ChampionshipService
	stats         *services.StatsService
	broadcaster   *recordingBroadcaster
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := logger.Nop()
	ctx := context.Background()

	e := &env{
		repo:        mock.NewRepository(testutil.NewTestRepository(t)),
		clock:       clock.NewManual(start),
		cues:        &sound.Recorder{},
		broadcaster: &recordingBroadcaster{},
	}
	e.store = store.Open(ctx, log, e.repo)
	e.sound = sound.NewSwitch(e.cues, true)

	gen := drivers.NewGenerator(rand.New(rand.NewPCG(7, 8)))
	e.manager = championship.New(championship.Config{
		Log:     log,
		Store:   e.store,
		Picker:  gen,
		Clock:   e.clock,
		Seasons: e.store.Championships(),
	})
	e.session = race.New(race.Config{
		Log:       log,
		Clock:     e.clock,
		Sequencer: lights.NewSequencer(e.clock, gen),
		Field:     gen,
		Sink:      e.sound,
	})

	e.settings = services.NewSettingsService(log, e.store, e.sound)
	e.races = services.NewRaceService(log, e.session, e.store, e.store, e.manager)
	e.championships = services.NewChampionshipService(log, e.manager, e.store)
	e.stats = services.NewStatsService(log, e.store, e.manager)

	e.settings.SetBroadcaster(e.broadcaster)
	e.races.SetBroadcaster(e.broadcaster)
	e.championships.SetBroadcaster(e.broadcaster)
	return e
}

// runToLightsOut advances the clock to the exact moment lights go out
func (e *env) runToLightsOut(t *testing.T) {
	t.Helper()
	e.clock.Advance(race.CountdownFrom*race.CountdownStep + lights.Count*lights.Interval)
	for elapsed := time.Duration(0); elapsed < longestStart; elapsed += time.Millisecond {
		if e.session.State() == race.Racing {
			return
		}
		e.clock.Advance(time.Millisecond)
	}
	t.Fatalf("expected racing, got %s", e.session.State())
}

// finishRace reacts after d and resets the session
func (e *env) finishRace(t *testing.T, d time.Duration) race.Snapshot {
	t.Helper()
	e.runToLightsOut(t)
	e.clock.Advance(d)
	snap, ok := e.races.React(context.Background())
	if !ok {
		t.Fatal("reaction not accepted")
	}
	e.races.Reset(context.Background())
	return snap
}

func patch(d *models.Difficulty, count *int, soundOn *bool) services.SettingsPatch {
	return services.SettingsPatch{Difficulty: d, NumberOfDrivers: count, SoundEnabled: soundOn}
}
