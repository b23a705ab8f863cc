package app

import (
	"context"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/lightsout/internal/championship"
	"github.com/abrezinsky/lightsout/internal/clock"
	"github.com/abrezinsky/lightsout/internal/drivers"
	"github.com/abrezinsky/lightsout/internal/handlers"
	"github.com/abrezinsky/lightsout/internal/lights"
	"github.com/abrezinsky/lightsout/internal/logger"
	"github.com/abrezinsky/lightsout/internal/models"
	"github.com/abrezinsky/lightsout/internal/race"
	"github.com/abrezinsky/lightsout/internal/repository"
	"github.com/abrezinsky/lightsout/internal/services"
	"github.com/abrezinsky/lightsout/internal/sound"
	"github.com/abrezinsky/lightsout/internal/store"
	"github.com/abrezinsky/lightsout/internal/websocket"
)

const shutdownTimeout = 5 * time.Second

// Config holds the application settings chosen at startup
type Config struct {
	DBPath      string
	TemplatesFS fs.FS
	StaticFS    fs.FS
	// Clock drives race timing; defaults to the wall clock
	Clock clock.Clock
	// Rand drives the AI field and hold delays; defaults to a random seed
	Rand *rand.Rand
}

// App holds all application dependencies
type App struct {
	log           logger.Logger
	repo          *repository.Repository
	store         *store.Store
	sound         *sound.Switch
	session       *race.Session
	hub           *websocket.Hub
	settings      *services.SettingsService
	races         *services.RaceService
	championships *services.ChampionshipService
	handlers      *handlers.Handlers

	mu      sync.Mutex
	server  *http.Server
	baseURL string
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg Config) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	a := &App{log: log, repo: repo}
	a.store = store.Open(context.Background(), log, repo)

	// The hub is created last; cues and race changes reach it through closures
	toClients := sound.SinkFunc(func(cue sound.Cue) { a.hub.Play(cue) })
	a.sound = sound.NewSwitch(sound.Multi{toClients, sound.Log{Log: log}}, a.store.Settings().SoundEnabled)

	gen := drivers.NewGenerator(rng)
	manager := championship.New(championship.Config{
		Log:     log,
		Store:   a.store,
		Picker:  gen,
		Clock:   clk,
		Seasons: a.store.Championships(),
	})
	a.session = race.New(race.Config{
		Log:       log,
		Clock:     clk,
		Sequencer: lights.NewSequencer(clk, gen),
		Field:     gen,
		Sink:      a.sound,
		OnChange:  func(s race.Snapshot) { a.hub.BroadcastRaceState(s) },
	})

	// Initialize services
	a.settings = services.NewSettingsService(log, a.store, a.sound)
	a.races = services.NewRaceService(log, a.session, a.store, a.store, manager)
	a.championships = services.NewChampionshipService(log, manager, a.store)
	statsService := services.NewStatsService(log, a.store, manager)

	// Initialize WebSocket hub with DI
	a.hub = websocket.New(log, a.races)
	a.hub.Start()
	a.settings.SetBroadcaster(a.hub)
	a.races.SetBroadcaster(a.hub)
	a.championships.SetBroadcaster(a.hub)

	h, err := handlers.New(
		a.settings,
		a.races,
		a.championships,
		statsService,
		repo,
		a.hub.ServeWs,
		cfg.TemplatesFS,
		handlers.NewStaticServer(cfg.StaticFS),
		log,
	)
	if err != nil {
		a.hub.Stop()
		repo.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}
	a.handlers = h

	return a, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// BaseURL returns the address the game is served on, once Run has started
func (a *App) BaseURL() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.baseURL
}

// SetBaseURL sets the address used for links and QR codes
func (a *App) SetBaseURL(url string) {
	a.mu.Lock()
	a.baseURL = url
	a.mu.Unlock()
	a.championships.SetBaseURL(url)
}

// Run starts the HTTP server and blocks until it stops. It returns nil after
// Close.
func (a *App) Run(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return a.Serve(ln)
}

// Serve serves HTTP on ln. The base URL uses the detected LAN address and the
// listener's port.
func (a *App) Serve(ln net.Listener) error {
	port := "80"
	if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
		port = fmt.Sprint(tcp.Port)
	}
	ip := getPreferredIP(realNetworkProvider{})
	a.SetBaseURL(fmt.Sprintf("http://%s", net.JoinHostPort(ip, port)))

	srv := &http.Server{Handler: a.Router(), ReadHeaderTimeout: 10 * time.Second}
	a.mu.Lock()
	a.server = srv
	a.mu.Unlock()

	a.log.Info("Server starting", "url", a.BaseURL())
	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	a.races.Abort(context.Background())

	a.mu.Lock()
	srv := a.server
	a.mu.Unlock()
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.log.Warn("Server shutdown incomplete", "error", err)
		}
	}

	a.hub.Stop()
	if err := a.repo.Close(); err != nil {
		a.log.Warn("Failed to close database", "error", err)
	}
}

// ToggleSound flips the sound setting and returns the new value
func (a *App) ToggleSound() (bool, error) {
	g, err := a.settings.ToggleSound(context.Background())
	if err != nil {
		return false, err
	}
	return g.SoundEnabled, nil
}

// CurrentSettings returns the persisted player settings
func (a *App) CurrentSettings() models.GameSettings {
	return a.settings.Get(context.Background())
}
