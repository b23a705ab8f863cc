// Package race drives a single reaction-time attempt:
//
//	Ready -> Countdown -> LightSequence -> Racing -> Results -> Ready
//
// Reacting during LightSequence is a jump start and ends the attempt with
// the penalty time. Reacting during Racing measures the time since lights
// out. Every transition advances an epoch; timer callbacks from an earlier
// epoch are dropped.
package race

import (
	"sync"
	"time"

	"github.com/abrezinsky/lightsout/internal/clock"
	"github.com/abrezinsky/lightsout/internal/errors"
	"github.com/abrezinsky/lightsout/internal/lights"
	"github.com/abrezinsky/lightsout/internal/logger"
	"github.com/abrezinsky/lightsout/internal/models"
	"github.com/abrezinsky/lightsout/internal/ranking"
	"github.com/abrezinsky/lightsout/internal/sound"
)

// CountdownFrom is the first number of the pre-start countdown
const CountdownFrom = 3

// CountdownStep is the time between countdown numbers
const CountdownStep = time.Second

// FieldGenerator produces the AI field for an attempt
type FieldGenerator interface {
	Generate(count int, d models.Difficulty) ([]models.DriverEntry, error)
}

// Attempt configures one run from Ready to Results
type Attempt struct {
	Mode       Mode
	RaceID     string // championship race, empty for quick races
	Difficulty models.Difficulty
	Drivers    int
	// OnFinish receives the outcome when the attempt reaches Results. The
	// results slice belongs to the callback. A non-nil return replaces the
	// session's results, so points awarded by the callback show up in
	// later snapshots.
	OnFinish func(Outcome) []models.RankedResult
}

// Mode tells the owner of an attempt apart
type Mode string

const (
	ModeQuick        Mode = "quick"
	ModeChampionship Mode = "championship"
)

// Outcome is the result of a finished attempt
type Outcome struct {
	Mode         Mode                  `json:"mode"`
	RaceID       string                `json:"race_id,omitempty"`
	Difficulty   models.Difficulty     `json:"difficulty"`
	JumpStart    bool                  `json:"jump_start"`
	ReactionTime float64               `json:"reaction_time"`
	Results      []models.RankedResult `json:"results"`
	FinishedAt   time.Time             `json:"finished_at"`
}

// Snapshot is a point-in-time view of a session
type Snapshot struct {
	State        State                 `json:"state"`
	Mode         Mode                  `json:"mode,omitempty"`
	RaceID       string                `json:"race_id,omitempty"`
	Difficulty   models.Difficulty     `json:"difficulty,omitempty"`
	Countdown    int                   `json:"countdown"`
	Lights       int                   `json:"lights"`
	JumpStart    bool                  `json:"jump_start"`
	ReactionTime float64               `json:"reaction_time"`
	Results      []models.RankedResult `json:"results,omitempty"`
}

// Config holds a Session's collaborators
type Config struct {
	Log       logger.Logger
	Clock     clock.Clock
	Sequencer *lights.Sequencer
	Field     FieldGenerator
	Sink      sound.Sink
	// OnChange is called after every transition with the new snapshot. The
	// Results snapshot is published after OnFinish returns and is skipped if
	// the session has already moved on.
	OnChange func(Snapshot)
}

// Session is the race state machine. All methods are safe for concurrent use.
type Session struct {
	log      logger.Logger
	clock    clock.Clock
	seq      *lights.Sequencer
	field    FieldGenerator
	sink     sound.Sink
	onChange func(Snapshot)

	mu        sync.Mutex
	state     State
	epoch     uint64
	attempt   Attempt
	ai        []models.DriverEntry
	countdown int
	timer     clock.Timer
	run       *lights.Run
	lit       int
	startedAt time.Time
	outcome   *Outcome
}

// New creates a Session in the Ready state
func New(cfg Config) *Session {
	sink := cfg.Sink
	if sink == nil {
		sink = sound.Nop
	}
	return &Session{
		log:      cfg.Log,
		clock:    cfg.Clock,
		seq:      cfg.Sequencer,
		field:    cfg.Field,
		sink:     sink,
		onChange: cfg.OnChange,
		state:    Ready,
	}
}

// effects are applied after the session lock is released
type effects struct {
	cues     []sound.Cue
	changed  bool
	snapshot Snapshot
	finish   func(Outcome) []models.RankedResult
	outcome  Outcome
	epoch    uint64
}

func (s *Session) apply(fx *effects) {
	for _, cue := range fx.cues {
		s.sink.Play(cue)
	}
	if fx.finish != nil {
		scored := fx.finish(fx.outcome)
		if !s.adoptResults(fx, scored) {
			return
		}
	}
	if fx.changed && s.onChange != nil {
		s.onChange(fx.snapshot)
	}
}

// adoptResults stores the results returned by OnFinish and refreshes the
// pending snapshot. It reports false when the session has moved on since the
// race finished, in which case the snapshot is stale.
func (s *Session) adoptResults(fx *effects, results []models.RankedResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != fx.epoch || s.outcome == nil {
		return false
	}
	if results != nil {
		s.outcome.Results = results
		fx.snapshot = s.snapshotLocked()
	}
	return true
}

// markChanged records the post-transition snapshot. Caller holds s.mu.
func (s *Session) markChanged(fx *effects) {
	fx.changed = true
	fx.snapshot = s.snapshotLocked()
}

// Start moves a Ready session into the countdown. The AI field is generated
// here, so a bad driver count fails before any timer is scheduled.
func (s *Session) Start(a Attempt) error {
	var fx effects

	s.mu.Lock()
	if s.state != Ready {
		state := s.state
		s.mu.Unlock()
		return errors.InvalidStatef("cannot start a race while %s", state)
	}
	field, err := s.field.Generate(a.Drivers, a.Difficulty)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.attempt = a
	s.ai = field
	s.outcome = nil
	s.startedAt = time.Time{}
	s.lit = 0
	s.countdown = CountdownFrom
	s.enter(Countdown)
	s.scheduleCountdown()
	fx.cues = append(fx.cues, sound.Countdown)
	s.markChanged(&fx)
	s.mu.Unlock()

	s.log.Debug("Race started", "mode", a.Mode, "difficulty", a.Difficulty, "drivers", a.Drivers)
	s.apply(&fx)
	return nil
}

// enter switches state and invalidates every callback of the previous epoch.
// Caller holds s.mu.
func (s *Session) enter(state State) {
	s.cancelTimersLocked()
	s.epoch++
	s.state = state
}

func (s *Session) cancelTimersLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.run != nil {
		s.run.Cancel()
		s.run = nil
	}
}

// scheduleCountdown arms the next countdown step. Caller holds s.mu.
func (s *Session) scheduleCountdown() {
	epoch := s.epoch
	s.timer = s.clock.AfterFunc(CountdownStep, func() { s.countdownTick(epoch) })
}

func (s *Session) countdownTick(epoch uint64) {
	var fx effects

	s.mu.Lock()
	if epoch != s.epoch || s.state != Countdown {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.countdown--
	if s.countdown > 0 {
		s.scheduleCountdown()
		fx.cues = append(fx.cues, sound.Countdown)
	} else {
		s.startLightsLocked()
	}
	s.markChanged(&fx)
	s.mu.Unlock()

	s.apply(&fx)
}

// startLightsLocked enters LightSequence and hands timing to the sequencer.
// Caller holds s.mu.
func (s *Session) startLightsLocked() {
	s.enter(LightSequence)
	epoch := s.epoch

	run, err := s.seq.Start(s.attempt.Difficulty, lights.Events{
		OnLight: func(n int) { s.lightOn(epoch, n) },
		OnHold:  func(time.Duration) { s.hold(epoch) },
		OnGo:    func(at time.Time) { s.lightsOut(epoch, at) },
	})
	if err != nil {
		s.log.Error("Light sequence failed to start", "error", err)
		s.clearLocked()
		return
	}
	s.run = run
}

func (s *Session) lightOn(epoch uint64, n int) {
	var fx effects

	s.mu.Lock()
	if epoch != s.epoch || s.state != LightSequence {
		s.mu.Unlock()
		return
	}
	s.lit = n
	fx.cues = append(fx.cues, sound.LightOn)
	s.markChanged(&fx)
	s.mu.Unlock()

	s.apply(&fx)
}

func (s *Session) hold(epoch uint64) {
	s.mu.Lock()
	current := epoch == s.epoch && s.state == LightSequence
	s.mu.Unlock()

	if current {
		s.sink.Play(sound.EngineRev)
	}
}

func (s *Session) lightsOut(epoch uint64, at time.Time) {
	var fx effects

	s.mu.Lock()
	if epoch != s.epoch || s.state != LightSequence {
		s.mu.Unlock()
		return
	}
	// The sequencer has finished; drop it so enter does not cancel it.
	s.run = nil
	s.enter(Racing)
	s.startedAt = at
	s.lit = 0
	fx.cues = append(fx.cues, sound.LightsOut)
	s.markChanged(&fx)
	s.mu.Unlock()

	s.apply(&fx)
}

// React is the player's reaction. It reports whether the reaction was
// accepted; reactions in Ready, Countdown or Results are ignored.
func (s *Session) React() bool {
	var fx effects

	s.mu.Lock()
	switch s.state {
	case LightSequence:
		// Cancel first so no late light or lights-out can follow.
		s.cancelTimersLocked()
		fx.cues = append(fx.cues, sound.JumpStart)
		s.finishLocked(&fx, true, models.JumpStartPenalty)
	case Racing:
		elapsed := s.clock.Now().Sub(s.startedAt)
		fx.cues = append(fx.cues, sound.Finish)
		s.finishLocked(&fx, false, Seconds(elapsed))
	default:
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	s.apply(&fx)
	return true
}

// finishLocked ranks the field and enters Results. Caller holds s.mu.
func (s *Session) finishLocked(fx *effects, jumpStart bool, userTime float64) {
	entries := make([]models.DriverEntry, 0, len(s.ai)+1)
	entries = append(entries, s.ai...)
	entries = append(entries, models.DriverEntry{Name: models.UserName, Time: userTime})

	results, err := ranking.Rank(entries)
	if err != nil {
		s.log.Error("Ranking failed, abandoning race", "error", err)
		s.clearLocked()
		s.markChanged(fx)
		return
	}

	if jumpStart {
		s.startedAt = time.Time{}
	}
	s.enter(Results)
	s.lit = 0
	outcome := Outcome{
		Mode:         s.attempt.Mode,
		RaceID:       s.attempt.RaceID,
		Difficulty:   s.attempt.Difficulty,
		JumpStart:    jumpStart,
		ReactionTime: userTime,
		Results:      results,
		FinishedAt:   s.clock.Now(),
	}
	s.outcome = &outcome
	s.markChanged(fx)

	if s.attempt.OnFinish != nil {
		fx.finish = s.attempt.OnFinish
		handed := outcome
		handed.Results = models.CloneResults(results)
		fx.outcome = handed
		fx.epoch = s.epoch
	}

	s.log.Info("Race finished",
		"mode", outcome.Mode,
		"difficulty", outcome.Difficulty,
		"jump_start", jumpStart,
		"reaction_time", userTime,
	)
}

// Reset returns a finished session to Ready. It is ignored outside Results
// and reports whether it took effect.
func (s *Session) Reset() bool {
	var fx effects

	s.mu.Lock()
	if s.state != Results {
		s.mu.Unlock()
		return false
	}
	s.clearLocked()
	fx.cues = append(fx.cues, sound.Click)
	s.markChanged(&fx)
	s.mu.Unlock()

	s.apply(&fx)
	return true
}

// Abort cancels whatever the session is doing and returns it to Ready
// without delivering an outcome.
func (s *Session) Abort() {
	var fx effects

	s.mu.Lock()
	if s.state == Ready {
		s.mu.Unlock()
		return
	}
	s.clearLocked()
	s.markChanged(&fx)
	s.mu.Unlock()

	s.apply(&fx)
}

// clearLocked enters Ready and forgets the attempt. Caller holds s.mu.
func (s *Session) clearLocked() {
	s.enter(Ready)
	s.attempt = Attempt{}
	s.ai = nil
	s.outcome = nil
	s.startedAt = time.Time{}
	s.lit = 0
	s.countdown = 0
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StartedAt returns the lights-out timestamp of the current attempt, zero
// if lights have not gone out or the attempt was a jump start.
func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// Snapshot returns a copy of the session's observable state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:      s.state,
		Mode:       s.attempt.Mode,
		RaceID:     s.attempt.RaceID,
		Difficulty: s.attempt.Difficulty,
		Lights:     s.lit,
	}
	if s.state == Countdown {
		snap.Countdown = s.countdown
	}
	if s.outcome != nil {
		snap.Mode = s.outcome.Mode
		snap.RaceID = s.outcome.RaceID
		snap.Difficulty = s.outcome.Difficulty
		snap.JumpStart = s.outcome.JumpStart
		snap.ReactionTime = s.outcome.ReactionTime
		snap.Results = models.CloneResults(s.outcome.Results)
	}
	return snap
}

// Seconds converts an elapsed duration to seconds at millisecond precision
func Seconds(d time.Duration) float64 {
	return float64(d.Round(time.Millisecond).Milliseconds()) / 1000
}
