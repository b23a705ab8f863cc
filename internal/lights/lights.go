// Package lights runs the five-light start sequence.
//
// Lights come on one at a time every Interval. Once all five are lit the
// sequence holds for a random delay taken from the difficulty's range and
// then signals lights out. A run can be cancelled at any point before lights
// out. Each event is checked against the run's phase just before it is
// delivered, so a cancelled run delivers nothing further, including from
// inside an event callback. A callback already entered on another goroutine
// when Cancel is called still runs to completion.
package lights

import (
	"sync"
	"time"

	"github.com/abrezinsky/lightsout/internal/clock"
	"github.com/abrezinsky/lightsout/internal/models"
)

// Count is the number of start lights
const Count = 5

// Interval is the time between successive lights, for every difficulty
const Interval = 800 * time.Millisecond

// Phase is the state of a run
type Phase int

const (
	Idle Phase = iota
	Illuminating
	Holding
	Out
	Cancelled
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Illuminating:
		return "illuminating"
	case Holding:
		return "holding"
	case Out:
		return "out"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Events are the callbacks a run delivers. Nil callbacks are skipped.
// Callbacks are invoked without any lock held.
type Events struct {
	OnLight func(lit int)
	OnHold  func(delay time.Duration)
	OnGo    func(at time.Time)
}

// DelaySource draws the hold before lights out
type DelaySource interface {
	HoldDelay(d models.Difficulty) (time.Duration, error)
}

// Sequencer starts light runs on a clock
type Sequencer struct {
	clock  clock.Clock
	delays DelaySource
}

// NewSequencer creates a Sequencer
func NewSequencer(clk clock.Clock, delays DelaySource) *Sequencer {
	return &Sequencer{clock: clk, delays: delays}
}

// Run is one pass through the light sequence
type Run struct {
	mu     sync.Mutex
	clock  clock.Clock
	events Events
	phase  Phase
	lit    int
	delay  time.Duration
	timer  clock.Timer
}

// Start begins a new run at difficulty d. The hold delay is drawn here,
// once per run.
func (s *Sequencer) Start(d models.Difficulty, events Events) (*Run, error) {
	delay, err := s.delays.HoldDelay(d)
	if err != nil {
		return nil, err
	}

	r := &Run{
		clock:  s.clock,
		events: events,
		phase:  Illuminating,
		delay:  delay,
	}
	r.mu.Lock()
	r.timer = r.clock.AfterFunc(Interval, r.tick)
	r.mu.Unlock()
	return r, nil
}

func (r *Run) tick() {
	r.mu.Lock()
	if r.phase != Illuminating {
		r.mu.Unlock()
		return
	}
	r.lit++
	lit := r.lit
	holding := lit >= Count
	if holding {
		r.phase = Holding
		r.timer = r.clock.AfterFunc(r.delay, r.lightsOut)
	} else {
		r.timer = r.clock.AfterFunc(Interval, r.tick)
	}
	delay := r.delay
	phase := r.phase
	r.mu.Unlock()

	if r.events.OnLight != nil && r.in(phase) {
		r.events.OnLight(lit)
	}
	if holding && r.events.OnHold != nil && r.in(Holding) {
		r.events.OnHold(delay)
	}
}

// in reports whether the run is still in phase p
func (r *Run) in(p Phase) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase == p
}

func (r *Run) lightsOut() {
	r.mu.Lock()
	if r.phase != Holding {
		r.mu.Unlock()
		return
	}
	r.phase = Out
	r.lit = 0
	r.timer = nil
	at := r.clock.Now()
	r.mu.Unlock()

	if r.events.OnGo != nil {
		r.events.OnGo(at)
	}
}

// Cancel stops the run. It reports true when the run was cancelled before
// lights out, false when lights were already out or it was already cancelled.
func (r *Run) Cancel() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != Illuminating && r.phase != Holding {
		return false
	}
	r.phase = Cancelled
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	return true
}

// Phase returns the run's current phase
func (r *Run) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Lights returns how many lights are lit; zero once they are out
func (r *Run) Lights() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lit
}

// Delay returns the hold drawn for this run
func (r *Run) Delay() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.delay
}
