// Package sound defines the race cues and the sinks they are emitted to.
// Sinks are fire-and-forget: Play must not block and the race engine never
// depends on what a sink does with a cue.
package sound

import (
	"sync"
	"sync/atomic"

	"github.com/abrezinsky/lightsout/internal/logger"
)

// Cue names a sound effect
type Cue string

const (
	Countdown Cue = "countdown"
	LightOn   Cue = "lightOn"
	LightsOut Cue = "lightsOut"
	EngineRev Cue = "engineRev"
	JumpStart Cue = "jumpStart"
	Finish    Cue = "finish"
	Click     Cue = "click"
)

// Cues lists every cue
var Cues = []Cue{Countdown, LightOn, LightsOut, EngineRev, JumpStart, Finish, Click}

// Sink receives cues
type Sink interface {
	Play(cue Cue)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(Cue)

func (f SinkFunc) Play(cue Cue) { f(cue) }

// Nop drops every cue
var Nop Sink = SinkFunc(func(Cue) {})

// Switch gates a sink behind an enabled flag. A disabled Switch is a muted sink.
type Switch struct {
	sink    Sink
	enabled atomic.Bool
}

// NewSwitch wraps sink, initially enabled or muted
func NewSwitch(sink Sink, enabled bool) *Switch {
	s := &Switch{sink: sink}
	s.enabled.Store(enabled)
	return s
}

func (s *Switch) Play(cue Cue) {
	if s.enabled.Load() {
		s.sink.Play(cue)
	}
}

// SetEnabled turns cue delivery on or off
func (s *Switch) SetEnabled(enabled bool) { s.enabled.Store(enabled) }

// Enabled reports whether cues are delivered
func (s *Switch) Enabled() bool { return s.enabled.Load() }

// Multi fans each cue out to every sink in order
type Multi []Sink

func (m Multi) Play(cue Cue) {
	for _, s := range m {
		if s != nil {
			s.Play(cue)
		}
	}
}

// Log writes each cue to a logger at debug level
type Log struct {
	Log logger.Logger
}

func (l Log) Play(cue Cue) {
	l.Log.Debug("Cue", "cue", string(cue))
}

// Recorder keeps every cue it receives
type Recorder struct {
	mu   sync.Mutex
	cues []Cue
}

func (r *Recorder) Play(cue Cue) {
	r.mu.Lock()
	r.cues = append(r.cues, cue)
	r.mu.Unlock()
}

// Cues returns a copy of the recorded cues
func (r *Recorder) Cues() []Cue {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Cue, len(r.cues))
	copy(out, r.cues)
	return out
}

// Count returns how many times cue was recorded
func (r *Recorder) Count(cue Cue) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.cues {
		if c == cue {
			n++
		}
	}
	return n
}

// Reset forgets all recorded cues
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.cues = nil
	r.mu.Unlock()
}
