package race

import "fmt"

// State is a phase of the race state machine
type State int

const (
	Ready State = iota
	Countdown
	LightSequence
	Racing
	Results
)

var stateNames = map[State]string{
	Ready:         "ready",
	Countdown:     "countdown",
	LightSequence: "lights",
	Racing:        "racing",
	Results:       "results",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the state by name in JSON payloads
func (s State) MarshalText() ([]byte, error) {
	name, ok := stateNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown race state %d", int(s))
	}
	return []byte(name), nil
}

// UnmarshalText parses a state name
func (s *State) UnmarshalText(text []byte) error {
	for state, name := range stateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown race state %q", text)
}
