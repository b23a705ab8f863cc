package models

import (
	"fmt"
	"strings"
	"time"
)

// UserName is the reserved driver name of the human player
const UserName = "You"

// JumpStartPenalty is the time, in seconds, recorded for a jump start
const JumpStartPenalty = 5.0

// Difficulty selects AI reaction ranges and the lights-out hold delay
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties lists every supported difficulty, easiest first
var Difficulties = []Difficulty{Easy, Medium, Hard}

// Valid reports whether d is one of the known difficulties
func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// ParseDifficulty converts user input to a Difficulty (case-insensitive)
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
	return d, nil
}

// DriverEntry is one competitor's time for a single race attempt
type DriverEntry struct {
	Name string  `json:"name"`
	Time float64 `json:"time"` // seconds
}

// RankedResult is a DriverEntry placed on the leaderboard
type RankedResult struct {
	Name     string  `json:"name"`
	Time     float64 `json:"time"`
	Position int     `json:"position"`
	IsUser   bool    `json:"is_user"`
	Points   *int    `json:"points,omitempty"`
}

// ReactionTimeRecord is one entry of the quick race history
type ReactionTimeRecord struct {
	Time       float64    `json:"time"`
	Timestamp  time.Time  `json:"timestamp"`
	Difficulty Difficulty `json:"difficulty"`
}

// ChampionshipRace is one scheduled race of a season
type ChampionshipRace struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	ScheduledDate    time.Time      `json:"scheduled_date"`
	Difficulty       Difficulty     `json:"difficulty"`
	Results          []RankedResult `json:"results"`
	UserReactionTime float64        `json:"user_reaction_time"`
	Completed        bool           `json:"completed"`
}

// UserResult returns the player's result for the race, or nil
func (r ChampionshipRace) UserResult() *RankedResult {
	for i := range r.Results {
		if r.Results[i].IsUser {
			return &r.Results[i]
		}
	}
	return nil
}

// ChampionshipStanding is a driver's cumulative record within a season
type ChampionshipStanding struct {
	DriverName   string `json:"driver_name"`
	Points       int    `json:"points"`
	IsUser       bool   `json:"is_user"`
	BestPosition int    `json:"best_position"`
	RacesEntered int    `json:"races_entered"`
}

// ChampionshipSeason is a fixed schedule of races plus accumulated standings.
// Completed is true iff CurrentRaceIndex >= len(Races).
type ChampionshipSeason struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	Races            []ChampionshipRace     `json:"races"`
	Standings        []ChampionshipStanding `json:"standings"`
	CurrentRaceIndex int                    `json:"current_race_index"`
	Completed        bool                   `json:"completed"`
}

// NextRace returns the next unplayed race, or nil when the season is over
func (s *ChampionshipSeason) NextRace() *ChampionshipRace {
	if s.CurrentRaceIndex < 0 || s.CurrentRaceIndex >= len(s.Races) {
		return nil
	}
	return &s.Races[s.CurrentRaceIndex]
}

// RaceIndex returns the index of the race with the given id, or -1
func (s *ChampionshipSeason) RaceIndex(raceID string) int {
	for i := range s.Races {
		if s.Races[i].ID == raceID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the season
func (s ChampionshipSeason) Clone() ChampionshipSeason {
	out := s
	out.Races = make([]ChampionshipRace, len(s.Races))
	for i, race := range s.Races {
		race.Results = CloneResults(race.Results)
		out.Races[i] = race
	}
	out.Standings = make([]ChampionshipStanding, len(s.Standings))
	copy(out.Standings, s.Standings)
	return out
}

// CloneResults deep-copies a result slice including points
func CloneResults(results []RankedResult) []RankedResult {
	if results == nil {
		return nil
	}
	out := make([]RankedResult, len(results))
	for i, r := range results {
		if r.Points != nil {
			p := *r.Points
			r.Points = &p
		}
		out[i] = r
	}
	return out
}

// GameSettings are the persisted player preferences
type GameSettings struct {
	Difficulty      Difficulty `json:"difficulty"`
	NumberOfDrivers int        `json:"number_of_drivers"`
	SoundEnabled    bool       `json:"sound_enabled"`
}

// MinDrivers and MaxDrivers bound the quick race AI field
const (
	MinDrivers = 1
	MaxDrivers = 10
)

// DefaultSettings returns the settings used when nothing is stored
func DefaultSettings() GameSettings {
	return GameSettings{
		Difficulty:      Medium,
		NumberOfDrivers: 5,
		SoundEnabled:    true,
	}
}

// Statistics summarises quick race history and championship results
type Statistics struct {
	TotalRaces  int     `json:"total_races"`
	BestTime    float64 `json:"best_time"`
	AverageTime float64 `json:"average_time"`
	Wins        int     `json:"wins"`
	Podiums     int     `json:"podiums"`
	JumpStarts  int     `json:"jump_starts"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
