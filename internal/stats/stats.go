// Package stats aggregates quick race history and championship results.
package stats

import "github.com/abrezinsky/lightsout/internal/models"

// Summarize computes player statistics. When difficulty is non-nil, quick
// race records are filtered by their own difficulty and seasons by the
// difficulty of their first race.
//
// TotalRaces, BestTime and AverageTime cover quick races only; BestTime and
// AverageTime are 0 when there is no data. Wins, Podiums and JumpStarts
// cover completed championship races only.
func Summarize(history []models.ReactionTimeRecord, seasons []models.ChampionshipSeason, difficulty *models.Difficulty) models.Statistics {
	var out models.Statistics

	records := history
	if difficulty != nil {
		records = Filter(history, *difficulty)
	}
	out.TotalRaces = len(records)
	if len(records) > 0 {
		sum := 0.0
		out.BestTime = records[0].Time
		for _, r := range records {
			sum += r.Time
			if r.Time < out.BestTime {
				out.BestTime = r.Time
			}
		}
		out.AverageTime = sum / float64(len(records))
	}

	for _, season := range seasons {
		if difficulty != nil && seasonDifficulty(season) != *difficulty {
			continue
		}
		for _, race := range season.Races {
			if !race.Completed {
				continue
			}
			if user := race.UserResult(); user != nil {
				if user.Position == 1 {
					out.Wins++
				}
				if user.Position <= 3 {
					out.Podiums++
				}
			}
			if race.UserReactionTime >= models.JumpStartPenalty {
				out.JumpStarts++
			}
		}
	}
	return out
}

// seasonDifficulty is the difficulty of the first race, used as the season's
func seasonDifficulty(s models.ChampionshipSeason) models.Difficulty {
	if len(s.Races) == 0 {
		return ""
	}
	return s.Races[0].Difficulty
}

// Filter returns the records at difficulty d, keeping order
func Filter(history []models.ReactionTimeRecord, d models.Difficulty) []models.ReactionTimeRecord {
	out := make([]models.ReactionTimeRecord, 0, len(history))
	for _, r := range history {
		if r.Difficulty == d {
			out = append(out, r)
		}
	}
	return out
}

// Best returns the fastest record, the first in order on ties, or nil when
// history is empty.
func Best(history []models.ReactionTimeRecord) *models.ReactionTimeRecord {
	var best *models.ReactionTimeRecord
	for i := range history {
		r := history[i]
		if best == nil || r.Time < best.Time {
			best = &r
		}
	}
	return best
}
