// Package ranking orders a race field into a leaderboard.
package ranking

import (
	"sort"

	"github.com/abrezinsky/lightsout/internal/errors"
	"github.com/abrezinsky/lightsout/internal/models"
)

// Rank sorts entries by ascending time, assigns 1-based positions and flags
// the player's entry. Equal times keep their input order. The field must
// contain exactly one entry named models.UserName. Points are left unset.
func Rank(entries []models.DriverEntry) ([]models.RankedResult, error) {
	users := 0
	for _, e := range entries {
		if e.Name == models.UserName {
			users++
		}
	}
	if users != 1 {
		return nil, errors.InvalidStatef("field must contain exactly one %q entry, found %d", models.UserName, users)
	}

	sorted := make([]models.DriverEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time < sorted[j].Time
	})

	results := make([]models.RankedResult, len(sorted))
	for i, e := range sorted {
		results[i] = models.RankedResult{
			Name:     e.Name,
			Time:     e.Time,
			Position: i + 1,
			IsUser:   e.Name == models.UserName,
		}
	}
	return results, nil
}

// Entries strips rankings back to plain entries, keeping order
func Entries(results []models.RankedResult) []models.DriverEntry {
	out := make([]models.DriverEntry, len(results))
	for i, r := range results {
		out[i] = models.DriverEntry{Name: r.Name, Time: r.Time}
	}
	return out
}
