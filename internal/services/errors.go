package services

import "github.com/abrezinsky/lightsout/internal/errors"

// Service errors
var (
	ErrNoCurrentSeason  = errors.NotFound("no championship season in progress")
	ErrSeasonNotCurrent = errors.InvalidState("season is not the current season")
	ErrSeasonCompleted  = errors.InvalidState("season is already completed")
	ErrNotNextRace      = errors.InvalidState("race is not the next race of the season")
	ErrBaseURLNotSet    = errors.InvalidState("base url not configured")
)
