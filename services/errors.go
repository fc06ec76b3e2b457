package services

import (
	"errors"
	"fmt"
)

// Errors shared across services and the HTTP error mapping.
var (
	ErrUnknownBracketType = errors.New("unknown bracket type")
	ErrEventScopeMismatch = errors.New("event does not belong to the tournament")

	ErrInvalidStatusTransition = errors.New("invalid matchup status transition")
	ErrMatchupMissingEntrants  = errors.New("matchup does not have both entrants assigned")
	ErrInvalidWinner           = errors.New("winner must be one of the matchup entrants")
	ErrResultRequired          = errors.New("completing a matchup requires a result submission")
	ErrAdvancementSlotsFull    = errors.New("next matchup already has both entrant slots filled")
)

// EntrantValidationError is the caller-fixable validation failure of bracket
// generation: too few entrants, or entrant ids that resolve to no team/user
// record. Nothing is written when it is returned.
type EntrantValidationError struct {
	Field      string
	Reason     string
	MissingIDs []int
}

func (e *EntrantValidationError) Error() string {
	if len(e.MissingIDs) > 0 {
		return fmt.Sprintf("validation failed on %s: unresolved entrant ids %v", e.Field, e.MissingIDs)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func notEnoughEntrants(found int) *EntrantValidationError {
	return &EntrantValidationError{
		Field:  "participants",
		Reason: fmt.Sprintf("at least 2 distinct entrants are required, found %d", found),
	}
}

func unresolvedEntrants(missing []int) *EntrantValidationError {
	return &EntrantValidationError{
		Field:      "participants",
		MissingIDs: missing,
	}
}
