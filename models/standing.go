package models

import "time"

// Standing is one row of the cumulative per-entrant record for a tournament.
// Exactly one of TeamID/UserID is populated, depending on tournament mode.
// Standings are fully derived: each recalculation deletes and reinserts the
// whole tournament's set.
type Standing struct {
	ID           int  `json:"id" db:"id"`
	TournamentID int  `json:"tournament_id" db:"tournament_id"`
	TeamID       *int `json:"team_id,omitempty" db:"team_id"`
	UserID       *int `json:"user_id,omitempty" db:"user_id"`

	Wins    int     `json:"wins" db:"wins"`
	Losses  int     `json:"losses" db:"losses"`
	Draws   int     `json:"draws" db:"draws"`
	Points  int     `json:"points" db:"points"`
	WinRate float64 `json:"win_rate" db:"win_rate"`
	Rank    int     `json:"rank" db:"rank"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EntrantID returns whichever id slot is populated.
func (s *Standing) EntrantID() int {
	if s.TeamID != nil {
		return *s.TeamID
	}
	if s.UserID != nil {
		return *s.UserID
	}
	return 0
}
