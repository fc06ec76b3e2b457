package models

import "time"

// Event is one bracket instance within a tournament. A tournament can run
// several events (group stage, playoff, side bracket), each with its own
// matchup set.
type Event struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
