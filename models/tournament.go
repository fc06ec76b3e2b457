package models

import "time"

// TournamentMode selects how matchup entrants are addressed: team ids for
// team-vs-team tournaments, user ids for free-for-all ones.
type TournamentMode string

const (
	ModeTeamVsTeam TournamentMode = "team_vs_team"
	ModeFreeForAll TournamentMode = "free_for_all"
)

func (m TournamentMode) Valid() bool {
	return m == ModeTeamVsTeam || m == ModeFreeForAll
}

// TournamentStatus mirrors the tournament_status ENUM in the database.
type TournamentStatus string

const (
	TournamentStatusSoon         TournamentStatus = "soon"
	TournamentStatusRegistration TournamentStatus = "registration"
	TournamentStatusActive       TournamentStatus = "active"
	TournamentStatusCompleted    TournamentStatus = "completed"
	TournamentStatusCanceled     TournamentStatus = "canceled"
)

type Tournament struct {
	ID        int              `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	Mode      TournamentMode   `json:"mode" db:"mode"`
	Status    TournamentStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
