package models

import "time"

// ParticipantType mirrors the participant_type ENUM in the database.
type ParticipantType string

const (
	ParticipantTypeTeam       ParticipantType = "team"
	ParticipantTypeIndividual ParticipantType = "individual"
)

// ParticipantStatus mirrors the participant_status ENUM in the database.
type ParticipantStatus string

const (
	ParticipantStatusPending   ParticipantStatus = "pending"
	ParticipantStatusApproved  ParticipantStatus = "approved"
	ParticipantStatusConfirmed ParticipantStatus = "confirmed"
	ParticipantStatusRejected  ParticipantStatus = "rejected"
	ParticipantStatusWithdrawn ParticipantStatus = "withdrawn"
)

// GenerationEligibleStatuses are the registration statuses whose entrants are
// pulled into bracket generation when an event has no direct associations.
var GenerationEligibleStatuses = []ParticipantStatus{
	ParticipantStatusApproved,
	ParticipantStatusConfirmed,
	ParticipantStatusPending,
}

// Participant is a tournament registration record for either a team or an
// individual user.
type Participant struct {
	ID           int               `json:"id" db:"id"`
	TournamentID int               `json:"tournament_id" db:"tournament_id"`
	Type         ParticipantType   `json:"participant_type" db:"participant_type"`
	TeamID       *int              `json:"team_id,omitempty" db:"team_id"`
	UserID       *int              `json:"user_id,omitempty" db:"user_id"`
	Status       ParticipantStatus `json:"status" db:"status"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
}
