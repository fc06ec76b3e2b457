package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchStage names the bracket track a matchup belongs to. The vocabulary is
// generator-dependent: winners-bracket-only generators use StageWinners,
// round robin tags everything StageRoundRobin, and group/semis/finals exist
// for formats composed by the surrounding application.
type MatchStage string

const (
	StageWinners    MatchStage = "winners"
	StageLosers     MatchStage = "losers"
	StageGrandFinal MatchStage = "grand_final"
	StageRoundRobin MatchStage = "round_robin"
	StageGroup      MatchStage = "group"
	StageSemis      MatchStage = "semis"
	StageFinals     MatchStage = "finals"
)

type MatchStatus string

const (
	MatchStatusPending    MatchStatus = "pending"
	MatchStatusBye        MatchStatus = "bye"
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusForfeited  MatchStatus = "forfeited"
	MatchStatusCancelled  MatchStatus = "cancelled"
	MatchStatusNoShow     MatchStatus = "no_show"
)

// matchStatusTransitions is the allowed status state machine. Bye and the
// outcome statuses are terminal; a bye's winner is implicit (the non-null
// slot) and byes never re-enter play.
var matchStatusTransitions = map[MatchStatus][]MatchStatus{
	MatchStatusPending:    {MatchStatusScheduled, MatchStatusInProgress, MatchStatusCompleted, MatchStatusCancelled},
	MatchStatusScheduled:  {MatchStatusInProgress, MatchStatusCompleted, MatchStatusForfeited, MatchStatusCancelled, MatchStatusNoShow},
	MatchStatusInProgress: {MatchStatusCompleted, MatchStatusForfeited, MatchStatusCancelled, MatchStatusNoShow},
}

func (s MatchStatus) CanTransitionTo(next MatchStatus) bool {
	for _, allowed := range matchStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further status transition is allowed.
func (s MatchStatus) Terminal() bool {
	return len(matchStatusTransitions[s]) == 0
}

// Entrants is the mode-tagged entrant pair of a matchup. In team-vs-team
// tournaments SideA/SideB carry team ids, in free-for-all tournaments user
// ids. A nil side is a bye slot or a not-yet-decided feeder slot.
type Entrants struct {
	Mode  TournamentMode `json:"mode"`
	SideA *int           `json:"side_a,omitempty"`
	SideB *int           `json:"side_b,omitempty"`
}

// Involves reports whether the given entrant id occupies either side.
func (e Entrants) Involves(id int) bool {
	return (e.SideA != nil && *e.SideA == id) || (e.SideB != nil && *e.SideB == id)
}

// Opponent returns the other side relative to the given entrant id, or nil
// when the entrant is not in the pair or the other slot is empty.
func (e Entrants) Opponent(id int) *int {
	switch {
	case e.SideA != nil && *e.SideA == id:
		return e.SideB
	case e.SideB != nil && *e.SideB == id:
		return e.SideA
	default:
		return nil
	}
}

// SoleEntrant returns the only occupied side of a bye pair, or nil when both
// or neither side is set.
func (e Entrants) SoleEntrant() *int {
	if e.SideA != nil && e.SideB == nil {
		return e.SideA
	}
	if e.SideB != nil && e.SideA == nil {
		return e.SideB
	}
	return nil
}

// Matchup is one contest between two entrants (or one entrant and a bye)
// inside an event's bracket. NextMatchID/LoserNextMatchID reference other
// matchups in the same (tournament, event) scope; winner-advancement links
// always point to a strictly later round.
type Matchup struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	EventID      int       `json:"event_id" db:"event_id"`
	GenerationID uuid.UUID `json:"generation_id" db:"generation_id"`

	Round       int        `json:"round_number" db:"round_number"`
	MatchNumber int        `json:"match_number" db:"match_number"`
	Stage       MatchStage `json:"match_stage" db:"match_stage"`

	Entrants Entrants `json:"entrants"`

	SideAScore *int        `json:"side_a_score,omitempty" db:"side_a_score"`
	SideBScore *int        `json:"side_b_score,omitempty" db:"side_b_score"`
	WinnerID   *int        `json:"winner_id,omitempty" db:"winner_id"`
	Status     MatchStatus `json:"status" db:"status"`

	IsDisputed    bool       `json:"is_disputed" db:"is_disputed"`
	DisputeReason *string    `json:"dispute_reason,omitempty" db:"dispute_reason"`
	DisputedAt    *time.Time `json:"disputed_at,omitempty" db:"disputed_at"`

	NextMatchID      *int `json:"next_match_id,omitempty" db:"next_match_id"`
	LoserNextMatchID *int `json:"loser_next_match_id,omitempty" db:"loser_next_match_id"`

	ScheduledAt *time.Time `json:"scheduled_at,omitempty" db:"scheduled_at"`
	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// Draw reports whether the matchup completed without a winner.
func (m *Matchup) Draw() bool {
	return m.Status == MatchStatusCompleted && m.WinnerID == nil
}

// LoserID returns the losing entrant of a completed, decided matchup.
func (m *Matchup) LoserID() *int {
	if m.WinnerID == nil {
		return nil
	}
	return m.Entrants.Opponent(*m.WinnerID)
}
