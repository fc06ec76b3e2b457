package models

import "time"

// MatchResult tags one history entry from the perspective of the entrant the
// leaderboard row belongs to.
type MatchResult string

const (
	ResultWin  MatchResult = "win"
	ResultLoss MatchResult = "loss"
	ResultDraw MatchResult = "draw"
)

// MatchHistoryItem is one completed matchup seen from one entrant's side.
// Scores are present only for team-based tournaments.
type MatchHistoryItem struct {
	MatchupID    int         `json:"matchup_id"`
	OpponentID   *int        `json:"opponent_id,omitempty"`
	OpponentName string      `json:"opponent_name"`
	ScoreFor     *int        `json:"score_for,omitempty"`
	ScoreAgainst *int        `json:"score_against,omitempty"`
	Result       MatchResult `json:"result"`
	CompletedAt  time.Time   `json:"completed_at"`
}

// LeaderboardStats holds derived summary statistics per entrant. Kept as a
// map so new stats can be added without a schema change (stored as jsonb).
type LeaderboardStats map[string]float64

const StatAvgPointsPerMatch = "avg_points_per_match"

// LeaderboardEntry extends a Standing with display detail: matches played,
// ordered match history (most recent first) and summary stats. Rebuilt from
// scratch on every recalculation, like standings.
type LeaderboardEntry struct {
	ID           int  `json:"id" db:"id"`
	TournamentID int  `json:"tournament_id" db:"tournament_id"`
	TeamID       *int `json:"team_id,omitempty" db:"team_id"`
	UserID       *int `json:"user_id,omitempty" db:"user_id"`

	Rank          int     `json:"rank" db:"rank"`
	Wins          int     `json:"wins" db:"wins"`
	Losses        int     `json:"losses" db:"losses"`
	Draws         int     `json:"draws" db:"draws"`
	Points        int     `json:"points" db:"points"`
	WinRate       float64 `json:"win_rate" db:"win_rate"`
	MatchesPlayed int     `json:"matches_played" db:"matches_played"`

	MatchHistory []MatchHistoryItem `json:"match_history" db:"match_history"`
	Stats        LeaderboardStats   `json:"stats" db:"stats"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
