package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/openarena/bracket-engine/models"
)

var (
	ErrMatchupNotFound       = errors.New("matchup not found")
	ErrMatchupScopeInvalid   = errors.New("matchup tournament or event conflict or invalid")
	ErrMatchupEntrantInvalid = errors.New("matchup entrant conflict or invalid")
)

type MatchupRepository interface {
	Create(ctx context.Context, exec SQLExecutor, m *models.Matchup) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Matchup, error)
	ListByEvent(ctx context.Context, exec SQLExecutor, tournamentID, eventID int) ([]*models.Matchup, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, status *models.MatchStatus) ([]*models.Matchup, error)
	ListCompletedByEntrant(ctx context.Context, exec SQLExecutor, tournamentID int, mode models.TournamentMode, entrantID, limit int) ([]*models.Matchup, error)
	DeleteByEvent(ctx context.Context, exec SQLExecutor, tournamentID, eventID int) error
	UpdateLinks(ctx context.Context, exec SQLExecutor, id int, nextMatchID, loserNextMatchID *int) error
	UpdateEntrants(ctx context.Context, exec SQLExecutor, id int, entrants models.Entrants) error
	UpdateResult(ctx context.Context, exec SQLExecutor, m *models.Matchup) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus, startedAt *time.Time) error
	SetDispute(ctx context.Context, exec SQLExecutor, id int, reason string, disputedAt time.Time) error
}

type postgresMatchupRepository struct {
	db *sql.DB
}

func NewPostgresMatchupRepository(db *sql.DB) MatchupRepository {
	return &postgresMatchupRepository{db: db}
}

func (r *postgresMatchupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchupColumns = `
	id, tournament_id, event_id, generation_id, round_number, match_number, match_stage,
	mode, team_a_id, team_b_id, user_a_id, user_b_id,
	side_a_score, side_b_score, winner_id, status,
	is_disputed, dispute_reason, disputed_at,
	next_match_id, loser_next_match_id,
	scheduled_at, started_at, completed_at, created_at`

// sideColumns splits the entrant pair into the four nullable id columns.
// Exactly one pair of columns is populated per tournament mode.
func sideColumns(e models.Entrants) (teamA, teamB, userA, userB *int) {
	switch e.Mode {
	case models.ModeTeamVsTeam:
		return e.SideA, e.SideB, nil, nil
	case models.ModeFreeForAll:
		return nil, nil, e.SideA, e.SideB
	}
	return nil, nil, nil, nil
}

func (r *postgresMatchupRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Matchup) error {
	executor := r.getExecutor(exec)
	teamA, teamB, userA, userB := sideColumns(m.Entrants)
	query := `
		INSERT INTO matchups
			(tournament_id, event_id, generation_id, round_number, match_number, match_stage,
			 mode, team_a_id, team_b_id, user_a_id, user_b_id,
			 side_a_score, side_b_score, winner_id, status,
			 next_match_id, loser_next_match_id, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		m.TournamentID, m.EventID, m.GenerationID, m.Round, m.MatchNumber, m.Stage,
		m.Entrants.Mode, teamA, teamB, userA, userB,
		m.SideAScore, m.SideBScore, m.WinnerID, m.Status,
		m.NextMatchID, m.LoserNextMatchID, m.ScheduledAt,
	).Scan(&m.ID, &m.CreatedAt)

	return r.handleMatchupError(err)
}

func (r *postgresMatchupRepository) scanMatchup(rowScanner interface{ Scan(...interface{}) error }) (*models.Matchup, error) {
	var m models.Matchup
	var teamA, teamB, userA, userB *int
	err := rowScanner.Scan(
		&m.ID, &m.TournamentID, &m.EventID, &m.GenerationID, &m.Round, &m.MatchNumber, &m.Stage,
		&m.Entrants.Mode, &teamA, &teamB, &userA, &userB,
		&m.SideAScore, &m.SideBScore, &m.WinnerID, &m.Status,
		&m.IsDisputed, &m.DisputeReason, &m.DisputedAt,
		&m.NextMatchID, &m.LoserNextMatchID,
		&m.ScheduledAt, &m.StartedAt, &m.CompletedAt, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchupNotFound
		}
		return nil, err
	}
	switch m.Entrants.Mode {
	case models.ModeFreeForAll:
		m.Entrants.SideA, m.Entrants.SideB = userA, userB
	default:
		m.Entrants.SideA, m.Entrants.SideB = teamA, teamB
	}
	return &m, nil
}

func (r *postgresMatchupRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Matchup, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + matchupColumns + ` FROM matchups WHERE id = $1`
	return r.scanMatchup(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchupRepository) queryMatchups(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]*models.Matchup, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matchups := make([]*models.Matchup, 0)
	for rows.Next() {
		m, errScan := r.scanMatchup(rows)
		if errScan != nil {
			return nil, errScan
		}
		matchups = append(matchups, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matchups, nil
}

func (r *postgresMatchupRepository) ListByEvent(ctx context.Context, exec SQLExecutor, tournamentID, eventID int) ([]*models.Matchup, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + matchupColumns + `
		FROM matchups
		WHERE tournament_id = $1 AND event_id = $2
		ORDER BY CASE match_stage
				WHEN 'winners' THEN 1
				WHEN 'losers' THEN 2
				WHEN 'grand_final' THEN 3
				ELSE 4
			END,
			round_number, match_number`
	return r.queryMatchups(ctx, executor, query, tournamentID, eventID)
}

func (r *postgresMatchupRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, status *models.MatchStatus) ([]*models.Matchup, error) {
	executor := r.getExecutor(exec)
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT` + matchupColumns + ` FROM matchups WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	if status != nil {
		queryBuilder.WriteString(" AND status = $" + strconv.Itoa(len(args)+1))
		args = append(args, *status)
	}
	queryBuilder.WriteString(" ORDER BY round_number, match_number")

	return r.queryMatchups(ctx, executor, queryBuilder.String(), args...)
}

func (r *postgresMatchupRepository) ListCompletedByEntrant(ctx context.Context, exec SQLExecutor, tournamentID int, mode models.TournamentMode, entrantID, limit int) ([]*models.Matchup, error) {
	executor := r.getExecutor(exec)
	sideA, sideB := "team_a_id", "team_b_id"
	if mode == models.ModeFreeForAll {
		sideA, sideB = "user_a_id", "user_b_id"
	}
	query := fmt.Sprintf(`SELECT`+matchupColumns+`
		FROM matchups
		WHERE tournament_id = $1 AND status = $2 AND (%s = $3 OR %s = $3)
		ORDER BY completed_at DESC NULLS LAST, id DESC
		LIMIT $4`, sideA, sideB)
	return r.queryMatchups(ctx, executor, query, tournamentID, models.MatchStatusCompleted, entrantID, limit)
}

func (r *postgresMatchupRepository) DeleteByEvent(ctx context.Context, exec SQLExecutor, tournamentID, eventID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`DELETE FROM matchups WHERE tournament_id = $1 AND event_id = $2`,
		tournamentID, eventID)
	return err
}

func (r *postgresMatchupRepository) UpdateLinks(ctx context.Context, exec SQLExecutor, id int, nextMatchID, loserNextMatchID *int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE matchups SET next_match_id = $1, loser_next_match_id = $2 WHERE id = $3`,
		nextMatchID, loserNextMatchID, id)
	if err != nil {
		return r.handleMatchupError(err)
	}
	return checkAffectedRows(result, ErrMatchupNotFound)
}

func (r *postgresMatchupRepository) UpdateEntrants(ctx context.Context, exec SQLExecutor, id int, entrants models.Entrants) error {
	executor := r.getExecutor(exec)
	teamA, teamB, userA, userB := sideColumns(entrants)
	result, err := executor.ExecContext(ctx,
		`UPDATE matchups SET team_a_id = $1, team_b_id = $2, user_a_id = $3, user_b_id = $4 WHERE id = $5`,
		teamA, teamB, userA, userB, id)
	if err != nil {
		return r.handleMatchupError(err)
	}
	return checkAffectedRows(result, ErrMatchupNotFound)
}

func (r *postgresMatchupRepository) UpdateResult(ctx context.Context, exec SQLExecutor, m *models.Matchup) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `
		UPDATE matchups SET
			side_a_score = $1, side_b_score = $2, winner_id = $3, status = $4,
			started_at = $5, completed_at = $6
		WHERE id = $7`,
		m.SideAScore, m.SideBScore, m.WinnerID, m.Status,
		m.StartedAt, m.CompletedAt, m.ID)
	if err != nil {
		return r.handleMatchupError(err)
	}
	return checkAffectedRows(result, ErrMatchupNotFound)
}

func (r *postgresMatchupRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus, startedAt *time.Time) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE matchups SET status = $1, started_at = COALESCE($2, started_at) WHERE id = $3`,
		status, startedAt, id)
	if err != nil {
		return r.handleMatchupError(err)
	}
	return checkAffectedRows(result, ErrMatchupNotFound)
}

func (r *postgresMatchupRepository) SetDispute(ctx context.Context, exec SQLExecutor, id int, reason string, disputedAt time.Time) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE matchups SET is_disputed = TRUE, dispute_reason = $1, disputed_at = $2 WHERE id = $3`,
		reason, disputedAt, id)
	if err != nil {
		return r.handleMatchupError(err)
	}
	return checkAffectedRows(result, ErrMatchupNotFound)
}

func (r *postgresMatchupRepository) handleMatchupError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
		switch {
		case strings.Contains(pqErr.Constraint, "tournament"), strings.Contains(pqErr.Constraint, "event"):
			return fmt.Errorf("%w: %v", ErrMatchupScopeInvalid, err)
		case strings.Contains(pqErr.Constraint, "team"), strings.Contains(pqErr.Constraint, "user"):
			return fmt.Errorf("%w: %v", ErrMatchupEntrantInvalid, err)
		}
	}
	return err
}
