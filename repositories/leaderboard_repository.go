package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openarena/bracket-engine/models"
)

var ErrLeaderboardEntryNotFound = errors.New("leaderboard entry not found")

type LeaderboardRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, entries []*models.LeaderboardEntry) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.LeaderboardEntry, error)
	DeleteByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresLeaderboardRepository struct {
	db *sql.DB
}

func NewPostgresLeaderboardRepository(db *sql.DB) LeaderboardRepository {
	return &postgresLeaderboardRepository{db: db}
}

func (r *postgresLeaderboardRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresLeaderboardRepository) BatchCreate(ctx context.Context, exec SQLExecutor, entries []*models.LeaderboardEntry) error {
	executor := r.getExecutor(exec)
	if len(entries) == 0 {
		return nil
	}

	// match_history and stats are stored as jsonb.
	query := `
		INSERT INTO leaderboard_entries
			(tournament_id, team_id, user_id, rank, wins, losses, draws, points, win_rate,
			 matches_played, match_history, stats, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	for _, e := range entries {
		if e.UpdatedAt.IsZero() {
			e.UpdatedAt = time.Now()
		}
		historyJSON, err := json.Marshal(e.MatchHistory)
		if err != nil {
			return fmt.Errorf("failed to marshal match history: %w", err)
		}
		statsJSON, err := json.Marshal(e.Stats)
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		err = executor.QueryRowContext(ctx, query,
			e.TournamentID, e.TeamID, e.UserID, e.Rank, e.Wins, e.Losses, e.Draws,
			e.Points, e.WinRate, e.MatchesPlayed, historyJSON, statsJSON, e.UpdatedAt,
		).Scan(&e.ID)
		if err != nil {
			return fmt.Errorf("failed to insert leaderboard entry rank %d: %w", e.Rank, err)
		}
	}
	return nil
}

func (r *postgresLeaderboardRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.LeaderboardEntry, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, team_id, user_id, rank, wins, losses, draws, points, win_rate,
		       matches_played, match_history, stats, updated_at
		FROM leaderboard_entries
		WHERE tournament_id = $1
		ORDER BY rank ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.LeaderboardEntry, 0)
	for rows.Next() {
		var e models.LeaderboardEntry
		var historyJSON, statsJSON []byte
		err := rows.Scan(
			&e.ID, &e.TournamentID, &e.TeamID, &e.UserID, &e.Rank, &e.Wins, &e.Losses,
			&e.Draws, &e.Points, &e.WinRate, &e.MatchesPlayed, &historyJSON, &statsJSON, &e.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(historyJSON, &e.MatchHistory); err != nil {
			return nil, fmt.Errorf("failed to unmarshal match history for entry %d: %w", e.ID, err)
		}
		if err := json.Unmarshal(statsJSON, &e.Stats); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stats for entry %d: %w", e.ID, err)
		}
		entries = append(entries, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *postgresLeaderboardRepository) DeleteByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM leaderboard_entries WHERE tournament_id = $1`, tournamentID)
	return err
}
