package repositories

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/openarena/bracket-engine/models"
)

// ParticipantRepository reads tournament-level registrations, used as the
// entrant-collection fallback when an event carries no direct associations.
type ParticipantRepository interface {
	ListTeamIDs(ctx context.Context, exec SQLExecutor, tournamentID int, statuses []models.ParticipantStatus) ([]int, error)
	ListUserIDs(ctx context.Context, exec SQLExecutor, tournamentID int, statuses []models.ParticipantStatus) ([]int, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresParticipantRepository) listIDs(ctx context.Context, executor SQLExecutor, column string, participantType models.ParticipantType, tournamentID int, statuses []models.ParticipantStatus) ([]int, error) {
	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}

	query := `
		SELECT DISTINCT ` + column + `
		FROM participants
		WHERE tournament_id = $1
		  AND participant_type = $2
		  AND status = ANY($3)
		  AND ` + column + ` IS NOT NULL
		ORDER BY ` + column

	rows, err := executor.QueryContext(ctx, query, tournamentID, participantType, pq.Array(statusStrings))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresParticipantRepository) ListTeamIDs(ctx context.Context, exec SQLExecutor, tournamentID int, statuses []models.ParticipantStatus) ([]int, error) {
	return r.listIDs(ctx, r.getExecutor(exec), "team_id", models.ParticipantTypeTeam, tournamentID, statuses)
}

func (r *postgresParticipantRepository) ListUserIDs(ctx context.Context, exec SQLExecutor, tournamentID int, statuses []models.ParticipantStatus) ([]int, error) {
	return r.listIDs(ctx, r.getExecutor(exec), "user_id", models.ParticipantTypeIndividual, tournamentID, statuses)
}
