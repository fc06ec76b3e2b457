package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/openarena/bracket-engine/models"
)

var ErrEventNotFound = errors.New("event not found")

// EventRepository exposes the event context plus its direct entrant
// associations (event_teams / event_participants junction tables). Direct
// associations take priority over tournament-level registrations when
// collecting entrants for generation.
type EventRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Event, error)
	ListTeamIDs(ctx context.Context, exec SQLExecutor, eventID int) ([]int, error)
	ListUserIDs(ctx context.Context, exec SQLExecutor, eventID int) ([]int, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresEventRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Event, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, tournament_id, name, created_at FROM events WHERE id = $1`

	var e models.Event
	err := executor.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.TournamentID, &e.Name, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *postgresEventRepository) listIDs(ctx context.Context, executor SQLExecutor, query string, eventID int) ([]int, error) {
	rows, err := executor.QueryContext(ctx, query, eventID)
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

func (r *postgresEventRepository) ListTeamIDs(ctx context.Context, exec SQLExecutor, eventID int) ([]int, error) {
	executor := r.getExecutor(exec)
	return r.listIDs(ctx, executor,
		`SELECT DISTINCT team_id FROM event_teams WHERE event_id = $1 ORDER BY team_id`, eventID)
}

func (r *postgresEventRepository) ListUserIDs(ctx context.Context, exec SQLExecutor, eventID int) ([]int, error) {
	executor := r.getExecutor(exec)
	return r.listIDs(ctx, executor,
		`SELECT DISTINCT user_id FROM event_participants WHERE event_id = $1 ORDER BY user_id`, eventID)
}
