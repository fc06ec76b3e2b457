package repositories

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

// TeamRepository resolves team entrants: existence checks before bracket
// generation and display names for the leaderboard.
type TeamRepository interface {
	FilterExistingIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]int, error)
	GetNamesByIDs(ctx context.Context, exec SQLExecutor, ids []int) (map[int]string, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) FilterExistingIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]int, error) {
	if len(ids) == 0 {
		return []int{}, nil
	}
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		`SELECT id FROM teams WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existing := make([]int, 0, len(ids))
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		existing = append(existing, id)
	}
	return existing, rows.Err()
}

func (r *postgresTeamRepository) GetNamesByIDs(ctx context.Context, exec SQLExecutor, ids []int) (map[int]string, error) {
	names := make(map[int]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		`SELECT id, name FROM teams WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}
