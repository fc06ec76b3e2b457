package repositories

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/openarena/bracket-engine/models"
)

// UserRepository resolves individual entrants for free-for-all tournaments.
type UserRepository interface {
	FilterExistingIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]int, error)
	GetNamesByIDs(ctx context.Context, exec SQLExecutor, ids []int) (map[int]string, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresUserRepository) FilterExistingIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]int, error) {
	if len(ids) == 0 {
		return []int{}, nil
	}
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		`SELECT id FROM users WHERE id = ANY($1)`, pq.Array(ids))
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

func (r *postgresUserRepository) GetNamesByIDs(ctx context.Context, exec SQLExecutor, ids []int) (map[int]string, error) {
	names := make(map[int]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		`SELECT id, nickname, first_name, last_name FROM users WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Nickname, &u.FirstName, &u.LastName); err != nil {
			return nil, err
		}
		names[u.ID] = u.DisplayName()
	}
	return names, rows.Err()
}
