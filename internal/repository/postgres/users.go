package postgres

import (
	"context"
	"errors"
	"fmt"

	"expense_tracker/internal/models"
	"expense_tracker/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ repository.Authorization = (*UserStore)(nil)

// UserStore is the Postgres-backed account store.
type UserStore struct {
	pool *pgxpool.Pool
}

const uniqueViolation = "23505"

// Create inserts a user and returns its id.
func (s *UserStore) Create(ctx context.Context, u models.User) (int64, error) {
	const query = `INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3) RETURNING id`

	var id int64
	if err := s.pool.QueryRow(ctx, query, u.Username, u.Email, u.PasswordHash).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, fmt.Errorf("insert user %q: %w", u.Email, repository.ErrAlreadyExists)
		}
		return 0, fmt.Errorf("insert user %q: %w", u.Email, err)
	}
	return id, nil
}

// GetByEmail returns (nil, nil) when no account uses email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT id, username, email, password_hash FROM users WHERE email = $1`

	var u models.User
	err := s.pool.QueryRow(ctx, query, email).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user by email: %w", err)
	}
	return &u, nil
}
