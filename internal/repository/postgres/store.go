package postgres

import (
	"context"
	"fmt"

	"expense_tracker/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store owns the Postgres connection pool shared by the user and expense stores.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL and brings the schema up to date.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Repository exposes the store through the same interfaces as the SQLite backend.
func (s *Store) Repository() *repository.Repository {
	return &repository.Repository{
		Auth:     &UserStore{pool: s.pool},
		Expenses: &ExpenseStore{pool: s.pool},
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS expenses (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			amount NUMERIC(10,2) NOT NULL,
			category TEXT NOT NULL,
			date DATE NOT NULL,
			notes TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_user_date ON expenses (user_id, date);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}
