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

var _ repository.ExpenseRepo = (*ExpenseStore)(nil)

// ExpenseStore is the Postgres-backed expense store. Dates travel as
// YYYY-MM-DD text and are stored in a DATE column.
type ExpenseStore struct {
	pool *pgxpool.Pool
}

const expenseColumns = `id, user_id, amount::float8, category, to_char(date, 'YYYY-MM-DD'), COALESCE(notes, '')`

func scanExpense(row pgx.Row) (models.Expense, error) {
	var e models.Expense
	err := row.Scan(&e.ID, &e.UserID, &e.Amount, &e.Category, &e.Date, &e.Notes)
	return e, err
}

func (s *ExpenseStore) Create(ctx context.Context, e models.Expense) (int64, error) {
	const query = `INSERT INTO expenses (user_id, amount, category, date, notes)
		VALUES ($1, $2::float8, $3, $4::text::date, $5) RETURNING id`

	var id int64
	if err := s.pool.QueryRow(ctx, query, e.UserID, e.Amount, e.Category, e.Date, e.Notes).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert expense for user %d: %w", e.UserID, err)
	}
	return id, nil
}

func (s *ExpenseStore) List(ctx context.Context, userID int64, dr *repository.DateRange) ([]models.Expense, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if dr == nil {
		rows, err = s.pool.Query(ctx,
			`SELECT `+expenseColumns+` FROM expenses WHERE user_id = $1 ORDER BY date DESC`, userID)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT `+expenseColumns+` FROM expenses
			WHERE user_id = $1 AND date >= $2::text::date AND date < $3::text::date
			ORDER BY date DESC`, userID, dr.From, dr.To)
	}
	if err != nil {
		return nil, fmt.Errorf("list expenses for user %d: %w", userID, err)
	}
	defer rows.Close()

	out := make([]models.Expense, 0, 32)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetByID returns (nil, nil) if the expense is absent or owned by someone else.
func (s *ExpenseStore) GetByID(ctx context.Context, userID, id int64) (*models.Expense, error) {
	e, err := scanExpense(s.pool.QueryRow(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select expense %d: %w", id, err)
	}
	return &e, nil
}

func (s *ExpenseStore) Update(ctx context.Context, e models.Expense) error {
	const query = `UPDATE expenses
		SET amount = $1::float8, category = $2, date = $3::text::date, notes = $4
		WHERE id = $5 AND user_id = $6`

	tag, err := s.pool.Exec(ctx, query, e.Amount, e.Category, e.Date, e.Notes, e.ID, e.UserID)
	if err != nil {
		return fmt.Errorf("update expense %d: %w", e.ID, err)
	}
	return requireAffected(tag, e.ID)
}

func (s *ExpenseStore) Delete(ctx context.Context, userID, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	return requireAffected(tag, id)
}

func requireAffected(tag pgconn.CommandTag, id int64) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("expense %d: %w", id, repository.ErrNotFound)
	}
	return nil
}
