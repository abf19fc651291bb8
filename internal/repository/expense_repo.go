package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"expense_tracker/internal/models"
)

type ExpenseSQLite struct {
	db *sql.DB
}

func NewExpenseSQLite(db *sql.DB) *ExpenseSQLite { return &ExpenseSQLite{db: db} }

var _ ExpenseRepo = (*ExpenseSQLite)(nil)

const (
	expenseColumns = `id, user_id, amount, category, date, notes`

	insertExpenseSQL  = `INSERT INTO expenses (user_id, amount, category, date, notes) VALUES (?, ?, ?, ?, ?)`
	selectExpenseSQL  = `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ? AND user_id = ?`
	listExpensesSQL   = `SELECT ` + expenseColumns + ` FROM expenses`
	updateExpenseSQL  = `UPDATE expenses SET amount = ?, category = ?, date = ?, notes = ? WHERE id = ? AND user_id = ?`
	deleteExpenseSQL  = `DELETE FROM expenses WHERE id = ? AND user_id = ?`
	listExpensesOrder = ` ORDER BY date DESC`
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanExpense maps a persisted row onto the domain type; NULL notes become "".
func scanExpense(s rowScanner) (models.Expense, error) {
	var (
		e     models.Expense
		notes sql.NullString
	)
	if err := s.Scan(&e.ID, &e.UserID, &e.Amount, &e.Category, &e.Date, &notes); err != nil {
		return models.Expense{}, err
	}
	e.Notes = notes.String
	return e, nil
}

// Create inserts an expense and returns its ID.
func (r *ExpenseSQLite) Create(ctx context.Context, e models.Expense) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertExpenseSQL, e.UserID, e.Amount, e.Category, e.Date, e.Notes)
	if err != nil {
		return 0, fmt.Errorf("insert expense for user %d: %w", e.UserID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for expense: %w", err)
	}
	return id, nil
}

// List returns the owner's expenses, optionally limited to [r.From, r.To), newest date first.
func (r *ExpenseSQLite) List(ctx context.Context, userID int64, dr *DateRange) ([]models.Expense, error) {
	conds := []string{"user_id = ?"}
	args := []any{userID}

	if dr != nil {
		conds = append(conds, "date >= ?", "date < ?")
		args = append(args, dr.From, dr.To)
	}

	q := listExpensesSQL + " WHERE " + strings.Join(conds, " AND ") + listExpensesOrder

	rows, err := r.db.QueryContext(ctx, q, args...)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches an owned expense. Returns (nil, nil) if absent or owned by someone else.
func (r *ExpenseSQLite) GetByID(ctx context.Context, userID, id int64) (*models.Expense, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx, selectExpenseSQL, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select expense %d: %w", id, err)
	}
	return &e, nil
}

// Update overwrites every mutable column of an owned expense.
func (r *ExpenseSQLite) Update(ctx context.Context, e models.Expense) error {
	res, err := r.db.ExecContext(ctx, updateExpenseSQL, e.Amount, e.Category, e.Date, e.Notes, e.ID, e.UserID)
	if err != nil {
		return fmt.Errorf("update expense %d: %w", e.ID, err)
	}
	return requireAffected(res, e.ID)
}

// Delete removes an owned expense.
func (r *ExpenseSQLite) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteExpenseSQL, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for expense %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("expense %d: %w", id, ErrNotFound)
	}
	return nil
}
