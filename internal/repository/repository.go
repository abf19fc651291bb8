package repository

import (
	"context"
	"database/sql"
	"errors"

	"expense_tracker/internal/models"
)

var (
	// ErrAlreadyExists is returned when an insert violates a uniqueness constraint.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrNotFound is returned when a scoped write matched no row.
	ErrNotFound = errors.New("record not found")
)

// DateRange is a half-open [From, To) filter over YYYY-MM-DD dates.
type DateRange struct {
	From string
	To   string
}

type Authorization interface {
	Create(ctx context.Context, u models.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// ExpenseRepo reads and writes expenses. Every method is scoped by owner id.
type ExpenseRepo interface {
	Create(ctx context.Context, e models.Expense) (int64, error)
	List(ctx context.Context, userID int64, r *DateRange) ([]models.Expense, error)
	GetByID(ctx context.Context, userID, id int64) (*models.Expense, error)
	Update(ctx context.Context, e models.Expense) error
	Delete(ctx context.Context, userID, id int64) error
}

type Repository struct {
	Auth     Authorization
	Expenses ExpenseRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Auth:     NewUserRepository(db),
		Expenses: NewExpenseSQLite(db),
	}
}
