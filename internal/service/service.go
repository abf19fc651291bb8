package service

import (
	"context"

	"expense_tracker/internal/logger"
	"expense_tracker/internal/models"
	"expense_tracker/internal/notify"
	"expense_tracker/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type Authorization interface {
	Register(ctx context.Context, in RegisterInput) (AuthResult, error)
	Login(ctx context.Context, in LoginInput) (AuthResult, error)
	ParseToken(accessToken string) (int64, error)
}

// Expenses exposes owner-scoped expense operations.
type Expenses interface {
	Create(ctx context.Context, userID int64, in CreateExpenseInput) (models.Expense, error)
	List(ctx context.Context, userID int64, f ListFilter) ([]models.Expense, error)
	Get(ctx context.Context, userID, id int64) (models.Expense, error)
	Update(ctx context.Context, userID, id int64, in UpdateExpenseInput) (models.Expense, error)
	Delete(ctx context.Context, userID, id int64) error
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	Expenses
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, tokens *TokenManager, notifier notify.Notifier, log *logger.Logger) *Service {
	return &Service{
		Authorization: NewAuthService(repos.Auth, NewCredentialService(bcrypt.DefaultCost), tokens),
		Expenses:      NewExpenseService(repos.Expenses, notifier, log),
	}
}
