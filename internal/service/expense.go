package service

import (
	"context"
	"errors"
	"math"
	"time"

	"expense_tracker/internal/logger"
	"expense_tracker/internal/models"
	"expense_tracker/internal/notify"
	"expense_tracker/internal/repository"
)

const dateLayout = "2006-01-02"

// ExpenseService implements owner-scoped expense CRUD.
type ExpenseService struct {
	repo     repository.ExpenseRepo
	notifier notify.Notifier
	log      *logger.Logger
}

func NewExpenseService(repo repository.ExpenseRepo, notifier notify.Notifier, log *logger.Logger) *ExpenseService {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ExpenseService{repo: repo, notifier: notifier, log: log}
}

func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// roundCents keeps two fractional digits, matching the DECIMAL(10,2) column.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Create stores a new expense for userID.
func (s *ExpenseService) Create(ctx context.Context, userID int64, in CreateExpenseInput) (models.Expense, error) {
	if in.Amount == 0 || in.Category == "" || in.Date == "" {
		return models.Expense{}, invalid(MsgExpenseFieldsRequired)
	}
	if !validDate(in.Date) {
		return models.Expense{}, invalid(MsgInvalidDate)
	}

	e := models.Expense{
		UserID:   userID,
		Amount:   roundCents(in.Amount),
		Category: in.Category,
		Date:     in.Date,
		Notes:    in.Notes,
	}
	id, err := s.repo.Create(ctx, e)
	if err != nil {
		return models.Expense{}, err
	}
	e.ID = id

	s.publish(ctx, notify.ExpenseCreated, e)
	return e, nil
}

// List returns the owner's expenses, newest first, optionally limited to one month.
func (s *ExpenseService) List(ctx context.Context, userID int64, f ListFilter) ([]models.Expense, error) {
	r, err := monthRange(f)
	if err != nil {
		return nil, err
	}
	out, err := s.repo.List(ctx, userID, r)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Expense{}
	}
	return out, nil
}

// Get returns ErrNotFound when the expense is missing or belongs to another user.
func (s *ExpenseService) Get(ctx context.Context, userID, id int64) (models.Expense, error) {
	e, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return models.Expense{}, err
	}
	if e == nil {
		return models.Expense{}, ErrNotFound
	}
	return *e, nil
}

// Update merges in over the stored expense.
//
// Amount, category and date keep the stored value when absent or zero-valued,
// so an update can never set amount to 0 or clear category/date. Notes
// overwrite whenever present, including "" and null.
//
// The read and the write are separate statements; concurrent updates of the
// same expense may lose one of them.
func (s *ExpenseService) Update(ctx context.Context, userID, id int64, in UpdateExpenseInput) (models.Expense, error) {
	if in.Amount.Value == 0 && in.Category.Value == "" && in.Date.Value == "" && !in.Notes.Set {
		return models.Expense{}, invalid(MsgUpdateFieldRequired)
	}
	if in.Date.Value != "" && !validDate(in.Date.Value) {
		return models.Expense{}, invalid(MsgInvalidDate)
	}

	e, err := s.Get(ctx, userID, id)
	if err != nil {
		return models.Expense{}, err
	}

	if in.Amount.Value != 0 {
		e.Amount = roundCents(in.Amount.Value)
	}
	if in.Category.Value != "" {
		e.Category = in.Category.Value
	}
	if in.Date.Value != "" {
		e.Date = in.Date.Value
	}
	if notes, ok := in.Notes.Get(); ok {
		e.Notes = notes
	}

	if err := s.repo.Update(ctx, e); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Expense{}, ErrNotFound
		}
		return models.Expense{}, err
	}

	s.publish(ctx, notify.ExpenseUpdated, e)
	return e, nil
}

// Delete removes an owned expense. Deleting twice returns ErrNotFound.
func (s *ExpenseService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.publish(ctx, notify.ExpenseDeleted, models.Expense{ID: id, UserID: userID})
	return nil
}

// publish never fails the caller; delivery problems are only logged.
func (s *ExpenseService) publish(ctx context.Context, typ string, e models.Expense) {
	if err := s.notifier.Publish(context.WithoutCancel(ctx), notify.NewEvent(typ, e.UserID, e.ID)); err != nil {
		s.log.Warnw("expense_notify_failed",
			"event", typ,
			"expense_id", e.ID,
			"user_id", e.UserID,
			"error", err,
		)
	}
}
