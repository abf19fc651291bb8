package service

import "expense_tracker/internal/models"

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by both register and login.
type AuthResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

type CreateExpenseInput struct {
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
	Notes    string  `json:"notes"`
}

// UpdateExpenseInput holds a partial update; unset fields keep their stored value.
type UpdateExpenseInput struct {
	Amount   models.Optional[float64] `json:"amount"`
	Category models.Optional[string]  `json:"category"`
	Date     models.Optional[string]  `json:"date"`
	Notes    models.Optional[string]  `json:"notes"`
}

// ListFilter holds the raw month/year query values. Both must be non-empty to filter.
type ListFilter struct {
	Month string
	Year  string
}
