package models

// Expense is a single spending record owned by one user.
type Expense struct {
	ID       int64   `json:"id"`
	UserID   int64   `json:"userId"`
	Amount   float64 `json:"amount"`   // two fractional digits
	Category string  `json:"category"`
	Date     string  `json:"date"`  // YYYY-MM-DD
	Notes    string  `json:"notes"` // empty when not provided
}
