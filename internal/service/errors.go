package service

import "errors"

// Domain errors. Handlers map these onto HTTP status codes.
var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("not found")
)

// ValidationError carries a client-facing message. errors.Is(err, ErrValidation) holds.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// Validation messages returned to clients.
const (
	MsgRegisterFieldsRequired = "All fields are required"
	MsgLoginFieldsRequired    = "Email and password are required"
	MsgExpenseFieldsRequired  = "Amount, category, and date are required"
	MsgUpdateFieldRequired    = "At least one field is required to update"
	MsgInvalidDate            = "Date must be in YYYY-MM-DD format"
	MsgInvalidPeriod          = "Month must be 1-12 and year must be a valid year"
)
