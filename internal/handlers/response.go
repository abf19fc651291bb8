package handlers

import (
	"errors"
	"net/http"

	"expense_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// Client-facing messages.
const (
	msgUserExists         = "User already exists"
	msgInvalidCredentials = "Invalid credentials"
	msgExpenseNotFound    = "Expense not found"
	msgServerError        = "Server error"
	msgNoToken            = "Access denied. No token provided"
	msgInvalidToken       = "Invalid or expired token"

	msgUserRegistered  = "User registered successfully"
	msgLoginSuccessful = "Login successful"
	msgExpenseCreated  = "Expense created successfully"
	msgExpenseUpdated  = "Expense updated successfully"
	msgExpenseDeleted  = "Expense deleted successfully"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message" example:"Expense not found"`
}

// fail maps a service error onto a status code and message. Unclassified
// errors become 500 and are logged with the request id.
func (h *Handler) fail(c *gin.Context, logKey string, err error, kv ...interface{}) {
	var ve *service.ValidationError

	switch {
	case errors.As(err, &ve):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Message: ve.Message})
	case errors.Is(err, service.ErrConflict):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Message: msgUserExists})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: msgInvalidCredentials})
	case errors.Is(err, service.ErrInvalidToken):
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: msgInvalidToken})
	case errors.Is(err, service.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Message: msgExpenseNotFound})
	default:
		if h.log != nil {
			fields := append([]interface{}{"err", err, "request_id", c.GetString(requestIDKey)}, kv...)
			h.log.Errorw(logKey, fields...)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Message: msgServerError})
	}
}

// bindJSONOrBadRequest binds the body into dst. A malformed or missing body is
// answered with 400 and msg, the same message as a missing field.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Message: msg})
		return false
	}
	return true
}
