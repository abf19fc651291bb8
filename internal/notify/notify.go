// Package notify publishes expense change events to interested consumers.
package notify

import (
	"context"
	"encoding/json"
	"time"
)

// Event types.
const (
	ExpenseCreated = "expense.created"
	ExpenseUpdated = "expense.updated"
	ExpenseDeleted = "expense.deleted"
)

// Event is the message body published after a successful write.
type Event struct {
	Type       string    `json:"event"`
	ExpenseID  int64     `json:"expenseId"`
	UserID     int64     `json:"userId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewEvent stamps an event with the current UTC time.
func NewEvent(typ string, userID, expenseID int64) Event {
	return Event{Type: typ, ExpenseID: expenseID, UserID: userID, OccurredAt: time.Now().UTC()}
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Notifier delivers events. Implementations must be safe for concurrent use.
type Notifier interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
