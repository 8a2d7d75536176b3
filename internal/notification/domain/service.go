package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Message is one notification to enqueue.
type Message struct {
	Recipient    string
	TemplateKind TemplateKind
	Payload      map[string]any
}

type DispatchResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type Service interface {
	// Enqueue writes outbox rows on the given handle so callers can make
	// them atomic with their own state change.
	Enqueue(ctx context.Context, db *gorm.DB, messages []Message) error

	// Dispatch drains pending entries through the sender. Delivery failures
	// are recorded and logged, never returned as errors.
	Dispatch(ctx context.Context) (DispatchResult, error)
}

// Sender delivers a rendered notification. Implementations must be
// time-bounded; the outbox treats any error as a failed attempt.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

type Repository interface {
	InsertAll(ctx context.Context, db *gorm.DB, entries []*NotificationOutbox) error
	FindPending(ctx context.Context, db *gorm.DB, limit int) ([]*NotificationOutbox, error)
	MarkResult(ctx context.Context, db *gorm.DB, entry *NotificationOutbox) error
}

var ErrInvalidRecipient = errors.New("invalid_recipient")
