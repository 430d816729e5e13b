package notification

import (
	"context"
	"fmt"
	"time"
)

// Status constants for outbox entries
const (
	StatusPending = "PENDING"
	StatusSent    = "SENT"
	StatusFailed  = "FAILED"
)

// Entry is one queued notification. Delivery itself is an external
// collaborator's concern; the core only records what should be sent.
type Entry struct {
	ID        int64      `json:"id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Link      string     `json:"link,omitempty"`
	Status    string     `json:"status"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}

// OutboxRepository persists queued notifications
type OutboxRepository interface {
	Create(ctx context.Context, entry *Entry) error
	ListPending(ctx context.Context, limit int) ([]*Entry, error)
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, errMsg string) error
}

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// OutboxSink implements the notification sink by writing outbox rows.
// An external delivery worker drains the outbox.
type OutboxSink struct {
	repo   OutboxRepository
	logger Logger
}

// NewOutboxSink creates an outbox-backed notification sink
func NewOutboxSink(repo OutboxRepository, logger Logger) *OutboxSink {
	return &OutboxSink{repo: repo, logger: logger}
}

// Notify queues a notification for the user. Fire-and-forget: queueing
// failures are logged and reported, never retried here.
func (s *OutboxSink) Notify(ctx context.Context, userID, title, message, link string) error {
	entry := &Entry{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Link:      link,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to queue notification", "error", err, "user_id", userID)
		return fmt.Errorf("queue notification: %w", err)
	}
	s.logger.Info("Notification queued", "user_id", userID, "title", title)
	return nil
}
