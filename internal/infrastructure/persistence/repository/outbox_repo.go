package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/peopleops/hris-core/internal/infrastructure/persistence/sqlite"
	"github.com/peopleops/hris-core/internal/notification"
	"go.uber.org/zap"
)

// OutboxRepository implements notification.OutboxRepository over sqlite
type OutboxRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOutboxRepository creates a new notification outbox repository
func NewOutboxRepository(db *sql.DB, logger *zap.Logger) notification.OutboxRepository {
	return &OutboxRepository{db: db, logger: logger}
}

func (r *OutboxRepository) executor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

// Create queues a notification entry
func (r *OutboxRepository) Create(ctx context.Context, entry *notification.Entry) error {
	query := `
		INSERT INTO notifications (user_id, title, message, link, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.executor(ctx).ExecContext(ctx, query,
		entry.UserID, entry.Title, entry.Message, entry.Link, entry.Status, entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create notification", zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// ListPending returns queued entries oldest first
func (r *OutboxRepository) ListPending(ctx context.Context, limit int) ([]*notification.Entry, error) {
	query := `
		SELECT id, user_id, title, message, link, status, error, created_at, sent_at
		FROM notifications
		WHERE status = ?
		ORDER BY id
		LIMIT ?
	`

	rows, err := r.executor(ctx).QueryContext(ctx, query, notification.StatusPending, limit)
	if err != nil {
		r.logger.Error("Failed to list pending notifications", zap.Error(err))
		return nil, fmt.Errorf("failed to list pending notifications: %w", err)
	}
	defer rows.Close()

	var entries []*notification.Entry
	for rows.Next() {
		var (
			e       notification.Entry
			link    sql.NullString
			errMsg  sql.NullString
			sentAt  sql.NullTime
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Message, &link, &e.Status, &errMsg, &e.CreatedAt, &sentAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		e.Link = link.String
		e.Error = errMsg.String
		if sentAt.Valid {
			e.SentAt = &sentAt.Time
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// MarkSent flags an entry as delivered
func (r *OutboxRepository) MarkSent(ctx context.Context, id int64) error {
	query := `UPDATE notifications SET status = ?, sent_at = ? WHERE id = ?`
	if _, err := r.executor(ctx).ExecContext(ctx, query, notification.StatusSent, time.Now(), id); err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	return nil
}

// MarkFailed records a delivery failure
func (r *OutboxRepository) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	query := `UPDATE notifications SET status = ?, error = ? WHERE id = ?`
	if _, err := r.executor(ctx).ExecContext(ctx, query, notification.StatusFailed, errMsg, id); err != nil {
		return fmt.Errorf("failed to mark notification failed: %w", err)
	}
	return nil
}
