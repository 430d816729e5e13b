package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/peopleops/hris-core/internal/application/port"
	"github.com/peopleops/hris-core/internal/domain/authz"
	"github.com/peopleops/hris-core/internal/domain/directory"
	"github.com/peopleops/hris-core/internal/domain/routing"
	"github.com/peopleops/hris-core/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// CaseRepository implements port.CaseRepository over sqlite.
// Saves are guarded by the case version: a concurrent writer that updated
// the row first wins, the loser gets routing.ErrConflict.
type CaseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *sql.DB, logger *zap.Logger) port.CaseRepository {
	return &CaseRepository{db: db, logger: logger}
}

func (r *CaseRepository) executor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

// Create inserts a new case with its steps. Version starts at 1.
func (r *CaseRepository) Create(ctx context.Context, c *routing.Case) error {
	query := `
		INSERT INTO cases (
			resource, subject_employee_id, requester_id, business_unit_id,
			status, cycle, version, submitted_at, decided_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?, ?, ?)
	`

	result, err := r.executor(ctx).ExecContext(ctx, query,
		c.Resource,
		c.SubjectEmployeeID,
		c.RequesterID,
		c.BusinessUnitID,
		c.Status,
		c.Cycle,
		c.SubmittedAt,
		nullableTime(c.DecidedAt),
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create case", zap.Error(err))
		return fmt.Errorf("failed to create case: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	c.ID = id
	c.Version = 1

	for i := range c.Steps {
		c.Steps[i].CaseID = id
	}
	if err := r.insertSteps(ctx, c.Steps); err != nil {
		return err
	}
	return nil
}

// GetByID loads a case with all its steps. Steps of prior cycles land in
// History, the current cycle in Steps. Returns nil when absent.
func (r *CaseRepository) GetByID(ctx context.Context, id int64) (*routing.Case, error) {
	query := `
		SELECT id, resource, subject_employee_id, requester_id, business_unit_id,
			status, cycle, version, submitted_at, decided_at, created_at, updated_at
		FROM cases
		WHERE id = ?
	`

	c, err := r.scanCase(r.executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get case", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get case: %w", err)
	}

	if err := r.loadSteps(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Save persists the case and rewrites its steps, enforcing optimistic
// concurrency on the version column.
func (r *CaseRepository) Save(ctx context.Context, c *routing.Case) error {
	query := `
		UPDATE cases
		SET status = ?, cycle = ?, version = version + 1,
			submitted_at = ?, decided_at = ?, updated_at = ?
		WHERE id = ? AND version = ?
	`

	result, err := r.executor(ctx).ExecContext(ctx, query,
		c.Status,
		c.Cycle,
		c.SubmittedAt,
		nullableTime(c.DecidedAt),
		c.UpdatedAt,
		c.ID,
		c.Version,
	)
	if err != nil {
		r.logger.Error("Failed to save case", zap.Int64("id", c.ID), zap.Error(err))
		return fmt.Errorf("failed to save case: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: case %d was updated concurrently", routing.ErrConflict, c.ID)
	}
	c.Version++

	// Steps are rewritten wholesale; cases never lose audit rows because
	// History carries every prior cycle.
	if _, err := r.executor(ctx).ExecContext(ctx, "DELETE FROM approval_steps WHERE case_id = ?", c.ID); err != nil {
		return fmt.Errorf("failed to clear steps: %w", err)
	}
	if err := r.insertSteps(ctx, c.History); err != nil {
		return err
	}
	if err := r.insertSteps(ctx, c.Steps); err != nil {
		return err
	}
	return nil
}

// List returns cases matching the filter, newest first
func (r *CaseRepository) List(ctx context.Context, filter port.CaseFilter) ([]*routing.Case, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.Resource != "" {
		conditions = append(conditions, "resource = ?")
		args = append(args, filter.Resource)
	}
	if len(filter.Statuses) > 0 {
		placeholders := strings.Repeat("?,", len(filter.Statuses))
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", placeholders[:len(placeholders)-1]))
		for _, s := range filter.Statuses {
			args = append(args, s)
		}
	}
	if len(filter.SubjectIDs) > 0 {
		placeholders := strings.Repeat("?,", len(filter.SubjectIDs))
		conditions = append(conditions, fmt.Sprintf("subject_employee_id IN (%s)", placeholders[:len(placeholders)-1]))
		for _, id := range filter.SubjectIDs {
			args = append(args, id)
		}
	}

	query := `
		SELECT id, resource, subject_employee_id, requester_id, business_unit_id,
			status, cycle, version, submitted_at, decided_at, created_at, updated_at
		FROM cases
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}

	rows, err := r.executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list cases", zap.Error(err))
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close()

	var cases []*routing.Case
	for rows.Next() {
		c, err := r.scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, c := range cases {
		if err := r.loadSteps(ctx, c); err != nil {
			return nil, err
		}
	}
	return cases, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *CaseRepository) scanCase(row rowScanner) (*routing.Case, error) {
	var (
		c         routing.Case
		resource  string
		status    string
		decidedAt sql.NullTime
	)
	err := row.Scan(
		&c.ID,
		&resource,
		&c.SubjectEmployeeID,
		&c.RequesterID,
		&c.BusinessUnitID,
		&status,
		&c.Cycle,
		&c.Version,
		&c.SubmittedAt,
		&decidedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Resource = authz.Resource(resource)
	c.Status = routing.Status(status)
	if decidedAt.Valid {
		c.DecidedAt = &decidedAt.Time
	}
	return &c, nil
}

func (r *CaseRepository) loadSteps(ctx context.Context, c *routing.Case) error {
	query := `
		SELECT id, case_id, cycle, step_order, approver_user_id, approver_role,
			status, decided_at, rejection_reason, created_at
		FROM approval_steps
		WHERE case_id = ?
		ORDER BY cycle, step_order
	`

	rows, err := r.executor(ctx).QueryContext(ctx, query, c.ID)
	if err != nil {
		return fmt.Errorf("failed to load steps: %w", err)
	}
	defer rows.Close()

	c.Steps = nil
	c.History = nil
	for rows.Next() {
		var (
			step      routing.ApprovalStep
			role      string
			status    string
			decidedAt sql.NullTime
			reason    sql.NullString
		)
		if err := rows.Scan(
			&step.ID,
			&step.CaseID,
			&step.Cycle,
			&step.Order,
			&step.ApproverUserID,
			&role,
			&status,
			&decidedAt,
			&reason,
			&step.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to scan step: %w", err)
		}
		step.ApproverRole = directory.Role(role)
		step.Status = routing.StepStatus(status)
		if decidedAt.Valid {
			step.DecidedAt = &decidedAt.Time
		}
		if reason.Valid {
			step.RejectionReason = reason.String
		}

		if step.Cycle == c.Cycle {
			c.Steps = append(c.Steps, step)
		} else {
			c.History = append(c.History, step)
		}
	}
	return rows.Err()
}

func (r *CaseRepository) insertSteps(ctx context.Context, steps []routing.ApprovalStep) error {
	query := `
		INSERT INTO approval_steps (
			case_id, cycle, step_order, approver_user_id, approver_role,
			status, decided_at, rejection_reason, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i := range steps {
		step := &steps[i]
		result, err := r.executor(ctx).ExecContext(ctx, query,
			step.CaseID,
			step.Cycle,
			step.Order,
			step.ApproverUserID,
			step.ApproverRole,
			step.Status,
			nullableTime(step.DecidedAt),
			step.RejectionReason,
			step.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert step: %w", err)
		}
		if id, err := result.LastInsertId(); err == nil {
			step.ID = id
		}
	}
	return nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
