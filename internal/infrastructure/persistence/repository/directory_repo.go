package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/peopleops/hris-core/internal/application/port"
	"github.com/peopleops/hris-core/internal/domain/directory"
	"github.com/peopleops/hris-core/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// DirectoryRepository implements port.DirectorySource over the synced
// actors and org_units tables.
type DirectoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDirectoryRepository creates a new directory repository
func NewDirectoryRepository(db *sql.DB, logger *zap.Logger) port.DirectorySource {
	return &DirectoryRepository{db: db, logger: logger}
}

func (r *DirectoryRepository) executor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

// LoadActors returns every actor regardless of status; the resolver decides
// who is visible.
func (r *DirectoryRepository) LoadActors(ctx context.Context) ([]directory.Actor, error) {
	query := `
		SELECT id, name, role, business_unit_id, department_id, manager_id,
			status, scope_kind, allowed_org_unit_ids
		FROM actors
		ORDER BY id
	`

	rows, err := r.executor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to load actors", zap.Error(err))
		return nil, fmt.Errorf("failed to load actors: %w", err)
	}
	defer rows.Close()

	var actors []directory.Actor
	for rows.Next() {
		var (
			a          directory.Actor
			role       string
			deptID     sql.NullString
			managerID  sql.NullString
			status     string
			scopeKind  sql.NullString
			allowedIDs sql.NullString
		)
		if err := rows.Scan(
			&a.ID, &a.Name, &role, &a.BusinessUnitID,
			&deptID, &managerID, &status, &scopeKind, &allowedIDs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan actor: %w", err)
		}
		a.Role = directory.Role(role)
		a.DepartmentID = deptID.String
		a.ManagerID = managerID.String
		a.Status = directory.ActorStatus(status)

		if scopeKind.Valid && scopeKind.String != "" {
			a.Scope.Kind = directory.ScopeKind(scopeKind.String)
		} else {
			a.Scope.Kind = directory.ScopeKindHomeOnly
		}
		if allowedIDs.Valid && allowedIDs.String != "" {
			if err := json.Unmarshal([]byte(allowedIDs.String), &a.Scope.AllowedOrgUnitIDs); err != nil {
				r.logger.Error("Malformed allowed_org_unit_ids, treating as empty",
					zap.String("actor_id", a.ID), zap.Error(err))
				a.Scope.AllowedOrgUnitIDs = []string{}
			}
		}

		actors = append(actors, a)
	}
	return actors, rows.Err()
}

// LoadOrgUnits returns all business units and departments
func (r *DirectoryRepository) LoadOrgUnits(ctx context.Context) ([]directory.OrgUnit, error) {
	query := `
		SELECT id, name, kind, parent_business_unit_id
		FROM org_units
		ORDER BY id
	`

	rows, err := r.executor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to load org units", zap.Error(err))
		return nil, fmt.Errorf("failed to load org units: %w", err)
	}
	defer rows.Close()

	var units []directory.OrgUnit
	for rows.Next() {
		var (
			u      directory.OrgUnit
			kind   string
			parent sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Name, &kind, &parent); err != nil {
			return nil, fmt.Errorf("failed to scan org unit: %w", err)
		}
		u.Kind = directory.OrgUnitKind(kind)
		u.ParentBusinessUnitID = parent.String
		units = append(units, u)
	}
	return units, rows.Err()
}
