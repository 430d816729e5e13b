package authz

import (
	"github.com/peopleops/hris-core/internal/domain/directory"
)

// GateConfig controls RBAC enforcement
type GateConfig struct {
	// Enabled toggles enforcement globally. When false every check passes.
	Enabled bool

	// SuperAdminRole bypasses all checks. Defaults to Admin.
	SuperAdminRole directory.Role
}

// Gate answers boolean authorization checks against the permission table.
// Checks are pure map lookups and may be called many times per request.
type Gate struct {
	table      PermissionTable
	enabled    bool
	superAdmin directory.Role
}

// NewGate creates a gate over a validated permission table
func NewGate(table PermissionTable, cfg GateConfig) *Gate {
	superAdmin := cfg.SuperAdminRole
	if superAdmin == "" {
		superAdmin = directory.RoleAdmin
	}
	return &Gate{
		table:      table,
		enabled:    cfg.Enabled,
		superAdmin: superAdmin,
	}
}

// Can reports whether the actor holds the permission on the resource.
//
// Rules, in order: RBAC disabled or super-admin role passes unconditionally;
// a missing actor or an absent/empty permission set denies; View is implied
// by any grant on the resource; Manage subsumes every permission; otherwise
// the exact permission must be in the set.
func (g *Gate) Can(actor *directory.Actor, resource Resource, permission Permission) bool {
	if !g.enabled {
		return true
	}
	if actor == nil {
		return false
	}
	if actor.Role == g.superAdmin {
		return true
	}

	set := g.table.Lookup(actor.Role, resource)
	if set.IsEmpty() {
		return false
	}
	if permission == PermissionView {
		return true
	}
	if set.Has(PermissionManage) {
		return true
	}
	return set.Has(permission)
}
