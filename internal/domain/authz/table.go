package authz

import (
	"fmt"

	"github.com/peopleops/hris-core/internal/domain/directory"
)

// PermissionSet is the set of permissions a role holds on one resource
type PermissionSet map[Permission]bool

// NewPermissionSet builds a set from the given permissions
func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = true
	}
	return set
}

// Has returns true if the exact permission is in the set
func (s PermissionSet) Has(p Permission) bool {
	return s[p]
}

// IsEmpty returns true if no permission is granted
func (s PermissionSet) IsEmpty() bool {
	return len(s) == 0
}

// PermissionTable maps role and resource to the granted permission set.
// Missing entries always deny; nothing is granted implicitly except the
// View-from-any-grant and Manage-implies-all rules applied by the Gate.
type PermissionTable map[directory.Role]map[Resource]PermissionSet

// Grant records a permission set for a role on a resource
func (t PermissionTable) Grant(role directory.Role, resource Resource, perms ...Permission) {
	if t[role] == nil {
		t[role] = make(map[Resource]PermissionSet)
	}
	t[role][resource] = NewPermissionSet(perms...)
}

// Lookup returns the permission set for a role on a resource, nil if absent
func (t PermissionTable) Lookup(role directory.Role, resource Resource) PermissionSet {
	byResource, ok := t[role]
	if !ok {
		return nil
	}
	return byResource[resource]
}

// Validate checks the table exhaustively at startup: every key must be a
// defined role, resource and permission. Unknown entries are configuration
// mistakes and must fail loudly rather than silently grant or deny.
func (t PermissionTable) Validate() error {
	for role, byResource := range t {
		if !role.IsValid() {
			return fmt.Errorf("permission table: unknown role %q", role)
		}
		for resource, set := range byResource {
			if !resource.IsValid() {
				return fmt.Errorf("permission table: unknown resource %q for role %s", resource, role)
			}
			for perm := range set {
				if !perm.IsValid() {
					return fmt.Errorf("permission table: unknown permission %q for role %s on %s", perm, role, resource)
				}
			}
		}
	}
	return nil
}

// DefaultTable returns the standard role grants for the HR record kinds.
// Entity-specific request/approve reach on top of these comes from the
// capability table owned by each resource definition.
func DefaultTable() PermissionTable {
	t := make(PermissionTable)

	for _, res := range AllResources() {
		t.Grant(directory.RoleAdmin, res, PermissionManage)
		t.Grant(directory.RoleHRManager, res, PermissionView, PermissionCreate, PermissionEdit, PermissionApprove)
		t.Grant(directory.RoleHRStaff, res, PermissionView, PermissionCreate, PermissionEdit)
		t.Grant(directory.RoleAuditor, res, PermissionView)
	}

	// Approval-chain roles act on routed cases but do not author HR records,
	// except for their own self-service requests: everyone files their own
	// overtime, executives nominate awards, and business unit managers file
	// certificates and notices for their unit.
	for _, role := range []directory.Role{
		directory.RoleBOD,
		directory.RoleGeneralManager,
		directory.RoleOperationsDirector,
		directory.RoleBusinessUnitManager,
	} {
		for _, res := range AllResources() {
			t.Grant(role, res, PermissionView, PermissionApprove)
		}
		t.Grant(role, ResourceOvertimeRequest, PermissionView, PermissionCreate, PermissionApprove)
	}
	for _, role := range []directory.Role{
		directory.RoleGeneralManager,
		directory.RoleOperationsDirector,
		directory.RoleBusinessUnitManager,
	} {
		t.Grant(role, ResourceEmployeeAward, PermissionView, PermissionCreate, PermissionApprove)
	}
	t.Grant(directory.RoleBusinessUnitManager, ResourceCertificateOfEmployment, PermissionView, PermissionCreate, PermissionApprove)
	t.Grant(directory.RoleBusinessUnitManager, ResourceNoticeToExplain, PermissionView, PermissionCreate, PermissionApprove)

	// Line managers and staff roles: self-service requests plus viewing.
	for _, role := range []directory.Role{
		directory.RoleManager,
		directory.RoleRecruiter,
		directory.RoleFinanceStaff,
		directory.RoleEmployee,
	} {
		t.Grant(role, ResourceCertificateOfEmployment, PermissionView, PermissionCreate)
		t.Grant(role, ResourceOvertimeRequest, PermissionView, PermissionCreate)
	}

	// Line managers approve their team's requests, sign envelopes, and
	// initiate disciplinary paperwork for their teams.
	t.Grant(directory.RoleManager, ResourceOvertimeRequest, PermissionView, PermissionCreate, PermissionApprove)
	t.Grant(directory.RoleManager, ResourceDocumentEnvelope, PermissionView, PermissionApprove)
	t.Grant(directory.RoleManager, ResourceNoticeToExplain, PermissionView, PermissionCreate, PermissionEdit)
	t.Grant(directory.RoleManager, ResourceEmployeeAward, PermissionView, PermissionCreate)

	return t
}
