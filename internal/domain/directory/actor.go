package directory

// Role identifies the organizational role of an actor
type Role string

const (
	RoleAdmin               Role = "ADMIN"
	RoleHRManager           Role = "HR_MANAGER"
	RoleHRStaff             Role = "HR_STAFF"
	RoleBOD                 Role = "BOD"
	RoleGeneralManager      Role = "GENERAL_MANAGER"
	RoleOperationsDirector  Role = "OPERATIONS_DIRECTOR"
	RoleBusinessUnitManager Role = "BUSINESS_UNIT_MANAGER"
	RoleManager             Role = "MANAGER"
	RoleRecruiter           Role = "RECRUITER"
	RoleFinanceStaff        Role = "FINANCE_STAFF"
	RoleAuditor             Role = "AUDITOR"
	RoleEmployee            Role = "EMPLOYEE"
)

var validRoles = map[Role]bool{
	RoleAdmin:               true,
	RoleHRManager:           true,
	RoleHRStaff:             true,
	RoleBOD:                 true,
	RoleGeneralManager:      true,
	RoleOperationsDirector:  true,
	RoleBusinessUnitManager: true,
	RoleManager:             true,
	RoleRecruiter:           true,
	RoleFinanceStaff:        true,
	RoleAuditor:             true,
	RoleEmployee:            true,
}

// IsValid returns true if the role is one of the defined roles
func (r Role) IsValid() bool {
	return validRoles[r]
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// AllRoles returns every defined role
func AllRoles() []Role {
	roles := make([]Role, 0, len(validRoles))
	for r := range validRoles {
		roles = append(roles, r)
	}
	return roles
}

// ActorStatus marks whether an actor is active in the directory
type ActorStatus string

const (
	ActorStatusActive   ActorStatus = "ACTIVE"
	ActorStatusInactive ActorStatus = "INACTIVE"
)

// ScopeKind identifies the baseline organizational reach of an actor
type ScopeKind string

const (
	ScopeKindGlobal   ScopeKind = "GLOBAL"
	ScopeKindSpecific ScopeKind = "SPECIFIC"
	ScopeKindHomeOnly ScopeKind = "HOME_ONLY"
)

// AccessScope is the baseline organizational reach attached to an actor,
// before any role-specific overrides apply.
//
// A SPECIFIC scope with an empty id set resolves to no units, never to all.
type AccessScope struct {
	Kind              ScopeKind `json:"kind"`
	AllowedOrgUnitIDs []string  `json:"allowed_org_unit_ids,omitempty"`
}

// Actor represents an authenticated user from the directory sync.
// Actors are read-only to this core; the external sync owns their lifecycle.
type Actor struct {
	ID             string      `json:"id"`
	Name           string      `json:"name,omitempty"`
	Role           Role        `json:"role"`
	BusinessUnitID string      `json:"business_unit_id,omitempty"`
	DepartmentID   string      `json:"department_id,omitempty"`
	ManagerID      string      `json:"manager_id,omitempty"`
	Status         ActorStatus `json:"status"`
	Scope          AccessScope `json:"scope"`
}

// IsActive returns true if the actor is active in the directory
func (a Actor) IsActive() bool {
	return a.Status == ActorStatusActive
}
