package authz

import (
	"github.com/peopleops/hris-core/internal/domain/directory"
)

// ScopeClass is the breadth of organizational reach a capability grants
type ScopeClass string

const (
	ScopeGlobal ScopeClass = "global"
	ScopeBU     ScopeClass = "bu"
	ScopeDept   ScopeClass = "dept"
	ScopeTeam   ScopeClass = "team"
	ScopeSelf   ScopeClass = "self"
	ScopeNone   ScopeClass = "none"
)

// Capability is the per-resource tuple for one role: what the role may do
// with that record kind, and how far its reach extends.
type Capability struct {
	CanRequest bool       `json:"can_request"`
	CanApprove bool       `json:"can_approve"`
	CanView    bool       `json:"can_view"`
	Scope      ScopeClass `json:"scope"`
}

// NoAccess is the zero capability: nothing allowed, no reach
var NoAccess = Capability{Scope: ScopeNone}

type capabilityKey struct {
	role     directory.Role
	resource Resource
}

// CapabilityTable is one generic {role, resource} -> capability mapping,
// populated from data by the resource definitions instead of per-resource
// switch statements. Absent entries resolve to NoAccess.
type CapabilityTable struct {
	rows map[capabilityKey]Capability
}

// NewCapabilityTable creates an empty capability table
func NewCapabilityTable() *CapabilityTable {
	return &CapabilityTable{rows: make(map[capabilityKey]Capability)}
}

// Register records the capability tuple for a role on a resource
func (t *CapabilityTable) Register(resource Resource, role directory.Role, cap Capability) {
	t.rows[capabilityKey{role: role, resource: resource}] = cap
}

// Resolve returns the capability tuple for the role on the resource.
// Missing rows mean no access, never an implicit grant.
func (t *CapabilityTable) Resolve(role directory.Role, resource Resource) Capability {
	if cap, ok := t.rows[capabilityKey{role: role, resource: resource}]; ok {
		return cap
	}
	return NoAccess
}
