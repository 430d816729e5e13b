package facade

import (
	"github.com/peopleops/hris-core/internal/domain/authz"
	"github.com/peopleops/hris-core/internal/domain/directory"
	"github.com/peopleops/hris-core/internal/domain/routing"
	"github.com/peopleops/hris-core/internal/domain/scope"
)

// ResourceDefinition binds one HR record kind to the generic core: its
// routing policy, its approver composition constraints, and its per-role
// capability rows.
type ResourceDefinition struct {
	Resource authz.Resource

	// Route is the routing policy passed to the engine for this kind
	Route routing.RouteConfig

	// Capabilities are the per-role rows that populate the capability table
	Capabilities map[directory.Role]authz.Capability

	// SubjectCannotApprove excludes the case subject from their own routing
	SubjectCannotApprove bool

	// ApproverPool optionally names a declarative candidate filter for
	// case types that assign approvers from a group (awards, evaluations)
	ApproverPool *scope.AssignmentFilter
}

// Registry holds all resource definitions and the capability table built
// from them.
type Registry struct {
	defs  map[authz.Resource]ResourceDefinition
	table *authz.CapabilityTable
}

// NewRegistry builds a registry from the given definitions
func NewRegistry(defs ...ResourceDefinition) *Registry {
	r := &Registry{
		defs:  make(map[authz.Resource]ResourceDefinition, len(defs)),
		table: authz.NewCapabilityTable(),
	}
	for _, def := range defs {
		r.defs[def.Resource] = def
		for role, cap := range def.Capabilities {
			r.table.Register(def.Resource, role, cap)
		}
	}
	return r
}

// Definition returns the definition for a resource kind
func (r *Registry) Definition(resource authz.Resource) (ResourceDefinition, bool) {
	def, ok := r.defs[resource]
	return def, ok
}

// Capability resolves the capability tuple for a role on a resource.
// Unknown pairs resolve to no access.
func (r *Registry) Capability(role directory.Role, resource authz.Resource) authz.Capability {
	return r.table.Resolve(role, resource)
}

// Resources lists the registered resource kinds
func (r *Registry) Resources() []authz.Resource {
	out := make([]authz.Resource, 0, len(r.defs))
	for res := range r.defs {
		out = append(out, res)
	}
	return out
}
