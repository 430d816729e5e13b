package scope

import (
	"github.com/peopleops/hris-core/internal/domain/authz"
	"github.com/peopleops/hris-core/internal/domain/directory"
)

// orgWideRoles see every employee inside their accessible org units
var orgWideRoles = map[directory.Role]bool{
	directory.RoleAdmin:               true,
	directory.RoleHRManager:           true,
	directory.RoleHRStaff:             true,
	directory.RoleBOD:                 true,
	directory.RoleGeneralManager:      true,
	directory.RoleAuditor:             true,
	directory.RoleFinanceStaff:        true,
	directory.RoleRecruiter:           true,
	directory.RoleBusinessUnitManager: true,
	directory.RoleOperationsDirector:  true,
}

// Config holds resolver policy knobs
type Config struct {
	// CrossFunctionalDepartments lists department names whose managers get
	// global reach regardless of their own access scope. Externally
	// configured policy, not a hard-coded list.
	CrossFunctionalDepartments []string
}

// Resolver answers which org units and employees an actor can reach.
// All methods are pure functions of the actor and the snapshot passed in;
// the resolver holds only configuration.
type Resolver struct {
	crossFunctional map[string]bool
}

// NewResolver creates a resolver with the given policy
func NewResolver(cfg Config) *Resolver {
	cross := make(map[string]bool, len(cfg.CrossFunctionalDepartments))
	for _, name := range cfg.CrossFunctionalDepartments {
		cross[name] = true
	}
	return &Resolver{crossFunctional: cross}
}

// isCrossFunctionalManager reports whether the actor is a manager in one of
// the configured cross-functional departments.
func (r *Resolver) isCrossFunctionalManager(actor directory.Actor, snap *directory.Snapshot) bool {
	if actor.Role != directory.RoleManager || actor.DepartmentID == "" {
		return false
	}
	return r.crossFunctional[snap.UnitName(actor.DepartmentID)]
}

// AccessibleOrgUnits computes the org units the actor may reach.
//
// Cross-functional managers see all units regardless of their own scope.
// Otherwise the actor's access scope decides: GLOBAL sees all, SPECIFIC is
// filtered to the allowed id set (empty set means no units, never all), and
// the HOME_ONLY default keeps units matching the actor's own business unit
// by id or name.
func (r *Resolver) AccessibleOrgUnits(actor directory.Actor, snap *directory.Snapshot) []directory.OrgUnit {
	units := snap.Units()

	if r.isCrossFunctionalManager(actor, snap) {
		return units
	}

	switch actor.Scope.Kind {
	case directory.ScopeKindGlobal:
		return units

	case directory.ScopeKindSpecific:
		if len(actor.Scope.AllowedOrgUnitIDs) == 0 {
			return nil
		}
		allowed := make(map[string]bool, len(actor.Scope.AllowedOrgUnitIDs))
		for _, id := range actor.Scope.AllowedOrgUnitIDs {
			allowed[id] = true
		}
		var out []directory.OrgUnit
		for _, u := range units {
			if allowed[u.ID] {
				out = append(out, u)
			}
		}
		return out

	default:
		homeName := snap.UnitName(actor.BusinessUnitID)
		var out []directory.OrgUnit
		for _, u := range units {
			if u.ID == actor.BusinessUnitID || (homeName != "" && u.Name == homeName) {
				out = append(out, u)
			}
		}
		return out
	}
}

// accessibleUnitIDSet is AccessibleOrgUnits as a membership set
func (r *Resolver) accessibleUnitIDSet(actor directory.Actor, snap *directory.Snapshot) map[string]bool {
	units := r.AccessibleOrgUnits(actor, snap)
	set := make(map[string]bool, len(units))
	for _, u := range units {
		set[u.ID] = true
	}
	return set
}

// VisibleEmployeeIDs computes the employees the actor may see.
//
// Organization-wide roles see every employee whose business unit falls in
// their accessible units. Managers see themselves plus direct reports only.
// Everyone else sees only themselves.
func (r *Resolver) VisibleEmployeeIDs(actor directory.Actor, snap *directory.Snapshot) []string {
	if orgWideRoles[actor.Role] {
		reachable := r.accessibleUnitIDSet(actor, snap)
		var ids []string
		for _, a := range snap.Actors() {
			if reachable[a.BusinessUnitID] {
				ids = append(ids, a.ID)
			}
		}
		return ids
	}

	if actor.Role == directory.RoleManager {
		ids := []string{actor.ID}
		ids = append(ids, snap.DirectReportIDs(actor.ID)...)
		return ids
	}

	return []string{actor.ID}
}

// FilterByScope keeps the records whose subject falls inside the actor's
// reach for the given scope class.
//
// When a department id is missing on either side of a comparison, that
// sub-condition is treated as satisfied: missing directory data must not
// make an otherwise-visible record disappear.
func FilterByScope[T any](r *Resolver, class authz.ScopeClass, actor directory.Actor, snap *directory.Snapshot, records []T, subjectIDOf func(T) string) []T {
	switch class {
	case authz.ScopeGlobal:
		return records
	case authz.ScopeNone:
		return nil
	case authz.ScopeSelf:
		var out []T
		for _, rec := range records {
			if subjectIDOf(rec) == actor.ID {
				out = append(out, rec)
			}
		}
		return out
	}

	reachable := r.accessibleUnitIDSet(actor, snap)

	var out []T
	for _, rec := range records {
		subjectID := subjectIDOf(rec)
		subject, known := snap.Actor(subjectID)

		switch class {
		case authz.ScopeTeam:
			if subjectID == actor.ID {
				out = append(out, rec)
				continue
			}
			if known && subject.ManagerID == actor.ID {
				out = append(out, rec)
				continue
			}
			if known && reachable[subject.BusinessUnitID] && departmentsMatch(actor, subject) {
				out = append(out, rec)
			}

		case authz.ScopeDept:
			if known && (departmentsMatch(actor, subject) || reachable[subject.BusinessUnitID]) {
				out = append(out, rec)
			} else if !known && subjectID == actor.ID {
				out = append(out, rec)
			}

		case authz.ScopeBU:
			if known && (reachable[subject.BusinessUnitID] || subject.BusinessUnitID == actor.BusinessUnitID) {
				out = append(out, rec)
			}
		}
	}
	return out
}

// departmentsMatch compares department ids with the permissive missing-data
// bias: an absent department on either side satisfies the condition.
func departmentsMatch(a, b directory.Actor) bool {
	if a.DepartmentID == "" || b.DepartmentID == "" {
		return true
	}
	return a.DepartmentID == b.DepartmentID
}
