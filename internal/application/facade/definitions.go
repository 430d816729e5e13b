package facade

import (
	"github.com/peopleops/hris-core/internal/domain/authz"
	"github.com/peopleops/hris-core/internal/domain/directory"
	"github.com/peopleops/hris-core/internal/domain/routing"
	"github.com/peopleops/hris-core/internal/domain/scope"
)

func capability(request, approve bool, class authz.ScopeClass) authz.Capability {
	return authz.Capability{
		CanRequest: request,
		CanApprove: approve,
		CanView:    true,
		Scope:      class,
	}
}

func viewOnly(class authz.ScopeClass) authz.Capability {
	return authz.Capability{CanView: true, Scope: class}
}

// hrRows are the rows shared by every record kind: HR owns the paperwork,
// admins reach everything, auditors read everything.
func hrRows() map[directory.Role]authz.Capability {
	return map[directory.Role]authz.Capability{
		directory.RoleAdmin:     capability(true, true, authz.ScopeGlobal),
		directory.RoleHRManager: capability(true, true, authz.ScopeGlobal),
		directory.RoleHRStaff:   capability(true, false, authz.ScopeGlobal),
		directory.RoleAuditor:   viewOnly(authz.ScopeGlobal),
	}
}

func merge(base, extra map[directory.Role]authz.Capability) map[directory.Role]authz.Capability {
	for role, cap := range extra {
		base[role] = cap
	}
	return base
}

// DefaultDefinitions returns the resource bindings for the HR record kinds.
// Each row is an explicit lookup entry: the same role gets different
// capability tuples on different record kinds, and absent rows deny.
func DefaultDefinitions() []ResourceDefinition {
	return []ResourceDefinition{
		{
			// Employees request their own certificate; BOD may see them
			// globally but neither requests nor approves.
			Resource: authz.ResourceCertificateOfEmployment,
			Route: routing.RouteConfig{
				Constraints: []routing.CompositionConstraint{
					routing.NoDuplicateApprovers(),
					routing.RequireRole(directory.RoleHRManager),
				},
			},
			Capabilities: merge(hrRows(), map[directory.Role]authz.Capability{
				directory.RoleBOD:                 viewOnly(authz.ScopeGlobal),
				directory.RoleGeneralManager:      viewOnly(authz.ScopeGlobal),
				directory.RoleOperationsDirector:  viewOnly(authz.ScopeGlobal),
				directory.RoleBusinessUnitManager: capability(true, false, authz.ScopeBU),
				directory.RoleManager:             capability(true, false, authz.ScopeTeam),
				directory.RoleRecruiter:           capability(true, false, authz.ScopeSelf),
				directory.RoleFinanceStaff:        capability(true, false, authz.ScopeSelf),
				directory.RoleEmployee:            capability(true, false, authz.ScopeSelf),
			}),
		},
		{
			// Overtime: anyone requests for themself, the management chain
			// approves. BOD request overtime like everyone else.
			Resource: authz.ResourceOvertimeRequest,
			Route: routing.RouteConfig{
				Constraints: []routing.CompositionConstraint{
					routing.NoDuplicateApprovers(),
				},
			},
			Capabilities: merge(hrRows(), map[directory.Role]authz.Capability{
				directory.RoleBOD:                 capability(true, true, authz.ScopeGlobal),
				directory.RoleGeneralManager:      capability(true, true, authz.ScopeGlobal),
				directory.RoleOperationsDirector:  capability(true, true, authz.ScopeGlobal),
				directory.RoleBusinessUnitManager: capability(true, true, authz.ScopeBU),
				directory.RoleManager:             capability(true, true, authz.ScopeTeam),
				directory.RoleRecruiter:           capability(true, false, authz.ScopeSelf),
				directory.RoleFinanceStaff:        capability(true, false, authz.ScopeSelf),
				directory.RoleEmployee:            capability(true, false, authz.ScopeSelf),
			}),
		},
		{
			// Notices to Explain are issued by managers or HR; the subject
			// never sits in their own routing.
			Resource:             authz.ResourceNoticeToExplain,
			SubjectCannotApprove: true,
			Route: routing.RouteConfig{
				Constraints: []routing.CompositionConstraint{
					routing.NoDuplicateApprovers(),
					routing.RequireRole(directory.RoleHRManager),
				},
			},
			Capabilities: merge(hrRows(), map[directory.Role]authz.Capability{
				directory.RoleBOD:                 capability(false, true, authz.ScopeGlobal),
				directory.RoleGeneralManager:      capability(false, true, authz.ScopeGlobal),
				directory.RoleOperationsDirector:  capability(false, true, authz.ScopeGlobal),
				directory.RoleBusinessUnitManager: capability(true, true, authz.ScopeBU),
				directory.RoleManager:             capability(true, false, authz.ScopeTeam),
				directory.RoleRecruiter:           viewOnly(authz.ScopeSelf),
				directory.RoleFinanceStaff:        viewOnly(authz.ScopeSelf),
				directory.RoleEmployee:            viewOnly(authz.ScopeSelf),
			}),
		},
		{
			// Disciplinary resolutions need a BOD signature and the
			// subject's acknowledgement after approval.
			Resource:             authz.ResourceDisciplinaryResolution,
			SubjectCannotApprove: true,
			Route: routing.RouteConfig{
				RequiresAcknowledgement: true,
				Constraints: []routing.CompositionConstraint{
					routing.NoDuplicateApprovers(),
					routing.RequireRole(directory.RoleBOD),
				},
			},
			Capabilities: merge(hrRows(), map[directory.Role]authz.Capability{
				directory.RoleBOD:                capability(false, true, authz.ScopeGlobal),
				directory.RoleGeneralManager:     capability(false, true, authz.ScopeGlobal),
				directory.RoleOperationsDirector: capability(false, true, authz.ScopeGlobal),
				directory.RoleRecruiter:          viewOnly(authz.ScopeSelf),
				directory.RoleFinanceStaff:       viewOnly(authz.ScopeSelf),
				directory.RoleEmployee:           viewOnly(authz.ScopeSelf),
			}),
		},
		{
			// Personnel action notices walk the chain strictly in order.
			Resource: authz.ResourcePersonnelActionNotice,
			Route: routing.RouteConfig{
				Sequential: true,
				Constraints: []routing.CompositionConstraint{
					routing.NoDuplicateApprovers(),
					routing.RequireRole(directory.RoleGeneralManager),
				},
			},
			Capabilities: merge(hrRows(), map[directory.Role]authz.Capability{
				directory.RoleBOD:                 capability(false, true, authz.ScopeGlobal),
				directory.RoleGeneralManager:      capability(false, true, authz.ScopeGlobal),
				directory.RoleOperationsDirector:  capability(false, true, authz.ScopeGlobal),
				directory.RoleBusinessUnitManager: capability(false, true, authz.ScopeBU),
				directory.RoleRecruiter:           viewOnly(authz.ScopeSelf),
				directory.RoleFinanceStaff:        viewOnly(authz.ScopeSelf),
				directory.RoleEmployee:            viewOnly(authz.ScopeSelf),
			}),
		},
		{
			// Document envelopes are signed by the selected signatories one
			// after the other; selection order is the signing order.
			Resource: authz.ResourceDocumentEnvelope,
			Route: routing.RouteConfig{
				Sequential: true,
				Constraints: []routing.CompositionConstraint{
					routing.NoDuplicateApprovers(),
				},
			},
			Capabilities: merge(hrRows(), map[directory.Role]authz.Capability{
				directory.RoleBOD:                 capability(false, true, authz.ScopeGlobal),
				directory.RoleGeneralManager:      capability(false, true, authz.ScopeGlobal),
				directory.RoleOperationsDirector:  capability(false, true, authz.ScopeGlobal),
				directory.RoleBusinessUnitManager: capability(false, true, authz.ScopeBU),
				directory.RoleManager:             capability(false, true, authz.ScopeTeam),
				directory.RoleRecruiter:           viewOnly(authz.ScopeSelf),
				directory.RoleFinanceStaff:        viewOnly(authz.ScopeSelf),
				directory.RoleEmployee:            viewOnly(authz.ScopeSelf),
			}),
		},
		{
			// Award nominations are approved by peers from the subject's own
			// business unit, excluding the subject.
			Resource:             authz.ResourceEmployeeAward,
			SubjectCannotApprove: true,
			Route: routing.RouteConfig{
				Constraints: []routing.CompositionConstraint{
					routing.NoDuplicateApprovers(),
				},
			},
			ApproverPool: &scope.AssignmentFilter{ExcludeSubject: true},
			Capabilities: merge(hrRows(), map[directory.Role]authz.Capability{
				directory.RoleBOD:                 capability(false, true, authz.ScopeGlobal),
				directory.RoleGeneralManager:      capability(true, true, authz.ScopeGlobal),
				directory.RoleOperationsDirector:  capability(true, true, authz.ScopeGlobal),
				directory.RoleBusinessUnitManager: capability(true, true, authz.ScopeBU),
				directory.RoleManager:             capability(true, false, authz.ScopeTeam),
				directory.RoleEmployee:            viewOnly(authz.ScopeSelf),
			}),
		},
	}
}

// EligibleApprovers resolves the candidate approver pool for a resource
// relative to a subject. Definitions without a pool filter return nil.
// A pool filter with no business unit pins the pool to the subject's own.
func (r *Registry) EligibleApprovers(resource authz.Resource, snap *directory.Snapshot, subject directory.Actor) []directory.Actor {
	def, ok := r.defs[resource]
	if !ok || def.ApproverPool == nil {
		return nil
	}
	filter := *def.ApproverPool
	if filter.BusinessUnitID == "" {
		filter.BusinessUnitID = subject.BusinessUnitID
	}
	return scope.EligibleCandidates(snap, subject, filter)
}

// DefaultRegistry builds a registry with the default definitions
func DefaultRegistry() *Registry {
	return NewRegistry(DefaultDefinitions()...)
}
