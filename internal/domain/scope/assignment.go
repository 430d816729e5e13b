package scope

import (
	"github.com/peopleops/hris-core/internal/domain/directory"
)

// AssignmentFilter is a declarative membership predicate used when a case
// type assigns a group of candidates (e.g. the eligible peer pool for an
// award or evaluation) relative to a subject.
type AssignmentFilter struct {
	BusinessUnitID string `json:"business_unit_id,omitempty"`
	DepartmentID   string `json:"department_id,omitempty"`
	ExcludeSubject bool   `json:"exclude_subject"`
}

// Matches evaluates the filter against a subject/candidate pair.
// Unset fields do not constrain; inactive candidates never match.
func (f AssignmentFilter) Matches(subject, candidate directory.Actor) bool {
	if !candidate.IsActive() {
		return false
	}
	if f.ExcludeSubject && candidate.ID == subject.ID {
		return false
	}
	if f.BusinessUnitID != "" && candidate.BusinessUnitID != f.BusinessUnitID {
		return false
	}
	if f.DepartmentID != "" && candidate.DepartmentID != f.DepartmentID {
		return false
	}
	return true
}

// EligibleCandidates returns the actors in the snapshot matching the filter
// relative to the subject.
func EligibleCandidates(snap *directory.Snapshot, subject directory.Actor, filter AssignmentFilter) []directory.Actor {
	var out []directory.Actor
	for _, candidate := range snap.Actors() {
		if filter.Matches(subject, candidate) {
			out = append(out, candidate)
		}
	}
	return out
}
