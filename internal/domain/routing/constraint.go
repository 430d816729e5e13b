package routing

import (
	"github.com/peopleops/hris-core/internal/domain/directory"
)

// ApproverSelection is one chosen approver at submission time. Selection
// order is significant: it becomes the step order and is never re-sorted.
type ApproverSelection struct {
	UserID string         `json:"user_id"`
	Role   directory.Role `json:"role"`
}

// CompositionConstraint validates the approver composition of a submission.
// Facades supply these; a failed constraint aborts before any persistence.
type CompositionConstraint func(selections []ApproverSelection) error

// RequireRole demands at least one selected approver holding the role
func RequireRole(role directory.Role) CompositionConstraint {
	return func(selections []ApproverSelection) error {
		for _, sel := range selections {
			if sel.Role == role {
				return nil
			}
		}
		return NewValidationError("at least one approver with role %s is required", role)
	}
}

// MinApprovers demands a minimum number of selected approvers
func MinApprovers(n int) CompositionConstraint {
	return func(selections []ApproverSelection) error {
		if len(selections) < n {
			return NewValidationError("at least %d approver(s) required, got %d", n, len(selections))
		}
		return nil
	}
}

// NoDuplicateApprovers rejects the same user appearing twice in the routing
func NoDuplicateApprovers() CompositionConstraint {
	return func(selections []ApproverSelection) error {
		seen := make(map[string]bool, len(selections))
		for _, sel := range selections {
			if seen[sel.UserID] {
				return NewValidationError("approver %s selected more than once", sel.UserID)
			}
			seen[sel.UserID] = true
		}
		return nil
	}
}

// ExcludeSubject rejects routings where the case subject approves their own case
func ExcludeSubject(subjectEmployeeID string) CompositionConstraint {
	return func(selections []ApproverSelection) error {
		for _, sel := range selections {
			if sel.UserID == subjectEmployeeID {
				return NewValidationError("subject %s cannot approve their own case", subjectEmployeeID)
			}
		}
		return nil
	}
}
