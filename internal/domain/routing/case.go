package routing

import (
	"time"

	"github.com/peopleops/hris-core/internal/domain/authz"
	"github.com/peopleops/hris-core/internal/domain/directory"
)

// StepStatus is the state of one approval step
type StepStatus string

const (
	StepStatusPending   StepStatus = "PENDING"
	StepStatusApproved  StepStatus = "APPROVED"
	StepStatusDeclined  StepStatus = "DECLINED"
	StepStatusCancelled StepStatus = "CANCELLED"
)

// Decision is the verdict an approver records on their step
type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionDeclined Decision = "DECLINED"
)

// IsValid returns true for a defined decision value
func (d Decision) IsValid() bool {
	return d == DecisionApproved || d == DecisionDeclined
}

// ApprovalStep is one approver's position within a case routing.
// Order is 1-based and unique within a cycle; the approver's role is
// captured at assignment time and kept even if it later changes.
type ApprovalStep struct {
	ID              int64          `json:"id"`
	CaseID          int64          `json:"case_id"`
	Cycle           int            `json:"cycle"`
	Order           int            `json:"order"`
	ApproverUserID  string         `json:"approver_user_id"`
	ApproverRole    directory.Role `json:"approver_role_at_assignment"`
	Status          StepStatus     `json:"status"`
	DecidedAt       *time.Time     `json:"decided_at,omitempty"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Case is the generic approval-bearing record every entity type is built
// from. It is mutated only through Engine transitions and never deleted.
type Case struct {
	ID                int64          `json:"id"`
	Resource          authz.Resource `json:"resource"`
	SubjectEmployeeID string         `json:"subject_employee_id"`
	RequesterID       string         `json:"requester_id"`
	BusinessUnitID    string         `json:"business_unit_id"`
	Status            Status         `json:"status"`

	// Cycle counts submission rounds; resubmission after a decline starts a
	// new cycle while the decided steps of prior cycles stay in History.
	Cycle   int            `json:"cycle"`
	Steps   []ApprovalStep `json:"steps"`
	History []ApprovalStep `json:"history,omitempty"`

	// Version is the optimistic-concurrency token owned by the store
	Version int64 `json:"version"`

	SubmittedAt time.Time  `json:"submitted_at"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PendingStepFor returns the pending step assigned to the user, nil if none
func (c *Case) PendingStepFor(userID string) *ApprovalStep {
	for i := range c.Steps {
		if c.Steps[i].ApproverUserID == userID && c.Steps[i].Status == StepStatusPending {
			return &c.Steps[i]
		}
	}
	return nil
}

// lowestPendingOrder returns the smallest order among pending steps, 0 if none
func (c *Case) lowestPendingOrder() int {
	lowest := 0
	for _, s := range c.Steps {
		if s.Status != StepStatusPending {
			continue
		}
		if lowest == 0 || s.Order < lowest {
			lowest = s.Order
		}
	}
	return lowest
}

// AllApproved reports whether every step in the current cycle is approved
func (c *Case) AllApproved() bool {
	if len(c.Steps) == 0 {
		return false
	}
	for _, s := range c.Steps {
		if s.Status != StepStatusApproved {
			return false
		}
	}
	return true
}

// AnyDeclined reports whether any step in the current cycle is declined
func (c *Case) AnyDeclined() bool {
	for _, s := range c.Steps {
		if s.Status == StepStatusDeclined {
			return true
		}
	}
	return false
}

// RejectionReasons collects the recorded decline reasons across all cycles,
// oldest first. Prior cycles are never erased.
func (c *Case) RejectionReasons() []string {
	var reasons []string
	for _, s := range c.History {
		if s.Status == StepStatusDeclined && s.RejectionReason != "" {
			reasons = append(reasons, s.RejectionReason)
		}
	}
	for _, s := range c.Steps {
		if s.Status == StepStatusDeclined && s.RejectionReason != "" {
			reasons = append(reasons, s.RejectionReason)
		}
	}
	return reasons
}
