package routing

import (
	"strings"
	"time"
)

// RouteConfig is the per-case-type routing policy supplied by the facade
type RouteConfig struct {
	// Sequential restricts decisions to the lowest-order pending step.
	// The default (parallel) mode lets any pending approver decide at any
	// time; order is informational only.
	Sequential bool

	// RequiresAcknowledgement routes an approved case through subject
	// sign-off before it can close.
	RequiresAcknowledgement bool

	// CancelPendingOnDecline switches remaining pending steps to Cancelled
	// when the first decline halts the case. When false (the default) the
	// pending steps are left as-is for audit visibility.
	CancelPendingOnDecline bool

	// Constraints validate the approver composition at submission time
	Constraints []CompositionConstraint
}

// DecisionResult tells the caller what a decision changed, so facades can
// decide whom to notify.
type DecisionResult struct {
	Step           *ApprovalStep
	PreviousStatus Status
	NewStatus      Status
	// Approved is true when this decision completed the routing
	Approved bool
	// Declined is true when this decision halted the case
	Declined bool
}

// Engine drives the lifecycle of a case's approval steps, independent of
// what the case represents. All methods are synchronous transformations of
// the case passed in; persistence and per-case serialization live behind
// the storage port.
type Engine struct {
	clock func() time.Time
}

// EngineOption configures the engine
type EngineOption func(*Engine)

// WithClock overrides the time source, used by tests
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) {
		e.clock = clock
	}
}

// NewEngine creates a routing engine
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{clock: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit validates the approver composition and installs the ordered
// pending steps, moving the case to PendingApproval. Nothing is mutated
// when validation fails.
func (e *Engine) Submit(c *Case, selections []ApproverSelection, cfg RouteConfig) error {
	if c.Status != "" && c.Status != StatusDraft {
		return NewValidationError("case in status %s cannot be submitted", c.Status)
	}
	if err := validateSelections(selections, cfg.Constraints); err != nil {
		return err
	}

	machine := BuildCaseMachine(cfg)
	next, err := machine.Fire(StatusDraft, TriggerSubmit)
	if err != nil {
		return err
	}

	now := e.clock()
	c.Cycle = 1
	c.Steps = buildSteps(c.ID, c.Cycle, selections, now)
	c.Status = next
	c.SubmittedAt = now
	c.UpdatedAt = now
	return nil
}

// Decide records one approver's verdict on their pending step and
// recomputes the aggregate case status from the full step set.
//
// A decline requires a reason and halts the case immediately; remaining
// pending steps stay untouched unless the route cancels them. The case
// becomes Approved (or PendingAcknowledgement) only when every step is
// approved.
func (e *Engine) Decide(c *Case, actingUserID string, decision Decision, reason string, cfg RouteConfig) (*DecisionResult, error) {
	if c.Status != StatusPendingApproval {
		return nil, NewValidationError("case in status %s accepts no decisions", c.Status)
	}
	if !decision.IsValid() {
		return nil, NewValidationError("unknown decision %q", decision)
	}

	step := c.PendingStepFor(actingUserID)
	if step == nil {
		return nil, ErrNotAuthorized
	}
	if cfg.Sequential && step.Order != c.lowestPendingOrder() {
		return nil, ErrNotAuthorized
	}

	reason = strings.TrimSpace(reason)
	if decision == DecisionDeclined && reason == "" {
		return nil, NewValidationError("a rejection reason is required to decline")
	}

	now := e.clock()
	previous := c.Status

	switch decision {
	case DecisionApproved:
		step.Status = StepStatusApproved
	case DecisionDeclined:
		step.Status = StepStatusDeclined
		step.RejectionReason = reason
	}
	step.DecidedAt = &now

	result := &DecisionResult{Step: step, PreviousStatus: previous}
	machine := BuildCaseMachine(cfg)

	switch {
	case c.AnyDeclined():
		next, err := machine.Fire(c.Status, TriggerDecline)
		if err != nil {
			return nil, err
		}
		c.Status = next
		c.DecidedAt = &now
		result.Declined = true
		if cfg.CancelPendingOnDecline {
			for i := range c.Steps {
				if c.Steps[i].Status == StepStatusPending {
					c.Steps[i].Status = StepStatusCancelled
				}
			}
		}

	case c.AllApproved():
		next, err := machine.Fire(c.Status, TriggerApprove)
		if err != nil {
			return nil, err
		}
		c.Status = next
		c.DecidedAt = &now
		result.Approved = true
	}

	c.UpdatedAt = now
	result.NewStatus = c.Status
	return result, nil
}

// Resubmit re-opens a declined case with a fresh pending cycle. The decided
// steps of the prior cycle move to the case history; their rejection
// reasons are never erased. Passing no selections reuses the previous
// routing with the roles captured at original assignment.
func (e *Engine) Resubmit(c *Case, selections []ApproverSelection, cfg RouteConfig) error {
	if c.Status != StatusDeclined {
		return NewValidationError("only a declined case can be resubmitted, status is %s", c.Status)
	}

	if len(selections) == 0 {
		selections = make([]ApproverSelection, 0, len(c.Steps))
		for _, s := range c.Steps {
			selections = append(selections, ApproverSelection{UserID: s.ApproverUserID, Role: s.ApproverRole})
		}
	}
	if err := validateSelections(selections, cfg.Constraints); err != nil {
		return err
	}

	machine := BuildCaseMachine(cfg)
	next, err := machine.Fire(c.Status, TriggerResubmit)
	if err != nil {
		return err
	}

	now := e.clock()
	c.History = append(c.History, c.Steps...)
	c.Cycle++
	c.Steps = buildSteps(c.ID, c.Cycle, selections, now)
	c.Status = next
	c.DecidedAt = nil
	c.SubmittedAt = now
	c.UpdatedAt = now
	return nil
}

// Acknowledge records the subject's sign-off on an approved case
func (e *Engine) Acknowledge(c *Case, actingUserID string, cfg RouteConfig) error {
	if c.Status != StatusPendingAcknowledgement {
		return NewValidationError("case in status %s cannot be acknowledged", c.Status)
	}
	if actingUserID != c.SubjectEmployeeID {
		return ErrNotAuthorized
	}
	machine := BuildCaseMachine(cfg)
	next, err := machine.Fire(c.Status, TriggerAcknowledge)
	if err != nil {
		return err
	}
	c.Status = next
	c.UpdatedAt = e.clock()
	return nil
}

// Close finishes an acknowledged case
func (e *Engine) Close(c *Case, cfg RouteConfig) error {
	if c.Status != StatusAcknowledged {
		return NewValidationError("only an acknowledged case can be closed, status is %s", c.Status)
	}
	machine := BuildCaseMachine(cfg)
	next, err := machine.Fire(c.Status, TriggerClose)
	if err != nil {
		return err
	}
	c.Status = next
	c.UpdatedAt = e.clock()
	return nil
}

func validateSelections(selections []ApproverSelection, constraints []CompositionConstraint) error {
	if len(selections) == 0 {
		return NewValidationError("at least one approver must be selected")
	}
	for i, sel := range selections {
		if strings.TrimSpace(sel.UserID) == "" {
			return NewValidationError("approver selection %d has no user id", i+1)
		}
	}
	for _, constraint := range constraints {
		if err := constraint(selections); err != nil {
			return err
		}
	}
	return nil
}

// buildSteps assigns order 1..N in selection order; the order is preserved
// exactly as chosen, never re-sorted by role or name.
func buildSteps(caseID int64, cycle int, selections []ApproverSelection, now time.Time) []ApprovalStep {
	steps := make([]ApprovalStep, 0, len(selections))
	for i, sel := range selections {
		steps = append(steps, ApprovalStep{
			CaseID:         caseID,
			Cycle:          cycle,
			Order:          i + 1,
			ApproverUserID: sel.UserID,
			ApproverRole:   sel.Role,
			Status:         StepStatusPending,
			CreatedAt:      now,
		})
	}
	return steps
}
