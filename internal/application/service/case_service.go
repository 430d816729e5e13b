package service

import (
	"context"
	"fmt"
	"time"

	"github.com/peopleops/hris-core/internal/application/dispatcher"
	"github.com/peopleops/hris-core/internal/application/facade"
	"github.com/peopleops/hris-core/internal/application/port"
	"github.com/peopleops/hris-core/internal/domain/authz"
	"github.com/peopleops/hris-core/internal/domain/directory"
	"github.com/peopleops/hris-core/internal/domain/event"
	"github.com/peopleops/hris-core/internal/domain/routing"
	"github.com/peopleops/hris-core/internal/domain/scope"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// SubmitRequest is a case submission. Approver roles are captured from the
// directory snapshot at submission time, not taken from the caller.
type SubmitRequest struct {
	Resource          authz.Resource `json:"resource"`
	SubjectEmployeeID string         `json:"subject_employee_id"`
	BusinessUnitID    string         `json:"business_unit_id"`
	ApproverUserIDs   []string       `json:"approver_user_ids"`
}

// CaseService binds the permission gate, the scope resolver and the routing
// engine to the case store. Every read and every decision attempt passes
// through the gate and the resolver.
type CaseService interface {
	Submit(ctx context.Context, actorID string, req SubmitRequest) (*routing.Case, error)
	Decide(ctx context.Context, actorID string, caseID int64, decision routing.Decision, reason string) (*routing.Case, error)
	Resubmit(ctx context.Context, actorID string, caseID int64, approverUserIDs []string) (*routing.Case, error)
	Acknowledge(ctx context.Context, actorID string, caseID int64) (*routing.Case, error)
	Close(ctx context.Context, actorID string, caseID int64) (*routing.Case, error)
	GetCase(ctx context.Context, actorID string, caseID int64) (*routing.Case, error)
	ListCases(ctx context.Context, actorID string, resource authz.Resource) ([]*routing.Case, error)
	VisibleEmployees(ctx context.Context, actorID string) ([]string, error)
	EligibleApprovers(ctx context.Context, actorID string, resource authz.Resource, subjectID string) ([]directory.Actor, error)
}

type caseServiceImpl struct {
	caseRepo   port.CaseRepository
	dirService DirectoryService
	gate       *authz.Gate
	resolver   *scope.Resolver
	registry   *facade.Registry
	engine     *routing.Engine
	dispatcher dispatcher.Dispatcher
	txManager  port.TransactionManager
	logger     Logger

	cancelPendingOnDecline bool
}

// CaseServiceOption configures the case service
type CaseServiceOption func(*caseServiceImpl)

// WithCancelPendingOnDecline cancels remaining pending steps when a case is
// declined, instead of leaving them visible for audit.
func WithCancelPendingOnDecline(cancel bool) CaseServiceOption {
	return func(s *caseServiceImpl) {
		s.cancelPendingOnDecline = cancel
	}
}

// NewCaseService creates the case orchestration service
func NewCaseService(
	caseRepo port.CaseRepository,
	dirService DirectoryService,
	gate *authz.Gate,
	resolver *scope.Resolver,
	registry *facade.Registry,
	engine *routing.Engine,
	disp dispatcher.Dispatcher,
	txManager port.TransactionManager,
	logger Logger,
	opts ...CaseServiceOption,
) CaseService {
	s := &caseServiceImpl{
		caseRepo:   caseRepo,
		dirService: dirService,
		gate:       gate,
		resolver:   resolver,
		registry:   registry,
		engine:     engine,
		dispatcher: disp,
		txManager:  txManager,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// actingUser resolves the acting user against the snapshot. Unknown or
// inactive actors are rejected before anything else runs.
func (s *caseServiceImpl) actingUser(ctx context.Context, actorID string) (directory.Actor, *directory.Snapshot, error) {
	snap, err := s.dirService.Snapshot(ctx)
	if err != nil {
		return directory.Actor{}, nil, err
	}
	actor, ok := snap.Actor(actorID)
	if !ok || !actor.IsActive() {
		return directory.Actor{}, nil, fmt.Errorf("%w: unknown or inactive actor %s", routing.ErrNotAuthorized, actorID)
	}
	return actor, snap, nil
}

// routeFor assembles the effective routing policy for one definition
func (s *caseServiceImpl) routeFor(def facade.ResourceDefinition, subjectID string) routing.RouteConfig {
	route := def.Route
	route.CancelPendingOnDecline = s.cancelPendingOnDecline
	if def.SubjectCannotApprove {
		route.Constraints = append(route.Constraints, routing.ExcludeSubject(subjectID))
	}
	return route
}

func (s *caseServiceImpl) Submit(ctx context.Context, actorID string, req SubmitRequest) (*routing.Case, error) {
	actor, snap, err := s.actingUser(ctx, actorID)
	if err != nil {
		return nil, err
	}

	def, ok := s.registry.Definition(req.Resource)
	if !ok {
		return nil, routing.NewValidationError("unknown resource kind %q", req.Resource)
	}
	if !s.gate.Can(&actor, req.Resource, authz.PermissionCreate) {
		return nil, fmt.Errorf("%w: %s may not create %s", routing.ErrNotAuthorized, actor.Role, req.Resource)
	}
	cap := s.registry.Capability(actor.Role, req.Resource)
	if !cap.CanRequest && !s.gate.Can(&actor, req.Resource, authz.PermissionManage) {
		return nil, fmt.Errorf("%w: %s may not request %s", routing.ErrNotAuthorized, actor.Role, req.Resource)
	}

	subjectID := req.SubjectEmployeeID
	if subjectID == "" {
		subjectID = actor.ID
	}
	subject, ok := snap.Actor(subjectID)
	if !ok {
		return nil, fmt.Errorf("%w: subject %s", routing.ErrNotFound, subjectID)
	}
	if !s.subjectInReach(cap.Scope, actor, snap, subjectID) {
		return nil, fmt.Errorf("%w: subject %s outside %s scope", routing.ErrNotAuthorized, subjectID, cap.Scope)
	}

	selections, err := s.resolveSelections(snap, req.ApproverUserIDs)
	if err != nil {
		return nil, err
	}

	businessUnitID := req.BusinessUnitID
	if businessUnitID == "" {
		businessUnitID = subject.BusinessUnitID
	}

	now := time.Now()
	c := &routing.Case{
		Resource:          req.Resource,
		SubjectEmployeeID: subjectID,
		RequesterID:       actor.ID,
		BusinessUnitID:    businessUnitID,
		Status:            routing.StatusDraft,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.engine.Submit(c, selections, s.routeFor(def, subjectID)); err != nil {
		return nil, err
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.caseRepo.Create(txCtx, c)
	})
	if err != nil {
		s.logger.Error("Failed to persist submitted case", "error", err, "resource", req.Resource)
		return nil, err
	}

	s.logger.Info("Case submitted",
		"case_id", c.ID,
		"resource", c.Resource,
		"subject", c.SubjectEmployeeID,
		"approvers", len(c.Steps),
	)
	s.dispatchCaseEvent(ctx, event.TypeCaseSubmitted, c, map[string]interface{}{
		"approvers": pendingApproverIDs(c),
	})
	return c, nil
}

func (s *caseServiceImpl) Decide(ctx context.Context, actorID string, caseID int64, decision routing.Decision, reason string) (*routing.Case, error) {
	actor, _, err := s.actingUser(ctx, actorID)
	if err != nil {
		return nil, err
	}

	c, def, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !s.gate.Can(&actor, c.Resource, authz.PermissionApprove) {
		return nil, fmt.Errorf("%w: %s may not approve %s", routing.ErrNotAuthorized, actor.Role, c.Resource)
	}

	result, err := s.engine.Decide(c, actorID, decision, reason, s.routeFor(def, c.SubjectEmployeeID))
	if err != nil {
		return nil, err
	}

	if err := s.saveCase(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("Case decision recorded",
		"case_id", c.ID,
		"decided_by", actorID,
		"decision", decision,
		"status", c.Status,
	)

	s.dispatchCaseEvent(ctx, event.TypeStepDecided, c, map[string]interface{}{
		"decided_by": actorID,
		"decision":   string(decision),
		"reason":     reason,
	})
	switch {
	case result.Declined:
		s.dispatchCaseEvent(ctx, event.TypeCaseDeclined, c, map[string]interface{}{
			"decided_by": actorID,
			"reason":     reason,
		})
	case result.Approved:
		s.dispatchCaseEvent(ctx, event.TypeCaseApproved, c, map[string]interface{}{
			"decided_by": actorID,
		})
	}
	return c, nil
}

func (s *caseServiceImpl) Resubmit(ctx context.Context, actorID string, caseID int64, approverUserIDs []string) (*routing.Case, error) {
	actor, snap, err := s.actingUser(ctx, actorID)
	if err != nil {
		return nil, err
	}

	c, def, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	// Edit authorization: the original requester or anyone the gate allows
	// to edit this record kind.
	if actorID != c.RequesterID && !s.gate.Can(&actor, c.Resource, authz.PermissionEdit) {
		return nil, fmt.Errorf("%w: %s may not resubmit case %d", routing.ErrNotAuthorized, actorID, caseID)
	}

	var selections []routing.ApproverSelection
	if len(approverUserIDs) > 0 {
		selections, err = s.resolveSelections(snap, approverUserIDs)
		if err != nil {
			return nil, err
		}
	}

	if err := s.engine.Resubmit(c, selections, s.routeFor(def, c.SubjectEmployeeID)); err != nil {
		return nil, err
	}
	if err := s.saveCase(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("Case resubmitted", "case_id", c.ID, "cycle", c.Cycle)
	s.dispatchCaseEvent(ctx, event.TypeCaseResubmitted, c, map[string]interface{}{
		"approvers": pendingApproverIDs(c),
	})
	return c, nil
}

func (s *caseServiceImpl) Acknowledge(ctx context.Context, actorID string, caseID int64) (*routing.Case, error) {
	if _, _, err := s.actingUser(ctx, actorID); err != nil {
		return nil, err
	}

	c, def, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Acknowledge(c, actorID, s.routeFor(def, c.SubjectEmployeeID)); err != nil {
		return nil, err
	}
	if err := s.saveCase(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("Case acknowledged", "case_id", c.ID, "subject", c.SubjectEmployeeID)
	s.dispatchCaseEvent(ctx, event.TypeCaseAcknowledged, c, nil)
	return c, nil
}

func (s *caseServiceImpl) Close(ctx context.Context, actorID string, caseID int64) (*routing.Case, error) {
	actor, _, err := s.actingUser(ctx, actorID)
	if err != nil {
		return nil, err
	}

	c, def, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !s.gate.Can(&actor, c.Resource, authz.PermissionEdit) {
		return nil, fmt.Errorf("%w: %s may not close case %d", routing.ErrNotAuthorized, actorID, caseID)
	}
	if err := s.engine.Close(c, s.routeFor(def, c.SubjectEmployeeID)); err != nil {
		return nil, err
	}
	if err := s.saveCase(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("Case closed", "case_id", c.ID)
	return c, nil
}

func (s *caseServiceImpl) GetCase(ctx context.Context, actorID string, caseID int64) (*routing.Case, error) {
	actor, snap, err := s.actingUser(ctx, actorID)
	if err != nil {
		return nil, err
	}

	c, _, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !s.canSee(actor, snap, c) {
		return nil, fmt.Errorf("%w: case %d", routing.ErrNotAuthorized, caseID)
	}
	return c, nil
}

func (s *caseServiceImpl) ListCases(ctx context.Context, actorID string, resource authz.Resource) ([]*routing.Case, error) {
	actor, snap, err := s.actingUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !resource.IsValid() {
		return nil, routing.NewValidationError("unknown resource kind %q", resource)
	}
	if !s.gate.Can(&actor, resource, authz.PermissionView) {
		return nil, fmt.Errorf("%w: %s may not view %s", routing.ErrNotAuthorized, actor.Role, resource)
	}

	cases, err := s.caseRepo.List(ctx, port.CaseFilter{Resource: resource})
	if err != nil {
		return nil, err
	}

	cap := s.registry.Capability(actor.Role, resource)
	visible := scope.FilterByScope(s.resolver, cap.Scope, actor, snap, cases, func(c *routing.Case) string {
		return c.SubjectEmployeeID
	})

	// Approvers always see the cases routed to them, whatever their scope.
	seen := make(map[int64]bool, len(visible))
	for _, c := range visible {
		seen[c.ID] = true
	}
	for _, c := range cases {
		if !seen[c.ID] && (c.PendingStepFor(actorID) != nil || c.RequesterID == actorID) {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

func (s *caseServiceImpl) VisibleEmployees(ctx context.Context, actorID string) ([]string, error) {
	actor, snap, err := s.actingUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.resolver.VisibleEmployeeIDs(actor, snap), nil
}

func (s *caseServiceImpl) EligibleApprovers(ctx context.Context, actorID string, resource authz.Resource, subjectID string) ([]directory.Actor, error) {
	_, snap, err := s.actingUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	subject, ok := snap.Actor(subjectID)
	if !ok {
		return nil, fmt.Errorf("%w: subject %s", routing.ErrNotFound, subjectID)
	}
	return s.registry.EligibleApprovers(resource, snap, subject), nil
}

// loadCase fetches a case and its resource definition
func (s *caseServiceImpl) loadCase(ctx context.Context, caseID int64) (*routing.Case, facade.ResourceDefinition, error) {
	c, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, facade.ResourceDefinition{}, err
	}
	if c == nil {
		return nil, facade.ResourceDefinition{}, fmt.Errorf("%w: case %d", routing.ErrNotFound, caseID)
	}
	def, ok := s.registry.Definition(c.Resource)
	if !ok {
		return nil, facade.ResourceDefinition{}, routing.NewValidationError("case %d has unknown resource %q", caseID, c.Resource)
	}
	return c, def, nil
}

func (s *caseServiceImpl) saveCase(ctx context.Context, c *routing.Case) error {
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.caseRepo.Save(txCtx, c)
	})
	if err != nil {
		s.logger.Error("Failed to save case", "error", err, "case_id", c.ID)
	}
	return err
}

// canSee applies view permission, capability scope, and the participant
// bypass: subjects, requesters and assigned approvers see their own cases.
func (s *caseServiceImpl) canSee(actor directory.Actor, snap *directory.Snapshot, c *routing.Case) bool {
	if !s.gate.Can(&actor, c.Resource, authz.PermissionView) {
		return false
	}
	if c.RequesterID == actor.ID || c.SubjectEmployeeID == actor.ID {
		return true
	}
	for _, step := range c.Steps {
		if step.ApproverUserID == actor.ID {
			return true
		}
	}
	cap := s.registry.Capability(actor.Role, c.Resource)
	kept := scope.FilterByScope(s.resolver, cap.Scope, actor, snap, []*routing.Case{c}, func(c *routing.Case) string {
		return c.SubjectEmployeeID
	})
	return len(kept) == 1
}

func (s *caseServiceImpl) subjectInReach(class authz.ScopeClass, actor directory.Actor, snap *directory.Snapshot, subjectID string) bool {
	kept := scope.FilterByScope(s.resolver, class, actor, snap, []string{subjectID}, func(id string) string {
		return id
	})
	return len(kept) == 1
}

// resolveSelections turns approver ids into selections, capturing each
// approver's role as of now. The selection order is preserved.
func (s *caseServiceImpl) resolveSelections(snap *directory.Snapshot, approverUserIDs []string) ([]routing.ApproverSelection, error) {
	selections := make([]routing.ApproverSelection, 0, len(approverUserIDs))
	for _, id := range approverUserIDs {
		approver, ok := snap.Actor(id)
		if !ok {
			return nil, routing.NewValidationError("approver %s is not in the directory", id)
		}
		if !approver.IsActive() {
			return nil, routing.NewValidationError("approver %s is inactive", id)
		}
		selections = append(selections, routing.ApproverSelection{UserID: approver.ID, Role: approver.Role})
	}
	return selections, nil
}

func (s *caseServiceImpl) dispatchCaseEvent(ctx context.Context, eventType event.Type, c *routing.Case, payload map[string]interface{}) {
	if s.dispatcher == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	payload["subject"] = c.SubjectEmployeeID
	payload["requester"] = c.RequesterID
	payload["status"] = c.Status.String()
	s.dispatcher.DispatchAsync(ctx, event.NewEvent(eventType, c.ID, c.Resource.String(), payload))
}

// pendingApproverIDs lists the approvers with a pending step, in step order
func pendingApproverIDs(c *routing.Case) []string {
	var ids []string
	for _, step := range c.Steps {
		if step.Status == routing.StepStatusPending {
			ids = append(ids, step.ApproverUserID)
		}
	}
	return ids
}
