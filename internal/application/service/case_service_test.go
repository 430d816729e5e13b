package service

import (
	"context"
	"errors"
	"testing"

	"github.com/peopleops/hris-core/internal/application/facade"
	"github.com/peopleops/hris-core/internal/application/port"
	"github.com/peopleops/hris-core/internal/domain/authz"
	"github.com/peopleops/hris-core/internal/domain/directory"
	"github.com/peopleops/hris-core/internal/domain/routing"
	"github.com/peopleops/hris-core/internal/domain/scope"
)

// Mock repositories

type mockCaseRepo struct {
	createFunc  func(ctx context.Context, c *routing.Case) error
	getByIDFunc func(ctx context.Context, id int64) (*routing.Case, error)
	saveFunc    func(ctx context.Context, c *routing.Case) error
	listFunc    func(ctx context.Context, filter port.CaseFilter) ([]*routing.Case, error)

	cases  map[int64]*routing.Case
	nextID int64
}

func newMockCaseRepo() *mockCaseRepo {
	return &mockCaseRepo{cases: make(map[int64]*routing.Case), nextID: 1}
}

func (m *mockCaseRepo) Create(ctx context.Context, c *routing.Case) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, c)
	}
	c.ID = m.nextID
	m.nextID++
	c.Version = 1
	stored := *c
	m.cases[c.ID] = &stored
	return nil
}

func (m *mockCaseRepo) GetByID(ctx context.Context, id int64) (*routing.Case, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	c, ok := m.cases[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	copied.Steps = append([]routing.ApprovalStep(nil), c.Steps...)
	copied.History = append([]routing.ApprovalStep(nil), c.History...)
	return &copied, nil
}

func (m *mockCaseRepo) Save(ctx context.Context, c *routing.Case) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, c)
	}
	current, ok := m.cases[c.ID]
	if !ok || current.Version != c.Version {
		return routing.ErrConflict
	}
	c.Version++
	stored := *c
	m.cases[c.ID] = &stored
	return nil
}

func (m *mockCaseRepo) List(ctx context.Context, filter port.CaseFilter) ([]*routing.Case, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	var out []*routing.Case
	for _, c := range m.cases {
		if filter.Resource != "" && c.Resource != filter.Resource {
			continue
		}
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}

type mockDirService struct {
	snap *directory.Snapshot
}

func (m *mockDirService) Snapshot(ctx context.Context) (*directory.Snapshot, error) {
	return m.snap, nil
}

func (m *mockDirService) Invalidate() {}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}

// testDirectory is one business unit with HR, a line manager, their report,
// and an inactive leaver.
func testDirectory() *directory.Snapshot {
	units := []directory.OrgUnit{
		{ID: "BU-1", Name: "Manila", Kind: directory.OrgUnitKindBusinessUnit},
	}
	actors := []directory.Actor{
		{ID: "hr-1", Name: "Ana", Role: directory.RoleHRManager, BusinessUnitID: "BU-1",
			Status: directory.ActorStatusActive, Scope: directory.AccessScope{Kind: directory.ScopeKindGlobal}},
		{ID: "mgr-1", Name: "Ben", Role: directory.RoleManager, BusinessUnitID: "BU-1",
			Status: directory.ActorStatusActive},
		{ID: "emp-1", Name: "Cara", Role: directory.RoleEmployee, BusinessUnitID: "BU-1",
			ManagerID: "mgr-1", Status: directory.ActorStatusActive},
		{ID: "emp-2", Name: "Dan", Role: directory.RoleEmployee, BusinessUnitID: "BU-1",
			ManagerID: "mgr-1", Status: directory.ActorStatusActive},
		{ID: "old-1", Name: "Eve", Role: directory.RoleEmployee, BusinessUnitID: "BU-1",
			Status: directory.ActorStatusInactive},
	}
	return directory.NewSnapshot(actors, units)
}

func newTestService(repo *mockCaseRepo) CaseService {
	return NewCaseService(
		repo,
		&mockDirService{snap: testDirectory()},
		authz.NewGate(authz.DefaultTable(), authz.GateConfig{Enabled: true}),
		scope.NewResolver(scope.Config{}),
		facade.DefaultRegistry(),
		routing.NewEngine(),
		nil,
		&mockTxManager{},
		noopLogger{},
	)
}

func TestCaseService_Submit(t *testing.T) {
	repo := newMockCaseRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	c, err := svc.Submit(ctx, "emp-1", SubmitRequest{
		Resource:        authz.ResourceOvertimeRequest,
		ApproverUserIDs: []string{"mgr-1"},
	})
	if err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}

	if c.Status != routing.StatusPendingApproval {
		t.Errorf("status = %v, want PENDING_APPROVAL", c.Status)
	}
	// Subject defaults to the requester; the approver's role is captured
	// from the directory, not from the caller.
	if c.SubjectEmployeeID != "emp-1" || c.RequesterID != "emp-1" {
		t.Errorf("subject/requester = %s/%s, want emp-1/emp-1", c.SubjectEmployeeID, c.RequesterID)
	}
	if c.BusinessUnitID != "BU-1" {
		t.Errorf("business unit = %s, want BU-1", c.BusinessUnitID)
	}
	if len(c.Steps) != 1 || c.Steps[0].ApproverRole != directory.RoleManager {
		t.Errorf("steps = %+v, want one step with captured role Manager", c.Steps)
	}
	if _, ok := repo.cases[c.ID]; !ok {
		t.Error("submitted case was not persisted")
	}
}

func TestCaseService_Submit_Authorization(t *testing.T) {
	repo := newMockCaseRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	tests := []struct {
		name    string
		actorID string
		req     SubmitRequest
	}{
		{
			"employee cannot request for a peer",
			"emp-1",
			SubmitRequest{
				Resource:          authz.ResourceOvertimeRequest,
				SubjectEmployeeID: "emp-2",
				ApproverUserIDs:   []string{"mgr-1"},
			},
		},
		{
			"employee cannot author a notice to explain",
			"emp-1",
			SubmitRequest{
				Resource:          authz.ResourceNoticeToExplain,
				SubjectEmployeeID: "emp-2",
				ApproverUserIDs:   []string{"hr-1"},
			},
		},
		{
			"unknown actor",
			"nobody",
			SubmitRequest{Resource: authz.ResourceOvertimeRequest, ApproverUserIDs: []string{"mgr-1"}},
		},
		{
			"inactive actor",
			"old-1",
			SubmitRequest{Resource: authz.ResourceOvertimeRequest, ApproverUserIDs: []string{"mgr-1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tt.actorID, tt.req)
			if !errors.Is(err, routing.ErrNotAuthorized) {
				t.Errorf("Submit() error = %v, want ErrNotAuthorized", err)
			}
			if len(repo.cases) != 0 {
				t.Error("rejected submission was persisted")
			}
		})
	}
}

func TestCaseService_ApprovalChainRolesRequestOwnOvertime(t *testing.T) {
	// Roles that mostly approve still file their own overtime like anyone
	// else; the permission table must not lock them out of self-service.
	repo := newMockCaseRepo()
	snap := testDirectory()
	actors := append(snap.Actors(),
		directory.Actor{ID: "bod-1", Name: "Faye", Role: directory.RoleBOD, BusinessUnitID: "BU-1",
			Status: directory.ActorStatusActive, Scope: directory.AccessScope{Kind: directory.ScopeKindGlobal}},
		directory.Actor{ID: "bum-1", Name: "Gil", Role: directory.RoleBusinessUnitManager, BusinessUnitID: "BU-1",
			Status: directory.ActorStatusActive},
	)
	svc := NewCaseService(
		repo,
		&mockDirService{snap: directory.NewSnapshot(actors, snap.Units())},
		authz.NewGate(authz.DefaultTable(), authz.GateConfig{Enabled: true}),
		scope.NewResolver(scope.Config{}),
		facade.DefaultRegistry(),
		routing.NewEngine(),
		nil,
		&mockTxManager{},
		noopLogger{},
	)
	ctx := context.Background()

	c, err := svc.Submit(ctx, "bod-1", SubmitRequest{
		Resource:        authz.ResourceOvertimeRequest,
		ApproverUserIDs: []string{"hr-1"},
	})
	if err != nil {
		t.Fatalf("Submit(bod-1) unexpected error: %v", err)
	}
	if c.SubjectEmployeeID != "bod-1" || c.Status != routing.StatusPendingApproval {
		t.Errorf("case = subject %s status %v, want bod-1 PENDING_APPROVAL", c.SubjectEmployeeID, c.Status)
	}

	if _, err := svc.Submit(ctx, "bum-1", SubmitRequest{
		Resource:          authz.ResourceEmployeeAward,
		SubjectEmployeeID: "emp-1",
		ApproverUserIDs:   []string{"mgr-1"},
	}); err != nil {
		t.Errorf("Submit(bum-1, award) unexpected error: %v", err)
	}
}

func TestCaseService_Submit_ValidationDoesNotPersist(t *testing.T) {
	repo := newMockCaseRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	// Certificates require an HR Manager in the routing.
	_, err := svc.Submit(ctx, "emp-1", SubmitRequest{
		Resource:        authz.ResourceCertificateOfEmployment,
		ApproverUserIDs: []string{"mgr-1"},
	})
	if !routing.IsValidation(err) {
		t.Fatalf("Submit() error = %v, want validation error", err)
	}
	if len(repo.cases) != 0 {
		t.Error("invalid submission was persisted")
	}

	// Inactive approvers are rejected at selection resolution.
	_, err = svc.Submit(ctx, "emp-1", SubmitRequest{
		Resource:        authz.ResourceOvertimeRequest,
		ApproverUserIDs: []string{"old-1"},
	})
	if !routing.IsValidation(err) {
		t.Fatalf("Submit() with inactive approver error = %v, want validation error", err)
	}
}

func TestCaseService_DecideLifecycle(t *testing.T) {
	repo := newMockCaseRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	c, err := svc.Submit(ctx, "emp-1", SubmitRequest{
		Resource:        authz.ResourceOvertimeRequest,
		ApproverUserIDs: []string{"mgr-1", "hr-1"},
	})
	if err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}

	// An employee holds no approve permission at all.
	if _, err := svc.Decide(ctx, "emp-2", c.ID, routing.DecisionApproved, ""); !errors.Is(err, routing.ErrNotAuthorized) {
		t.Errorf("Decide(emp-2) error = %v, want ErrNotAuthorized", err)
	}

	updated, err := svc.Decide(ctx, "mgr-1", c.ID, routing.DecisionApproved, "")
	if err != nil {
		t.Fatalf("Decide(mgr-1) unexpected error: %v", err)
	}
	if updated.Status != routing.StatusPendingApproval {
		t.Errorf("status after one of two approvals = %v, want PENDING_APPROVAL", updated.Status)
	}

	updated, err = svc.Decide(ctx, "hr-1", c.ID, routing.DecisionApproved, "")
	if err != nil {
		t.Fatalf("Decide(hr-1) unexpected error: %v", err)
	}
	if updated.Status != routing.StatusApproved {
		t.Errorf("status = %v, want APPROVED", updated.Status)
	}
}

func TestCaseService_DeclineAndResubmit(t *testing.T) {
	repo := newMockCaseRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	c, err := svc.Submit(ctx, "emp-1", SubmitRequest{
		Resource:        authz.ResourceOvertimeRequest,
		ApproverUserIDs: []string{"mgr-1"},
	})
	if err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}

	if _, err := svc.Decide(ctx, "mgr-1", c.ID, routing.DecisionDeclined, "wrong dates"); err != nil {
		t.Fatalf("Decide() unexpected error: %v", err)
	}

	// A bystander cannot resubmit someone else's case.
	if _, err := svc.Resubmit(ctx, "emp-2", c.ID, nil); !errors.Is(err, routing.ErrNotAuthorized) {
		t.Errorf("Resubmit(emp-2) error = %v, want ErrNotAuthorized", err)
	}

	resubmitted, err := svc.Resubmit(ctx, "emp-1", c.ID, nil)
	if err != nil {
		t.Fatalf("Resubmit() unexpected error: %v", err)
	}
	if resubmitted.Cycle != 2 || resubmitted.Status != routing.StatusPendingApproval {
		t.Errorf("resubmitted case = cycle %d status %v, want cycle 2 PENDING_APPROVAL", resubmitted.Cycle, resubmitted.Status)
	}
	if len(resubmitted.History) != 1 {
		t.Errorf("history = %d steps, want the declined cycle archived", len(resubmitted.History))
	}
}

func TestCaseService_GetCase_Visibility(t *testing.T) {
	repo := newMockCaseRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	c, err := svc.Submit(ctx, "emp-1", SubmitRequest{
		Resource:        authz.ResourceOvertimeRequest,
		ApproverUserIDs: []string{"mgr-1"},
	})
	if err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}

	// Requester, assigned approver and global HR all see the case.
	for _, actorID := range []string{"emp-1", "mgr-1", "hr-1"} {
		if _, err := svc.GetCase(ctx, actorID, c.ID); err != nil {
			t.Errorf("GetCase(%s) unexpected error: %v", actorID, err)
		}
	}

	// A peer with self scope does not.
	if _, err := svc.GetCase(ctx, "emp-2", c.ID); !errors.Is(err, routing.ErrNotAuthorized) {
		t.Errorf("GetCase(emp-2) error = %v, want ErrNotAuthorized", err)
	}

	if _, err := svc.GetCase(ctx, "emp-1", 9999); !errors.Is(err, routing.ErrNotFound) {
		t.Errorf("GetCase(missing) error = %v, want ErrNotFound", err)
	}
}

func TestCaseService_ListCases_Scoped(t *testing.T) {
	repo := newMockCaseRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, "emp-1", SubmitRequest{
		Resource:        authz.ResourceOvertimeRequest,
		ApproverUserIDs: []string{"hr-1"},
	}); err != nil {
		t.Fatalf("Submit(emp-1) unexpected error: %v", err)
	}
	if _, err := svc.Submit(ctx, "emp-2", SubmitRequest{
		Resource:        authz.ResourceOvertimeRequest,
		ApproverUserIDs: []string{"hr-1"},
	}); err != nil {
		t.Fatalf("Submit(emp-2) unexpected error: %v", err)
	}

	// Self scope: each employee lists only their own case.
	own, err := svc.ListCases(ctx, "emp-1", authz.ResourceOvertimeRequest)
	if err != nil {
		t.Fatalf("ListCases(emp-1) unexpected error: %v", err)
	}
	if len(own) != 1 || own[0].SubjectEmployeeID != "emp-1" {
		t.Errorf("ListCases(emp-1) = %d cases, want only their own", len(own))
	}

	// Team scope: the manager sees both reports' cases.
	team, err := svc.ListCases(ctx, "mgr-1", authz.ResourceOvertimeRequest)
	if err != nil {
		t.Fatalf("ListCases(mgr-1) unexpected error: %v", err)
	}
	if len(team) != 2 {
		t.Errorf("ListCases(mgr-1) = %d cases, want 2", len(team))
	}

	// Global scope: HR sees everything.
	all, err := svc.ListCases(ctx, "hr-1", authz.ResourceOvertimeRequest)
	if err != nil {
		t.Fatalf("ListCases(hr-1) unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListCases(hr-1) = %d cases, want 2", len(all))
	}
}

func TestCaseService_ConflictSurfaces(t *testing.T) {
	repo := newMockCaseRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	c, err := svc.Submit(ctx, "emp-1", SubmitRequest{
		Resource:        authz.ResourceOvertimeRequest,
		ApproverUserIDs: []string{"mgr-1"},
	})
	if err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}

	repo.saveFunc = func(ctx context.Context, c *routing.Case) error {
		return routing.ErrConflict
	}
	if _, err := svc.Decide(ctx, "mgr-1", c.ID, routing.DecisionApproved, ""); !errors.Is(err, routing.ErrConflict) {
		t.Errorf("Decide() error = %v, want ErrConflict", err)
	}
}

func TestCaseService_AcknowledgementLifecycle(t *testing.T) {
	repo := newMockCaseRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	// HR issues a disciplinary resolution against emp-1, signed by HR.
	// The default directory has no BOD, so use HR manage rights via a routing
	// that satisfies the BOD constraint.
	snap := testDirectory()
	actors := append(snap.Actors(), directory.Actor{
		ID: "bod-1", Name: "Faye", Role: directory.RoleBOD, BusinessUnitID: "BU-1",
		Status: directory.ActorStatusActive, Scope: directory.AccessScope{Kind: directory.ScopeKindGlobal},
	})
	svc = NewCaseService(
		repo,
		&mockDirService{snap: directory.NewSnapshot(actors, snap.Units())},
		authz.NewGate(authz.DefaultTable(), authz.GateConfig{Enabled: true}),
		scope.NewResolver(scope.Config{}),
		facade.DefaultRegistry(),
		routing.NewEngine(),
		nil,
		&mockTxManager{},
		noopLogger{},
	)

	c, err := svc.Submit(ctx, "hr-1", SubmitRequest{
		Resource:          authz.ResourceDisciplinaryResolution,
		SubjectEmployeeID: "emp-1",
		ApproverUserIDs:   []string{"bod-1"},
	})
	if err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}

	c, err = svc.Decide(ctx, "bod-1", c.ID, routing.DecisionApproved, "")
	if err != nil {
		t.Fatalf("Decide() unexpected error: %v", err)
	}
	if c.Status != routing.StatusPendingAcknowledgement {
		t.Fatalf("status = %v, want PENDING_ACKNOWLEDGEMENT", c.Status)
	}

	// Only the subject may acknowledge.
	if _, err := svc.Acknowledge(ctx, "hr-1", c.ID); !errors.Is(err, routing.ErrNotAuthorized) {
		t.Errorf("Acknowledge(hr-1) error = %v, want ErrNotAuthorized", err)
	}

	c, err = svc.Acknowledge(ctx, "emp-1", c.ID)
	if err != nil {
		t.Fatalf("Acknowledge(emp-1) unexpected error: %v", err)
	}
	if c.Status != routing.StatusAcknowledged {
		t.Errorf("status = %v, want ACKNOWLEDGED", c.Status)
	}

	c, err = svc.Close(ctx, "hr-1", c.ID)
	if err != nil {
		t.Fatalf("Close() unexpected error: %v", err)
	}
	if c.Status != routing.StatusClosed {
		t.Errorf("status = %v, want CLOSED", c.Status)
	}
}

func TestCaseService_VisibleEmployees(t *testing.T) {
	svc := newTestService(newMockCaseRepo())
	ctx := context.Background()

	ids, err := svc.VisibleEmployees(ctx, "mgr-1")
	if err != nil {
		t.Fatalf("VisibleEmployees() unexpected error: %v", err)
	}
	if len(ids) != 3 {
		t.Errorf("VisibleEmployees(mgr-1) = %v, want self plus two reports", ids)
	}
}
