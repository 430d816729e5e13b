package scope

import (
	"sort"
	"testing"

	"github.com/peopleops/hris-core/internal/domain/authz"
	"github.com/peopleops/hris-core/internal/domain/directory"
)

// testSnapshot builds a two-business-unit directory:
//
//	BU-1 "Manila" with departments D-ENG and D-HR
//	BU-2 "Cebu" with department D-OPS
func testSnapshot() *directory.Snapshot {
	units := []directory.OrgUnit{
		{ID: "BU-1", Name: "Manila", Kind: directory.OrgUnitKindBusinessUnit},
		{ID: "BU-2", Name: "Cebu", Kind: directory.OrgUnitKindBusinessUnit},
		{ID: "D-ENG", Name: "Engineering", Kind: directory.OrgUnitKindDepartment, ParentBusinessUnitID: "BU-1"},
		{ID: "D-HR", Name: "Human Resources", Kind: directory.OrgUnitKindDepartment, ParentBusinessUnitID: "BU-1"},
		{ID: "D-OPS", Name: "Operations", Kind: directory.OrgUnitKindDepartment, ParentBusinessUnitID: "BU-2"},
	}
	actors := []directory.Actor{
		{ID: "hr-1", Role: directory.RoleHRManager, BusinessUnitID: "BU-1", DepartmentID: "D-HR",
			Status: directory.ActorStatusActive, Scope: directory.AccessScope{Kind: directory.ScopeKindGlobal}},
		{ID: "mgr-1", Role: directory.RoleManager, BusinessUnitID: "BU-1", DepartmentID: "D-ENG",
			Status: directory.ActorStatusActive},
		{ID: "emp-1", Role: directory.RoleEmployee, BusinessUnitID: "BU-1", DepartmentID: "D-ENG",
			ManagerID: "mgr-1", Status: directory.ActorStatusActive},
		{ID: "emp-2", Role: directory.RoleEmployee, BusinessUnitID: "BU-1", DepartmentID: "D-ENG",
			ManagerID: "mgr-1", Status: directory.ActorStatusActive},
		{ID: "emp-3", Role: directory.RoleEmployee, BusinessUnitID: "BU-2", DepartmentID: "D-OPS",
			Status: directory.ActorStatusActive},
		{ID: "rec-1", Role: directory.RoleRecruiter, BusinessUnitID: "BU-2", DepartmentID: "D-OPS",
			Status: directory.ActorStatusActive,
			Scope:  directory.AccessScope{Kind: directory.ScopeKindSpecific, AllowedOrgUnitIDs: []string{"BU-2"}}},
	}
	return directory.NewSnapshot(actors, units)
}

func unitIDs(units []directory.OrgUnit) []string {
	ids := make([]string, 0, len(units))
	for _, u := range units {
		ids = append(ids, u.ID)
	}
	sort.Strings(ids)
	return ids
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestResolver_AccessibleOrgUnits(t *testing.T) {
	snap := testSnapshot()
	r := NewResolver(Config{})

	tests := []struct {
		name  string
		actor directory.Actor
		want  []string
	}{
		{
			"global scope sees all units",
			directory.Actor{ID: "hr-1", Role: directory.RoleHRManager,
				Scope: directory.AccessScope{Kind: directory.ScopeKindGlobal}},
			[]string{"BU-1", "BU-2", "D-ENG", "D-HR", "D-OPS"},
		},
		{
			"specific scope filters to allowed ids",
			directory.Actor{ID: "rec-1", Role: directory.RoleRecruiter,
				Scope: directory.AccessScope{Kind: directory.ScopeKindSpecific, AllowedOrgUnitIDs: []string{"BU-2", "D-OPS"}}},
			[]string{"BU-2", "D-OPS"},
		},
		{
			"specific scope with empty set sees nothing",
			directory.Actor{ID: "rec-1", Role: directory.RoleRecruiter,
				Scope: directory.AccessScope{Kind: directory.ScopeKindSpecific}},
			nil,
		},
		{
			"home-only default keeps home unit",
			directory.Actor{ID: "emp-1", Role: directory.RoleEmployee, BusinessUnitID: "BU-1"},
			[]string{"BU-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := unitIDs(r.AccessibleOrgUnits(tt.actor, snap))
			want := append([]string(nil), tt.want...)
			sort.Strings(want)
			if !equalStrings(got, want) {
				t.Errorf("AccessibleOrgUnits() = %v, want %v", got, want)
			}
		})
	}
}

func TestResolver_CrossFunctionalManagerOverride(t *testing.T) {
	snap := testSnapshot()
	r := NewResolver(Config{CrossFunctionalDepartments: []string{"Human Resources"}})

	// A manager in a cross-functional department reaches every unit even
	// with no explicit scope.
	crossMgr := directory.Actor{ID: "mgr-hr", Role: directory.RoleManager,
		BusinessUnitID: "BU-1", DepartmentID: "D-HR", Status: directory.ActorStatusActive}
	got := unitIDs(r.AccessibleOrgUnits(crossMgr, snap))
	if len(got) != 5 {
		t.Errorf("cross-functional manager sees %d units, want all 5", len(got))
	}

	// A manager in a regular department stays home-only.
	engMgr, _ := snap.Actor("mgr-1")
	got = unitIDs(r.AccessibleOrgUnits(engMgr, snap))
	if !equalStrings(got, []string{"BU-1"}) {
		t.Errorf("regular manager sees %v, want [BU-1]", got)
	}
}

func TestResolver_VisibleEmployeeIDs(t *testing.T) {
	snap := testSnapshot()
	r := NewResolver(Config{})

	tests := []struct {
		name    string
		actorID string
		want    []string
	}{
		{"org-wide role sees everyone in reach", "hr-1", []string{"emp-1", "emp-2", "emp-3", "hr-1", "mgr-1", "rec-1"}},
		{"manager sees self plus direct reports", "mgr-1", []string{"emp-1", "emp-2", "mgr-1"}},
		{"employee sees only self", "emp-1", []string{"emp-1"}},
		{"specific-scoped org-wide role is bounded", "rec-1", []string{"emp-3", "rec-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor, ok := snap.Actor(tt.actorID)
			if !ok {
				t.Fatalf("actor %s missing from snapshot", tt.actorID)
			}
			got := r.VisibleEmployeeIDs(actor, snap)
			sort.Strings(got)
			if !equalStrings(got, tt.want) {
				t.Errorf("VisibleEmployeeIDs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterByScope(t *testing.T) {
	snap := testSnapshot()
	r := NewResolver(Config{})
	records := []string{"hr-1", "mgr-1", "emp-1", "emp-2", "emp-3", "ghost-9"}
	ident := func(s string) string { return s }

	mgr, _ := snap.Actor("mgr-1")
	hr, _ := snap.Actor("hr-1")
	emp, _ := snap.Actor("emp-1")

	tests := []struct {
		name  string
		class authz.ScopeClass
		actor directory.Actor
		want  []string
	}{
		{"global keeps everything", authz.ScopeGlobal, emp, records},
		{"none keeps nothing", authz.ScopeNone, hr, nil},
		{"self keeps own records only", authz.ScopeSelf, emp, []string{"emp-1"}},
		{"team keeps self and reports", authz.ScopeTeam, mgr, []string{"mgr-1", "emp-1", "emp-2"}},
		{"bu keeps global-scope reach", authz.ScopeBU, hr, []string{"hr-1", "mgr-1", "emp-1", "emp-2", "emp-3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByScope(r, tt.class, tt.actor, snap, records, ident)
			if !equalStrings(sorted(got), sorted(tt.want)) {
				t.Errorf("FilterByScope(%s) = %v, want %v", tt.class, got, tt.want)
			}
		})
	}
}

func TestFilterByScope_MissingDepartmentIsPermissive(t *testing.T) {
	units := []directory.OrgUnit{{ID: "BU-1", Name: "Manila", Kind: directory.OrgUnitKindBusinessUnit}}
	actors := []directory.Actor{
		{ID: "lead-1", Role: directory.RoleManager, BusinessUnitID: "BU-1", DepartmentID: "D-X",
			Status: directory.ActorStatusActive},
		// No department on record: dept comparisons must not hide them.
		{ID: "emp-n", Role: directory.RoleEmployee, BusinessUnitID: "BU-1",
			Status: directory.ActorStatusActive},
	}
	snap := directory.NewSnapshot(actors, units)
	r := NewResolver(Config{})
	lead, _ := snap.Actor("lead-1")

	got := FilterByScope(r, authz.ScopeDept, lead, snap, []string{"emp-n"}, func(s string) string { return s })
	if !equalStrings(got, []string{"emp-n"}) {
		t.Errorf("dept filter dropped a subject with no department: got %v", got)
	}
}

func sorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func TestAssignmentFilter(t *testing.T) {
	snap := testSnapshot()
	subject, _ := snap.Actor("emp-1")

	candidates := EligibleCandidates(snap, subject, AssignmentFilter{
		BusinessUnitID: "BU-1",
		ExcludeSubject: true,
	})

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ID)
	}
	sort.Strings(ids)
	if !equalStrings(ids, []string{"emp-2", "hr-1", "mgr-1"}) {
		t.Errorf("EligibleCandidates() = %v, want [emp-2 hr-1 mgr-1]", ids)
	}
}

func TestResolver_ManagerWithNoReportsSeesSelf(t *testing.T) {
	snap := testSnapshot()
	r := NewResolver(Config{})
	lone := directory.Actor{ID: "mgr-lone", Role: directory.RoleManager, BusinessUnitID: "BU-1",
		Status: directory.ActorStatusActive}

	got := r.VisibleEmployeeIDs(lone, snap)
	if !equalStrings(got, []string{"mgr-lone"}) {
		t.Errorf("VisibleEmployeeIDs() = %v, want [mgr-lone]", got)
	}
}
