package directory

// OrgUnitKind distinguishes business units from departments
type OrgUnitKind string

const (
	OrgUnitKindBusinessUnit OrgUnitKind = "BUSINESS_UNIT"
	OrgUnitKindDepartment   OrgUnitKind = "DEPARTMENT"
)

// OrgUnit is a business unit or a department. Departments carry an optional
// reference to their parent business unit. Units are immutable within a request.
type OrgUnit struct {
	ID                   string      `json:"id"`
	Name                 string      `json:"name"`
	Kind                 OrgUnitKind `json:"kind"`
	ParentBusinessUnitID string      `json:"parent_business_unit_id,omitempty"`
}

// IsBusinessUnit returns true for business units
func (u OrgUnit) IsBusinessUnit() bool {
	return u.Kind == OrgUnitKindBusinessUnit
}

// IsDepartment returns true for departments
func (u OrgUnit) IsDepartment() bool {
	return u.Kind == OrgUnitKindDepartment
}
