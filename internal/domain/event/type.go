package event

// Type identifies the type of domain event
type Type string

const (
	TypeCaseSubmitted    Type = "case.submitted"
	TypeStepDecided      Type = "case.step_decided"
	TypeCaseApproved     Type = "case.approved"
	TypeCaseDeclined     Type = "case.declined"
	TypeCaseResubmitted  Type = "case.resubmitted"
	TypeCaseAcknowledged Type = "case.acknowledged"
	TypeStatusChanged    Type = "case.status_changed"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeCaseSubmitted,
		TypeStepDecided,
		TypeCaseApproved,
		TypeCaseDeclined,
		TypeCaseResubmitted,
		TypeCaseAcknowledged,
		TypeStatusChanged:
		return true
	default:
		return false
	}
}
