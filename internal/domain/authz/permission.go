package authz

// Permission is a capability an actor may hold on a resource
type Permission string

const (
	PermissionView    Permission = "VIEW"
	PermissionCreate  Permission = "CREATE"
	PermissionEdit    Permission = "EDIT"
	PermissionApprove Permission = "APPROVE"
	PermissionManage  Permission = "MANAGE"
)

var validPermissions = map[Permission]bool{
	PermissionView:    true,
	PermissionCreate:  true,
	PermissionEdit:    true,
	PermissionApprove: true,
	PermissionManage:  true,
}

// IsValid returns true if the permission is one of the defined kinds
func (p Permission) IsValid() bool {
	return validPermissions[p]
}

// String returns the string representation of the permission
func (p Permission) String() string {
	return string(p)
}

// Resource is a closed enum of the record kinds governed by the core
type Resource string

const (
	ResourceCertificateOfEmployment Resource = "certificate_of_employment"
	ResourceOvertimeRequest         Resource = "overtime_request"
	ResourceNoticeToExplain         Resource = "notice_to_explain"
	ResourceDisciplinaryResolution  Resource = "disciplinary_resolution"
	ResourcePersonnelActionNotice   Resource = "personnel_action_notice"
	ResourceDocumentEnvelope        Resource = "document_envelope"
	ResourceEmployeeAward           Resource = "employee_award"
)

var validResources = map[Resource]bool{
	ResourceCertificateOfEmployment: true,
	ResourceOvertimeRequest:         true,
	ResourceNoticeToExplain:         true,
	ResourceDisciplinaryResolution:  true,
	ResourcePersonnelActionNotice:   true,
	ResourceDocumentEnvelope:        true,
	ResourceEmployeeAward:           true,
}

// IsValid returns true if the resource is one of the defined kinds
func (r Resource) IsValid() bool {
	return validResources[r]
}

// String returns the string representation of the resource
func (r Resource) String() string {
	return string(r)
}

// AllResources returns every defined resource kind
func AllResources() []Resource {
	return []Resource{
		ResourceCertificateOfEmployment,
		ResourceOvertimeRequest,
		ResourceNoticeToExplain,
		ResourceDisciplinaryResolution,
		ResourcePersonnelActionNotice,
		ResourceDocumentEnvelope,
		ResourceEmployeeAward,
	}
}
