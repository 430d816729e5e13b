package routing

// Status is the aggregate state of a case in the approval lifecycle
type Status string

const (
	StatusDraft                  Status = "DRAFT"
	StatusPendingApproval        Status = "PENDING_APPROVAL"
	StatusApproved               Status = "APPROVED"
	StatusDeclined               Status = "DECLINED"
	StatusPendingAcknowledgement Status = "PENDING_ACKNOWLEDGEMENT"
	StatusAcknowledged           Status = "ACKNOWLEDGED"
	StatusClosed                 Status = "CLOSED"
)

var validStatuses = map[Status]bool{
	StatusDraft:                  true,
	StatusPendingApproval:        true,
	StatusApproved:               true,
	StatusDeclined:               true,
	StatusPendingAcknowledgement: true,
	StatusAcknowledged:           true,
	StatusClosed:                 true,
}

// Approved is terminal for the routing phase; Declined is terminal unless
// the owning facade re-opens the case through resubmission.
var terminalStatuses = map[Status]bool{
	StatusApproved: true,
	StatusClosed:   true,
}

// IsValid returns true if the status is a defined case status
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// IsTerminal returns true if no further transition is possible
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// Trigger is an event that can advance a case's aggregate status
type Trigger string

const (
	TriggerSubmit      Trigger = "SUBMIT"
	TriggerApprove     Trigger = "APPROVE"
	TriggerDecline     Trigger = "DECLINE"
	TriggerAcknowledge Trigger = "ACKNOWLEDGE"
	TriggerClose       Trigger = "CLOSE"
	TriggerResubmit    Trigger = "RESUBMIT"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
