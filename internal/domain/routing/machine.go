package routing

import (
	"fmt"
)

// GuardFunc evaluates whether a configured transition applies
type GuardFunc func() bool

type transition struct {
	to    Status
	guard GuardFunc
}

// MachineBuilder assembles the permitted transitions of a status machine
type MachineBuilder struct {
	transitions map[Status]map[Trigger][]transition
}

// NewMachineBuilder creates an empty builder
func NewMachineBuilder() *MachineBuilder {
	return &MachineBuilder{transitions: make(map[Status]map[Trigger][]transition)}
}

// Permit allows a trigger to move the case from one status to another
func (b *MachineBuilder) Permit(from Status, trigger Trigger, to Status) *MachineBuilder {
	return b.PermitIf(from, trigger, to, nil)
}

// PermitIf allows the transition only when the guard passes
func (b *MachineBuilder) PermitIf(from Status, trigger Trigger, to Status, guard GuardFunc) *MachineBuilder {
	if !from.IsValid() || !to.IsValid() {
		panic(fmt.Sprintf("invalid status in transition %s -> %s", from, to))
	}
	if b.transitions[from] == nil {
		b.transitions[from] = make(map[Trigger][]transition)
	}
	b.transitions[from][trigger] = append(b.transitions[from][trigger], transition{to: to, guard: guard})
	return b
}

// Build freezes the configuration into a machine
func (b *MachineBuilder) Build() *Machine {
	return &Machine{transitions: b.transitions}
}

// Machine validates and applies case status transitions. It holds no case
// state of its own; the current status always lives on the Case.
type Machine struct {
	transitions map[Status]map[Trigger][]transition
}

// CanFire reports whether the trigger is permitted from the given status
func (m *Machine) CanFire(from Status, trigger Trigger) bool {
	_, err := m.next(from, trigger)
	return err == nil
}

// Fire resolves the target status for the trigger, or ErrInvalidTransition
func (m *Machine) Fire(from Status, trigger Trigger) (Status, error) {
	return m.next(from, trigger)
}

func (m *Machine) next(from Status, trigger Trigger) (Status, error) {
	byTrigger, ok := m.transitions[from]
	if !ok {
		return "", fmt.Errorf("%w: %s from %s", ErrInvalidTransition, trigger, from)
	}
	candidates, ok := byTrigger[trigger]
	if !ok || len(candidates) == 0 {
		return "", fmt.Errorf("%w: %s from %s", ErrInvalidTransition, trigger, from)
	}
	for _, t := range candidates {
		if t.guard == nil || t.guard() {
			return t.to, nil
		}
	}
	return "", fmt.Errorf("%w: %s from %s (guards failed)", ErrInvalidTransition, trigger, from)
}

// BuildCaseMachine configures the status machine for one case type.
// Workflows requiring subject sign-off route an approved case through the
// acknowledgement phase before closing.
func BuildCaseMachine(cfg RouteConfig) *Machine {
	b := NewMachineBuilder()

	b.Permit(StatusDraft, TriggerSubmit, StatusPendingApproval)

	b.PermitIf(StatusPendingApproval, TriggerApprove, StatusPendingAcknowledgement, func() bool {
		return cfg.RequiresAcknowledgement
	})
	b.PermitIf(StatusPendingApproval, TriggerApprove, StatusApproved, func() bool {
		return !cfg.RequiresAcknowledgement
	})
	b.Permit(StatusPendingApproval, TriggerDecline, StatusDeclined)

	// Declined cases can be edited and resubmitted, starting a new cycle.
	b.Permit(StatusDeclined, TriggerResubmit, StatusPendingApproval)

	b.Permit(StatusPendingAcknowledgement, TriggerAcknowledge, StatusAcknowledged)
	b.Permit(StatusAcknowledged, TriggerClose, StatusClosed)

	return b.Build()
}
