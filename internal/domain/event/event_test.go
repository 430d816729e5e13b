package event

import (
	"testing"
	"time"
)

func TestType_String(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		want      string
	}{
		{
			name:      "case submitted",
			eventType: TypeCaseSubmitted,
			want:      "case.submitted",
		},
		{
			name:      "step decided",
			eventType: TypeStepDecided,
			want:      "case.step_decided",
		},
		{
			name:      "case approved",
			eventType: TypeCaseApproved,
			want:      "case.approved",
		},
		{
			name:      "case declined",
			eventType: TypeCaseDeclined,
			want:      "case.declined",
		},
		{
			name:      "status changed",
			eventType: TypeStatusChanged,
			want:      "case.status_changed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.eventType.String(); got != tt.want {
				t.Errorf("Type.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestType_IsValid(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		want      bool
	}{
		{"valid submitted", TypeCaseSubmitted, true},
		{"valid resubmitted", TypeCaseResubmitted, true},
		{"valid acknowledged", TypeCaseAcknowledged, true},
		{"invalid type", Type("bogus.event"), false},
		{"empty type", Type(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.eventType.IsValid(); got != tt.want {
				t.Errorf("Type.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"previous_status": "PENDING_APPROVAL",
		"new_status":      "APPROVED",
	}

	before := time.Now()
	evt := NewEvent(TypeCaseApproved, 42, "overtime_request", payload)
	after := time.Now()

	if evt.ID == "" {
		t.Error("NewEvent() should generate an ID")
	}
	if evt.Type != TypeCaseApproved {
		t.Errorf("NewEvent() type = %v, want %v", evt.Type, TypeCaseApproved)
	}
	if evt.CaseID != 42 {
		t.Errorf("NewEvent() case id = %v, want 42", evt.CaseID)
	}
	if evt.Resource != "overtime_request" {
		t.Errorf("NewEvent() resource = %v, want overtime_request", evt.Resource)
	}
	if evt.Timestamp.Before(before) || evt.Timestamp.After(after) {
		t.Error("NewEvent() timestamp should be set to now")
	}
}

func TestEvent_GetPayloadString(t *testing.T) {
	evt := NewEvent(TypeStepDecided, 1, "notice_to_explain", map[string]interface{}{
		"approver": "user-9",
		"count":    3,
	})

	if got := evt.GetPayloadString("approver"); got != "user-9" {
		t.Errorf("GetPayloadString() = %v, want user-9", got)
	}
	if got := evt.GetPayloadString("count"); got != "" {
		t.Errorf("GetPayloadString() on non-string = %v, want empty", got)
	}
	if got := evt.GetPayloadString("missing"); got != "" {
		t.Errorf("GetPayloadString() on missing key = %v, want empty", got)
	}
}

func TestEvent_GetPayloadStrings(t *testing.T) {
	evt := NewEvent(TypeCaseSubmitted, 1, "employee_award", map[string]interface{}{
		"approvers": []string{"a", "b"},
		"mixed":     []interface{}{"x", 1, "y"},
	})

	if got := evt.GetPayloadStrings("approvers"); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("GetPayloadStrings() = %v, want [a b]", got)
	}
	if got := evt.GetPayloadStrings("mixed"); len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Errorf("GetPayloadStrings() on mixed slice = %v, want [x y]", got)
	}
	if got := evt.GetPayloadStrings("missing"); got != nil {
		t.Errorf("GetPayloadStrings() on missing key = %v, want nil", got)
	}
}
