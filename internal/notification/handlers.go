package notification

import (
	"context"
	"fmt"

	"github.com/peopleops/hris-core/internal/application/dispatcher"
	"github.com/peopleops/hris-core/internal/application/port"
	"github.com/peopleops/hris-core/internal/domain/event"
)

// RegisterHandlers subscribes the notification fan-out to case events.
// The events carry enough payload (new status, pending approvers, who just
// decided) for the handlers to pick recipients without reloading the case.
func RegisterHandlers(d dispatcher.Dispatcher, sink port.NotificationSink, logger Logger) {
	caseLink := func(evt *event.Event) string {
		return fmt.Sprintf("/cases/%d", evt.CaseID)
	}

	d.Subscribe(event.TypeCaseSubmitted, "notify-approvers", func(ctx context.Context, evt *event.Event) error {
		for _, approverID := range evt.GetPayloadStrings("approvers") {
			if err := sink.Notify(ctx, approverID,
				"Approval requested",
				fmt.Sprintf("A %s case is awaiting your decision.", evt.Resource),
				caseLink(evt),
			); err != nil {
				return err
			}
		}
		return nil
	})

	d.Subscribe(event.TypeCaseResubmitted, "notify-approvers-resubmit", func(ctx context.Context, evt *event.Event) error {
		for _, approverID := range evt.GetPayloadStrings("approvers") {
			if err := sink.Notify(ctx, approverID,
				"Case resubmitted",
				fmt.Sprintf("A previously declined %s case was resubmitted for your decision.", evt.Resource),
				caseLink(evt),
			); err != nil {
				return err
			}
		}
		return nil
	})

	d.Subscribe(event.TypeCaseApproved, "notify-requester-approved", func(ctx context.Context, evt *event.Event) error {
		recipients := []string{evt.GetPayloadString("requester")}
		if subject := evt.GetPayloadString("subject"); subject != "" && subject != recipients[0] {
			recipients = append(recipients, subject)
		}
		for _, userID := range recipients {
			if err := sink.Notify(ctx, userID,
				"Case approved",
				fmt.Sprintf("Your %s case has been fully approved.", evt.Resource),
				caseLink(evt),
			); err != nil {
				return err
			}
		}
		return nil
	})

	d.Subscribe(event.TypeCaseDeclined, "notify-requester-declined", func(ctx context.Context, evt *event.Event) error {
		message := fmt.Sprintf("Your %s case was declined.", evt.Resource)
		if reason := evt.GetPayloadString("reason"); reason != "" {
			message = fmt.Sprintf("Your %s case was declined: %s", evt.Resource, reason)
		}
		return sink.Notify(ctx, evt.GetPayloadString("requester"), "Case declined", message, caseLink(evt))
	})

	d.Subscribe(event.TypeCaseAcknowledged, "notify-requester-acknowledged", func(ctx context.Context, evt *event.Event) error {
		return sink.Notify(ctx, evt.GetPayloadString("requester"),
			"Case acknowledged",
			fmt.Sprintf("The subject has acknowledged the %s case.", evt.Resource),
			caseLink(evt),
		)
	})

	logger.Info("Notification handlers registered")
}
