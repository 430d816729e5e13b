package dispatcher

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/peopleops/hris-core/internal/domain/event"
)

func TestDispatcher_Dispatch(t *testing.T) {
	d := NewDispatcher()
	defer d.Close()

	var calls int32
	d.Subscribe(event.TypeCaseSubmitted, "counter", func(ctx context.Context, evt *event.Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	evt := event.NewEvent(event.TypeCaseSubmitted, 1, "overtime_request", nil)
	if err := d.Dispatch(context.Background(), evt); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}

	// Events without subscribers are a no-op.
	other := event.NewEvent(event.TypeCaseDeclined, 2, "overtime_request", nil)
	if err := d.Dispatch(context.Background(), other); err != nil {
		t.Errorf("Dispatch() on unsubscribed type error = %v", err)
	}
}

func TestDispatcher_DispatchStopsOnError(t *testing.T) {
	d := NewDispatcher()
	defer d.Close()

	var secondCalled bool
	d.Subscribe(event.TypeCaseApproved, "failing", func(ctx context.Context, evt *event.Event) error {
		return errors.New("boom")
	})
	d.Subscribe(event.TypeCaseApproved, "after", func(ctx context.Context, evt *event.Event) error {
		secondCalled = true
		return nil
	})

	evt := event.NewEvent(event.TypeCaseApproved, 1, "notice_to_explain", nil)
	if err := d.Dispatch(context.Background(), evt); err == nil {
		t.Fatal("Dispatch() should propagate handler error")
	}
	if secondCalled {
		t.Error("handlers after a failure should not run")
	}
}

func TestDispatcher_RecoverFromPanic(t *testing.T) {
	d := NewDispatcher()
	defer d.Close()

	d.Subscribe(event.TypeStepDecided, "panicky", func(ctx context.Context, evt *event.Event) error {
		panic("handler exploded")
	})

	evt := event.NewEvent(event.TypeStepDecided, 1, "document_envelope", nil)
	if err := d.Dispatch(context.Background(), evt); err == nil {
		t.Fatal("Dispatch() should convert panics into errors")
	}
}

func TestDispatcher_DispatchAsync(t *testing.T) {
	d := NewDispatcher()

	done := make(chan struct{})
	d.Subscribe(event.TypeCaseAcknowledged, "async", func(ctx context.Context, evt *event.Event) error {
		close(done)
		return nil
	})

	evt := event.NewEvent(event.TypeCaseAcknowledged, 1, "disciplinary_resolution", nil)
	d.DispatchAsync(context.Background(), evt)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async handler was not invoked")
	}

	if err := d.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestDispatcher_ClosedRejectsDispatch(t *testing.T) {
	d := NewDispatcher()
	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	evt := event.NewEvent(event.TypeStatusChanged, 1, "employee_award", nil)
	if err := d.Dispatch(context.Background(), evt); err == nil {
		t.Error("Dispatch() after Close() should fail")
	}
}

func TestDispatcher_AsyncOutlivesCallerCancellation(t *testing.T) {
	d := NewDispatcher()
	defer d.Close()

	ctxErr := make(chan error, 1)
	d.Subscribe(event.TypeCaseDeclined, "sink", func(ctx context.Context, evt *event.Event) error {
		ctxErr <- ctx.Err()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	evt := event.NewEvent(event.TypeCaseDeclined, 1, "overtime_request", nil)
	d.DispatchAsync(ctx, evt)

	select {
	case err := <-ctxErr:
		if err != nil {
			t.Errorf("async handler context error = %v, want nil after caller cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("async handler was not invoked")
	}
}
