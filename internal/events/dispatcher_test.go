package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherRoutesByType(t *testing.T) {
	d := NewInMemoryDispatcher()

	var opened, closed int
	d.Subscribe(EventTicketOpened, func(ctx context.Context, ev Event) error {
		opened++
		return nil
	})
	d.Subscribe(EventTicketClosed, func(ctx context.Context, ev Event) error {
		closed++
		return nil
	})

	_ = d.Publish(context.Background(), Event{Type: EventTicketOpened})
	_ = d.Publish(context.Background(), Event{Type: EventTicketOpened})
	_ = d.Publish(context.Background(), Event{Type: EventCloseQueued})

	if opened != 2 {
		t.Errorf("opened handler calls = %d, want 2", opened)
	}
	if closed != 0 {
		t.Errorf("closed handler calls = %d, want 0", closed)
	}
}

func TestDispatcherHandlerErrorDoesNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var second bool
	d.Subscribe(EventTicketClosed, func(ctx context.Context, ev Event) error {
		return errors.New("handler failed")
	})
	d.Subscribe(EventTicketClosed, func(ctx context.Context, ev Event) error {
		second = true
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventTicketClosed}); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if !second {
		t.Fatal("second handler skipped after the first failed")
	}
}

func TestDispatcherPassesPayload(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got Event
	d.Subscribe(EventCloseQueued, func(ctx context.Context, ev Event) error {
		got = ev
		return nil
	})
	_ = d.Publish(context.Background(), Event{
		Type:      EventCloseQueued,
		ChannelID: "chan-1",
		Payload:   CloseQueuedPayload{Position: 2, Reason: "done"},
	})

	p, ok := got.Payload.(CloseQueuedPayload)
	if !ok {
		t.Fatalf("payload = %T, want CloseQueuedPayload", got.Payload)
	}
	if p.Position != 2 || got.ChannelID != "chan-1" {
		t.Fatalf("delivered event = %+v / %+v, want position 2 on chan-1", got, p)
	}
}
