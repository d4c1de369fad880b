package events

import (
	"context"
	"errors"
	"testing"

	"salonbook/pkg/logger"
)

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(context.Context, Event) error {
	f.calls++
	return errors.New("broker down")
}
func (f *failingPublisher) Close() error { return nil }

func TestNewAndWith(t *testing.T) {
	e := New(TypeBookingCreated, "b1", "U1", "pending")
	if e.EventID == "" || e.OccurredAt.IsZero() {
		t.Fatalf("event not stamped: %+v", e)
	}

	withSlot := e.With("requested_at", "2025-08-20T02:00:00Z")
	if _, ok := e.Attributes["requested_at"]; ok {
		t.Error("With must not mutate the receiver")
	}
	if withSlot.Attributes["requested_at"] != "2025-08-20T02:00:00Z" {
		t.Errorf("attributes = %v", withSlot.Attributes)
	}
}

func TestPublishBestEffortSwallowsErrors(t *testing.T) {
	p := &failingPublisher{}
	PublishBestEffort(context.Background(), p, logger.Discard(), New(TypeReminderSent, "b1", "U1", "sent"))
	if p.calls != 1 {
		t.Errorf("calls = %d", p.calls)
	}
}
