package kafka

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMessageBuilder(t *testing.T) {
	ts := time.Date(2025, 8, 20, 2, 0, 0, 0, time.UTC)
	msg, err := NewMessage().
		WithKey("booking-1").
		WithEventType("booking.created").
		WithCorrelationID("req-1").
		WithTimestamp(ts).
		WithValue(map[string]string{"booking_id": "booking-1"}).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if msg.Key != "booking-1" {
		t.Errorf("Key = %q", msg.Key)
	}
	if msg.EventID() == "" {
		t.Error("event id should be generated")
	}
	if msg.EventType() != "booking.created" {
		t.Errorf("EventType() = %q", msg.EventType())
	}
	if msg.Headers[HeaderTimestamp] != "2025-08-20T02:00:00Z" {
		t.Errorf("timestamp header = %q", msg.Headers[HeaderTimestamp])
	}

	var decoded map[string]string
	if err := msg.DecodeValue(&decoded); err != nil {
		t.Fatalf("DecodeValue() error = %v", err)
	}
	if decoded["booking_id"] != "booking-1" {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestMessageBuilderEncodingError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if err == nil {
		t.Fatal("expected an encoding error")
	}
}

func TestMessageBuilderSkipsEmptyHeaders(t *testing.T) {
	msg, err := NewMessage().WithKey("k").WithCorrelationID("").WithValue(1).Build()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := msg.Headers[HeaderCorrelationID]; ok {
		t.Error("empty correlation id should not be set")
	}
}

func TestProducerRejectsInvalidMessages(t *testing.T) {
	p := &Producer{topic: "salon.events"}

	if err := p.Publish(context.Background(), Message{Value: []byte("x")}); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("empty key: err = %v", err)
	}
	if err := p.Publish(context.Background(), Message{Key: "k"}); !errors.Is(err, ErrEmptyValue) {
		t.Errorf("empty value: err = %v", err)
	}

	p.closed = true
	if err := p.Publish(context.Background(), Message{Key: "k", Value: []byte("x")}); !errors.Is(err, ErrProducerClosed) {
		t.Errorf("closed: err = %v", err)
	}
}

func TestProducerMiddlewareOrder(t *testing.T) {
	var order []string
	p := &Producer{topic: "salon.events"}
	for _, name := range []string{"outer", "inner"} {
		name := name
		p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
			order = append(order, name)
			if name == "inner" {
				if msg.Topic != "salon.events" {
					t.Errorf("topic = %q", msg.Topic)
				}
				return nil
			}
			return next(ctx, msg)
		})
	}

	if err := p.Publish(context.Background(), Message{Key: "k", Value: []byte("x")}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("order = %v", order)
	}
}
