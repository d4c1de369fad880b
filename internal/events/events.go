package events

import (
	"context"
	"time"

	"salonbook/pkg/kafka"
	"salonbook/pkg/logger"
	"salonbook/pkg/middleware"

	"github.com/google/uuid"
)

const (
	TypeBookingCreated       = "booking.created"
	TypeBookingConfirmed     = "booking.confirmed"
	TypeBookingStatusChanged = "booking.status_changed"
	TypeReminderSent         = "reminder.sent"
	TypeReminderFailed       = "reminder.failed"

	schemaVersion = "1"
)

type Event struct {
	EventID    string         `json:"event_id"`
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	BookingID  string         `json:"booking_id"`
	UserID     string         `json:"user_id,omitempty"`
	Status     string         `json:"status,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

func New(eventType, bookingID, userID, status string) Event {
	return Event{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		BookingID:  bookingID,
		UserID:     userID,
		Status:     status,
	}
}

func (e Event) With(key string, value any) Event {
	attrs := make(map[string]any, len(e.Attributes)+1)
	for k, v := range e.Attributes {
		attrs[k] = v
	}
	attrs[key] = value
	e.Attributes = attrs
	return e
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type KafkaPublisher struct {
	producer *kafka.Producer
	source   string
}

func NewKafkaPublisher(producer *kafka.Producer, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	msg, err := kafka.NewMessage().
		WithKey(e.BookingID).
		WithEventID(e.EventID).
		WithEventType(e.Type).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithSchemaVersion(schemaVersion).
		WithSource(p.source).
		WithTimestamp(e.OccurredAt).
		WithValue(e).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// Noop drops events. It is used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// PublishBestEffort publishes e and only logs a failure. Domain events never
// fail the operation that produced them.
func PublishBestEffort(ctx context.Context, p Publisher, log *logger.Logger, e Event) {
	if err := p.Publish(ctx, e); err != nil {
		log.Warn("Failed to publish domain event",
			"event_type", e.Type,
			"event_id", e.EventID,
			"booking_id", e.BookingID,
			"error", err,
		)
	}
}
