// Package calendar creates salon appointment events in an external calendar.
package calendar

import (
	"context"
	"errors"
	"time"
)

var ErrNotConfigured = errors.New("calendar provider not configured")

type Event struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	TimeZone    string
}

// Ref identifies a created event. Link is the provider's viewer URL and may be
// empty.
type Ref struct {
	ID   string
	Link string
}

type Provider interface {
	CreateEvent(ctx context.Context, e Event) (Ref, error)
}

// NoopProvider stands in when no calendar is configured. It refuses every
// event so confirmations fail loudly instead of silently skipping the
// calendar.
type NoopProvider struct{}

func (NoopProvider) CreateEvent(context.Context, Event) (Ref, error) {
	return Ref{}, ErrNotConfigured
}
