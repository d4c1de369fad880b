package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

type GoogleProvider struct {
	events     *gcal.EventsService
	calendarID string
}

// NewGoogleProvider authenticates with a service-account JSON key. The
// calendar must be shared with that service account.
func NewGoogleProvider(ctx context.Context, calendarID, credentialsJSON string) (*GoogleProvider, error) {
	if calendarID == "" || credentialsJSON == "" {
		return nil, ErrNotConfigured
	}

	srv, err := gcal.NewService(ctx,
		option.WithCredentialsJSON([]byte(credentialsJSON)),
		option.WithScopes(gcal.CalendarEventsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}
	return &GoogleProvider{events: srv.Events, calendarID: calendarID}, nil
}

func (p *GoogleProvider) CreateEvent(ctx context.Context, e Event) (Ref, error) {
	if e.End.Before(e.Start) || e.End.Equal(e.Start) {
		return Ref{}, errors.New("event must end after it starts")
	}

	created, err := p.events.Insert(p.calendarID, &gcal.Event{
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		Start:       eventTime(e.Start, e.TimeZone),
		End:         eventTime(e.End, e.TimeZone),
	}).Context(ctx).Do()
	if err != nil {
		return Ref{}, fmt.Errorf("failed to insert calendar event: %w", err)
	}
	return Ref{ID: created.Id, Link: created.HtmlLink}, nil
}

func eventTime(t time.Time, tz string) *gcal.EventDateTime {
	if tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			t = t.In(loc)
		}
	}
	return &gcal.EventDateTime{DateTime: t.Format(time.RFC3339), TimeZone: tz}
}
