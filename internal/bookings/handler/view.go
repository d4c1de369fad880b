package handler

import (
	"salonbook/pkg/clock"
	"salonbook/pkg/model"
)

type CalendarView struct {
	EventID string `json:"eventId"`
	Link    string `json:"link,omitempty"`
}

// BookingView is the wire shape of a booking. Every instant carries both the
// absolute value and the salon-local rendering.
type BookingView struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	RequestedDate string          `json:"requestedDate"`
	RequestedTime string          `json:"requestedTime"`
	ServiceIDs    []string        `json:"serviceIds"`
	Status        string          `json:"status"`
	RequestedAt   clock.Rendered  `json:"requestedAt"`
	FinalStartAt  *clock.Rendered `json:"finalStartAt,omitempty"`
	FinalEndAt    *clock.Rendered `json:"finalEndAt,omitempty"`
	Calendar      *CalendarView   `json:"calendar,omitempty"`
	ReminderID    string          `json:"reminderId,omitempty"`
	CreatedAt     *clock.Rendered `json:"createdAt,omitempty"`
	UpdatedAt     *clock.Rendered `json:"updatedAt,omitempty"`
}

func NewView(n *clock.Normalizer, b *model.Booking) BookingView {
	v := BookingView{
		ID:            b.ID,
		UserID:        b.UserID,
		RequestedDate: b.RequestedDate,
		RequestedTime: b.RequestedTime,
		ServiceIDs:    b.ServiceIDs,
		Status:        string(b.Status),
		RequestedAt:   n.Render(b.RequestedAt),
		FinalStartAt:  n.RenderPtr(b.FinalStartAt),
		FinalEndAt:    n.RenderPtr(b.FinalEndAt),
		ReminderID:    b.ReminderID,
		CreatedAt:     n.RenderPtr(&b.CreatedAt),
		UpdatedAt:     n.RenderPtr(&b.UpdatedAt),
	}
	if v.ServiceIDs == nil {
		v.ServiceIDs = []string{}
	}
	if b.CalendarEventID != "" {
		v.Calendar = &CalendarView{EventID: b.CalendarEventID, Link: b.CalendarHTMLLink}
	}
	return v
}

func NewViews(n *clock.Normalizer, bookings []*model.Booking) []BookingView {
	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, NewView(n, b))
	}
	return views
}
