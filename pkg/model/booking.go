package model

import (
	"time"
)

type Booking struct {
	ID            string        `json:"id" bson:"_id,omitempty"`
	UserID        string        `json:"user_id" bson:"user_id"`
	RequestedDate string        `json:"requested_date" bson:"requested_date"`
	RequestedTime string        `json:"requested_time" bson:"requested_time"`
	RequestedAt   time.Time     `json:"requested_at" bson:"requested_at"`
	ServiceIDs    []string      `json:"service_ids" bson:"service_ids"`
	Status        BookingStatus `json:"status" bson:"status"`

	FinalStartAt *time.Time `json:"final_start_at,omitempty" bson:"final_start_at,omitempty"`
	FinalEndAt   *time.Time `json:"final_end_at,omitempty" bson:"final_end_at,omitempty"`

	CalendarEventID  string `json:"calendar_event_id,omitempty" bson:"calendar_event_id,omitempty"`
	CalendarHTMLLink string `json:"calendar_html_link,omitempty" bson:"calendar_html_link,omitempty"`
	ReminderID       string `json:"reminder_id,omitempty" bson:"reminder_id,omitempty"`

	// SlotKey is set while the booking holds its (user, instant) slot and is
	// covered by a unique partial index.
	SlotKey string `json:"-" bson:"slot_key,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func SlotKey(userID string, requestedAt time.Time) string {
	return userID + "|" + requestedAt.UTC().Format(time.RFC3339)
}

// Instant is the booking's effective appointment start.
func (b *Booking) Instant() time.Time {
	if b.FinalStartAt != nil && !b.FinalStartAt.IsZero() {
		return *b.FinalStartAt
	}
	return b.RequestedAt
}

type Profile struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	PictureURL  string `json:"pictureUrl"`
}

type CreateBookingRequest struct {
	UserProfile Profile  `json:"userProfile"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	ServiceIDs  []string `json:"serviceIds"`
}

// ConfirmRequest carries the final time in one of three forms. The first
// recognized form wins: FinalStart, FinalInstantISO, FinalDate+FinalTime.
type ConfirmRequest struct {
	FinalStart      string `json:"finalStart,omitempty"`
	FinalInstantISO string `json:"finalInstantISO,omitempty"`
	FinalDate       string `json:"finalDate,omitempty"`
	FinalTime       string `json:"finalTime,omitempty"`
	DurationMinutes *int   `json:"durationMinutes,omitempty"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}
