package model

import (
	"fmt"
	"strings"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCanceled  BookingStatus = "canceled"
	BookingCompleted BookingStatus = "completed"
)

// bookingTransitions is the closed lifecycle table. confirmed -> confirmed is
// a reschedule.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCanceled},
	BookingConfirmed: {BookingConfirmed, BookingCompleted, BookingCanceled},
	BookingCanceled:  {},
	BookingCompleted: {},
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := bookingTransitions[status]; !ok {
		return "", fmt.Errorf("invalid booking status %q", s)
	}
	return status, nil
}

func (s BookingStatus) String() string {
	return string(s)
}

// Active statuses hold the (user, instant) slot.
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingConfirmed
}

func (s BookingStatus) Terminal() bool {
	return s == BookingCanceled || s == BookingCompleted
}

func CanTransition(from, to BookingStatus) bool {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// SourcesFor lists every status from which `to` is reachable.
func SourcesFor(to BookingStatus) []BookingStatus {
	var sources []BookingStatus
	for _, from := range []BookingStatus{BookingPending, BookingConfirmed, BookingCanceled, BookingCompleted} {
		if CanTransition(from, to) {
			sources = append(sources, from)
		}
	}
	return sources
}

type ReminderStatus string

const (
	ReminderScheduled ReminderStatus = "scheduled"
	ReminderSending   ReminderStatus = "sending"
	ReminderSent      ReminderStatus = "sent"
	ReminderFailed    ReminderStatus = "failed"
)
