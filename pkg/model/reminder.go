package model

import "time"

const (
	ChannelLine     = "line"
	ChannelTelegram = "telegram"
)

type Reminder struct {
	ID        string         `json:"id" bson:"_id,omitempty"`
	BookingID string         `json:"booking_id" bson:"booking_id"`
	UserID    string         `json:"user_id" bson:"user_id"`
	Channel   string         `json:"channel" bson:"channel"`
	Message   string         `json:"message" bson:"message"`
	DueAt     time.Time      `json:"due_at" bson:"due_at"`
	Status    ReminderStatus `json:"status" bson:"status"`
	Attempts  int            `json:"attempts" bson:"attempts"`
	LastError string         `json:"last_error,omitempty" bson:"last_error,omitempty"`
	SentAt    *time.Time     `json:"sent_at,omitempty" bson:"sent_at,omitempty"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" bson:"updated_at"`
}
