package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"salonbook/pkg/clock"
	"salonbook/pkg/model"
)

// StaffAlerter tells the staff chat about new bookings.
type StaffAlerter struct {
	channel Channel
	chatID  int64
	clock   *clock.Normalizer
}

func NewStaffAlerter(ch Channel, chatID int64, n *clock.Normalizer) *StaffAlerter {
	return &StaffAlerter{channel: ch, chatID: chatID, clock: n}
}

func (a *StaffAlerter) BookingCreated(ctx context.Context, b *model.Booking, customer string, services []*model.Service) error {
	if a.chatID == 0 {
		return nil
	}
	return a.channel.Push(ctx, Message{
		To:   strconv.FormatInt(a.chatID, 10),
		Text: NewBookingText(a.clock, b, customer, services),
	})
}

func NewBookingText(n *clock.Normalizer, b *model.Booking, customer string, services []*model.Service) string {
	names := make([]string, 0, len(services))
	for _, s := range services {
		names = append(names, s.Name)
	}
	at := n.Render(b.RequestedAt)

	var sb strings.Builder
	sb.WriteString("New booking request\n")
	fmt.Fprintf(&sb, "Customer: %s\n", customer)
	fmt.Fprintf(&sb, "Time: %s %s\n", at.Date, at.Time)
	fmt.Fprintf(&sb, "Services: %s\n", strings.Join(names, "、"))
	fmt.Fprintf(&sb, "Booking: %s", b.ID)
	return sb.String()
}
