package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bookingserrors "salonbook/internal/bookings/errors"
	bookingsrepo "salonbook/internal/bookings/repository"
	"salonbook/internal/calendar"
	"salonbook/internal/confirmation/core"
	"salonbook/internal/events"
	"salonbook/pkg/clock"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/logger"
	"salonbook/pkg/metrics"
	"salonbook/pkg/model"
)

const (
	StepLoad        = "load"
	StepResolveTime = "resolve_time"
	StepGather      = "gather"
	StepCalendar    = "calendar"
	StepPersist     = "persist"
	StepReminder    = "reminder"

	MaxDurationMinutes = 480

	SupersededReason = "superseded"
)

type BookingStore interface {
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	MarkConfirmed(ctx context.Context, id string, expect []model.BookingStatus, c bookingsrepo.Confirmation) (*model.Booking, error)
	SetReminder(ctx context.Context, id, reminderID string) error
}

type UserFinder interface {
	FindByID(ctx context.Context, userID string) (*model.User, error)
}

type ServiceFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]*model.Service, error)
}

type ReminderStore interface {
	Insert(ctx context.Context, r *model.Reminder) error
	SupersedeForBooking(ctx context.Context, bookingID, reason string) (int64, error)
}

type Settings struct {
	DefaultDurationMinutes int
	ReminderLeadTime       time.Duration
	SalonAddress           string
	UpstreamTimeout        time.Duration
}

type Deps struct {
	Bookings  BookingStore
	Users     UserFinder
	Services  ServiceFinder
	Reminders ReminderStore
	Calendar  calendar.Provider
	Clock     *clock.Normalizer
	Events    events.Publisher
	Metrics   metrics.Recorder
	Log       *logger.Logger
	Settings  Settings
}

type Result struct {
	BookingID       string
	CalendarLink    string
	ReminderCreated bool
	ReminderID      string
	Booking         *model.Booking
}

type ConfirmationService interface {
	Confirm(ctx context.Context, bookingID string, req model.ConfirmRequest) (*Result, error)
}

// confirmState is threaded through the saga. Each step reads what earlier
// steps produced and fills in its own part.
type confirmState struct {
	bookingID string
	req       model.ConfirmRequest

	booking    *model.Booking
	reschedule bool

	start time.Time
	end   time.Time

	customer     string
	phone        string
	serviceNames []string

	event calendar.Ref

	confirmed       *model.Booking
	reminderID      string
	reminderCreated bool
}

type confirmationService struct {
	Deps
	pipeline *core.Pipeline[confirmState]
}

func NewConfirmationService(d Deps) ConfirmationService {
	if d.Calendar == nil {
		d.Calendar = calendar.NoopProvider{}
	}
	if d.Events == nil {
		d.Events = events.Noop{}
	}
	if d.Metrics == nil {
		d.Metrics = metrics.Noop{}
	}
	if d.Settings.UpstreamTimeout <= 0 {
		d.Settings.UpstreamTimeout = 10 * time.Second
	}
	if d.Settings.DefaultDurationMinutes <= 0 {
		d.Settings.DefaultDurationMinutes = 60
	}

	s := &confirmationService{Deps: d}
	s.pipeline = core.NewPipeline("booking.confirm",
		core.NewStep(StepLoad, s.load),
		core.NewStep(StepResolveTime, s.resolveTime),
		core.NewStep(StepGather, s.gather),
		core.NewStep(StepCalendar, s.createEvent),
		core.NewStep(StepPersist, s.persist),
		core.NewStep(StepReminder, s.scheduleReminder),
	)
	return s
}

func (s *confirmationService) Confirm(ctx context.Context, bookingID string, req model.ConfirmRequest) (*Result, error) {
	st := &confirmState{bookingID: bookingID, req: req}

	// Once the calendar event exists the booking must be written, so the
	// saga outlives the caller. Every step carries its own timeout.
	if err := s.pipeline.Run(context.WithoutCancel(ctx), st); err != nil {
		var stepErr *core.StepError
		if !errors.As(err, &stepErr) {
			return nil, apperrors.Internal("Failed to confirm booking", err)
		}
		s.Log.Warn("Booking confirmation aborted", "booking_id", bookingID, "step", stepErr.Step, "error", stepErr.Err)

		appErr := apperrors.AsAppError(stepErr.Err)
		details := map[string]any{"step": stepErr.Step}
		for k, v := range appErr.Details {
			details[k] = v
		}
		return nil, appErr.WithDetails(details)
	}

	s.Metrics.BookingConfirmed()
	s.Log.Info("Booking confirmed",
		"booking_id", bookingID,
		"final_start_at", st.start,
		"calendar_event_id", st.event.ID,
		"reschedule", st.reschedule,
		"reminder_created", st.reminderCreated,
	)
	events.PublishBestEffort(ctx, s.Events, s.Log,
		events.New(events.TypeBookingConfirmed, bookingID, st.confirmed.UserID, string(model.BookingConfirmed)).
			With("final_start_at", st.start.UTC().Format(time.RFC3339)).
			With("calendar_event_id", st.event.ID).
			With("reschedule", st.reschedule))

	return &Result{
		BookingID:       bookingID,
		CalendarLink:    st.event.Link,
		ReminderCreated: st.reminderCreated,
		ReminderID:      st.reminderID,
		Booking:         st.confirmed,
	}, nil
}

func (s *confirmationService) load(ctx context.Context, st *confirmState) error {
	if st.bookingID == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	b, err := s.Bookings.FindByID(ctx, st.bookingID)
	if err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrNotFound):
			return apperrors.NotFoundWithID("Booking", st.bookingID)
		case errors.Is(err, bookingserrors.ErrInvalidID):
			return apperrors.InvalidInput("Invalid booking ID format")
		}
		return apperrors.Internal("Failed to load booking", err)
	}

	if !model.CanTransition(b.Status, model.BookingConfirmed) {
		return apperrors.InvalidState(fmt.Sprintf("Cannot confirm a %s booking", b.Status)).WithDetails(map[string]any{
			"status": b.Status,
		})
	}

	st.booking = b
	st.reschedule = b.Status == model.BookingConfirmed
	return nil
}

// resolveTime accepts the final time in one of three forms; the first one
// present wins.
func (s *confirmationService) resolveTime(_ context.Context, st *confirmState) error {
	var (
		start time.Time
		err   error
	)
	switch {
	case st.req.FinalStart != "":
		start, err = s.Clock.ParseLocalDateTime(st.req.FinalStart)
	case st.req.FinalInstantISO != "":
		start, err = s.Clock.ParseInstant(st.req.FinalInstantISO)
	case st.req.FinalDate != "" && st.req.FinalTime != "":
		start, err = s.Clock.ToAbsolute(st.req.FinalDate, st.req.FinalTime)
	default:
		return apperrors.InvalidInput("One of finalStart, finalInstantISO or finalDate+finalTime is required")
	}
	if err != nil {
		return apperrors.InvalidInput(err.Error())
	}

	minutes := s.Settings.DefaultDurationMinutes
	if st.req.DurationMinutes != nil {
		minutes = *st.req.DurationMinutes
	}
	if minutes <= 0 || minutes > MaxDurationMinutes {
		return apperrors.InvalidInput(fmt.Sprintf("durationMinutes must be between 1 and %d", MaxDurationMinutes)).WithDetails(map[string]any{
			"durationMinutes": minutes,
		})
	}

	st.start = start.UTC()
	st.end = st.start.Add(time.Duration(minutes) * time.Minute)
	return nil
}

func (s *confirmationService) gather(ctx context.Context, st *confirmState) error {
	st.customer = st.booking.UserID
	user, err := s.Users.FindByID(ctx, st.booking.UserID)
	if err != nil {
		s.Log.Warn("Customer profile unavailable, using user id", "user_id", st.booking.UserID, "error", err)
	} else if user != nil {
		if user.DisplayName != "" {
			st.customer = user.DisplayName
		}
		st.phone = user.Phone
	}

	services, err := s.Services.FindByIDs(ctx, st.booking.ServiceIDs)
	if err != nil {
		return apperrors.Internal("Failed to load services", err)
	}
	names := make(map[string]string, len(services))
	for _, svc := range services {
		names[svc.ID] = svc.Name
	}
	for _, id := range st.booking.ServiceIDs {
		if name, ok := names[id]; ok {
			st.serviceNames = append(st.serviceNames, name)
		} else {
			st.serviceNames = append(st.serviceNames, id)
		}
	}
	return nil
}

func (s *confirmationService) createEvent(ctx context.Context, st *confirmState) error {
	ctx, cancel := context.WithTimeout(ctx, s.Settings.UpstreamTimeout)
	defer cancel()

	ref, err := s.Calendar.CreateEvent(ctx, calendar.Event{
		Summary:     EventSummary(st.customer, st.serviceNames),
		Description: s.eventDescription(st),
		Location:    s.Settings.SalonAddress,
		Start:       st.start,
		End:         st.end,
		TimeZone:    s.Clock.Location().String(),
	})
	if err != nil {
		return apperrors.Upstream("calendar", err)
	}

	st.event = ref
	return nil
}

func (s *confirmationService) persist(ctx context.Context, st *confirmState) error {
	start, end := st.start, st.end
	confirmed, err := s.Bookings.MarkConfirmed(ctx, st.bookingID,
		model.SourcesFor(model.BookingConfirmed),
		bookingsrepo.Confirmation{
			FinalStartAt:     start,
			FinalEndAt:       end,
			CalendarEventID:  st.event.ID,
			CalendarHTMLLink: st.event.Link,
		},
	)
	if err != nil {
		s.Log.Error("Calendar event orphaned, booking not confirmed",
			"booking_id", st.bookingID,
			"calendar_event_id", st.event.ID,
			"error", err,
		)
		return apperrors.Upstream("database", err).WithDetails(map[string]any{
			"provider":          "database",
			"calendar_event_id": st.event.ID,
		})
	}

	st.confirmed = confirmed
	return nil
}

// scheduleReminder never fails the saga: the booking is already confirmed and
// a missing reminder only shows up as ReminderCreated=false.
func (s *confirmationService) scheduleReminder(ctx context.Context, st *confirmState) error {
	if st.reschedule {
		if n, err := s.Reminders.SupersedeForBooking(ctx, st.bookingID, SupersededReason); err != nil {
			s.Log.Warn("Failed to supersede previous reminder", "booking_id", st.bookingID, "error", err)
		} else if n > 0 {
			s.Log.Info("Previous reminder superseded", "booking_id", st.bookingID, "count", n)
		}
	}

	due := st.start.Add(-s.Settings.ReminderLeadTime)
	if !due.After(s.Clock.Now()) {
		s.Log.Info("Appointment too close for a reminder", "booking_id", st.bookingID, "final_start_at", st.start)
		return nil
	}

	rem := &model.Reminder{
		BookingID: st.bookingID,
		UserID:    st.confirmed.UserID,
		Channel:   model.ChannelLine,
		Message:   ReminderText(s.Clock, st.start, st.serviceNames, s.Settings.SalonAddress),
		DueAt:     due,
		Status:    model.ReminderScheduled,
	}
	if err := s.Reminders.Insert(ctx, rem); err != nil {
		s.Log.Error("Failed to schedule reminder", "booking_id", st.bookingID, "error", err)
		return nil
	}

	st.reminderID = rem.ID
	st.reminderCreated = true
	st.confirmed.ReminderID = rem.ID

	if err := s.Bookings.SetReminder(ctx, st.bookingID, rem.ID); err != nil {
		s.Log.Warn("Reminder scheduled but not linked to booking", "booking_id", st.bookingID, "reminder_id", rem.ID, "error", err)
	}
	return nil
}

func (s *confirmationService) eventDescription(st *confirmState) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Customer: %s\n", st.customer)
	if st.phone != "" {
		fmt.Fprintf(&sb, "Phone: %s\n", st.phone)
	}
	fmt.Fprintf(&sb, "Services: %s\n", strings.Join(st.serviceNames, "、"))
	fmt.Fprintf(&sb, "Booking ID: %s", st.bookingID)
	return sb.String()
}

func EventSummary(customer string, services []string) string {
	return customer + " - " + strings.Join(services, "、")
}

// ReminderText is the customer-facing LINE message, in salon-local time.
func ReminderText(n *clock.Normalizer, start time.Time, services []string, address string) string {
	at := n.Render(start)

	var sb strings.Builder
	sb.WriteString("預約提醒\n")
	fmt.Fprintf(&sb, "時間：%s %s\n", at.Date, at.Time)
	fmt.Fprintf(&sb, "服務：%s\n", strings.Join(services, "、"))
	if address != "" {
		fmt.Fprintf(&sb, "地址：%s\n", address)
	}
	sb.WriteString("期待您的光臨！")
	return sb.String()
}
