package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "salonbook/internal/bookings/errors"
	"salonbook/internal/bookings/repository"
	"salonbook/internal/bookings/validator"
	"salonbook/internal/events"
	"salonbook/pkg/clock"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/logger"
	"salonbook/pkg/metrics"
	"salonbook/pkg/model"
	"salonbook/pkg/sanitizer"
)

type BookingService interface {
	Create(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error)
	Get(ctx context.Context, id string) (*model.Booking, error)
	ListPending(ctx context.Context, now time.Time) ([]*model.Booking, error)
	ListForUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, status string) (*model.Booking, error)
}

// Catalog resolves service ids against the live catalog. missing lists ids
// that do not exist or are inactive.
type Catalog interface {
	Resolve(ctx context.Context, ids []string) (found []*model.Service, missing []string, err error)
}

type ProfileStore interface {
	UpsertProfile(ctx context.Context, p model.Profile) error
}

type CustomerSyncer interface {
	SyncBestEffort(ctx context.Context, userID string)
}

type StaffAlerter interface {
	BookingCreated(ctx context.Context, b *model.Booking, customer string, services []*model.Service) error
}

type ReminderCanceler interface {
	SupersedeForBooking(ctx context.Context, bookingID, reason string) (int64, error)
}

type Deps struct {
	Repo      repository.BookingRepository
	Validator *validator.BookingValidator
	Clock     *clock.Normalizer
	Catalog   Catalog
	Profiles  ProfileStore
	Customers CustomerSyncer
	Alerter   StaffAlerter
	Reminders ReminderCanceler
	Events    events.Publisher
	Metrics   metrics.Recorder
	Log       *logger.Logger

	// SideEffectTimeout bounds each background observer.
	SideEffectTimeout time.Duration
}

type bookingService struct {
	Deps
	async func(func())
}

func NewBookingService(d Deps) BookingService {
	if d.Events == nil {
		d.Events = events.Noop{}
	}
	if d.Metrics == nil {
		d.Metrics = metrics.Noop{}
	}
	if d.SideEffectTimeout <= 0 {
		d.SideEffectTimeout = 10 * time.Second
	}
	return &bookingService{
		Deps:  d,
		async: func(fn func()) { go fn() },
	}
}

func (s *bookingService) Create(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	s.sanitize(req)

	if err := s.Validator.Validate(req, s.Clock.Now()); err != nil {
		var verr *validator.ValidationError
		if errors.As(err, &verr) {
			s.Log.Warn("Booking validation failed", "user_id", req.UserProfile.UserID, "rule", verr.Rule)
			return nil, apperrors.Validation(verr.Message, verr.Details())
		}
		return nil, apperrors.Internal("Failed to validate booking", err)
	}

	services, missing, err := s.Catalog.Resolve(ctx, req.ServiceIDs)
	if err != nil {
		s.Log.Error("Failed to resolve services", "error", err)
		return nil, apperrors.Internal("Failed to load services", err)
	}
	if len(missing) > 0 {
		return nil, apperrors.Validation("Some services are unavailable", map[string]any{
			"field": "serviceIds",
			"rule":  "service_unavailable",
			"ids":   missing,
		})
	}

	instant, err := s.Clock.ToAbsolute(req.Date, req.Time)
	if err != nil {
		return nil, apperrors.Validation(err.Error(), map[string]any{"field": "time"})
	}

	booking := &model.Booking{
		UserID:        req.UserProfile.UserID,
		RequestedDate: req.Date,
		RequestedTime: req.Time,
		RequestedAt:   instant,
		ServiceIDs:    req.ServiceIDs,
	}

	if err := s.Repo.InsertIfAbsent(ctx, booking); err != nil {
		if errors.Is(err, bookingserrors.ErrSlotTaken) {
			s.Metrics.BookingConflict()
			s.Log.Info("Booking slot already taken", "user_id", booking.UserID, "requested_at", instant)
			return nil, apperrors.Conflict("You already have a booking at this time").WithDetails(map[string]any{
				"date": req.Date,
				"time": req.Time,
			})
		}
		s.Log.Error("Failed to create booking", "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.Metrics.BookingCreated()
	s.Log.Info("Booking created successfully",
		"id", booking.ID,
		"user_id", booking.UserID,
		"requested_at", booking.RequestedAt,
	)

	s.afterCreate(ctx, booking, req.UserProfile, services)
	return booking, nil
}

// afterCreate fires the observers of a new booking. None of them can fail
// the booking; each runs detached from the request with its own timeout.
func (s *bookingService) afterCreate(ctx context.Context, b *model.Booking, profile model.Profile, services []*model.Service) {
	bg := context.WithoutCancel(ctx)

	s.async(func() {
		ctx, cancel := context.WithTimeout(bg, s.SideEffectTimeout)
		defer cancel()
		if err := s.Profiles.UpsertProfile(ctx, profile); err != nil {
			s.Log.Warn("Failed to upsert user profile", "user_id", profile.UserID, "error", err)
		}
		s.Customers.SyncBestEffort(ctx, profile.UserID)
	})

	s.async(func() {
		ctx, cancel := context.WithTimeout(bg, s.SideEffectTimeout)
		defer cancel()
		name := profile.DisplayName
		if name == "" {
			name = profile.UserID
		}
		if err := s.Alerter.BookingCreated(ctx, b, name, services); err != nil {
			s.Log.Warn("Failed to alert staff", "booking_id", b.ID, "error", err)
		}
	})

	s.async(func() {
		ctx, cancel := context.WithTimeout(bg, s.SideEffectTimeout)
		defer cancel()
		events.PublishBestEffort(ctx, s.Events, s.Log,
			events.New(events.TypeBookingCreated, b.ID, b.UserID, string(b.Status)).
				With("requested_at", b.RequestedAt.Format(time.RFC3339)))
	})
}

func (s *bookingService) Get(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "Failed to retrieve booking")
	}
	return booking, nil
}

func (s *bookingService) ListPending(ctx context.Context, now time.Time) ([]*model.Booking, error) {
	bookings, err := s.Repo.FindPending(ctx, now)
	if err != nil {
		s.Log.Error("Failed to list pending bookings", "error", err)
		return nil, apperrors.Internal("Failed to list pending bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) ListForUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}
	bookings, err := s.Repo.FindByUser(ctx, userID, limit, offset)
	if err != nil {
		s.Log.Error("Failed to list user bookings", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to list bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, id string, status string) (*model.Booking, error) {
	to, err := model.ParseBookingStatus(status)
	if err != nil {
		return nil, apperrors.InvalidState(fmt.Sprintf("Unknown booking status %q", status)).WithDetails(map[string]any{
			"allowed": []model.BookingStatus{model.BookingCanceled, model.BookingCompleted},
		})
	}
	if to == model.BookingConfirmed {
		return nil, apperrors.InvalidState("Bookings are confirmed through the confirm endpoint")
	}

	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	from := booking.Status
	if !model.CanTransition(from, to) {
		return nil, apperrors.InvalidState(fmt.Sprintf("Cannot change booking from %s to %s", from, to)).WithDetails(map[string]any{
			"from": from,
			"to":   to,
		})
	}

	if err := s.Repo.UpdateStatus(ctx, id, from, to); err != nil {
		return nil, s.translate(err, id, "Failed to update booking status")
	}

	booking.Status = to
	booking.UpdatedAt = time.Now().UTC()
	if to.Terminal() {
		booking.SlotKey = ""
		s.releaseReminder(ctx, booking)
	}

	s.Log.Info("Booking status updated", "id", id, "from", from, "to", to)
	events.PublishBestEffort(ctx, s.Events, s.Log,
		events.New(events.TypeBookingStatusChanged, booking.ID, booking.UserID, string(to)).With("from", string(from)))

	return booking, nil
}

func (s *bookingService) releaseReminder(ctx context.Context, b *model.Booking) {
	if b.ReminderID == "" {
		return
	}
	bg := context.WithoutCancel(ctx)
	s.async(func() {
		ctx, cancel := context.WithTimeout(bg, s.SideEffectTimeout)
		defer cancel()
		if _, err := s.Reminders.SupersedeForBooking(ctx, b.ID, string(b.Status)); err != nil {
			s.Log.Warn("Failed to cancel reminder", "booking_id", b.ID, "error", err)
		}
	})
}

func (s *bookingService) translate(err error, id, message string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	case errors.Is(err, bookingserrors.ErrStatusChanged):
		return apperrors.Conflict("Booking was modified concurrently, reload and retry")
	default:
		s.Log.Error(message, "id", id, "error", err)
		return apperrors.Internal(message, err)
	}
}

func (s *bookingService) sanitize(req *model.CreateBookingRequest) {
	req.UserProfile.UserID = sanitizer.TrimAndNormalize(req.UserProfile.UserID)
	req.UserProfile.DisplayName = sanitizer.SanitizeDisplayName(req.UserProfile.DisplayName)
	req.Date = sanitizer.TrimAndNormalize(req.Date)
	req.Time = sanitizer.TrimAndNormalize(req.Time)
	req.ServiceIDs = sanitizer.TrimIDs(req.ServiceIDs)
}
