package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salonbook/internal/events"
	"salonbook/internal/notify"
	remindererrors "salonbook/internal/reminders/errors"
	"salonbook/internal/reminders/repository"
	"salonbook/pkg/logger"
	"salonbook/pkg/metrics"
	"salonbook/pkg/model"
	"salonbook/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultBatchSize = 50

	// staleClaimAfter is how long a reminder may sit in sending before a
	// drain assumes its dispatcher died.
	staleClaimAfter = 10 * time.Minute
)

type Config struct {
	BatchSize       int
	Policy          RetryPolicy
	DeliveryTimeout time.Duration
}

type Dispatcher struct {
	repo     repository.ReminderRepository
	channels *notify.Registry
	cfg      Config
	events   events.Publisher
	metrics  metrics.Recorder
	log      *logger.Logger
	now      func() time.Time
}

func NewDispatcher(repo repository.ReminderRepository, channels *notify.Registry, cfg Config, pub events.Publisher, rec metrics.Recorder, log *logger.Logger) *Dispatcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = 10 * time.Second
	}
	if pub == nil {
		pub = events.Noop{}
	}
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &Dispatcher{
		repo:     repo,
		channels: channels,
		cfg:      cfg,
		events:   pub,
		metrics:  rec,
		log:      log,
		now:      time.Now,
	}
}

// Drain claims and delivers up to BatchSize due reminders and returns how many
// it processed. A delivery failure only affects its own reminder; a failure to
// claim stops the drain and is returned along with the partial count.
func (d *Dispatcher) Drain(ctx context.Context) (int, error) {
	ctx, span := tracing.Tracer().Start(ctx, "reminders.drain")
	defer span.End()

	start := time.Now()
	defer func() { d.metrics.ObserveDrain(time.Since(start)) }()

	if n, err := d.repo.RequeueStale(ctx, d.now().Add(-staleClaimAfter)); err != nil {
		d.log.Warn("Failed to requeue stale reminders", "error", err)
	} else if n > 0 {
		d.log.Warn("Requeued stale reminders", "count", n)
	}

	processed := 0
	for processed < d.cfg.BatchSize {
		if ctx.Err() != nil {
			d.log.Warn("Reminder drain interrupted, leaving the rest for the next run",
				"processed", processed,
				"error", ctx.Err(),
			)
			break
		}

		rem, err := d.repo.ClaimDue(ctx, d.now())
		if errors.Is(err, remindererrors.ErrNoneDue) {
			break
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "claim failed")
			d.log.Error("Failed to claim reminder", "processed", processed, "error", err)
			return processed, err
		}

		d.process(ctx, rem)
		processed++
	}

	span.SetAttributes(attribute.Int("reminders.processed", processed))
	if processed > 0 {
		d.log.Info("Reminder drain finished", "processed", processed)
	}
	return processed, nil
}

// process delivers one claimed reminder. The claim is always settled on a
// context detached from the caller, so a cancelled drain never strands a
// reminder in sending.
func (d *Dispatcher) process(ctx context.Context, rem *model.Reminder) {
	deliverErr := d.deliver(ctx, rem)
	finishCtx := context.WithoutCancel(ctx)

	if deliverErr == nil {
		if err := d.repo.MarkSent(finishCtx, rem.ID, d.now()); err != nil {
			d.log.Error("Reminder delivered but not marked sent", "reminder_id", rem.ID, "error", err)
		}
		d.metrics.ReminderProcessed(metrics.ReminderResultSent)
		d.log.Info("Reminder sent", "reminder_id", rem.ID, "booking_id", rem.BookingID)
		events.PublishBestEffort(finishCtx, d.events, d.log,
			events.New(events.TypeReminderSent, rem.BookingID, rem.UserID, string(model.ReminderSent)).
				With("reminder_id", rem.ID))
		return
	}

	if ctx.Err() != nil {
		// The caller went away mid-push. Release the claim without spending
		// an attempt; the retry key is unchanged so LINE dedups a push that
		// did land.
		if err := d.repo.MarkAttemptFailed(finishCtx, rem.ID, model.ReminderScheduled, rem.Attempts, deliverErr.Error()); err != nil {
			d.log.Error("Failed to release interrupted reminder", "reminder_id", rem.ID, "error", err)
		}
		d.log.Warn("Reminder delivery interrupted, released for the next drain",
			"reminder_id", rem.ID,
			"error", deliverErr,
		)
		return
	}

	next, attempts := d.cfg.Policy.Next(rem.Attempts)
	if err := d.repo.MarkAttemptFailed(finishCtx, rem.ID, next, attempts, deliverErr.Error()); err != nil {
		d.log.Error("Failed to record reminder failure", "reminder_id", rem.ID, "error", err)
	}

	if next == model.ReminderFailed {
		d.metrics.ReminderProcessed(metrics.ReminderResultFailed)
		d.log.Error("Reminder permanently failed",
			"reminder_id", rem.ID,
			"booking_id", rem.BookingID,
			"attempts", attempts,
			"error", deliverErr,
		)
		events.PublishBestEffort(finishCtx, d.events, d.log,
			events.New(events.TypeReminderFailed, rem.BookingID, rem.UserID, string(model.ReminderFailed)).
				With("reminder_id", rem.ID).
				With("attempts", attempts).
				With("last_error", deliverErr.Error()))
		return
	}

	d.metrics.ReminderProcessed(metrics.ReminderResultRetry)
	d.log.Warn("Reminder delivery failed, will retry",
		"reminder_id", rem.ID,
		"attempts", attempts,
		"error", deliverErr,
	)
}

func (d *Dispatcher) deliver(ctx context.Context, rem *model.Reminder) error {
	ch, err := d.channels.Get(rem.Channel)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.DeliveryTimeout)
	defer cancel()

	return ch.Push(ctx, notify.Message{
		To:       rem.UserID,
		Text:     rem.Message,
		DedupKey: fmt.Sprintf("%s:%d", rem.ID, rem.Attempts),
	})
}
