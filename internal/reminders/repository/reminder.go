package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	remindererrors "salonbook/internal/reminders/errors"
	"salonbook/pkg/config"
	"salonbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "reminders"

// ReminderRepository moves reminders through scheduled -> sending -> sent |
// scheduled | failed. Every transition is a single conditional write.
type ReminderRepository interface {
	Insert(ctx context.Context, r *model.Reminder) error
	ClaimDue(ctx context.Context, now time.Time) (*model.Reminder, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
	MarkAttemptFailed(ctx context.Context, id string, next model.ReminderStatus, attempts int, errMsg string) error
	SupersedeForBooking(ctx context.Context, bookingID, reason string) (int64, error)
	RequeueStale(ctx context.Context, claimedBefore time.Time) (int64, error)
}

type mongoReminderRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoReminderRepository(cfg *config.Config) ReminderRepository {
	return &mongoReminderRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

func IndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "due_at", Value: 1}},
			Options: options.Index().SetName("status_due_at"),
		},
		{
			Keys:    bson.D{{Key: "booking_id", Value: 1}},
			Options: options.Index().SetName("booking_id"),
		},
	}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoReminderRepository) Insert(ctx context.Context, rem *model.Reminder) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	oid := primitive.NewObjectID()
	if rem.Status == "" {
		rem.Status = model.ReminderScheduled
	}

	_, err := r.collection.InsertOne(ctx, bson.M{
		"_id":        oid,
		"booking_id": rem.BookingID,
		"user_id":    rem.UserID,
		"channel":    rem.Channel,
		"message":    rem.Message,
		"due_at":     rem.DueAt.UTC(),
		"status":     rem.Status,
		"attempts":   rem.Attempts,
		"created_at": now,
		"updated_at": now,
	})
	if err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}

	rem.ID = oid.Hex()
	rem.CreatedAt = now
	rem.UpdatedAt = now
	return nil
}

// ClaimDue atomically moves the oldest due scheduled reminder to sending.
// Concurrent callers never receive the same reminder.
func (r *mongoReminderRepository) ClaimDue(ctx context.Context, now time.Time) (*model.Reminder, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	var rem model.Reminder
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"status": model.ReminderScheduled, "due_at": bson.M{"$lte": now.UTC()}},
		bson.M{"$set": bson.M{"status": model.ReminderSending, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().
			SetSort(bson.D{{Key: "due_at", Value: 1}}).
			SetReturnDocument(options.After),
	).Decode(&rem)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, remindererrors.ErrNoneDue
		}
		return nil, fmt.Errorf("failed to claim reminder: %w", err)
	}
	return &rem, nil
}

func (r *mongoReminderRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	return r.finish(ctx, id, bson.M{
		"status":     model.ReminderSent,
		"sent_at":    sentAt.UTC(),
		"updated_at": time.Now().UTC(),
	})
}

func (r *mongoReminderRepository) MarkAttemptFailed(ctx context.Context, id string, next model.ReminderStatus, attempts int, errMsg string) error {
	return r.finish(ctx, id, bson.M{
		"status":     next,
		"attempts":   attempts,
		"last_error": errMsg,
		"updated_at": time.Now().UTC(),
	})
}

// finish records the outcome of a claimed reminder. Only a reminder still in
// sending is updated.
func (r *mongoReminderRepository) finish(ctx context.Context, id string, set bson.M) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", remindererrors.ErrInvalidID, id)
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "status": model.ReminderSending},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	if res.MatchedCount == 0 {
		return remindererrors.ErrNotClaimed
	}
	return nil
}

func (r *mongoReminderRepository) SupersedeForBooking(ctx context.Context, bookingID, reason string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	res, err := r.collection.UpdateMany(ctx,
		bson.M{"booking_id": bookingID, "status": model.ReminderScheduled},
		bson.M{"$set": bson.M{
			"status":     model.ReminderFailed,
			"last_error": reason,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to supersede reminders: %w", err)
	}
	return res.ModifiedCount, nil
}

// RequeueStale returns reminders stuck in sending, for example after a crash
// mid-delivery, to scheduled. Attempts are left alone so a redelivery reuses
// the same dedup key.
func (r *mongoReminderRepository) RequeueStale(ctx context.Context, claimedBefore time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	res, err := r.collection.UpdateMany(ctx,
		bson.M{"status": model.ReminderSending, "updated_at": bson.M{"$lt": claimedBefore.UTC()}},
		bson.M{"$set": bson.M{"status": model.ReminderScheduled, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to requeue stale reminders: %w", err)
	}
	return res.ModifiedCount, nil
}
