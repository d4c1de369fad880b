package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "salonbook/internal/bookings/errors"
	"salonbook/pkg/config"
	"salonbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "bookings"
	SlotIndexName  = "uniq_active_slot"
)

// Confirmation is the state written when staff confirm or reschedule.
type Confirmation struct {
	FinalStartAt     time.Time
	FinalEndAt       time.Time
	CalendarEventID  string
	CalendarHTMLLink string
}

type BookingRepository interface {
	EnsureIndexes(ctx context.Context) error
	// InsertIfAbsent atomically inserts booking unless another pending or
	// confirmed booking holds the same slot, in which case it returns
	// ErrSlotTaken.
	InsertIfAbsent(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindPending(ctx context.Context, now time.Time) ([]*model.Booking, error)
	FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error)
	// UpdateStatus moves the booking from `from` to `to` only if it is still
	// in `from`. A terminal target releases the slot.
	UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) error
	MarkConfirmed(ctx context.Context, id string, expect []model.BookingStatus, c Confirmation) (*model.Booking, error)
	SetReminder(ctx context.Context, id, reminderID string) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout bounds ctx by timeout without extending an earlier deadline.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.Indexes().CreateOne(ctx, SlotIndexModel())
	if err != nil {
		return fmt.Errorf("failed to ensure slot index: %w", err)
	}
	return nil
}

// SlotIndexModel is the unique partial index behind InsertIfAbsent. Only
// active bookings carry slot_key, so released slots can be booked again.
func SlotIndexModel() mongo.IndexModel {
	return mongo.IndexModel{
		Keys: bson.D{{Key: "slot_key", Value: 1}},
		Options: options.Index().
			SetName(SlotIndexName).
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"slot_key": bson.M{"$exists": true}}),
	}
}

func (r *mongoBookingRepository) InsertIfAbsent(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	serviceIDs, err := toObjectIDs(booking.ServiceIDs)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	oid := primitive.NewObjectID()
	slotKey := model.SlotKey(booking.UserID, booking.RequestedAt)

	// slot_key comes from the filter equality on insert.
	doc := bson.M{
		"_id":            oid,
		"user_id":        booking.UserID,
		"requested_date": booking.RequestedDate,
		"requested_time": booking.RequestedTime,
		"requested_at":   booking.RequestedAt,
		"service_ids":    serviceIDs,
		"status":         model.BookingPending,
		"created_at":     now,
		"updated_at":     now,
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"slot_key": slotKey},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrSlotTaken
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	if result.UpsertedCount == 0 {
		return bookingserrors.ErrSlotTaken
	}

	booking.ID = oid.Hex()
	booking.Status = model.BookingPending
	booking.SlotKey = slotKey
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepository) FindPending(ctx context.Context, now time.Time) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status":       model.BookingPending,
		"requested_at": bson.M{"$gte": now.UTC()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "requested_at", Value: 1}})

	return r.find(ctx, filter, opts)
}

func (r *mongoBookingRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "requested_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.find(ctx, bson.M{"user_id": userID}, opts)
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Booking, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"status":     to,
			"updated_at": time.Now().UTC(),
		},
	}
	if !to.Active() {
		update["$unset"] = bson.M{"slot_key": ""}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID, "status": from}, update)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.missOrRace(ctx, objectID)
	}
	return nil
}

func (r *mongoBookingRepository) MarkConfirmed(ctx context.Context, id string, expect []model.BookingStatus, c Confirmation) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "status": bson.M{"$in": expect}}
	update := bson.M{
		"$set": bson.M{
			"status":             model.BookingConfirmed,
			"final_start_at":     c.FinalStartAt.UTC(),
			"final_end_at":       c.FinalEndAt.UTC(),
			"calendar_event_id":  c.CalendarEventID,
			"calendar_html_link": c.CalendarHTMLLink,
			"updated_at":         time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking model.Booking
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.missOrRace(ctx, objectID)
		}
		return nil, fmt.Errorf("failed to confirm booking: %w", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepository) SetReminder(ctx context.Context, id, reminderID string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"reminder_id": reminderID, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to link reminder: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

// missOrRace distinguishes a missing booking from a conditional write that
// lost to a concurrent status change.
func (r *mongoBookingRepository) missOrRace(ctx context.Context, objectID primitive.ObjectID) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("failed to check booking existence: %w", err)
	}
	if n == 0 {
		return bookingserrors.ErrNotFound
	}
	return bookingserrors.ErrStatusChanged
}

func toObjectIDs(ids []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("invalid service id %q: %w", id, err)
		}
		out = append(out, oid)
	}
	return out, nil
}
