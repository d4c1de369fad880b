package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	customerserrors "salonbook/internal/customers/errors"
	"salonbook/pkg/config"
	"salonbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName     = "customers"
	LineUserIndexName  = "uniq_line_user_id"
	upsertRetryOnClash = 1
)

type CustomerRepository interface {
	UpsertFromUser(ctx context.Context, u *model.User) error
	FindByLineUserID(ctx context.Context, lineUserID string) (*model.Customer, error)
	List(ctx context.Context, limit int, offset int64) ([]*model.Customer, int64, error)
	Update(ctx context.Context, id string, update *model.CustomerUpdate) (*model.Customer, error)
}

type mongoCustomerRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCustomerRepository(cfg *config.Config) CustomerRepository {
	return &mongoCustomerRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

// LineUserIndexModel keeps one directory entry per LINE user. Staff-created
// customers without a LINE id are not covered.
func LineUserIndexModel() mongo.IndexModel {
	return mongo.IndexModel{
		Keys: bson.D{{Key: "line_user_id", Value: 1}},
		Options: options.Index().
			SetName(LineUserIndexName).
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"line_user_id": bson.M{"$exists": true}}),
	}
}

// UpsertFromUser creates the directory entry on first sight of a user and
// afterwards only refreshes the LINE display name, so staff edits survive.
func (r *mongoCustomerRepository) UpsertFromUser(ctx context.Context, u *model.User) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	filter := bson.M{"line_user_id": u.ID}
	update := bson.M{
		"$set": bson.M{
			"line_display_name": u.DisplayName,
			"updated_at":        now,
		},
		"$setOnInsert": bson.M{
			"name":       u.DisplayName,
			"nickname":   u.DisplayName,
			"phone":      u.Phone,
			"birthday":   u.Birthday,
			"note":       "",
			"created_at": now,
		},
	}

	// Two concurrent upserts can both miss and both insert; the unique index
	// rejects the loser, whose retry then matches the winner's document.
	var err error
	for attempt := 0; attempt <= upsertRetryOnClash; attempt++ {
		_, err = r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
		if err == nil || !mongo.IsDuplicateKeyError(err) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}
	return nil
}

func (r *mongoCustomerRepository) FindByLineUserID(ctx context.Context, lineUserID string) (*model.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var c model.Customer
	if err := r.collection.FindOne(ctx, bson.M{"line_user_id": lineUserID}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, customerserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return &c, nil
}

func (r *mongoCustomerRepository) List(ctx context.Context, limit int, offset int64) ([]*model.Customer, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	defer cursor.Close(ctx)

	customers := []*model.Customer{}
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, 0, fmt.Errorf("failed to decode customers: %w", err)
	}
	return customers, total, nil
}

func (r *mongoCustomerRepository) Update(ctx context.Context, id string, update *model.CustomerUpdate) (*model.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", customerserrors.ErrInvalidID, id)
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Nickname != nil {
		set["nickname"] = *update.Nickname
	}
	if update.Phone != nil {
		set["phone"] = *update.Phone
	}
	if update.Birthday != nil {
		set["birthday"] = *update.Birthday
	}
	if update.Note != nil {
		set["note"] = *update.Note
	}

	var c model.Customer
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, customerserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return &c, nil
}
