package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	userserrors "salonbook/internal/users/errors"
	"salonbook/pkg/config"
	"salonbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "users"

type UserRepository interface {
	FindByID(ctx context.Context, userID string) (*model.User, error)
	UpsertProfile(ctx context.Context, p model.Profile) error
	UpsertRegistration(ctx context.Context, u *model.User) (*model.User, error)
}

type mongoUserRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoUserRepository(cfg *config.Config) UserRepository {
	return &mongoUserRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

func (r *mongoUserRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var user model.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, userserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// UpsertProfile records the LINE profile seen on a booking. Last write wins;
// registration fields are never touched.
func (r *mongoUserRepository) UpsertProfile(ctx context.Context, p model.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	set := bson.M{"display_name": p.DisplayName, "updated_at": now}
	if p.PictureURL != "" {
		set["picture_url"] = p.PictureURL
	}

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": p.UserID},
		bson.M{"$set": set, "$setOnInsert": bson.M{"created_at": now}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user profile: %w", err)
	}
	return nil
}

func (r *mongoUserRepository) UpsertRegistration(ctx context.Context, u *model.User) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	set := bson.M{
		"phone":      u.Phone,
		"birthday":   u.Birthday,
		"updated_at": now,
	}
	if u.DisplayName != "" {
		set["display_name"] = u.DisplayName
	}
	if u.PictureURL != "" {
		set["picture_url"] = u.PictureURL
	}

	var saved model.User
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": u.ID},
		bson.M{"$set": set, "$setOnInsert": bson.M{"created_at": now}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&saved)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return &saved, nil
}
