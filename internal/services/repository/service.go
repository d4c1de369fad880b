package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	serviceserrors "salonbook/internal/services/errors"
	"salonbook/pkg/config"
	"salonbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "services"

type ServiceRepository interface {
	ListActive(ctx context.Context) ([]*model.Service, error)
	ListAll(ctx context.Context) ([]*model.Service, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Service, error)
	Create(ctx context.Context, svc *model.Service) error
	Update(ctx context.Context, id string, update *model.ServiceUpdate) (*model.Service, error)
}

type mongoServiceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoServiceRepository(cfg *config.Config) ServiceRepository {
	return &mongoServiceRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

var catalogOrder = bson.D{{Key: "display_order", Value: 1}, {Key: "name", Value: 1}}

func (r *mongoServiceRepository) ListActive(ctx context.Context) ([]*model.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()
	return r.find(ctx, bson.M{"active": true}, options.Find().SetSort(catalogOrder))
}

func (r *mongoServiceRepository) ListAll(ctx context.Context) ([]*model.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()
	return r.find(ctx, bson.M{}, options.Find().SetSort(catalogOrder))
}

// FindByIDs returns the services that exist, active or not. Malformed ids
// simply match nothing.
func (r *mongoServiceRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []*model.Service{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}}, options.Find())
}

func (r *mongoServiceRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Service, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find services: %w", err)
	}
	defer cursor.Close(ctx)

	services := []*model.Service{}
	if err := cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	return services, nil
}

func (r *mongoServiceRepository) Create(ctx context.Context, svc *model.Service) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	oid := primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, bson.M{
		"_id":           oid,
		"name":          svc.Name,
		"price":         svc.Price,
		"active":        svc.Active,
		"display_order": svc.DisplayOrder,
		"created_at":    now,
		"updated_at":    now,
	})
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	svc.ID = oid.Hex()
	svc.CreatedAt = now
	svc.UpdatedAt = now
	return nil
}

func (r *mongoServiceRepository) Update(ctx context.Context, id string, update *model.ServiceUpdate) (*model.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", serviceserrors.ErrInvalidID, id)
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.Active != nil {
		set["active"] = *update.Active
	}
	if update.DisplayOrder != nil {
		set["display_order"] = *update.DisplayOrder
	}

	var svc model.Service
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&svc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, serviceserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update service: %w", err)
	}
	return &svc, nil
}
