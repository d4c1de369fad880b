package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"salonbook/pkg/logger"
	"salonbook/pkg/model"

	"github.com/redis/go-redis/v9"
)

const activeCatalogKey = "salon:services:active"

// CachedRepository serves ListActive from Redis and invalidates it on every
// write. Redis failures fall through to the wrapped repository.
type CachedRepository struct {
	ServiceRepository
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

func NewCachedRepository(inner ServiceRepository, rdb *redis.Client, ttl time.Duration, log *logger.Logger) *CachedRepository {
	return &CachedRepository{ServiceRepository: inner, rdb: rdb, ttl: ttl, log: log}
}

func (c *CachedRepository) ListActive(ctx context.Context) ([]*model.Service, error) {
	raw, err := c.rdb.Get(ctx, activeCatalogKey).Bytes()
	switch {
	case err == nil:
		var services []*model.Service
		if jsonErr := json.Unmarshal(raw, &services); jsonErr == nil {
			return services, nil
		} else {
			c.log.Warn("Discarding corrupt catalog cache entry", "error", jsonErr)
		}
	case !errors.Is(err, redis.Nil):
		c.log.Warn("Catalog cache read failed", "error", err)
	}

	services, err := c.ServiceRepository.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(services); err == nil {
		if err := c.rdb.Set(ctx, activeCatalogKey, payload, c.ttl).Err(); err != nil {
			c.log.Warn("Catalog cache write failed", "error", err)
		}
	}
	return services, nil
}

func (c *CachedRepository) Create(ctx context.Context, svc *model.Service) error {
	if err := c.ServiceRepository.Create(ctx, svc); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CachedRepository) Update(ctx context.Context, id string, update *model.ServiceUpdate) (*model.Service, error) {
	svc, err := c.ServiceRepository.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return svc, nil
}

func (c *CachedRepository) invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, activeCatalogKey).Err(); err != nil {
		c.log.Warn("Catalog cache invalidation failed", "error", err)
	}
}
