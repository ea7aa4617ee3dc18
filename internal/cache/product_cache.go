package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/example/otaku-market/internal/model"
	"github.com/example/otaku-market/internal/store"
)

const (
	productTTL  = 5 * time.Minute
	notFoundTTL = time.Minute

	// notFoundSentinel caches misses so repeated lookups of a deleted
	// product do not hammer the database.
	notFoundSentinel = "notfound"
)

// productReader is the slice of the product repository the cache fronts.
type productReader interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
}

// ProductCache is a read-through decorator over the product repository.
// Redis failures degrade to the database, never to an error.
type ProductCache struct {
	repo   productReader
	rdb    *redis.Client
	logger *zap.Logger
}

func NewProductCache(repo productReader, rdb *redis.Client, logger *zap.Logger) *ProductCache {
	return &ProductCache{repo: repo, rdb: rdb, logger: logger}
}

func (c *ProductCache) FindByID(ctx context.Context, id string) (*model.Product, error) {
	if c.rdb == nil {
		return c.repo.FindByID(ctx, id)
	}
	key := "product:" + id

	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundSentinel {
			return nil, fmt.Errorf("%w: product %s", store.ErrNotFound, id)
		}
		var p model.Product
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
		c.logger.Warn("corrupt cached product, falling through to DB", zap.String("id", id))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("redis get failed, falling through to DB", zap.Error(err))
	}

	p, err := c.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if setErr := c.rdb.Set(ctx, key, notFoundSentinel, notFoundTTL).Err(); setErr != nil {
				c.logger.Warn("cache notfound set failed", zap.Error(setErr))
			}
		}
		return nil, err
	}

	if data, err := json.Marshal(p); err == nil {
		if setErr := c.rdb.Set(ctx, key, data, productTTL).Err(); setErr != nil {
			c.logger.Warn("cache set failed", zap.Error(setErr))
		}
	}
	return p, nil
}

// Invalidate drops a product's cache entry after a write.
func (c *ProductCache) Invalidate(ctx context.Context, id string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, "product:"+id).Err(); err != nil {
		c.logger.Warn("cache invalidate failed", zap.String("id", id), zap.Error(err))
	}
}
