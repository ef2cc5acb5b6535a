package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/catalog-service/internal/domain"
	"github.com/spec-kit/catalog-service/internal/persistence"
)

const productKeyPrefix = "catalog:product:"

// CatalogCache keeps product read payloads in Redis so hot product lookups
// skip the database. Reads and writes are best-effort: an unreachable Redis
// degrades to a miss and never fails the request.
type CatalogCache struct {
	client  *redis.Client
	ttl     time.Duration
	enabled bool
	logger  *zap.Logger
}

// NewCatalogCache wraps the shared Redis client.
func NewCatalogCache(r *persistence.Redis, ttl time.Duration, enabled bool, logger *zap.Logger) *CatalogCache {
	var client *redis.Client
	if r != nil {
		client = r.Client
	}
	return &CatalogCache{client: client, ttl: ttl, enabled: enabled, logger: logger}
}

// GetProduct returns the cached product and whether it was present.
func (c *CatalogCache) GetProduct(ctx context.Context, id int64) (*domain.Product, bool) {
	if !c.usable() {
		return nil, false
	}
	raw, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("cache read failed", zap.Int64("product_id", id), zap.Error(err))
		}
		return nil, false
	}
	var product domain.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil, false
	}
	return &product, true
}

// SetProduct stores the product payload with the configured TTL.
func (c *CatalogCache) SetProduct(ctx context.Context, product *domain.Product) {
	if !c.usable() || product == nil {
		return
	}
	raw, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, productKey(product.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Debug("cache write failed", zap.Int64("product_id", product.ID), zap.Error(err))
	}
}

// InvalidateProduct drops the cached payload for a product.
func (c *CatalogCache) InvalidateProduct(ctx context.Context, id int64) {
	if !c.usable() {
		return
	}
	if err := c.client.Del(ctx, productKey(id)).Err(); err != nil {
		c.logger.Debug("cache invalidation failed", zap.Int64("product_id", id), zap.Error(err))
	}
}

func (c *CatalogCache) usable() bool {
	return c != nil && c.enabled && c.client != nil
}

func productKey(id int64) string {
	return fmt.Sprintf("%s%d", productKeyPrefix, id)
}
