package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/appsnxt/platform/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultProductTTL  = 5 * time.Minute
	defaultFeaturesTTL = 10 * time.Minute
)

// CatalogCache caches product reads in Redis. The catalog is read far
// more often than it changes, so entries use short TTLs and are
// invalidated on writes.
type CatalogCache struct {
	client      redis.UniversalClient
	productTTL  time.Duration
	featuresTTL time.Duration
	logger      *zap.Logger
}

// CatalogCacheOption configures a CatalogCache.
type CatalogCacheOption func(*CatalogCache)

// WithProductTTL overrides the product entry TTL.
func WithProductTTL(ttl time.Duration) CatalogCacheOption {
	return func(c *CatalogCache) {
		c.productTTL = ttl
	}
}

// WithFeaturesTTL overrides the feature entry TTL.
func WithFeaturesTTL(ttl time.Duration) CatalogCacheOption {
	return func(c *CatalogCache) {
		c.featuresTTL = ttl
	}
}

// WithCacheLogger sets the cache logger.
func WithCacheLogger(logger *zap.Logger) CatalogCacheOption {
	return func(c *CatalogCache) {
		c.logger = logger
	}
}

// NewCatalogCache creates a cache on an existing Redis client. The
// caller retains ownership of the client.
func NewCatalogCache(client redis.UniversalClient, opts ...CatalogCacheOption) *CatalogCache {
	c := &CatalogCache{
		client:      client,
		productTTL:  defaultProductTTL,
		featuresTTL: defaultFeaturesTTL,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CatalogCache) productKey(slug string) string {
	return "platform:catalog:product:" + slug
}

func (c *CatalogCache) featuresKey(productID uuid.UUID) string {
	return "platform:catalog:features:" + productID.String()
}

// GetProduct returns the cached product for a slug, or nil on a miss.
func (c *CatalogCache) GetProduct(ctx context.Context, slug string) (*catalog.Product, error) {
	data, err := c.client.Get(ctx, c.productKey(slug)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read product from cache: %w", err)
	}

	var product catalog.Product
	if err := json.Unmarshal(data, &product); err != nil {
		// Corrupted entry, drop it and treat as a miss.
		_ = c.client.Del(ctx, c.productKey(slug))
		return nil, nil
	}
	return &product, nil
}

// SetProduct caches a product under its slug.
func (c *CatalogCache) SetProduct(ctx context.Context, product *catalog.Product) error {
	if product == nil {
		return nil
	}
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product for cache: %w", err)
	}
	return c.client.Set(ctx, c.productKey(product.Slug), data, c.productTTL).Err()
}

// InvalidateProduct drops the cached entry for a slug.
func (c *CatalogCache) InvalidateProduct(ctx context.Context, slug string) {
	if err := c.client.Del(ctx, c.productKey(slug)).Err(); err != nil {
		c.logger.Warn("failed to invalidate product cache",
			zap.String("slug", slug),
			zap.Error(err),
		)
	}
}

// GetFeatures returns the cached feature rows for a product, or nil
// on a miss.
func (c *CatalogCache) GetFeatures(ctx context.Context, productID uuid.UUID) ([]catalog.ProductFeature, error) {
	data, err := c.client.Get(ctx, c.featuresKey(productID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read features from cache: %w", err)
	}

	var features []catalog.ProductFeature
	if err := json.Unmarshal(data, &features); err != nil {
		_ = c.client.Del(ctx, c.featuresKey(productID))
		return nil, nil
	}
	return features, nil
}

// SetFeatures caches the feature rows for a product.
func (c *CatalogCache) SetFeatures(ctx context.Context, productID uuid.UUID, features []catalog.ProductFeature) error {
	data, err := json.Marshal(features)
	if err != nil {
		return fmt.Errorf("failed to marshal features for cache: %w", err)
	}
	return c.client.Set(ctx, c.featuresKey(productID), data, c.featuresTTL).Err()
}

// InvalidateFeatures drops the cached feature rows for a product.
func (c *CatalogCache) InvalidateFeatures(ctx context.Context, productID uuid.UUID) {
	if err := c.client.Del(ctx, c.featuresKey(productID)).Err(); err != nil {
		c.logger.Warn("failed to invalidate feature cache",
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
	}
}
