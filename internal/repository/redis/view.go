package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/catalog"
)

const keyPrefix = "product_view:"

// ViewCache implements repository.ViewCache using Redis.
type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewViewCache creates a Redis-backed view cache whose entries expire after ttl.
func NewViewCache(client *redis.Client, ttl time.Duration) *ViewCache {
	return &ViewCache{client: client, ttl: ttl}
}

// Key returns the Redis key a view for slug is stored under.
func Key(slug string) string {
	return keyPrefix + slug
}

// Get returns the cached view for slug, or nil on a miss.
func (c *ViewCache) Get(ctx context.Context, slug string) (*catalog.Product, error) {
	data, err := c.client.Get(ctx, Key(slug)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get product view: %w", err)
	}

	var product catalog.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("unmarshal product view: %w", err)
	}
	return &product, nil
}

// Set stores product under slug with the configured TTL.
func (c *ViewCache) Set(ctx context.Context, slug string, product *catalog.Product) error {
	if slug == "" || product == nil {
		return errors.New("product view cache requires a slug and a product")
	}

	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product view: %w", err)
	}

	if err := c.client.Set(ctx, Key(slug), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set product view: %w", err)
	}
	return nil
}

// Delete removes the cached view for slug.
func (c *ViewCache) Delete(ctx context.Context, slug string) error {
	if err := c.client.Del(ctx, Key(slug)).Err(); err != nil {
		return fmt.Errorf("redis del product view: %w", err)
	}
	return nil
}
