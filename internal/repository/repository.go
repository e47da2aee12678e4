package repository

import (
	"context"

	"github.com/utafrali/storefront/internal/catalog"
)

// ViewCache stores normalized product views keyed by slug.
type ViewCache interface {
	// Get returns the cached view for slug, or nil when none is cached.
	Get(ctx context.Context, slug string) (*catalog.Product, error)

	// Set caches the view under slug, replacing any previous entry.
	Set(ctx context.Context, slug string, product *catalog.Product) error

	// Delete drops the cached view for slug. Deleting a missing entry is not an error.
	Delete(ctx context.Context, slug string) error
}
