package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/client"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/pagination"
)

// Related product limits.
const (
	DefaultRelatedLimit = 4
	MaxRelatedLimit     = 12
)

// CatalogReader fetches raw product records from the catalog.
type CatalogReader interface {
	GetProduct(ctx context.Context, slug string) (*catalog.RawProduct, error)
	ListProducts(ctx context.Context, params client.ListParams) (*client.RawProductPage, error)
}

// ListQuery filters a storefront listing.
type ListQuery struct {
	Page     int    `validate:"gte=1"`
	PerPage  int    `validate:"gte=1,lte=100"`
	Category string `validate:"omitempty,slug"`
}

// ProductPage is one page of canonical product views.
type ProductPage = pagination.Result[catalog.Product]

// ProductService serves canonical product views, reading through a cache
// in front of the catalog API.
type ProductService struct {
	catalog CatalogReader
	cache   repository.ViewCache
	logger  *slog.Logger
}

// NewProductService creates a new product view service.
func NewProductService(reader CatalogReader, cache repository.ViewCache, logger *slog.Logger) *ProductService {
	return &ProductService{
		catalog: reader,
		cache:   cache,
		logger:  logger,
	}
}

// GetProduct returns the canonical view for slug. Cache failures degrade to
// a catalog read and are never returned to the caller.
func (s *ProductService) GetProduct(ctx context.Context, slug string) (*catalog.Product, error) {
	if slug == "" {
		return nil, apperrors.InvalidInput("product slug is required")
	}
	log := s.log(ctx)

	cached, err := s.cache.Get(ctx, slug)
	switch {
	case err != nil:
		viewCacheRequests.WithLabelValues("error").Inc()
		log.WarnContext(ctx, "product view cache read failed",
			slog.String("slug", slug),
			slog.String("error", err.Error()),
		)
	case cached != nil:
		viewCacheRequests.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		viewCacheRequests.WithLabelValues("miss").Inc()
	}

	raw, err := s.catalog.GetProduct(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("fetch product %q: %w", slug, err)
	}

	product := s.normalize(ctx, raw)
	if product == nil {
		return nil, apperrors.NotFound("product", slug)
	}

	if err := s.cache.Set(ctx, slug, product); err != nil {
		log.WarnContext(ctx, "product view cache write failed",
			slog.String("slug", slug),
			slog.String("error", err.Error()),
		)
	}
	return product, nil
}

// ListProducts returns one page of canonical views. Records the catalog
// reports as null are dropped from the page.
func (s *ProductService) ListProducts(ctx context.Context, q ListQuery) (*ProductPage, error) {
	raw, err := s.catalog.ListProducts(ctx, client.ListParams{
		Page:     q.Page,
		PerPage:  q.PerPage,
		Category: q.Category,
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := make([]catalog.Product, 0, len(raw.Products))
	for _, r := range raw.Products {
		if p := s.normalize(ctx, r); p != nil {
			products = append(products, *p)
		}
	}

	params := pagination.Params{Page: q.Page, PerPage: q.PerPage}
	if raw.Page > 0 {
		params.Page = raw.Page
	}
	if raw.PerPage > 0 {
		params.PerPage = raw.PerPage
	}
	page := pagination.NewResult(products, raw.TotalCount, params)
	return &page, nil
}

// RelatedProducts returns up to limit products from the same category as
// slug, excluding slug itself. A limit outside 1..MaxRelatedLimit is
// clamped, with zero meaning DefaultRelatedLimit.
func (s *ProductService) RelatedProducts(ctx context.Context, slug string, limit int) ([]catalog.Product, error) {
	switch {
	case limit <= 0:
		limit = DefaultRelatedLimit
	case limit > MaxRelatedLimit:
		limit = MaxRelatedLimit
	}

	product, err := s.GetProduct(ctx, slug)
	if err != nil {
		return nil, err
	}
	if product.Category == nil || product.Category.Slug == "" {
		return []catalog.Product{}, nil
	}

	// One extra record leaves room for the product itself.
	page, err := s.catalog.ListProducts(ctx, client.ListParams{
		Page:     1,
		PerPage:  limit + 1,
		Category: product.Category.Slug,
	})
	if err != nil {
		return nil, fmt.Errorf("list related products: %w", err)
	}

	related := make([]catalog.Product, 0, limit)
	for _, r := range page.Products {
		if len(related) == limit {
			break
		}
		p := s.normalize(ctx, r)
		if p == nil || p.Slug == product.Slug || (product.ID != "" && p.ID == product.ID) {
			continue
		}
		related = append(related, *p)
	}
	return related, nil
}

// Preview normalizes an ad-hoc raw payload without touching the catalog or
// the cache.
func (s *ProductService) Preview(ctx context.Context, payload []byte) (*catalog.Product, error) {
	raw, err := catalog.ParseRawProduct(payload)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	product := s.normalize(ctx, raw)
	if product == nil {
		return nil, apperrors.NotFound("product", "payload")
	}
	return product, nil
}

// Invalidate drops the cached view for slug.
func (s *ProductService) Invalidate(ctx context.Context, slug string) error {
	if slug == "" {
		return apperrors.InvalidInput("product slug is required")
	}
	if err := s.cache.Delete(ctx, slug); err != nil {
		return fmt.Errorf("invalidate product view %q: %w", slug, err)
	}
	s.log(ctx).DebugContext(ctx, "product view invalidated", slog.String("slug", slug))
	return nil
}

// normalize runs the normalizer and records its outcome.
func (s *ProductService) normalize(ctx context.Context, raw *catalog.RawProduct) *catalog.Product {
	product := catalog.Normalize(raw)
	if product == nil {
		productsNormalized.WithLabelValues("absent").Inc()
		return nil
	}
	productsNormalized.WithLabelValues("normalized").Inc()

	s.log(ctx).DebugContext(ctx, "product normalized",
		slog.String("slug", product.Slug),
		slog.Int("variants", len(product.Variants)),
		slog.Int("colors", len(product.Colors)),
		slog.Int("images", len(product.Images)),
		slog.Int("media_sections", len(product.MediaSections)),
	)
	return product
}

// log prefers the request-scoped logger.
func (s *ProductService) log(ctx context.Context) *slog.Logger {
	if l := logger.FromContext(ctx); l != slog.Default() {
		return l
	}
	return s.logger
}
