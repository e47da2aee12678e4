package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/storefront/internal/catalog"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/tracing"
)

const serviceName = "catalog"

// maxResponseBytes caps how much of a catalog response is decoded.
const maxResponseBytes = 8 << 20

// ListParams filters and pages a catalog listing. Zero values are omitted
// from the query so the catalog applies its own defaults.
type ListParams struct {
	Page     int
	PerPage  int
	Category string
}

// RawProductPage is one page of raw catalog records. Entries are nil where
// the catalog returned null or a non-object.
type RawProductPage struct {
	Products   []*catalog.RawProduct
	TotalCount int
	Page       int
	PerPage    int
}

// CatalogClient reads raw product records from the catalog REST API.
type CatalogClient struct {
	baseURL string
	http    *httpclient.CircuitBreakerClient
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewCatalogClient creates a client for the catalog API at baseURL.
func NewCatalogClient(baseURL string, hc *httpclient.CircuitBreakerClient, logger *slog.Logger) *CatalogClient {
	return &CatalogClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		logger:  logger,
		tracer:  tracing.Tracer("client"),
	}
}

type productEnvelope struct {
	Data *catalog.RawProduct `json:"data"`
}

type listEnvelope struct {
	Data       json.RawMessage `json:"data"`
	TotalCount int             `json:"total_count"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
}

// GetProduct fetches the raw record for slug. A missing product, either a
// 404 or a null data field, yields nil and no error.
func (c *CatalogClient) GetProduct(ctx context.Context, slug string) (product *catalog.RawProduct, err error) {
	ctx, span := c.tracer.Start(ctx, "catalog.GetProduct",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("product.slug", slug)),
	)
	defer func() { endSpan(span, err) }()

	resp, err := c.http.Get(ctx, c.baseURL+"/api/v1/products/"+url.PathEscape(slug))
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		_ = resp.Body.Close()
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	var env productEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode catalog product %q: %w", slug, err)
	}
	return env.Data, nil
}

// ListProducts fetches one page of raw records.
func (c *CatalogClient) ListProducts(ctx context.Context, params ListParams) (page *RawProductPage, err error) {
	ctx, span := c.tracer.Start(ctx, "catalog.ListProducts",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Int("page", params.Page),
			attribute.Int("per_page", params.PerPage),
			attribute.String("category", params.Category),
		),
	)
	defer func() { endSpan(span, err) }()

	q := url.Values{}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(params.PerPage))
	}
	if params.Category != "" {
		q.Set("category", params.Category)
	}
	endpoint := c.baseURL + "/api/v1/products"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	var env listEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode catalog product list: %w", err)
	}

	products := []*catalog.RawProduct{}
	if len(env.Data) > 0 {
		if products, err = catalog.ParseRawProductList(env.Data); err != nil {
			return nil, fmt.Errorf("decode catalog product list: %w", err)
		}
	}

	return &RawProductPage{
		Products:   products,
		TotalCount: env.TotalCount,
		Page:       env.Page,
		PerPage:    env.PerPage,
	}, nil
}

// transportError maps breaker rejections and exhausted retries to 503.
// Context cancellation is passed through unchanged.
func (c *CatalogClient) transportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return err
	}
	if errors.Is(err, httpclient.ErrCircuitOpen) || errors.Is(err, httpclient.ErrTooManyRequests) {
		c.logger.WarnContext(ctx, "catalog circuit breaker rejected request",
			slog.String("state", c.http.State().String()),
		)
	}
	return apperrors.Unavailable(serviceName, err)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
