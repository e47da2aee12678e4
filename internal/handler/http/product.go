package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/slug"
	"github.com/utafrali/storefront/pkg/validator"
)

// maxPreviewBody caps the raw payload accepted by the normalize endpoint.
const maxPreviewBody = 1 << 20

// ProductViews is the read side the handler serves from.
type ProductViews interface {
	GetProduct(ctx context.Context, slug string) (*catalog.Product, error)
	ListProducts(ctx context.Context, q service.ListQuery) (*service.ProductPage, error)
	RelatedProducts(ctx context.Context, slug string, limit int) ([]catalog.Product, error)
	Preview(ctx context.Context, payload []byte) (*catalog.Product, error)
}

// ProductHandler handles HTTP requests for storefront product endpoints.
type ProductHandler struct {
	views  ProductViews
	logger *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(views ProductViews, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{views: views, logger: logger}
}

// ListProducts handles GET /api/v1/storefront/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	p := pagination.FromRequest(r)
	q := service.ListQuery{
		Page:     p.Page,
		PerPage:  p.PerPage,
		Category: r.URL.Query().Get("category"),
	}
	if err := validator.Validate(q); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	page, err := h.views.ListProducts(r.Context(), q)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, page)
}

// GetProduct handles GET /api/v1/storefront/products/{slug}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	s, ok := h.slugParam(w, r)
	if !ok {
		return
	}

	product, err := h.views.GetProduct(r.Context(), s)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// RelatedProducts handles GET /api/v1/storefront/products/{slug}/related
func (h *ProductHandler) RelatedProducts(w http.ResponseWriter, r *http.Request) {
	s, ok := h.slugParam(w, r)
	if !ok {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > service.MaxRelatedLimit {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{
					Code:    "INVALID_PARAMETER",
					Message: "limit must be an integer between 1 and " + strconv.Itoa(service.MaxRelatedLimit),
				},
			})
			return
		}
		limit = n
	}

	products, err := h.views.RelatedProducts(r.Context(), s, limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}

// Normalize handles POST /api/v1/storefront/normalize
func (h *ProductHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPreviewBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteJSON(w, http.StatusRequestEntityTooLarge, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "PAYLOAD_TOO_LARGE", Message: "request body must not exceed 1 MB"},
			})
			return
		}
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "failed to read request body"},
		})
		return
	}

	product, err := h.views.Preview(r.Context(), body)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// slugParam reads the {slug} URL parameter in canonical form.
func (h *ProductHandler) slugParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	s := slug.Canonical(chi.URLParam(r, "slug"))
	if s == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "product slug is invalid"},
		})
		return "", false
	}
	return s, true
}
