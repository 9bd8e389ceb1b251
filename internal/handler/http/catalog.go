package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/uvstore/storefront/internal/domain"
	"github.com/uvstore/storefront/internal/service"
)

// CatalogAPI is the upstream product catalog.
type CatalogAPI interface {
	ListProducts(ctx context.Context, category string) ([]domain.ProductSummary, error)
	GetProduct(ctx context.Context, productID string) (*domain.ProductSummary, error)
}

// CatalogHandler proxies product browsing. Fetching a product detail also
// records it in the session's recently-viewed history.
type CatalogHandler struct {
	manager *service.Manager
	catalog CatalogAPI
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(manager *service.Manager, catalog CatalogAPI, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{manager: manager, catalog: catalog, logger: logger}
}

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: products})
}

// GetProduct handles GET /api/v1/products/{productId}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeBadRequest(w, "productId is required")
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	sid, _ := sessionIDFromContext(r.Context())
	bundle := h.manager.Attach(r.Context(), sid)
	bundle.Session.RecordRecentlyViewed(*product)

	writeJSON(w, http.StatusOK, response{Data: product})
}
