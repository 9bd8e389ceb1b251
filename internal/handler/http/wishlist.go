package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/uvstore/storefront/internal/service"
	"github.com/uvstore/storefront/pkg/validator"
)

// WishlistHandler handles HTTP requests for the session wishlist cache.
type WishlistHandler struct {
	manager *service.Manager
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(manager *service.Manager, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{manager: manager, logger: logger}
}

// AddEntryRequest is the JSON request body for saving a product.
type AddEntryRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// ListEntries handles GET /api/v1/wishlist
func (h *WishlistHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())
	bundle := h.manager.Attach(r.Context(), sid)

	writeJSON(w, http.StatusOK, response{Data: bundle.Wishlist.Entries()})
}

// AddEntry handles POST /api/v1/wishlist
func (h *WishlistHandler) AddEntry(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())

	var req AddEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	bundle := h.manager.Attach(r.Context(), sid)
	entry, err := bundle.Wishlist.AddEntry(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: entry})
}

// wishlistStatus is the per-product membership answer product cards render.
type wishlistStatus struct {
	ProductID  string `json:"product_id"`
	Wishlisted bool   `json:"wishlisted"`
	EntryID    string `json:"entry_id,omitempty"`
}

// GetStatus handles GET /api/v1/wishlist/status/{productId}
func (h *WishlistHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())

	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeBadRequest(w, "productId is required")
		return
	}

	bundle := h.manager.Attach(r.Context(), sid)
	status := wishlistStatus{ProductID: productID}
	if entryID, ok := bundle.Wishlist.EntryIDByProduct(productID); ok {
		status.Wishlisted = true
		status.EntryID = entryID
	}

	writeJSON(w, http.StatusOK, response{Data: status})
}

// RemoveEntry handles DELETE /api/v1/wishlist/{entryId}
func (h *WishlistHandler) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())

	entryID := chi.URLParam(r, "entryId")
	if entryID == "" {
		writeBadRequest(w, "entryId is required")
		return
	}

	bundle := h.manager.Attach(r.Context(), sid)
	if err := bundle.Wishlist.RemoveEntry(r.Context(), entryID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"status": "removed"}})
}
