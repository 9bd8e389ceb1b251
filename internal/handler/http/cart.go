package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/uvstore/storefront/internal/domain"
	"github.com/uvstore/storefront/internal/service"
	"github.com/uvstore/storefront/pkg/validator"
)

// CartHandler handles HTTP requests for the session cart.
type CartHandler struct {
	manager *service.Manager
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(manager *service.Manager, logger *slog.Logger) *CartHandler {
	return &CartHandler{manager: manager, logger: logger}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding a product to the cart.
type AddItemRequest struct {
	ProductID  string `json:"product_id" validate:"required"`
	Name       string `json:"name" validate:"required,min=1,max=500"`
	UnitPrice  int64  `json:"unit_price" validate:"gte=0"`
	Quantity   int    `json:"quantity" validate:"required,gte=1"`
	ImageURL   string `json:"image_url"`
	StockAtAdd int    `json:"stock_at_add" validate:"gte=0"`
}

// SetQuantityRequest is the JSON request body for overwriting a line quantity.
// A quantity of zero removes the line.
type SetQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())
	bundle := h.manager.Attach(r.Context(), sid)

	writeJSON(w, http.StatusOK, response{Data: bundle.Cart.Snapshot()})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	bundle := h.manager.Attach(r.Context(), sid)
	bundle.Cart.AddItem(r.Context(), domain.CartLine{
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		Name:       req.Name,
		UnitPrice:  req.UnitPrice,
		ImageURL:   req.ImageURL,
		StockAtAdd: req.StockAtAdd,
	})

	writeJSON(w, http.StatusOK, response{Data: bundle.Cart.Snapshot()})
}

// SetQuantity handles PUT /api/v1/cart/items/{productId}
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())

	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeBadRequest(w, "productId is required")
		return
	}

	var req SetQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	bundle := h.manager.Attach(r.Context(), sid)
	bundle.Cart.SetQuantity(r.Context(), productID, req.Quantity)

	writeJSON(w, http.StatusOK, response{Data: bundle.Cart.Snapshot()})
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())

	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeBadRequest(w, "productId is required")
		return
	}

	bundle := h.manager.Attach(r.Context(), sid)
	bundle.Cart.RemoveItem(r.Context(), productID)

	writeJSON(w, http.StatusOK, response{Data: bundle.Cart.Snapshot()})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())

	bundle := h.manager.Attach(r.Context(), sid)
	bundle.Cart.Clear(r.Context())

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"status": "cleared"}})
}
