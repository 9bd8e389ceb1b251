package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/uvstore/storefront/internal/domain"
	"github.com/uvstore/storefront/internal/service"
	apperrors "github.com/uvstore/storefront/pkg/errors"
)

// OrderAPI is the upstream order history, read with the session's token.
type OrderAPI interface {
	List(ctx context.Context, token string) ([]domain.Order, error)
	Get(ctx context.Context, token, orderID string) (*domain.Order, error)
}

// OrderHandler proxies order history for the signed-in user.
type OrderHandler struct {
	manager *service.Manager
	orders  OrderAPI
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(manager *service.Manager, orders OrderAPI, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{manager: manager, orders: orders, logger: logger}
}

// ListOrders handles GET /api/v1/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())
	bundle := h.manager.Attach(r.Context(), sid)

	token := bundle.Session.Token()
	if token == "" {
		writeError(w, r, h.logger, apperrors.Unauthorized("sign in to view your orders"))
		return
	}

	orders, err := h.orders.List(r.Context(), token)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: orders})
}

// GetOrder handles GET /api/v1/orders/{orderId}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())
	bundle := h.manager.Attach(r.Context(), sid)

	token := bundle.Session.Token()
	if token == "" {
		writeError(w, r, h.logger, apperrors.Unauthorized("sign in to view your orders"))
		return
	}

	orderID := chi.URLParam(r, "orderId")
	if orderID == "" {
		writeBadRequest(w, "orderId is required")
		return
	}

	order, err := h.orders.Get(r.Context(), token, orderID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: order})
}
