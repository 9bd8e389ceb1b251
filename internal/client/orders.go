package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/uvstore/storefront/internal/domain"
)

// OrderClient reads the order history API. Orders are read-only here:
// checkout and payment live upstream.
type OrderClient struct {
	*apiClient
}

// NewOrderClient creates a client for the order API at baseURL.
func NewOrderClient(baseURL string, logger *slog.Logger) *OrderClient {
	return &OrderClient{apiClient: newAPIClient(baseURL, "order-api", logger)}
}

type orderItemResponse struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type orderResponse struct {
	ID            string              `json:"_id"`
	Items         []orderItemResponse `json:"items"`
	Status        string              `json:"status"`
	Total         float64             `json:"total"`
	PaymentStatus string              `json:"paymentStatus"`
	Address       string              `json:"address"`
	CreatedAt     time.Time           `json:"createdAt"`
}

func (r *orderResponse) toDomain() domain.Order {
	items := make([]domain.OrderItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: toCents(item.Price),
		}
	}
	return domain.Order{
		ID:            r.ID,
		Items:         items,
		Status:        r.Status,
		Total:         toCents(r.Total),
		PaymentStatus: r.PaymentStatus,
		Address:       r.Address,
		CreatedAt:     r.CreatedAt,
	}
}

// List fetches the signed-in user's order history.
func (c *OrderClient) List(ctx context.Context, token string) ([]domain.Order, error) {
	var resp []orderResponse
	if err := c.getJSON(ctx, "/api/orders", token, "order-api", &resp); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders := make([]domain.Order, len(resp))
	for i := range resp {
		orders[i] = resp[i].toDomain()
	}
	return orders, nil
}

// Get fetches one order by ID.
func (c *OrderClient) Get(ctx context.Context, token, orderID string) (*domain.Order, error) {
	var resp orderResponse
	if err := c.getJSON(ctx, "/api/orders/"+url.PathEscape(orderID), token, "order-api", &resp); err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	order := resp.toDomain()
	return &order, nil
}
