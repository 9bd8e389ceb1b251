package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/uvstore/storefront/internal/domain"
)

// CatalogClient reads the product catalog API.
type CatalogClient struct {
	*apiClient
}

// NewCatalogClient creates a client for the catalog API at baseURL.
func NewCatalogClient(baseURL string, logger *slog.Logger) *CatalogClient {
	return &CatalogClient{apiClient: newAPIClient(baseURL, "catalog-api", logger)}
}

type productResponse struct {
	ID       string   `json:"_id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Price    float64  `json:"price"`
	Images   []string `json:"images"`
	Stock    int      `json:"stock"`
}

func (r *productResponse) toDomain() domain.ProductSummary {
	return domain.ProductSummary{
		ID:       r.ID,
		Name:     r.Name,
		Category: r.Category,
		Price:    toCents(r.Price),
		Images:   r.Images,
		Stock:    r.Stock,
	}
}

// ListProducts fetches the catalog, optionally filtered by category.
func (c *CatalogClient) ListProducts(ctx context.Context, category string) ([]domain.ProductSummary, error) {
	path := "/api/products"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}

	var resp []productResponse
	if err := c.getJSON(ctx, path, "", "catalog-api", &resp); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := make([]domain.ProductSummary, len(resp))
	for i := range resp {
		products[i] = resp[i].toDomain()
	}
	return products, nil
}

// GetProduct fetches one product by ID.
func (c *CatalogClient) GetProduct(ctx context.Context, productID string) (*domain.ProductSummary, error) {
	var resp productResponse
	if err := c.getJSON(ctx, "/api/products/"+url.PathEscape(productID), "", "catalog-api", &resp); err != nil {
		return nil, fmt.Errorf("get product %s: %w", productID, err)
	}
	product := resp.toDomain()
	return &product, nil
}
