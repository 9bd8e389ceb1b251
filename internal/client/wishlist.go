package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/uvstore/storefront/internal/domain"
)

// WishlistClient talks to the wishlist API. It satisfies service.WishlistAPI:
// every call carries the session's bearer token, and the API rejects
// anonymous requests anyway.
type WishlistClient struct {
	*apiClient
}

// NewWishlistClient creates a client for the wishlist API at baseURL.
func NewWishlistClient(baseURL string, logger *slog.Logger) *WishlistClient {
	return &WishlistClient{apiClient: newAPIClient(baseURL, "wishlist-api", logger)}
}

type wishlistAddRequest struct {
	ProductID string `json:"productId"`
}

// wishlistEntryResponse is the wishlist API's entry shape. The product field
// is a bare ID string on add calls and an embedded product object on list
// calls, so it is decoded in a second pass.
type wishlistEntryResponse struct {
	ID      string          `json:"_id"`
	Product json.RawMessage `json:"product"`
}

func (r *wishlistEntryResponse) toDomain() (domain.WishlistEntry, error) {
	entry := domain.WishlistEntry{EntryID: r.ID}

	trimmed := bytes.TrimSpace(r.Product)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		return entry, fmt.Errorf("wishlist entry %s has no product", r.ID)
	case trimmed[0] == '"':
		var id string
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return entry, fmt.Errorf("decode wishlist entry %s product id: %w", r.ID, err)
		}
		entry.Product = domain.RefByID(id)
	default:
		var product productResponse
		if err := json.Unmarshal(trimmed, &product); err != nil {
			return entry, fmt.Errorf("decode wishlist entry %s product: %w", r.ID, err)
		}
		entry.Product = domain.RefEmbedded(product.toDomain())
	}
	return entry, nil
}

// Add saves a product to the user's wishlist and returns the created entry.
func (c *WishlistClient) Add(ctx context.Context, token, productID string) (*domain.WishlistEntry, error) {
	var resp wishlistEntryResponse
	err := c.sendJSON(ctx, http.MethodPost, "/api/wishlist", token, "wishlist-api",
		wishlistAddRequest{ProductID: productID}, &resp)
	if err != nil {
		return nil, fmt.Errorf("wishlist add: %w", err)
	}

	entry, err := resp.toDomain()
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Remove deletes a wishlist entry by its entry ID.
func (c *WishlistClient) Remove(ctx context.Context, token, entryID string) error {
	err := c.sendJSON(ctx, http.MethodDelete, "/api/wishlist/"+url.PathEscape(entryID), token, "wishlist-api", nil, nil)
	if err != nil {
		return fmt.Errorf("wishlist remove: %w", err)
	}
	return nil
}

// List fetches all of the user's wishlist entries.
func (c *WishlistClient) List(ctx context.Context, token string) ([]domain.WishlistEntry, error) {
	var resp []wishlistEntryResponse
	if err := c.getJSON(ctx, "/api/wishlist", token, "wishlist-api", &resp); err != nil {
		return nil, fmt.Errorf("wishlist list: %w", err)
	}

	entries := make([]domain.WishlistEntry, 0, len(resp))
	for i := range resp {
		entry, err := resp[i].toDomain()
		if err != nil {
			c.logger.Warn("skipping malformed wishlist entry",
				slog.String("entry_id", resp[i].ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
