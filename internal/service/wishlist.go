package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/uvstore/storefront/internal/domain"
	apperrors "github.com/uvstore/storefront/pkg/errors"
)

var wishlistOpsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_wishlist_operations_total",
		Help: "Total wishlist store operations by kind and outcome",
	},
	[]string{"op", "outcome"},
)

// WishlistAPI is the remote wishlist collection, authenticated by bearer token.
type WishlistAPI interface {
	Add(ctx context.Context, token, productID string) (*domain.WishlistEntry, error)
	Remove(ctx context.Context, token, entryID string) error
	List(ctx context.Context, token string) ([]domain.WishlistEntry, error)
}

// WishlistStore is a local cache of the user's server-side wishlist. The
// remote collection is the source of truth: the cache changes only after a
// remote call succeeds, and a failed call leaves it untouched. If an add and
// a remove for the same product race, the last response to arrive wins; no
// request is ever cancelled or sequenced.
type WishlistStore struct {
	mu        sync.Mutex
	entries   []domain.WishlistEntry
	byProduct map[string]string // product ID -> entry ID
	api       WishlistAPI
	session   *SessionStore
	logger    *slog.Logger
	listeners []func()
}

// NewWishlistStore creates an empty wishlist cache. There is no persisted
// local key for the wishlist; call Refresh after login to populate it.
func NewWishlistStore(api WishlistAPI, session *SessionStore, logger *slog.Logger) *WishlistStore {
	return &WishlistStore{
		byProduct: make(map[string]string),
		api:       api,
		session:   session,
		logger:    logger,
	}
}

// Subscribe registers fn to be called synchronously after every cache change.
func (s *WishlistStore) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Entries returns a copy of the cached entries.
func (s *WishlistStore) Entries() []domain.WishlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.WishlistEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// IsWishlisted reports whether the product is in the cache. Product cards
// call this per render, so the lookup is indexed rather than a scan.
func (s *WishlistStore) IsWishlisted(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byProduct[productID]
	return ok
}

// EntryIDByProduct returns the cached entry ID for a product, if present.
func (s *WishlistStore) EntryIDByProduct(productID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byProduct[productID]
	return id, ok
}

// AddEntry saves a product to the remote wishlist and, on success, appends
// the server-returned entry to the cache. Anonymous sessions are rejected
// before any network call is issued.
func (s *WishlistStore) AddEntry(ctx context.Context, productID string) (*domain.WishlistEntry, error) {
	token := s.session.Token()
	if token == "" {
		wishlistOpsTotal.WithLabelValues("add", "unauthenticated").Inc()
		return nil, apperrors.Unauthorized("sign in to manage your wishlist")
	}

	entry, err := s.api.Add(ctx, token, productID)
	if err != nil {
		wishlistOpsTotal.WithLabelValues("add", "error").Inc()
		return nil, fmt.Errorf("wishlist add: %w", err)
	}

	s.mu.Lock()
	s.upsertLocked(*entry)
	s.mu.Unlock()

	wishlistOpsTotal.WithLabelValues("add", "ok").Inc()
	s.logger.InfoContext(ctx, "wishlist entry added",
		slog.String("session_id", s.session.SessionID()),
		slog.String("product_id", productID),
		slog.String("entry_id", entry.EntryID),
	)
	s.notify()
	return entry, nil
}

// RemoveEntry deletes an entry from the remote wishlist and, on success,
// drops it from the cache. On failure the cache is left unchanged and the
// error is surfaced to the caller.
func (s *WishlistStore) RemoveEntry(ctx context.Context, entryID string) error {
	token := s.session.Token()
	if token == "" {
		wishlistOpsTotal.WithLabelValues("remove", "unauthenticated").Inc()
		return apperrors.Unauthorized("sign in to manage your wishlist")
	}

	if err := s.api.Remove(ctx, token, entryID); err != nil {
		wishlistOpsTotal.WithLabelValues("remove", "error").Inc()
		return fmt.Errorf("wishlist remove: %w", err)
	}

	s.mu.Lock()
	for i := range s.entries {
		if s.entries[i].EntryID == entryID {
			delete(s.byProduct, s.entries[i].Product.ProductID())
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	wishlistOpsTotal.WithLabelValues("remove", "ok").Inc()
	s.logger.InfoContext(ctx, "wishlist entry removed",
		slog.String("session_id", s.session.SessionID()),
		slog.String("entry_id", entryID),
	)
	s.notify()
	return nil
}

// Refresh rebuilds the cache from the remote collection. Used at login; the
// cache has no local mirror to restore from.
func (s *WishlistStore) Refresh(ctx context.Context) error {
	token := s.session.Token()
	if token == "" {
		return apperrors.Unauthorized("sign in to manage your wishlist")
	}

	entries, err := s.api.List(ctx, token)
	if err != nil {
		wishlistOpsTotal.WithLabelValues("refresh", "error").Inc()
		return fmt.Errorf("wishlist refresh: %w", err)
	}

	s.mu.Lock()
	s.entries = entries
	s.byProduct = make(map[string]string, len(entries))
	for _, e := range entries {
		s.byProduct[e.Product.ProductID()] = e.EntryID
	}
	s.mu.Unlock()

	wishlistOpsTotal.WithLabelValues("refresh", "ok").Inc()
	s.notify()
	return nil
}

// Clear empties the cache locally. No remote bulk delete is issued: the
// remote collection belongs to the identity being discarded, not to this
// browser session.
func (s *WishlistStore) Clear() {
	s.mu.Lock()
	s.entries = nil
	s.byProduct = make(map[string]string)
	s.mu.Unlock()

	wishlistOpsTotal.WithLabelValues("clear", "ok").Inc()
	s.notify()
}

// upsertLocked appends an entry, replacing any cached entry for the same
// product. Callers must hold s.mu.
func (s *WishlistStore) upsertLocked(entry domain.WishlistEntry) {
	productID := entry.Product.ProductID()
	if prev, ok := s.byProduct[productID]; ok {
		for i := range s.entries {
			if s.entries[i].EntryID == prev {
				s.entries = append(s.entries[:i], s.entries[i+1:]...)
				break
			}
		}
	}
	s.entries = append(s.entries, entry)
	s.byProduct[productID] = entry.EntryID
}

func (s *WishlistStore) notify() {
	s.mu.Lock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
