package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/uvstore/storefront/internal/domain"
	"github.com/uvstore/storefront/internal/repository"
	apperrors "github.com/uvstore/storefront/pkg/errors"
)

var cartOpsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_cart_operations_total",
		Help: "Total cart store operations by kind",
	},
	[]string{"op"},
)

// CartStore is the authoritative in-memory cart for one browser session.
// Every mutation is mirrored to the local store; mirror failures are logged
// and swallowed so the in-memory state keeps serving the session (the mirror
// is a write-behind copy restored only when the session is next attached).
//
// Two service instances sharing one session mirror overwrite each other at
// whole-cart granularity (last write wins). That matches the multi-tab
// behavior of the browser client this service fronts.
type CartStore struct {
	mu        sync.Mutex
	cart      domain.Cart
	repo      repository.LocalStore
	events    EventPublisher
	logger    *slog.Logger
	listeners []func()
}

// NewCartStore creates the cart store for a session, seeding it from the
// local store. A missing or unreadable mirror yields an empty cart.
func NewCartStore(ctx context.Context, sessionID string, repo repository.LocalStore, events EventPublisher, logger *slog.Logger) *CartStore {
	s := &CartStore{
		cart:   domain.Cart{SessionID: sessionID},
		repo:   repo,
		events: events,
		logger: logger,
	}

	stored, err := repo.LoadCart(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.WarnContext(ctx, "cart mirror unavailable, starting empty",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
		return s
	}

	s.cart.Lines = stored.Lines
	return s
}

// Subscribe registers fn to be called synchronously after every state change.
func (s *CartStore) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Snapshot returns a copy of the current cart.
func (s *CartStore) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// AddItem adds a line to the cart. If a line with the same product ID already
// exists its quantity is incremented by the incoming quantity; name, price,
// and image are refreshed from the incoming line. Quantity validation is the
// caller's job: the store accepts whatever it is given.
func (s *CartStore) AddItem(ctx context.Context, line domain.CartLine) {
	s.mu.Lock()

	if i := s.cart.FindLineIndex(line.ProductID); i >= 0 {
		s.cart.Lines[i].Quantity += line.Quantity
		s.cart.Lines[i].Name = line.Name
		s.cart.Lines[i].UnitPrice = line.UnitPrice
		s.cart.Lines[i].ImageURL = line.ImageURL
		s.cart.Lines[i].StockAtAdd = line.StockAtAdd
	} else {
		s.cart.Lines = append(s.cart.Lines, line)
	}

	snapshot := s.copyLocked()
	s.persistLocked(ctx, &snapshot)
	s.mu.Unlock()

	cartOpsTotal.WithLabelValues("add").Inc()
	s.logger.InfoContext(ctx, "cart line added",
		slog.String("session_id", snapshot.SessionID),
		slog.String("product_id", line.ProductID),
		slog.Int("quantity", line.Quantity),
	)
	s.publishUpdated(ctx, &snapshot)
	s.notify()
}

// RemoveItem deletes the line for the given product ID. Removing a product
// that is not in the cart is a no-op, not an error.
func (s *CartStore) RemoveItem(ctx context.Context, productID string) {
	s.mu.Lock()

	i := s.cart.FindLineIndex(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.cart.Lines = append(s.cart.Lines[:i], s.cart.Lines[i+1:]...)

	snapshot := s.copyLocked()
	s.persistLocked(ctx, &snapshot)
	s.mu.Unlock()

	cartOpsTotal.WithLabelValues("remove").Inc()
	s.logger.InfoContext(ctx, "cart line removed",
		slog.String("session_id", snapshot.SessionID),
		slog.String("product_id", productID),
	)
	s.publishUpdated(ctx, &snapshot)
	s.notify()
}

// SetQuantity overwrites the quantity of an existing line. A quantity of
// zero or less removes the line instead of storing an invalid value. Setting
// the quantity of an absent product is a no-op.
func (s *CartStore) SetQuantity(ctx context.Context, productID string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, productID)
		return
	}

	s.mu.Lock()

	i := s.cart.FindLineIndex(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.cart.Lines[i].Quantity = quantity

	snapshot := s.copyLocked()
	s.persistLocked(ctx, &snapshot)
	s.mu.Unlock()

	cartOpsTotal.WithLabelValues("set_quantity").Inc()
	s.logger.InfoContext(ctx, "cart line quantity updated",
		slog.String("session_id", snapshot.SessionID),
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)
	s.publishUpdated(ctx, &snapshot)
	s.notify()
}

// Clear empties the cart and persists the empty state.
func (s *CartStore) Clear(ctx context.Context) {
	s.mu.Lock()
	s.cart.Lines = nil
	snapshot := s.copyLocked()
	s.persistLocked(ctx, &snapshot)
	s.mu.Unlock()

	cartOpsTotal.WithLabelValues("clear").Inc()
	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("session_id", snapshot.SessionID),
	)
	if s.events != nil {
		if err := s.events.CartCleared(ctx, snapshot.SessionID); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
				slog.String("session_id", snapshot.SessionID),
				slog.String("error", err.Error()),
			)
		}
	}
	s.notify()
}

// copyLocked returns a deep copy of the cart. Callers must hold s.mu.
func (s *CartStore) copyLocked() domain.Cart {
	cp := domain.Cart{SessionID: s.cart.SessionID}
	if s.cart.Lines != nil {
		cp.Lines = make([]domain.CartLine, len(s.cart.Lines))
		copy(cp.Lines, s.cart.Lines)
	}
	return cp
}

// persistLocked mirrors the cart to the local store. Failures are logged and
// swallowed; they must never roll back or corrupt the in-memory state.
func (s *CartStore) persistLocked(ctx context.Context, snapshot *domain.Cart) {
	if err := s.repo.SaveCart(ctx, snapshot); err != nil {
		s.logger.ErrorContext(ctx, "failed to mirror cart",
			slog.String("session_id", snapshot.SessionID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *CartStore) publishUpdated(ctx context.Context, snapshot *domain.Cart) {
	if s.events == nil {
		return
	}
	if err := s.events.CartUpdated(ctx, snapshot); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("session_id", snapshot.SessionID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *CartStore) notify() {
	s.mu.Lock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
