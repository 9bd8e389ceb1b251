package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/uvstore/storefront/internal/domain"
	"github.com/uvstore/storefront/internal/repository"
)

// Bundle groups the stores belonging to one browser session.
type Bundle struct {
	Session  *SessionStore
	Cart     *CartStore
	Wishlist *WishlistStore
	Teardown *Teardown

	events EventPublisher
	logger *slog.Logger
}

// SignIn attaches a confirmed identity to the session and rebuilds the
// wishlist cache from the remote collection. The cache refresh is
// best-effort: a failure is logged and leaves an empty cache rather than
// failing the login.
func (b *Bundle) SignIn(ctx context.Context, identity *domain.Identity) {
	b.Session.SetIdentity(ctx, identity)

	if err := b.Wishlist.Refresh(ctx); err != nil {
		b.logger.WarnContext(ctx, "wishlist refresh after sign-in failed",
			slog.String("session_id", b.Session.SessionID()),
			slog.String("error", err.Error()),
		)
	}

	if b.events != nil {
		if err := b.events.SignedIn(ctx, b.Session.SessionID(), identity.ID); err != nil {
			b.logger.ErrorContext(ctx, "failed to publish session.signed_in event",
				slog.String("session_id", b.Session.SessionID()),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Manager hands out the store bundle for each browser session. A bundle is
// built once per session per instance: its stores seed from the local
// mirror at that moment and stay authoritative in memory afterwards.
type Manager struct {
	mu      sync.Mutex
	bundles map[string]*Bundle

	repo        repository.LocalStore
	wishlistAPI WishlistAPI
	events      EventPublisher
	logger      *slog.Logger
}

// NewManager creates a session bundle manager.
func NewManager(repo repository.LocalStore, wishlistAPI WishlistAPI, events EventPublisher, logger *slog.Logger) *Manager {
	return &Manager{
		bundles:     make(map[string]*Bundle),
		repo:        repo,
		wishlistAPI: wishlistAPI,
		events:      events,
		logger:      logger,
	}
}

// Attach returns the bundle for a session, creating and seeding it on first
// use. A restored identity also triggers a wishlist cache rebuild, since the
// wishlist has no local mirror.
func (m *Manager) Attach(ctx context.Context, sessionID string) *Bundle {
	m.mu.Lock()
	if b, ok := m.bundles[sessionID]; ok {
		m.mu.Unlock()
		return b
	}
	m.mu.Unlock()

	// Build outside the lock; seeding reads the local mirror.
	session := NewSessionStore(ctx, sessionID, m.repo, m.logger)
	cart := NewCartStore(ctx, sessionID, m.repo, m.events, m.logger)
	wishlist := NewWishlistStore(m.wishlistAPI, session, m.logger)
	b := &Bundle{
		Session:  session,
		Cart:     cart,
		Wishlist: wishlist,
		Teardown: NewTeardown(session, cart, wishlist, m.events, m.logger),
		events:   m.events,
		logger:   m.logger,
	}

	if session.IsAuthenticated() {
		if err := wishlist.Refresh(ctx); err != nil {
			m.logger.WarnContext(ctx, "wishlist refresh on session attach failed",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.bundles[sessionID]; ok {
		// Lost a build race with another request for the same session.
		return existing
	}
	m.bundles[sessionID] = b
	return b
}

// Detach drops a session's bundle from memory. The local mirror is left in
// place so the session can be re-attached later.
func (m *Manager) Detach(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bundles, sessionID)
}
