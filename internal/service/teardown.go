package service

import (
	"context"
	"log/slog"
)

// Teardown resets all session-scoped state on logout. Cart and wishlist
// belong to whoever is using the browser session; nothing gated on the
// departing identity may survive for the next (possibly different) user.
type Teardown struct {
	session  *SessionStore
	cart     *CartStore
	wishlist *WishlistStore
	events   EventPublisher
	logger   *slog.Logger
}

// NewTeardown creates the teardown coordinator for one session's stores.
func NewTeardown(session *SessionStore, cart *CartStore, wishlist *WishlistStore, events EventPublisher, logger *slog.Logger) *Teardown {
	return &Teardown{
		session:  session,
		cart:     cart,
		wishlist: wishlist,
		events:   events,
		logger:   logger,
	}
}

// Logout clears the identity, the cart, and the wishlist cache, in that
// order. Afterwards the session is anonymous with no authenticated-only
// data left in memory or in the local mirror.
func (t *Teardown) Logout(ctx context.Context) {
	sessionID := t.session.SessionID()

	t.session.ClearIdentity(ctx)
	t.cart.Clear(ctx)
	t.wishlist.Clear()

	if t.events != nil {
		if err := t.events.SignedOut(ctx, sessionID); err != nil {
			t.logger.ErrorContext(ctx, "failed to publish session.signed_out event",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
	}

	t.logger.InfoContext(ctx, "session torn down",
		slog.String("session_id", sessionID),
	)
}
