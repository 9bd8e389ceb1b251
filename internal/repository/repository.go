package repository

import (
	"context"

	"github.com/uvstore/storefront/internal/domain"
)

// LocalStore is the durable mirror for session-scoped state. In-memory stores
// stay authoritative: every mutation is followed by a save, and values are
// loaded only once, when a session is first attached. Cart and identity live
// in disjoint key namespaces; neither owner reads the other's keys.
type LocalStore interface {
	// LoadCart retrieves the mirrored cart for a session.
	// Returns ErrNotFound when no cart is stored or the stored value is
	// unreadable (unreadable data is treated as absent, never fatal).
	LoadCart(ctx context.Context, sessionID string) (*domain.Cart, error)

	// SaveCart overwrites the mirrored cart for the cart's session.
	SaveCart(ctx context.Context, cart *domain.Cart) error

	// LoadIdentity retrieves the persisted identity for a session.
	// Returns ErrNotFound when absent or unreadable.
	LoadIdentity(ctx context.Context, sessionID string) (*domain.Identity, error)

	// SaveIdentity overwrites the persisted identity for a session.
	SaveIdentity(ctx context.Context, sessionID string, identity *domain.Identity) error

	// DeleteIdentity removes the persisted identity key entirely, so no
	// partial read is possible after logout.
	DeleteIdentity(ctx context.Context, sessionID string) error
}
