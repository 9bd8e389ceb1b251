package service

import (
	"context"

	"github.com/uvstore/storefront/internal/domain"
)

// EventPublisher publishes storefront domain events. Publish failures are
// logged by the stores and never fail the triggering operation.
type EventPublisher interface {
	CartUpdated(ctx context.Context, cart *domain.Cart) error
	CartCleared(ctx context.Context, sessionID string) error
	SignedIn(ctx context.Context, sessionID, userID string) error
	SignedOut(ctx context.Context, sessionID string) error
}
