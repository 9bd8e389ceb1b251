package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/uvstore/storefront/internal/domain"
	apperrors "github.com/uvstore/storefront/pkg/errors"
)

const (
	cartKeyPrefix     = "cart:"
	identityKeyPrefix = "identity:"
)

// LocalStore implements repository.LocalStore using Redis. Values are JSON
// with a TTL so abandoned browser sessions age out.
type LocalStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLocalStore creates a Redis-backed local store.
func NewLocalStore(client *redis.Client, ttl time.Duration) *LocalStore {
	return &LocalStore{
		client: client,
		ttl:    ttl,
	}
}

// LoadCart retrieves the mirrored cart for a session. A missing key or an
// unreadable stored value both surface as ErrNotFound so the caller seeds an
// empty cart instead of failing.
func (s *LocalStore) LoadCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	key := cartKeyPrefix + sessionID

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("cart", sessionID)
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, apperrors.NotFound("cart", sessionID)
	}

	return &cart, nil
}

// SaveCart persists a cart with the configured TTL.
func (s *LocalStore) SaveCart(ctx context.Context, cart *domain.Cart) error {
	key := cartKeyPrefix + cart.SessionID

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}

// LoadIdentity retrieves the persisted identity for a session. Missing or
// unreadable values surface as ErrNotFound.
func (s *LocalStore) LoadIdentity(ctx context.Context, sessionID string) (*domain.Identity, error) {
	key := identityKeyPrefix + sessionID

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("identity", sessionID)
		}
		return nil, fmt.Errorf("redis get identity: %w", err)
	}

	var identity domain.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, apperrors.NotFound("identity", sessionID)
	}

	return &identity, nil
}

// SaveIdentity persists an identity with the configured TTL.
func (s *LocalStore) SaveIdentity(ctx context.Context, sessionID string, identity *domain.Identity) error {
	key := identityKeyPrefix + sessionID

	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set identity: %w", err)
	}

	return nil
}

// DeleteIdentity removes the persisted identity key.
func (s *LocalStore) DeleteIdentity(ctx context.Context, sessionID string) error {
	key := identityKeyPrefix + sessionID

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del identity: %w", err)
	}

	return nil
}
