// Package event publishes storefront session lifecycle events to Kafka.
package event

import (
	"context"
	"fmt"

	"github.com/uvstore/storefront/internal/domain"
	"github.com/uvstore/storefront/pkg/kafka"
	"github.com/uvstore/storefront/pkg/logger"
)

const source = "storefront"

// Topics for storefront session events, keyed by session ID.
const (
	TopicCartUpdated      = "storefront.cart.updated"
	TopicCartCleared      = "storefront.cart.cleared"
	TopicSessionSignedIn  = "storefront.session.signed_in"
	TopicSessionSignedOut = "storefront.session.signed_out"
)

// Event types carried in the envelope.
const (
	TypeCartUpdated      = "cart.updated"
	TypeCartCleared      = "cart.cleared"
	TypeSessionSignedIn  = "session.signed_in"
	TypeSessionSignedOut = "session.signed_out"
)

// Publisher implements service.EventPublisher over a Kafka producer.
type Publisher struct {
	producer *kafka.Producer
}

// NewPublisher creates a Kafka-backed event publisher.
func NewPublisher(producer *kafka.Producer) *Publisher {
	return &Publisher{producer: producer}
}

type cartUpdatedPayload struct {
	SessionID string            `json:"session_id"`
	Lines     []domain.CartLine `json:"lines"`
	Total     int64             `json:"total"`
	LineCount int               `json:"line_count"`
}

type sessionPayload struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id,omitempty"`
}

// CartUpdated publishes the full cart snapshot after a mutation.
func (p *Publisher) CartUpdated(ctx context.Context, cart *domain.Cart) error {
	payload := cartUpdatedPayload{
		SessionID: cart.SessionID,
		Lines:     cart.Lines,
		Total:     cart.TotalAmount(),
		LineCount: cart.LineCount(),
	}
	return p.publish(ctx, TopicCartUpdated, TypeCartUpdated, cart.SessionID, payload)
}

// CartCleared publishes a cart-cleared marker for the session.
func (p *Publisher) CartCleared(ctx context.Context, sessionID string) error {
	return p.publish(ctx, TopicCartCleared, TypeCartCleared, sessionID, sessionPayload{SessionID: sessionID})
}

// SignedIn publishes an identity-attached event.
func (p *Publisher) SignedIn(ctx context.Context, sessionID, userID string) error {
	return p.publish(ctx, TopicSessionSignedIn, TypeSessionSignedIn, sessionID, sessionPayload{
		SessionID: sessionID,
		UserID:    userID,
	})
}

// SignedOut publishes a session-teardown event.
func (p *Publisher) SignedOut(ctx context.Context, sessionID string) error {
	return p.publish(ctx, TopicSessionSignedOut, TypeSessionSignedOut, sessionID, sessionPayload{SessionID: sessionID})
}

func (p *Publisher) publish(ctx context.Context, topic, eventType, sessionID string, payload any) error {
	evt, err := kafka.NewEvent(eventType, sessionID, "session", source, payload)
	if err != nil {
		return fmt.Errorf("build %s event: %w", eventType, err)
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		evt.WithCorrelationID(cid)
	}
	return p.producer.Publish(ctx, topic, evt)
}
