package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/uvstore/storefront/internal/domain"
	"github.com/uvstore/storefront/internal/repository"
	apperrors "github.com/uvstore/storefront/pkg/errors"
)

// SessionStore holds the authenticated identity (or its absence) and the
// recently-viewed product history for one browser session. The identity has
// two states, anonymous and authenticated; a failed login leaves the state
// untouched because SetIdentity only runs on auth API success.
type SessionStore struct {
	mu             sync.Mutex
	sessionID      string
	identity       *domain.Identity
	recentlyViewed []domain.ProductSummary
	repo           repository.LocalStore
	logger         *slog.Logger
	listeners      []func()
}

// NewSessionStore creates the session store, restoring a persisted identity
// if one exists. The recently-viewed history always starts empty.
func NewSessionStore(ctx context.Context, sessionID string, repo repository.LocalStore, logger *slog.Logger) *SessionStore {
	s := &SessionStore{
		sessionID: sessionID,
		repo:      repo,
		logger:    logger,
	}

	identity, err := repo.LoadIdentity(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.WarnContext(ctx, "identity mirror unavailable, starting anonymous",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
		return s
	}

	s.identity = identity
	return s
}

// Subscribe registers fn to be called synchronously after every state change.
func (s *SessionStore) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// SessionID returns the browser session this store belongs to.
func (s *SessionStore) SessionID() string {
	return s.sessionID
}

// Identity returns a copy of the current identity, or nil when anonymous.
func (s *SessionStore) Identity() *domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	cp := *s.identity
	return &cp
}

// Token returns the current auth token, or "" when anonymous.
func (s *SessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return ""
	}
	return s.identity.Token
}

// IsAuthenticated reports whether an identity is attached.
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity != nil
}

// SetIdentity replaces the current identity and persists it. Only called
// after the auth API confirms a login or registration, so no partial
// identity is ever stored.
func (s *SessionStore) SetIdentity(ctx context.Context, identity *domain.Identity) {
	s.mu.Lock()
	cp := *identity
	s.identity = &cp

	if err := s.repo.SaveIdentity(ctx, s.sessionID, s.identity); err != nil {
		s.logger.ErrorContext(ctx, "failed to mirror identity",
			slog.String("session_id", s.sessionID),
			slog.String("error", err.Error()),
		)
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "identity attached",
		slog.String("session_id", s.sessionID),
		slog.String("user_id", identity.ID),
	)
	s.notify()
}

// ClearIdentity drops the identity and deletes the persisted key. The key is
// removed rather than overwritten with null so a partial read after logout
// is impossible.
func (s *SessionStore) ClearIdentity(ctx context.Context) {
	s.mu.Lock()
	s.identity = nil

	if err := s.repo.DeleteIdentity(ctx, s.sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete mirrored identity",
			slog.String("session_id", s.sessionID),
			slog.String("error", err.Error()),
		)
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "identity cleared",
		slog.String("session_id", s.sessionID),
	)
	s.notify()
}

// RecordRecentlyViewed adds a product to the front of the recently-viewed
// history. A repeat view moves the product to the front instead of
// duplicating it; the history is bounded at domain.RecentlyViewedLimit.
func (s *SessionStore) RecordRecentlyViewed(product domain.ProductSummary) {
	s.mu.Lock()
	s.recentlyViewed = domain.PushRecentlyViewed(s.recentlyViewed, product, domain.RecentlyViewedLimit)
	s.mu.Unlock()
	s.notify()
}

// RecentlyViewed returns a copy of the history, most-recent-first.
func (s *SessionStore) RecentlyViewed() []domain.ProductSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ProductSummary, len(s.recentlyViewed))
	copy(out, s.recentlyViewed)
	return out
}

func (s *SessionStore) notify() {
	s.mu.Lock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
