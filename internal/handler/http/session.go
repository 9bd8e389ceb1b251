package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/uvstore/storefront/internal/domain"
	"github.com/uvstore/storefront/internal/service"
	"github.com/uvstore/storefront/pkg/validator"
)

// AuthAPI is the upstream auth API consumed at login and registration.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*domain.Identity, error)
	Register(ctx context.Context, name, email, password string) (*domain.Identity, error)
}

// SessionHandler handles login, registration, logout, and the session
// snapshot endpoint.
type SessionHandler struct {
	manager *service.Manager
	auth    AuthAPI
	logger  *slog.Logger
}

// NewSessionHandler creates a new session HTTP handler.
func NewSessionHandler(manager *service.Manager, auth AuthAPI, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{manager: manager, auth: auth, logger: logger}
}

// --- Request DTOs ---

// LoginRequest is the JSON request body for signing in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterRequest is the JSON request body for creating an account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// sessionSnapshot is the full session state returned to the view layer.
type sessionSnapshot struct {
	SessionID      string                  `json:"session_id"`
	Identity       *identityView           `json:"identity"`
	Cart           domain.Cart             `json:"cart"`
	Wishlist       []domain.WishlistEntry  `json:"wishlist"`
	RecentlyViewed []domain.ProductSummary `json:"recently_viewed"`
}

// identityView is the identity without the bearer token; the token never
// leaves the service once the session holds it.
type identityView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func snapshotOf(bundle *service.Bundle) sessionSnapshot {
	snap := sessionSnapshot{
		SessionID:      bundle.Session.SessionID(),
		Cart:           bundle.Cart.Snapshot(),
		Wishlist:       bundle.Wishlist.Entries(),
		RecentlyViewed: bundle.Session.RecentlyViewed(),
	}
	if identity := bundle.Session.Identity(); identity != nil {
		snap.Identity = &identityView{
			ID:    identity.ID,
			Name:  identity.Name,
			Email: identity.Email,
			Role:  identity.Role,
		}
	}
	return snap
}

// --- Handlers ---

// GetSession handles GET /api/v1/session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())
	bundle := h.manager.Attach(r.Context(), sid)

	writeJSON(w, http.StatusOK, response{Data: snapshotOf(bundle)})
}

// Login handles POST /api/v1/session/login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	identity, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// A failed login leaves the session state untouched.
		writeError(w, r, h.logger, err)
		return
	}

	bundle := h.manager.Attach(r.Context(), sid)
	bundle.SignIn(r.Context(), identity)

	writeJSON(w, http.StatusOK, response{Data: snapshotOf(bundle)})
}

// Register handles POST /api/v1/session/register
func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	identity, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	bundle := h.manager.Attach(r.Context(), sid)
	bundle.SignIn(r.Context(), identity)

	writeJSON(w, http.StatusCreated, response{Data: snapshotOf(bundle)})
}

// Logout handles POST /api/v1/session/logout
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())

	bundle := h.manager.Attach(r.Context(), sid)
	bundle.Teardown.Logout(r.Context())

	writeJSON(w, http.StatusOK, response{Data: snapshotOf(bundle)})
}

// RecentlyViewed handles GET /api/v1/session/recently-viewed
func (h *SessionHandler) RecentlyViewed(w http.ResponseWriter, r *http.Request) {
	sid, _ := sessionIDFromContext(r.Context())
	bundle := h.manager.Attach(r.Context(), sid)

	writeJSON(w, http.StatusOK, response{Data: bundle.Session.RecentlyViewed()})
}
