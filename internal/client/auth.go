package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/uvstore/storefront/internal/domain"
)

// AuthClient talks to the auth API. It only consumes the API: password
// hashing and token issuance stay upstream.
type AuthClient struct {
	*apiClient
}

// NewAuthClient creates a client for the auth API at baseURL.
func NewAuthClient(baseURL string, logger *slog.Logger) *AuthClient {
	return &AuthClient{apiClient: newAPIClient(baseURL, "auth-api", logger)}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// identityResponse is the auth API's user shape. The ID field keeps the
// upstream document-store name.
type identityResponse struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

func (r *identityResponse) toDomain() *domain.Identity {
	return &domain.Identity{
		ID:    r.ID,
		Name:  r.Name,
		Email: r.Email,
		Role:  r.Role,
		Token: r.Token,
	}
}

// Login exchanges credentials for an identity with a bearer token.
func (c *AuthClient) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	var resp identityResponse
	err := c.sendJSON(ctx, http.MethodPost, "/api/auth/login", "", "auth-api",
		loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return resp.toDomain(), nil
}

// Register creates an account and returns the signed-in identity.
func (c *AuthClient) Register(ctx context.Context, name, email, password string) (*domain.Identity, error) {
	var resp identityResponse
	err := c.sendJSON(ctx, http.MethodPost, "/api/auth/register", "", "auth-api",
		registerRequest{Name: name, Email: email, Password: password}, &resp)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return resp.toDomain(), nil
}
