package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uvstore/storefront/internal/domain"
	"github.com/uvstore/storefront/internal/service"
	apperrors "github.com/uvstore/storefront/pkg/errors"
)

// ============================================================================
// Test fakes
// ============================================================================

// memLocalStore is a map-backed repository.LocalStore.
type memLocalStore struct {
	mu         sync.Mutex
	carts      map[string]*domain.Cart
	identities map[string]*domain.Identity
}

func newMemLocalStore() *memLocalStore {
	return &memLocalStore{
		carts:      make(map[string]*domain.Cart),
		identities: make(map[string]*domain.Identity),
	}
}

func (s *memLocalStore) LoadCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[sessionID]
	if !ok {
		return nil, apperrors.NotFound("cart", sessionID)
	}
	cp := *cart
	return &cp, nil
}

func (s *memLocalStore) SaveCart(ctx context.Context, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *cart
	s.carts[cart.SessionID] = &cp
	return nil
}

func (s *memLocalStore) LoadIdentity(ctx context.Context, sessionID string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.identities[sessionID]
	if !ok {
		return nil, apperrors.NotFound("identity", sessionID)
	}
	cp := *identity
	return &cp, nil
}

func (s *memLocalStore) SaveIdentity(ctx context.Context, sessionID string, identity *domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *identity
	s.identities[sessionID] = &cp
	return nil
}

func (s *memLocalStore) DeleteIdentity(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.identities, sessionID)
	return nil
}

// fakeWishlistAPI counts remote calls so tests can assert the identity guard.
type fakeWishlistAPI struct {
	mu      sync.Mutex
	entries map[string]string // entry ID -> product ID
	next    int
	calls   int
	err     error
}

func newFakeWishlistAPI() *fakeWishlistAPI {
	return &fakeWishlistAPI{entries: make(map[string]string)}
}

func (f *fakeWishlistAPI) Add(ctx context.Context, token, productID string) (*domain.WishlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	f.next++
	entryID := "w" + strconv.Itoa(f.next)
	f.entries[entryID] = productID
	return &domain.WishlistEntry{EntryID: entryID, Product: domain.RefByID(productID)}, nil
}

func (f *fakeWishlistAPI) Remove(ctx context.Context, token, entryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	delete(f.entries, entryID)
	return nil
}

func (f *fakeWishlistAPI) List(ctx context.Context, token string) ([]domain.WishlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.WishlistEntry, 0, len(f.entries))
	for entryID, productID := range f.entries {
		out = append(out, domain.WishlistEntry{EntryID: entryID, Product: domain.RefByID(productID)})
	}
	return out, nil
}

func (f *fakeWishlistAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeAuthAPI struct {
	identity *domain.Identity
	err      error
}

func (f *fakeAuthAPI) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

func (f *fakeAuthAPI) Register(ctx context.Context, name, email, password string) (*domain.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

type fakeCatalogAPI struct {
	products map[string]domain.ProductSummary
}

func (f *fakeCatalogAPI) ListProducts(ctx context.Context, category string) ([]domain.ProductSummary, error) {
	out := make([]domain.ProductSummary, 0, len(f.products))
	for _, p := range f.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalogAPI) GetProduct(ctx context.Context, productID string) (*domain.ProductSummary, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, apperrors.NotFound("product", productID)
	}
	return &p, nil
}

type fakeOrderAPI struct {
	orders []domain.Order
	err    error
}

func (f *fakeOrderAPI) List(ctx context.Context, token string) ([]domain.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.orders, nil
}

func (f *fakeOrderAPI) Get(ctx context.Context, token, orderID string) (*domain.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.orders {
		if f.orders[i].ID == orderID {
			return &f.orders[i], nil
		}
	}
	return nil, apperrors.NotFound("order", orderID)
}

// ============================================================================
// Test fixture
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	router   http.Handler
	manager  *service.Manager
	repo     *memLocalStore
	wishlist *fakeWishlistAPI
	auth     *fakeAuthAPI
	catalog  *fakeCatalogAPI
	orders   *fakeOrderAPI
}

// setupRouter mirrors the production route layout with the SessionID and
// ContentTypeJSON middleware so session scoping is tested end-to-end.
func setupRouter(t *testing.T) *fixture {
	t.Helper()

	logger := testLogger()
	repo := newMemLocalStore()
	wishlist := newFakeWishlistAPI()
	manager := service.NewManager(repo, wishlist, nil, logger)

	f := &fixture{
		manager:  manager,
		repo:     repo,
		wishlist: wishlist,
		auth:     &fakeAuthAPI{identity: &domain.Identity{ID: "u1", Name: "Asha", Email: "asha@example.com", Role: "customer", Token: "tok-abc"}},
		catalog: &fakeCatalogAPI{products: map[string]domain.ProductSummary{
			"p1": {ID: "p1", Name: "Mug", Category: "kitchen", Price: 1299, Stock: 12},
			"p2": {ID: "p2", Name: "Lamp", Category: "home", Price: 4550, Stock: 3},
		}},
		orders: &fakeOrderAPI{},
	}

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(SessionID)

		cartHandler := NewCartHandler(manager, logger)
		wishlistHandler := NewWishlistHandler(manager, logger)
		sessionHandler := NewSessionHandler(manager, f.auth, logger)
		catalogHandler := NewCatalogHandler(manager, f.catalog, logger)
		orderHandler := NewOrderHandler(manager, f.orders, logger)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{productId}", cartHandler.SetQuantity)
			r.Delete("/items/{productId}", cartHandler.RemoveItem)
		})
		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", wishlistHandler.ListEntries)
			r.Post("/", wishlistHandler.AddEntry)
			r.Get("/status/{productId}", wishlistHandler.GetStatus)
			r.Delete("/{entryId}", wishlistHandler.RemoveEntry)
		})
		r.Route("/session", func(r chi.Router) {
			r.Get("/", sessionHandler.GetSession)
			r.Post("/login", sessionHandler.Login)
			r.Post("/register", sessionHandler.Register)
			r.Post("/logout", sessionHandler.Logout)
			r.Get("/recently-viewed", sessionHandler.RecentlyViewed)
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalogHandler.ListProducts)
			r.Get("/{productId}", catalogHandler.GetProduct)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orderHandler.ListOrders)
			r.Get("/{orderId}", orderHandler.GetOrder)
		})
	})
	f.router = r
	return f
}

func (f *fixture) do(t *testing.T, method, path, sessionID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.Header.Set(SessionIDHeader, sessionID)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Error.Code
}

// ============================================================================
// Tests
// ============================================================================

func TestSessionIDMiddleware_GeneratesAndEchoes(t *testing.T) {
	f := setupRouter(t)

	rec := f.do(t, http.MethodGet, "/api/v1/cart/", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(SessionIDHeader))
}

func TestSessionIDMiddleware_PreservesProvidedID(t *testing.T) {
	f := setupRouter(t)

	rec := f.do(t, http.MethodGet, "/api/v1/cart/", "sess-1", nil)

	assert.Equal(t, "sess-1", rec.Header().Get(SessionIDHeader))
}

func TestCartEndpoints_AddAndGet(t *testing.T) {
	f := setupRouter(t)

	rec := f.do(t, http.MethodPost, "/api/v1/cart/items", "sess-1", AddItemRequest{
		ProductID: "p1", Name: "Mug", UnitPrice: 1299, Quantity: 2, StockAtAdd: 12,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/cart/", "sess-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cart domain.Cart
	decodeData(t, rec, &cart)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
}

func TestCartEndpoints_AddSameProductMerges(t *testing.T) {
	f := setupRouter(t)

	add := AddItemRequest{ProductID: "p1", Name: "Mug", UnitPrice: 1299, Quantity: 2, StockAtAdd: 12}
	f.do(t, http.MethodPost, "/api/v1/cart/items", "sess-1", add)
	add.Quantity = 3
	rec := f.do(t, http.MethodPost, "/api/v1/cart/items", "sess-1", add)

	var cart domain.Cart
	decodeData(t, rec, &cart)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 5, cart.Lines[0].Quantity)
}

func TestCartEndpoints_ValidationError(t *testing.T) {
	f := setupRouter(t)

	rec := f.do(t, http.MethodPost, "/api/v1/cart/items", "sess-1", AddItemRequest{
		Name: "Mug", Quantity: 1,
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeErrorCode(t, rec))
}

func TestCartEndpoints_SetQuantityZeroRemoves(t *testing.T) {
	f := setupRouter(t)

	f.do(t, http.MethodPost, "/api/v1/cart/items", "sess-1", AddItemRequest{
		ProductID: "p1", Name: "Mug", UnitPrice: 1299, Quantity: 2,
	})
	rec := f.do(t, http.MethodPut, "/api/v1/cart/items/p1", "sess-1", SetQuantityRequest{Quantity: 0})

	var cart domain.Cart
	decodeData(t, rec, &cart)
	assert.Empty(t, cart.Lines)
}

func TestCartEndpoints_RemoveIsIdempotent(t *testing.T) {
	f := setupRouter(t)

	rec := f.do(t, http.MethodDelete, "/api/v1/cart/items/ghost", "sess-1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCartEndpoints_SessionsAreIsolated(t *testing.T) {
	f := setupRouter(t)

	f.do(t, http.MethodPost, "/api/v1/cart/items", "sess-1", AddItemRequest{
		ProductID: "p1", Name: "Mug", UnitPrice: 1299, Quantity: 2,
	})

	rec := f.do(t, http.MethodGet, "/api/v1/cart/", "sess-2", nil)

	var cart domain.Cart
	decodeData(t, rec, &cart)
	assert.Empty(t, cart.Lines)
}

func TestWishlistEndpoints_AnonymousAddRejected(t *testing.T) {
	f := setupRouter(t)

	rec := f.do(t, http.MethodPost, "/api/v1/wishlist/", "sess-1", AddEntryRequest{ProductID: "p1"})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeErrorCode(t, rec))
	// The identity guard fires before any remote call.
	assert.Zero(t, f.wishlist.callCount())
}

func TestWishlistEndpoints_AddAfterLogin(t *testing.T) {
	f := setupRouter(t)

	rec := f.do(t, http.MethodPost, "/api/v1/session/login", "sess-1", LoginRequest{
		Email: "asha@example.com", Password: "hunter2",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/wishlist/", "sess-1", AddEntryRequest{ProductID: "p1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var entry domain.WishlistEntry
	decodeData(t, rec, &entry)
	assert.Equal(t, "p1", entry.Product.ProductID())

	rec = f.do(t, http.MethodGet, "/api/v1/wishlist/", "sess-1", nil)
	var entries []domain.WishlistEntry
	decodeData(t, rec, &entries)
	assert.Len(t, entries, 1)
}

func TestWishlistEndpoints_StatusReflectsMembership(t *testing.T) {
	f := setupRouter(t)

	f.do(t, http.MethodPost, "/api/v1/session/login", "sess-1", LoginRequest{
		Email: "asha@example.com", Password: "hunter2",
	})
	f.do(t, http.MethodPost, "/api/v1/wishlist/", "sess-1", AddEntryRequest{ProductID: "p1"})

	rec := f.do(t, http.MethodGet, "/api/v1/wishlist/status/p1", "sess-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		Wishlisted bool   `json:"wishlisted"`
		EntryID    string `json:"entry_id"`
	}
	decodeData(t, rec, &status)
	assert.True(t, status.Wishlisted)
	assert.NotEmpty(t, status.EntryID)

	rec = f.do(t, http.MethodGet, "/api/v1/wishlist/status/p2", "sess-1", nil)
	decodeData(t, rec, &status)
	assert.False(t, status.Wishlisted)
}

func TestSessionEndpoints_LoginReturnsSnapshotWithoutToken(t *testing.T) {
	f := setupRouter(t)

	rec := f.do(t, http.MethodPost, "/api/v1/session/login", "sess-1", LoginRequest{
		Email: "asha@example.com", Password: "hunter2",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var snap map[string]json.RawMessage
	decodeData(t, rec, &snap)
	require.Contains(t, snap, "identity")
	assert.NotContains(t, string(snap["identity"]), "token")
	assert.NotContains(t, string(snap["identity"]), "tok-abc")
}

func TestSessionEndpoints_FailedLoginLeavesSessionAnonymous(t *testing.T) {
	f := setupRouter(t)
	f.auth.err = apperrors.InvalidInput("auth-api: Invalid credentials")

	rec := f.do(t, http.MethodPost, "/api/v1/session/login", "sess-1", LoginRequest{
		Email: "asha@example.com", Password: "wrong",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/session/", "sess-1", nil)
	var snap map[string]json.RawMessage
	decodeData(t, rec, &snap)
	assert.Equal(t, "null", string(snap["identity"]))
}

func TestSessionEndpoints_LogoutTearsDownEverything(t *testing.T) {
	f := setupRouter(t)

	f.do(t, http.MethodPost, "/api/v1/session/login", "sess-1", LoginRequest{
		Email: "asha@example.com", Password: "hunter2",
	})
	f.do(t, http.MethodPost, "/api/v1/cart/items", "sess-1", AddItemRequest{
		ProductID: "p1", Name: "Mug", UnitPrice: 1299, Quantity: 2,
	})
	f.do(t, http.MethodPost, "/api/v1/wishlist/", "sess-1", AddEntryRequest{ProductID: "p1"})

	rec := f.do(t, http.MethodPost, "/api/v1/session/logout", "sess-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap struct {
		Identity *json.RawMessage       `json:"identity"`
		Cart     domain.Cart            `json:"cart"`
		Wishlist []domain.WishlistEntry `json:"wishlist"`
	}
	decodeData(t, rec, &snap)
	assert.Nil(t, snap.Identity)
	assert.Empty(t, snap.Cart.Lines)
	assert.Empty(t, snap.Wishlist)
}

func TestCatalogEndpoints_GetProductRecordsRecentlyViewed(t *testing.T) {
	f := setupRouter(t)

	rec := f.do(t, http.MethodGet, "/api/v1/products/p1", "sess-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	f.do(t, http.MethodGet, "/api/v1/products/p2", "sess-1", nil)

	rec = f.do(t, http.MethodGet, "/api/v1/session/recently-viewed", "sess-1", nil)
	var viewed []domain.ProductSummary
	decodeData(t, rec, &viewed)
	require.Len(t, viewed, 2)
	assert.Equal(t, "p2", viewed[0].ID)
	assert.Equal(t, "p1", viewed[1].ID)
}

func TestCatalogEndpoints_UnknownProductNotRecorded(t *testing.T) {
	f := setupRouter(t)

	rec := f.do(t, http.MethodGet, "/api/v1/products/ghost", "sess-1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/session/recently-viewed", "sess-1", nil)
	var viewed []domain.ProductSummary
	decodeData(t, rec, &viewed)
	assert.Empty(t, viewed)
}

func TestOrderEndpoints_RequireAuthentication(t *testing.T) {
	f := setupRouter(t)

	rec := f.do(t, http.MethodGet, "/api/v1/orders/", "sess-1", nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeErrorCode(t, rec))
}

func TestOrderEndpoints_ListAfterLogin(t *testing.T) {
	f := setupRouter(t)
	f.orders.orders = []domain.Order{{ID: "o1", Status: "shipped", Total: 5849}}

	f.do(t, http.MethodPost, "/api/v1/session/login", "sess-1", LoginRequest{
		Email: "asha@example.com", Password: "hunter2",
	})

	rec := f.do(t, http.MethodGet, "/api/v1/orders/", "sess-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var orders []domain.Order
	decodeData(t, rec, &orders)
	require.Len(t, orders, 1)
	assert.Equal(t, "o1", orders[0].ID)
}

func TestContentTypeJSON_RejectsUnsupportedMediaType(t *testing.T) {
	f := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set(SessionIDHeader, "sess-1")

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
