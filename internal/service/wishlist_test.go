package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/uvstore/storefront/internal/domain"
	apperrors "github.com/uvstore/storefront/pkg/errors"
)

type mockWishlistAPI struct {
	mock.Mock
}

func (m *mockWishlistAPI) Add(ctx context.Context, token, productID string) (*domain.WishlistEntry, error) {
	args := m.Called(ctx, token, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WishlistEntry), args.Error(1)
}

func (m *mockWishlistAPI) Remove(ctx context.Context, token, entryID string) error {
	args := m.Called(ctx, token, entryID)
	return args.Error(0)
}

func (m *mockWishlistAPI) List(ctx context.Context, token string) ([]domain.WishlistEntry, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WishlistEntry), args.Error(1)
}

func entryFor(entryID, productID string) domain.WishlistEntry {
	return domain.WishlistEntry{EntryID: entryID, Product: domain.RefByID(productID)}
}

// newWishlistForTest builds a wishlist store over a session that is already
// signed in; pass authenticated=false for an anonymous session.
func newWishlistForTest(t *testing.T, api WishlistAPI, authenticated bool) *WishlistStore {
	t.Helper()
	session := NewSessionStore(context.Background(), "sess-1", newFakeLocalStore(), newTestLogger())
	if authenticated {
		session.SetIdentity(context.Background(), testIdentity())
	}
	return NewWishlistStore(api, session, newTestLogger())
}

func TestWishlistStore_AddEntry(t *testing.T) {
	api := new(mockWishlistAPI)
	store := newWishlistForTest(t, api, true)

	entry := entryFor("w1", "p1")
	api.On("Add", mock.Anything, "tok-abc", "p1").Return(&entry, nil)

	got, err := store.AddEntry(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, "w1", got.EntryID)
	assert.True(t, store.IsWishlisted("p1"))
	api.AssertExpectations(t)
}

func TestWishlistStore_AddEntry_Anonymous_NoNetworkCall(t *testing.T) {
	api := new(mockWishlistAPI)
	store := newWishlistForTest(t, api, false)

	_, err := store.AddEntry(context.Background(), "p1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.False(t, store.IsWishlisted("p1"))
	// The remote API must not have been touched.
	api.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestWishlistStore_AddEntry_RemoteFailureLeavesCacheUntouched(t *testing.T) {
	api := new(mockWishlistAPI)
	store := newWishlistForTest(t, api, true)

	api.On("Add", mock.Anything, "tok-abc", "p1").Return(nil, assert.AnError)

	_, err := store.AddEntry(context.Background(), "p1")

	require.Error(t, err)
	assert.False(t, store.IsWishlisted("p1"))
	assert.Empty(t, store.Entries())
}

func TestWishlistStore_AddEntry_SameProductTwiceUpserts(t *testing.T) {
	api := new(mockWishlistAPI)
	store := newWishlistForTest(t, api, true)
	ctx := context.Background()

	first := entryFor("w1", "p1")
	second := entryFor("w2", "p1")
	api.On("Add", mock.Anything, "tok-abc", "p1").Return(&first, nil).Once()
	api.On("Add", mock.Anything, "tok-abc", "p1").Return(&second, nil).Once()

	_, err := store.AddEntry(ctx, "p1")
	require.NoError(t, err)
	_, err = store.AddEntry(ctx, "p1")
	require.NoError(t, err)

	require.Len(t, store.Entries(), 1)
	id, ok := store.EntryIDByProduct("p1")
	require.True(t, ok)
	assert.Equal(t, "w2", id)
}

func TestWishlistStore_RemoveEntry(t *testing.T) {
	api := new(mockWishlistAPI)
	store := newWishlistForTest(t, api, true)
	ctx := context.Background()

	entry := entryFor("w1", "p1")
	api.On("Add", mock.Anything, "tok-abc", "p1").Return(&entry, nil)
	api.On("Remove", mock.Anything, "tok-abc", "w1").Return(nil)

	_, err := store.AddEntry(ctx, "p1")
	require.NoError(t, err)
	require.NoError(t, store.RemoveEntry(ctx, "w1"))

	assert.False(t, store.IsWishlisted("p1"))
	assert.Empty(t, store.Entries())
}

func TestWishlistStore_RemoveEntry_RemoteFailureLeavesCacheUntouched(t *testing.T) {
	api := new(mockWishlistAPI)
	store := newWishlistForTest(t, api, true)
	ctx := context.Background()

	entry := entryFor("w1", "p1")
	api.On("Add", mock.Anything, "tok-abc", "p1").Return(&entry, nil)
	api.On("Remove", mock.Anything, "tok-abc", "w1").Return(assert.AnError)

	_, err := store.AddEntry(ctx, "p1")
	require.NoError(t, err)

	err = store.RemoveEntry(ctx, "w1")

	require.Error(t, err)
	assert.True(t, store.IsWishlisted("p1"))
	assert.Len(t, store.Entries(), 1)
}

func TestWishlistStore_RemoveEntry_Anonymous_NoNetworkCall(t *testing.T) {
	api := new(mockWishlistAPI)
	store := newWishlistForTest(t, api, false)

	err := store.RemoveEntry(context.Background(), "w1")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	api.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything)
}

func TestWishlistStore_Refresh_RebuildsCache(t *testing.T) {
	api := new(mockWishlistAPI)
	store := newWishlistForTest(t, api, true)

	api.On("List", mock.Anything, "tok-abc").Return([]domain.WishlistEntry{
		entryFor("w1", "p1"),
		entryFor("w2", "p2"),
	}, nil)

	require.NoError(t, store.Refresh(context.Background()))

	assert.Len(t, store.Entries(), 2)
	assert.True(t, store.IsWishlisted("p1"))
	assert.True(t, store.IsWishlisted("p2"))
	assert.False(t, store.IsWishlisted("p3"))
}

func TestWishlistStore_Refresh_HandlesEmbeddedProducts(t *testing.T) {
	api := new(mockWishlistAPI)
	store := newWishlistForTest(t, api, true)

	api.On("List", mock.Anything, "tok-abc").Return([]domain.WishlistEntry{
		{EntryID: "w1", Product: domain.RefEmbedded(domain.ProductSummary{ID: "p1", Name: "Mug"})},
	}, nil)

	require.NoError(t, store.Refresh(context.Background()))

	assert.True(t, store.IsWishlisted("p1"))
}

func TestWishlistStore_Refresh_FailureLeavesCacheUntouched(t *testing.T) {
	api := new(mockWishlistAPI)
	store := newWishlistForTest(t, api, true)
	ctx := context.Background()

	entry := entryFor("w1", "p1")
	api.On("Add", mock.Anything, "tok-abc", "p1").Return(&entry, nil)
	_, err := store.AddEntry(ctx, "p1")
	require.NoError(t, err)

	api.On("List", mock.Anything, "tok-abc").Return(nil, assert.AnError)

	require.Error(t, store.Refresh(ctx))
	assert.True(t, store.IsWishlisted("p1"))
}

func TestWishlistStore_Clear_LocalOnly(t *testing.T) {
	api := new(mockWishlistAPI)
	store := newWishlistForTest(t, api, true)
	ctx := context.Background()

	entry := entryFor("w1", "p1")
	api.On("Add", mock.Anything, "tok-abc", "p1").Return(&entry, nil)
	_, err := store.AddEntry(ctx, "p1")
	require.NoError(t, err)

	store.Clear()

	assert.Empty(t, store.Entries())
	assert.False(t, store.IsWishlisted("p1"))
	// Clearing the cache never deletes remote entries.
	api.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything)
}

func TestWishlistStore_NotifiesSubscribers(t *testing.T) {
	api := new(mockWishlistAPI)
	store := newWishlistForTest(t, api, true)

	var notified int
	store.Subscribe(func() { notified++ })

	entry := entryFor("w1", "p1")
	api.On("Add", mock.Anything, "tok-abc", "p1").Return(&entry, nil)
	_, err := store.AddEntry(context.Background(), "p1")
	require.NoError(t, err)
	store.Clear()

	assert.Equal(t, 2, notified)
}
