package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Awaddd/bazaar-backend/internal/domain"
	apperrors "github.com/Awaddd/bazaar-backend/pkg/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
}

func airMax() *domain.ProductView {
	return &domain.ProductView{
		ID:         4,
		Name:       "Air Max 90",
		PriceCents: 14900,
		ImageURL:   "https://img.example.com/am90.jpg",
		Sizes: []domain.ProductSize{
			{Size: 8, Available: true},
			{Size: 9, Available: true},
			{Size: 10, Available: false},
		},
	}
}

func newCartFixture(t *testing.T) (*CartService, *mockProductRepo, *fakeCartStore, *recordingEvents) {
	t.Helper()

	products := &mockProductRepo{}
	carts := newFakeCartStore()
	events := &recordingEvents{}
	svc := NewCartService(carts, products, events, testLogger())
	return svc, products, carts, events
}

func TestAddItemCreatesLine(t *testing.T) {
	svc, products, _, events := newCartFixture(t)
	products.On("GetView", mock.Anything, int64(4)).Return(airMax(), nil)

	view, err := svc.AddItem(context.Background(), "sess-1", 4, 9, 2)
	require.NoError(t, err)

	assert.NotEmpty(t, view.ID)
	assert.Equal(t, int64(4), view.ProductID)
	assert.Equal(t, "Air Max 90", view.Name)
	assert.Equal(t, int64(14900), view.PriceCents)
	assert.Equal(t, 9, view.Size)
	assert.Equal(t, 2, view.Quantity)
	assert.Equal(t, []string{"sess-1"}, events.cartUpdates)
}

func TestAddItemMergesSameProductAndSize(t *testing.T) {
	svc, products, carts, _ := newCartFixture(t)
	products.On("GetView", mock.Anything, int64(4)).Return(airMax(), nil)

	first, err := svc.AddItem(context.Background(), "sess-1", 4, 9, 2)
	require.NoError(t, err)
	second, err := svc.AddItem(context.Background(), "sess-1", 4, 9, 3)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "merge must reuse the existing line")
	assert.Equal(t, 5, second.Quantity)

	cart, err := carts.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestAddItemDifferentSizeGetsOwnLine(t *testing.T) {
	svc, products, carts, _ := newCartFixture(t)
	products.On("GetView", mock.Anything, int64(4)).Return(airMax(), nil)

	_, err := svc.AddItem(context.Background(), "sess-1", 4, 8, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), "sess-1", 4, 9, 1)
	require.NoError(t, err)

	cart, err := carts.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	svc, _, _, _ := newCartFixture(t)

	for _, qty := range []int{0, -1} {
		_, err := svc.AddItem(context.Background(), "sess-1", 4, 9, qty)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, products, _, _ := newCartFixture(t)
	products.On("GetView", mock.Anything, int64(99)).Return(nil, apperrors.NotFound("product", "99"))

	_, err := svc.AddItem(context.Background(), "sess-1", 99, 9, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestAddItemUnavailableSize(t *testing.T) {
	svc, products, _, _ := newCartFixture(t)
	products.On("GetView", mock.Anything, int64(4)).Return(airMax(), nil)

	// Size 10 is listed but sold out; size 11 is not listed at all.
	for _, size := range []int{10, 11} {
		_, err := svc.AddItem(context.Background(), "sess-1", 4, size, 1)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrUnavailable))
	}
}

func TestAddItemRetriesOnConflict(t *testing.T) {
	svc, products, carts, _ := newCartFixture(t)
	products.On("GetView", mock.Anything, int64(4)).Return(airMax(), nil)
	carts.conflictsLeft = 2

	view, err := svc.AddItem(context.Background(), "sess-1", 4, 9, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Quantity)
	assert.Equal(t, 3, carts.saveCalls)
}

func TestAddItemGivesUpAfterRepeatedConflicts(t *testing.T) {
	svc, products, carts, _ := newCartFixture(t)
	products.On("GetView", mock.Anything, int64(4)).Return(airMax(), nil)
	carts.conflictsLeft = saveAttempts

	_, err := svc.AddItem(context.Background(), "sess-1", 4, 9, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestUpdateItemSetsAbsoluteQuantity(t *testing.T) {
	svc, products, _, _ := newCartFixture(t)
	products.On("GetView", mock.Anything, int64(4)).Return(airMax(), nil)

	added, err := svc.AddItem(context.Background(), "sess-1", 4, 9, 2)
	require.NoError(t, err)

	updated, err := svc.UpdateItem(context.Background(), "sess-1", added.ID, 7)
	require.NoError(t, err)

	assert.Equal(t, 7, updated.Quantity, "update is an absolute set, not an increment")
	assert.Equal(t, added.ID, updated.ID)
}

func TestUpdateItemRejectsNonPositiveQuantity(t *testing.T) {
	svc, _, _, _ := newCartFixture(t)

	_, err := svc.UpdateItem(context.Background(), "sess-1", "line-1", 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestUpdateItemFromOtherSessionIsNotFound(t *testing.T) {
	svc, products, _, _ := newCartFixture(t)
	products.On("GetView", mock.Anything, int64(4)).Return(airMax(), nil)

	added, err := svc.AddItem(context.Background(), "sess-1", 4, 9, 2)
	require.NoError(t, err)

	_, err = svc.UpdateItem(context.Background(), "sess-2", added.ID, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "cross-session access must look like a missing item")
}

func TestUpdateItemUnknownID(t *testing.T) {
	svc, _, _, _ := newCartFixture(t)

	_, err := svc.UpdateItem(context.Background(), "sess-1", "no-such-line", 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestUpdateItemProductDeletedSinceAdd(t *testing.T) {
	svc, products, _, _ := newCartFixture(t)
	products.On("GetView", mock.Anything, int64(4)).Return(airMax(), nil).Once()

	added, err := svc.AddItem(context.Background(), "sess-1", 4, 9, 2)
	require.NoError(t, err)

	products.On("GetView", mock.Anything, int64(4)).Return(nil, apperrors.NotFound("product", "4"))

	_, err = svc.UpdateItem(context.Background(), "sess-1", added.ID, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestRemoveItem(t *testing.T) {
	svc, products, carts, events := newCartFixture(t)
	products.On("GetView", mock.Anything, int64(4)).Return(airMax(), nil)

	added, err := svc.AddItem(context.Background(), "sess-1", 4, 9, 2)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(context.Background(), "sess-1", added.ID))

	cart, err := carts.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	// Emptying the cart announces a clear, not another update.
	assert.Equal(t, []string{"sess-1"}, events.cartsCleared)
	assert.Equal(t, []string{"sess-1"}, events.cartUpdates)
}

func TestRemoveItemTwiceIsNotFound(t *testing.T) {
	svc, products, _, _ := newCartFixture(t)
	products.On("GetView", mock.Anything, int64(4)).Return(airMax(), nil)

	added, err := svc.AddItem(context.Background(), "sess-1", 4, 9, 2)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(context.Background(), "sess-1", added.ID))

	err = svc.RemoveItem(context.Background(), "sess-1", added.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestRemoveItemFromOtherSessionIsNotFound(t *testing.T) {
	svc, products, _, _ := newCartFixture(t)
	products.On("GetView", mock.Anything, int64(4)).Return(airMax(), nil)

	added, err := svc.AddItem(context.Background(), "sess-1", 4, 9, 2)
	require.NoError(t, err)

	err = svc.RemoveItem(context.Background(), "sess-2", added.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestListCartEmptySession(t *testing.T) {
	svc, _, _, _ := newCartFixture(t)

	views, err := svc.ListCart(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestListCartJoinsCurrentProductData(t *testing.T) {
	svc, products, carts, _ := newCartFixture(t)

	require.NoError(t, carts.Save(context.Background(), &domain.Cart{
		SessionID: "sess-1",
		Items: []domain.CartLine{
			{ID: "line-1", ProductID: 4, Size: 9, Quantity: 2},
		},
	}))

	// Price changed after the line was added; the view must reflect it.
	repriced := airMax()
	repriced.PriceCents = 15900
	products.On("GetViews", mock.Anything, []int64{4}).Return([]domain.ProductView{*repriced}, nil)

	views, err := svc.ListCart(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, views, 1)

	assert.Equal(t, int64(15900), views[0].PriceCents)
	assert.Equal(t, "Air Max 90", views[0].Name)
	assert.Equal(t, 2, views[0].Quantity)
}

func TestListCartDropsOrphanedLines(t *testing.T) {
	svc, products, carts, _ := newCartFixture(t)

	require.NoError(t, carts.Save(context.Background(), &domain.Cart{
		SessionID: "sess-1",
		Items: []domain.CartLine{
			{ID: "line-1", ProductID: 4, Size: 9, Quantity: 2},
			{ID: "line-2", ProductID: 99, Size: 8, Quantity: 1},
		},
	}))

	// Product 99 no longer exists in the catalog.
	products.On("GetViews", mock.Anything, []int64{4, 99}).Return([]domain.ProductView{*airMax()}, nil)

	views, err := svc.ListCart(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "line-1", views[0].ID)
}
