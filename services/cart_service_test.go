package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"shop-backend/models"
	"shop-backend/repositories"
	"shop-backend/services"
)

type fakeCatalog struct {
	products map[int]models.Product
}

func (f *fakeCatalog) GetProductByID(_ context.Context, id int) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

type fakeCartStore struct {
	mu      sync.Mutex
	catalog *fakeCatalog
	nextID  int
	carts   map[int]int         // userID -> cartID
	items   map[int]map[int]int // cartID -> productID -> quantity
	fail    bool
}

func newFakeCartStore(catalog *fakeCatalog) *fakeCartStore {
	return &fakeCartStore{
		catalog: catalog,
		carts:   map[int]int{},
		items:   map[int]map[int]int{},
	}
}

var errStoreDown = errors.New("store down")

func (f *fakeCartStore) FindCart(_ context.Context, userID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return 0, errStoreDown
	}
	cartID, ok := f.carts[userID]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	return cartID, nil
}

func (f *fakeCartStore) FindOrCreateCart(_ context.Context, userID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return 0, errStoreDown
	}
	if cartID, ok := f.carts[userID]; ok {
		return cartID, nil
	}
	f.nextID++
	f.carts[userID] = f.nextID
	f.items[f.nextID] = map[int]int{}
	return f.nextID, nil
}

func (f *fakeCartStore) UpsertItem(_ context.Context, cartID, productID, quantityDelta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errStoreDown
	}
	f.items[cartID][productID] += quantityDelta
	return nil
}

func (f *fakeCartStore) SetItemQuantity(_ context.Context, cartID, productID, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errStoreDown
	}
	f.items[cartID][productID] = quantity
	return nil
}

func (f *fakeCartStore) DeleteItem(_ context.Context, cartID, productID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errStoreDown
	}
	delete(f.items[cartID], productID)
	return nil
}

func (f *fakeCartStore) ClearItems(_ context.Context, cartID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errStoreDown
	}
	f.items[cartID] = map[int]int{}
	return nil
}

func (f *fakeCartStore) ListItems(_ context.Context, cartID int) ([]models.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errStoreDown
	}
	items := []models.CartItem{}
	for productID, quantity := range f.items[cartID] {
		p := f.catalog.products[productID]
		items = append(items, models.CartItem{
			ProductID: productID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  quantity,
		})
	}
	return items, nil
}

func (f *fakeCartStore) quantity(userID, productID int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	cartID, ok := f.carts[userID]
	if !ok {
		return 0
	}
	return f.items[cartID][productID]
}

type fakeCheckout struct {
	userID      int
	totalAmount float64
	items       []models.CartItem
}

type fakeCheckoutStore struct {
	mu        sync.Mutex
	checkouts []fakeCheckout
	failErr   error
}

func (f *fakeCheckoutStore) CreateCheckout(_ context.Context, userID int, totalAmount float64, items []models.CartItem) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return 0, f.failErr
	}
	f.checkouts = append(f.checkouts, fakeCheckout{userID: userID, totalAmount: totalAmount, items: items})
	return len(f.checkouts), nil
}

type cartFixture struct {
	svc      *services.CartService
	mr       *miniredis.Miniredis
	store    *fakeCartStore
	checkout *fakeCheckoutStore
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	catalog := &fakeCatalog{products: map[int]models.Product{
		7:  {ID: 7, Name: "Mocha", Price: 9.99, Stock: 100},
		8:  {ID: 8, Name: "Espresso", Price: 2.50, Stock: 100},
		11: {ID: 11, Name: "Latte", Price: 3.75, Stock: 100},
	}}
	store := newFakeCartStore(catalog)
	checkout := &fakeCheckoutStore{}

	svc := services.NewCartService(
		repositories.NewRedisCartCache(client),
		store, catalog, checkout,
		nil, nil,
		24*time.Hour,
	)

	return &cartFixture{svc: svc, mr: mr, store: store, checkout: checkout}
}

func TestAddItem_DistinctProducts(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "42", 7, 2)
	require.NoError(t, err)
	items, err := f.svc.AddItem(ctx, "42", 8, 1)
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, models.CartItem{ProductID: 7, Name: "Mocha", Price: 9.99, Quantity: 2}, items[0])
	assert.Equal(t, models.CartItem{ProductID: 8, Name: "Espresso", Price: 2.50, Quantity: 1}, items[1])

	got, err := f.svc.GetCart(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestAddItem_SameProductMergesQuantity(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "42", 7, 2)
	require.NoError(t, err)
	items, err := f.svc.AddItem(ctx, "42", 7, 3)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 9.99, items[0].Price)

	assert.Equal(t, 5, f.store.quantity(42, 7))
}

func TestAddItem_Validation(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "42", 7, 0)
	assert.ErrorIs(t, err, services.ErrInvalidQuantity)

	_, err = f.svc.AddItem(ctx, "42", 7, -3)
	assert.ErrorIs(t, err, services.ErrInvalidQuantity)

	_, err = f.svc.AddItem(ctx, "42", 999, 1)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
}

func TestAddItem_GuestGetsTTLRegisteredDoesNot(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "guest-abc", 7, 1)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, "42", 7, 1)
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, f.mr.TTL("cart:guest-abc"))
	assert.Equal(t, time.Duration(0), f.mr.TTL("cart:42"))
}

func TestAddItem_GuestNeverMirrored(t *testing.T) {
	f := newCartFixture(t)

	_, err := f.svc.AddItem(context.Background(), "guest-abc", 7, 2)
	require.NoError(t, err)

	assert.Empty(t, f.store.carts)
	assert.Empty(t, f.store.items)
}

func TestAddItem_MirrorFailureIsSwallowed(t *testing.T) {
	f := newCartFixture(t)
	f.store.fail = true

	items, err := f.svc.AddItem(context.Background(), "42", 7, 2)
	require.NoError(t, err)
	require.Len(t, items, 1)

	got, err := f.svc.GetCart(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestGetCart_GuestMissIsEmpty(t *testing.T) {
	f := newCartFixture(t)

	items, err := f.svc.GetCart(context.Background(), "guest-unknown")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetCart_GuestExpiresAfterTTL(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "guest-abc", 7, 2)
	require.NoError(t, err)

	f.mr.FastForward(24*time.Hour + time.Minute)

	items, err := f.svc.GetCart(ctx, "guest-abc")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetCart_RegisteredNeverExpires(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "42", 7, 2)
	require.NoError(t, err)

	f.mr.FastForward(30 * 24 * time.Hour)

	items, err := f.svc.GetCart(ctx, "42")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestGetCart_RebuildsFromDurableStore(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	// durable rows exist but the cache entry is gone
	cartID, err := f.store.FindOrCreateCart(ctx, 42)
	require.NoError(t, err)
	require.NoError(t, f.store.UpsertItem(ctx, cartID, 7, 3))

	items, err := f.svc.GetCart(ctx, "42")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.CartItem{ProductID: 7, Name: "Mocha", Price: 9.99, Quantity: 3}, items[0])

	// the cache was repopulated, with an expiry on the rebuilt entry
	assert.True(t, f.mr.Exists("cart:42"))
	assert.Equal(t, 24*time.Hour, f.mr.TTL("cart:42"))
}

func TestUpdateQuantity_Validation(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpdateQuantity(ctx, "42", 7, 0)
	assert.ErrorIs(t, err, services.ErrInvalidQuantity)

	_, err = f.svc.UpdateQuantity(ctx, "42", 7, 2)
	assert.ErrorIs(t, err, services.ErrCartNotFound)

	_, err = f.svc.AddItem(ctx, "42", 7, 2)
	require.NoError(t, err)

	_, err = f.svc.UpdateQuantity(ctx, "42", 8, 2)
	assert.ErrorIs(t, err, services.ErrItemNotFound)

	// the failed update left the cart unchanged
	items, err := f.svc.GetCart(ctx, "42")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestUpdateQuantity_OverwritesAndMirrors(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "42", 7, 2)
	require.NoError(t, err)

	items, err := f.svc.UpdateQuantity(ctx, "42", 7, 9)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 9, items[0].Quantity)

	assert.Equal(t, 9, f.store.quantity(42, 7))
}

func TestRemoveItem_Idempotent(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	// absent cart is a no-op
	require.NoError(t, f.svc.RemoveItem(ctx, "42", 7))

	_, err := f.svc.AddItem(ctx, "42", 7, 2)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, "42", 8, 1)
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveItem(ctx, "42", 7))
	require.NoError(t, f.svc.RemoveItem(ctx, "42", 7))

	items, err := f.svc.GetCart(ctx, "42")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 8, items[0].ProductID)

	assert.Equal(t, 0, f.store.quantity(42, 7))
	assert.Equal(t, 1, f.store.quantity(42, 8))
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Checkout(ctx, "42", 42)
	assert.ErrorIs(t, err, services.ErrEmptyCart)
	assert.Empty(t, f.checkout.checkouts)

	// an emptied cart counts as empty too
	_, err = f.svc.AddItem(ctx, "42", 7, 1)
	require.NoError(t, err)
	require.NoError(t, f.svc.RemoveItem(ctx, "42", 7))

	_, _, err = f.svc.Checkout(ctx, "42", 42)
	assert.ErrorIs(t, err, services.ErrEmptyCart)
	assert.Empty(t, f.checkout.checkouts)
}

func TestCheckout_HappyPath(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "42", 7, 2)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, "42", 7, 3)
	require.NoError(t, err)

	checkoutID, totalAmount, err := f.svc.Checkout(ctx, "42", 42)
	require.NoError(t, err)
	assert.Equal(t, 1, checkoutID)
	assert.InDelta(t, 49.95, totalAmount, 0.001)

	require.Len(t, f.checkout.checkouts, 1)
	rec := f.checkout.checkouts[0]
	assert.Equal(t, 42, rec.userID)
	assert.InDelta(t, 49.95, rec.totalAmount, 0.001)
	require.Len(t, rec.items, 1)
	assert.Equal(t, 5, rec.items[0].Quantity)

	// the cart reads empty afterwards, cache and mirror both cleared
	items, err := f.svc.GetCart(ctx, "42")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 0, f.store.quantity(42, 7))
}

func TestCheckout_GuestSnapshotAttributedToUser(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "guest-abc", 8, 4)
	require.NoError(t, err)

	checkoutID, totalAmount, err := f.svc.Checkout(ctx, "guest-abc", 42)
	require.NoError(t, err)
	assert.Equal(t, 1, checkoutID)
	assert.InDelta(t, 10.0, totalAmount, 0.001)

	require.Len(t, f.checkout.checkouts, 1)
	assert.Equal(t, 42, f.checkout.checkouts[0].userID)

	items, err := f.svc.GetCart(ctx, "guest-abc")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCheckout_StoreFailureLeavesCartIntact(t *testing.T) {
	f := newCartFixture(t)
	f.checkout.failErr = errStoreDown
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "42", 7, 2)
	require.NoError(t, err)

	_, _, err = f.svc.Checkout(ctx, "42", 42)
	require.Error(t, err)

	items, err := f.svc.GetCart(ctx, "42")
	require.NoError(t, err)
	require.Len(t, items, 1)
}

// Two concurrent writers to one cart key must not drop each other's
// increment: mutations are serialized per key.
func TestAddItem_ConcurrentIncrementsAllLand(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	const n = 50
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := f.svc.AddItem(gctx, "42", 7, 1)
			return err
		})
	}
	require.NoError(t, g.Wait())

	items, err := f.svc.GetCart(ctx, "42")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, n, items[0].Quantity)
	assert.Equal(t, n, f.store.quantity(42, 7))
}
