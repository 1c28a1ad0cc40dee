package services

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"shop-backend/models"
	"shop-backend/repositories"
	"shop-backend/utils"
)

// UserEmailFinder resolves the recipient for the checkout confirmation mail.
type UserEmailFinder interface {
	FindEmailByID(ctx context.Context, userID int) (string, error)
}

type CheckoutMailer interface {
	SendCheckoutConfirmation(toEmail string, checkoutID int, totalAmount float64) error
}

// CartService reconciles the cache-backed cart store with the durable one.
// The cache is authoritative: every mutation writes it first and the client
// response is decided by that write alone. Registered users' carts are then
// mirrored best-effort into the durable store; guest carts live only in the
// cache and expire after guestTTL.
type CartService struct {
	cache     repositories.CartCache
	store     repositories.CartStore
	catalog   repositories.ProductCatalog
	checkouts repositories.CheckoutStore
	users     UserEmailFinder
	mailer    CheckoutMailer
	guestTTL  time.Duration
	locks     *keyMutex
}

// NewCartService wires the cart service. users and mailer may be nil, in which
// case no confirmation mail is sent.
func NewCartService(
	cache repositories.CartCache,
	store repositories.CartStore,
	catalog repositories.ProductCatalog,
	checkouts repositories.CheckoutStore,
	users UserEmailFinder,
	mailer CheckoutMailer,
	guestTTL time.Duration,
) *CartService {
	if guestTTL <= 0 {
		guestTTL = 24 * time.Hour
	}
	return &CartService{
		cache:     cache,
		store:     store,
		catalog:   catalog,
		checkouts: checkouts,
		users:     users,
		mailer:    mailer,
		guestTTL:  guestTTL,
		locks:     newKeyMutex(),
	}
}

// registeredUserID reports the durable identity behind a cart key. Guest keys
// and non-numeric keys have none and are cache-only.
func registeredUserID(userKey string) (int, bool) {
	if utils.IsGuestKey(userKey) {
		return 0, false
	}
	id, err := strconv.Atoi(userKey)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (s *CartService) snapshotTTL(userKey string) time.Duration {
	if utils.IsGuestKey(userKey) {
		return s.guestTTL
	}
	return 0
}

// AddItem merges the product into the snapshot, capturing name and price from
// the catalog at add-time, and returns the updated snapshot.
func (s *CartService) AddItem(ctx context.Context, userKey string, productID, quantity int) ([]models.CartItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.catalog.GetProductByID(ctx, productID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(userKey)
	defer unlock()

	items, err := s.cache.Get(ctx, userKey)
	if errors.Is(err, repositories.ErrCacheMiss) {
		items = []models.CartItem{}
	} else if err != nil {
		return nil, err
	}

	merged := false
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, models.CartItem{
			ProductID: productID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
		})
	}

	if err := s.cache.Set(ctx, userKey, items, s.snapshotTTL(userKey)); err != nil {
		return nil, err
	}

	if userID, ok := registeredUserID(userKey); ok {
		s.mirrorAdd(ctx, userID, productID, quantity)
	}

	return items, nil
}

// GetCart serves the cache when present; on a miss a registered user's cart is
// rebuilt from the durable store and the cache repopulated. Guest carts have
// no durable fallback and read as empty after expiry.
func (s *CartService) GetCart(ctx context.Context, userKey string) ([]models.CartItem, error) {
	items, err := s.cache.Get(ctx, userKey)
	if err == nil {
		return items, nil
	}
	if !errors.Is(err, repositories.ErrCacheMiss) {
		return nil, err
	}

	userID, ok := registeredUserID(userKey)
	if !ok {
		return []models.CartItem{}, nil
	}

	unlock := s.locks.Lock(userKey)
	defer unlock()

	// Another request may have repopulated the key while we waited.
	items, err = s.cache.Get(ctx, userKey)
	if err == nil {
		return items, nil
	}
	if !errors.Is(err, repositories.ErrCacheMiss) {
		return nil, err
	}

	cartID, err := s.store.FindCart(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return []models.CartItem{}, nil
	}
	if err != nil {
		return nil, err
	}

	items, err = s.store.ListItems(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, userKey, items, s.guestTTL); err != nil {
		log.Printf("cart cache repopulate failed for %s: %v", userKey, err)
	}

	return items, nil
}

// UpdateQuantity overwrites the quantity of an item already in the snapshot.
func (s *CartService) UpdateQuantity(ctx context.Context, userKey string, productID, quantity int) ([]models.CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	unlock := s.locks.Lock(userKey)
	defer unlock()

	items, err := s.cache.Get(ctx, userKey)
	if errors.Is(err, repositories.ErrCacheMiss) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}

	found := false
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return nil, ErrItemNotFound
	}

	if err := s.cache.Set(ctx, userKey, items, s.snapshotTTL(userKey)); err != nil {
		return nil, err
	}

	if userID, ok := registeredUserID(userKey); ok {
		s.mirrorSetQuantity(ctx, userID, productID, quantity)
	}

	return items, nil
}

// RemoveItem is idempotent: a missing cache entry or a missing item is not an
// error. The durable row is deleted best-effort for registered users either way.
func (s *CartService) RemoveItem(ctx context.Context, userKey string, productID int) error {
	unlock := s.locks.Lock(userKey)
	defer unlock()

	items, err := s.cache.Get(ctx, userKey)
	switch {
	case errors.Is(err, repositories.ErrCacheMiss):
		// nothing cached, fall through to the durable delete
	case err != nil:
		return err
	default:
		filtered := items[:0:0]
		for _, item := range items {
			if item.ProductID != productID {
				filtered = append(filtered, item)
			}
		}
		if len(filtered) != len(items) {
			if err := s.cache.Set(ctx, userKey, filtered, s.snapshotTTL(userKey)); err != nil {
				return err
			}
		}
	}

	if userID, ok := registeredUserID(userKey); ok {
		s.mirrorDelete(ctx, userID, productID)
	}

	return nil
}

// Checkout converts the cached snapshot under cartKey into a checkout record
// attributed to userID, then clears the cache entry. The record and its line
// items are written in one transaction by the store.
func (s *CartService) Checkout(ctx context.Context, cartKey string, userID int) (int, float64, error) {
	unlock := s.locks.Lock(cartKey)
	defer unlock()

	items, err := s.cache.Get(ctx, cartKey)
	if errors.Is(err, repositories.ErrCacheMiss) {
		return 0, 0, ErrEmptyCart
	}
	if err != nil {
		return 0, 0, err
	}
	if len(items) == 0 {
		return 0, 0, ErrEmptyCart
	}

	var totalAmount float64
	for _, item := range items {
		totalAmount += item.Price * float64(item.Quantity)
	}

	checkoutID, err := s.checkouts.CreateCheckout(ctx, userID, totalAmount, items)
	if err != nil {
		return 0, 0, err
	}

	if err := s.cache.Delete(ctx, cartKey); err != nil {
		return 0, 0, err
	}

	// Empty the durable mirror too, so a later cache miss does not resurrect
	// the purchased items. Best-effort like every other mirror write.
	if mirrorID, ok := registeredUserID(cartKey); ok {
		s.mirrorClear(ctx, mirrorID)
	}

	s.sendConfirmation(ctx, userID, checkoutID, totalAmount)

	return checkoutID, totalAmount, nil
}

// Durable mirroring is fire-and-forget relative to the cache write: failures
// are logged and swallowed, never surfaced as a cart-mutation failure.

func (s *CartService) mirrorAdd(ctx context.Context, userID, productID, quantity int) {
	cartID, err := s.store.FindOrCreateCart(ctx, userID)
	if err != nil {
		log.Printf("cart mirror: find or create cart for user %d failed: %v", userID, err)
		return
	}
	if err := s.store.UpsertItem(ctx, cartID, productID, quantity); err != nil {
		log.Printf("cart mirror: upsert item %d for user %d failed: %v", productID, userID, err)
	}
}

func (s *CartService) mirrorSetQuantity(ctx context.Context, userID, productID, quantity int) {
	cartID, err := s.store.FindCart(ctx, userID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			log.Printf("cart mirror: find cart for user %d failed: %v", userID, err)
		}
		return
	}
	if err := s.store.SetItemQuantity(ctx, cartID, productID, quantity); err != nil {
		log.Printf("cart mirror: set quantity of item %d for user %d failed: %v", productID, userID, err)
	}
}

func (s *CartService) mirrorDelete(ctx context.Context, userID, productID int) {
	cartID, err := s.store.FindCart(ctx, userID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			log.Printf("cart mirror: find cart for user %d failed: %v", userID, err)
		}
		return
	}
	if err := s.store.DeleteItem(ctx, cartID, productID); err != nil {
		log.Printf("cart mirror: delete item %d for user %d failed: %v", productID, userID, err)
	}
}

func (s *CartService) mirrorClear(ctx context.Context, userID int) {
	cartID, err := s.store.FindCart(ctx, userID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			log.Printf("cart mirror: find cart for user %d failed: %v", userID, err)
		}
		return
	}
	if err := s.store.ClearItems(ctx, cartID); err != nil {
		log.Printf("cart mirror: clear items for user %d failed: %v", userID, err)
	}
}

func (s *CartService) sendConfirmation(ctx context.Context, userID, checkoutID int, totalAmount float64) {
	if s.mailer == nil || s.users == nil {
		return
	}
	email, err := s.users.FindEmailByID(ctx, userID)
	if err != nil {
		log.Printf("checkout confirmation: lookup email for user %d failed: %v", userID, err)
		return
	}
	if err := s.mailer.SendCheckoutConfirmation(email, checkoutID, totalAmount); err != nil {
		log.Printf("checkout confirmation: send to %s failed: %v", email, err)
	}
}
