package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/models"
)

var ErrNotFound = errors.New("not found")

// CartStore persists registered users' cart contents. Every call is invoked
// best-effort by the cart service: the cache write is the authoritative one.
type CartStore interface {
	FindCart(ctx context.Context, userID int) (int, error)
	FindOrCreateCart(ctx context.Context, userID int) (int, error)
	UpsertItem(ctx context.Context, cartID, productID, quantityDelta int) error
	SetItemQuantity(ctx context.Context, cartID, productID, quantity int) error
	DeleteItem(ctx context.Context, cartID, productID int) error
	ClearItems(ctx context.Context, cartID int) error
	ListItems(ctx context.Context, cartID int) ([]models.CartItem, error)
}

type CartRepository struct {
	db *pgxpool.Pool
}

func NewCartRepository(db *pgxpool.Pool) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) FindCart(ctx context.Context, userID int) (int, error) {
	var cartID int
	err := r.db.QueryRow(ctx, `SELECT id FROM carts WHERE user_id = $1`, userID).Scan(&cartID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return cartID, nil
}

// FindOrCreateCart creates the cart row lazily on first use. The row is never
// deleted afterwards, even when the cart empties: it acts as stable identity.
func (r *CartRepository) FindOrCreateCart(ctx context.Context, userID int) (int, error) {
	cartID, err := r.FindCart(ctx, userID)
	if err == nil {
		return cartID, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return 0, err
	}

	err = r.db.QueryRow(ctx,
		`INSERT INTO carts (user_id) VALUES ($1)
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING id`,
		userID).Scan(&cartID)
	return cartID, err
}

func (r *CartRepository) UpsertItem(ctx context.Context, cartID, productID, quantityDelta int) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO cart_items (cart_id, product_id, quantity) VALUES ($1, $2, $3)
		 ON CONFLICT (cart_id, product_id)
		 DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		cartID, productID, quantityDelta)
	return err
}

func (r *CartRepository) SetItemQuantity(ctx context.Context, cartID, productID, quantity int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE cart_items SET quantity = $1 WHERE cart_id = $2 AND product_id = $3`,
		quantity, cartID, productID)
	return err
}

func (r *CartRepository) DeleteItem(ctx context.Context, cartID, productID int) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID)
	return err
}

// ClearItems empties a cart after checkout. The cart row itself stays behind
// as stable identity for the user.
func (r *CartRepository) ClearItems(ctx context.Context, cartID int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}

func (r *CartRepository) ListItems(ctx context.Context, cartID int) ([]models.CartItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT p.id, p.name, p.price, ci.quantity
		 FROM cart_items ci
		 JOIN products p ON ci.product_id = p.id
		 WHERE ci.cart_id = $1
		 ORDER BY ci.id`,
		cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Price, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
