package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/models"
)

// CheckoutStore turns a cart snapshot into a durable checkout record. The
// checkout row and its line items become visible atomically.
type CheckoutStore interface {
	CreateCheckout(ctx context.Context, userID int, totalAmount float64, items []models.CartItem) (int, error)
}

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) CreateCheckout(ctx context.Context, userID int, totalAmount float64, items []models.CartItem) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin checkout tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var checkoutID int
	err = tx.QueryRow(ctx,
		`INSERT INTO checkouts (user_id, total_amount) VALUES ($1, $2) RETURNING id`,
		userID, totalAmount).Scan(&checkoutID)
	if err != nil {
		return 0, fmt.Errorf("insert checkout: %w", err)
	}

	for _, item := range items {
		_, err = tx.Exec(ctx,
			`INSERT INTO checkout_items (checkout_id, product_id, quantity) VALUES ($1, $2, $3)`,
			checkoutID, item.ProductID, item.Quantity)
		if err != nil {
			return 0, fmt.Errorf("insert checkout item %d: %w", item.ProductID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit checkout tx: %w", err)
	}
	return checkoutID, nil
}

// CreateOrder writes an order with line items priced from the current catalog
// and decrements stock, all in one transaction.
func (r *OrderRepository) CreateOrder(ctx context.Context, userID int, items []models.OrderItemRequest) (*models.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin order tx: %w", err)
	}
	defer tx.Rollback(ctx)

	order := &models.Order{UserID: userID, Status: "pending"}

	for _, item := range items {
		var price float64
		var stock int
		err := tx.QueryRow(ctx,
			`SELECT price, stock FROM products WHERE id = $1 AND is_active = true FOR UPDATE`,
			item.ProductID).Scan(&price, &stock)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("lock product %d: %w", item.ProductID, err)
		}
		if stock < item.Quantity {
			return nil, fmt.Errorf("%w: insufficient stock for product %d", ErrConflict, item.ProductID)
		}

		order.TotalAmount += price * float64(item.Quantity)
		order.Items = append(order.Items, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     price,
		})
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO orders (user_id, total_amount, status) VALUES ($1, $2, $3) RETURNING id, created_at`,
		userID, order.TotalAmount, order.Status).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID

		err = tx.QueryRow(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, price) VALUES ($1, $2, $3, $4) RETURNING id`,
			order.ID, item.ProductID, item.Quantity, item.Price).Scan(&item.ID)
		if err != nil {
			return nil, fmt.Errorf("insert order item %d: %w", item.ProductID, err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE products SET stock = stock - $1 WHERE id = $2`,
			item.Quantity, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("decrement stock for product %d: %w", item.ProductID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit order tx: %w", err)
	}
	return order, nil
}

var ErrConflict = errors.New("conflict")
