package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/models"
)

// ProductCatalog is the slice of the product store the cart service needs.
type ProductCatalog interface {
	GetProductByID(ctx context.Context, id int) (*models.Product, error)
}

type ProductRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) GetProductByID(ctx context.Context, id int) (*models.Product, error) {
	var p models.Product
	err := r.db.QueryRow(ctx,
		`SELECT id, name, description, price, stock, COALESCE(image_url, ''), is_active, created_at, updated_at
		 FROM products WHERE id = $1 AND is_active = true`,
		id).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) GetAllProducts(ctx context.Context, page, limit int) ([]models.Product, int, error) {
	offset := (page - 1) * limit

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE is_active = true`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, name, description, price, stock, COALESCE(image_url, ''), is_active, created_at, updated_at
		 FROM products WHERE is_active = true ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *ProductRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	now := time.Now()
	return r.db.QueryRow(ctx,
		`INSERT INTO products (name, description, price, stock, image_url, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, true, $6, $7)
		 RETURNING id, is_active, created_at, updated_at`,
		product.Name, product.Description, product.Price, product.Stock, product.ImageURL, now, now,
	).Scan(&product.ID, &product.IsActive, &product.CreatedAt, &product.UpdatedAt)
}

func (r *ProductRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET name = $1, description = $2, price = $3, stock = $4,
		 image_url = $5, is_active = $6, updated_at = $7 WHERE id = $8`,
		product.Name, product.Description, product.Price, product.Stock,
		product.ImageURL, product.IsActive, time.Now(), product.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) DeleteProduct(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET is_active = false WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
