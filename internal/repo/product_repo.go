package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"storefront/internal/models"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

const productColumns = `id, name, description, price, stock, category, image_url, created_at, updated_at`

func scanProduct(s scanner, p *models.Product) error {
	return s.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock,
		&p.Category, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
	)
}

func (r *ProductRepo) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (name, description, price, stock, category, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx,
		query, product.Name, product.Description, product.Price,
		product.Stock, product.Category, product.ImageURL,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		log.Printf("Error creating product: %v", err)
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *ProductRepo) ProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var product models.Product
	err := scanProduct(r.db.QueryRowContext(ctx, query, id), &product)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", id, err)
	}
	return &product, nil
}

// ProductsByIDs fetches every existing product among ids in one round trip.
// Missing ids are simply absent from the result.
func (r *ProductRepo) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1::uuid[])`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, fmt.Errorf("products by ids: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *ProductRepo) UpdateProduct(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5,
			category = $6, image_url = $7, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx,
		query, product.ID, product.Name, product.Description, product.Price,
		product.Stock, product.Category, product.ImageURL,
	).Scan(&product.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		log.Printf("Error updating product: %v", err)
		return fmt.Errorf("update product %s: %w", product.ID, err)
	}
	return nil
}

// DeleteProduct refuses to remove a product that order items still point at.
func (r *ProductRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if pqCode(err) == foreignKeyViolation {
			return ErrInUse
		}
		log.Printf("Error deleting product: %v", err)
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// PaginateProduct returns one page of products, newest first. An empty search
// matches everything; otherwise name must contain search, case-insensitively.
func (r *ProductRepo) PaginateProduct(ctx context.Context, search string, limit, offset int) ([]models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, escapeLike(search), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("paginate products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *ProductRepo) CountProducts(ctx context.Context, search string) (int, error) {
	query := `SELECT COUNT(*) FROM products WHERE $1 = '' OR name ILIKE '%' || $1 || '%'`
	var count int
	err := r.db.QueryRowContext(ctx, query, escapeLike(search)).Scan(&count)
	return count, err
}

// Categories lists the distinct category labels in use with their product counts.
func (r *ProductRepo) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	query := `
		SELECT category, COUNT(*)
		FROM products
		WHERE category IS NOT NULL AND category <> ''
		GROUP BY category
		ORDER BY category`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	defer rows.Close()

	categories := []models.CategoryCount{}
	for rows.Next() {
		var c models.CategoryCount
		if err := rows.Scan(&c.Name, &c.Products); err != nil {
			log.Printf("Scan error: %v", err)
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func collectProducts(rows *sql.Rows) ([]models.Product, error) {
	products := []models.Product{}
	for rows.Next() {
		var product models.Product
		if err := scanProduct(rows, &product); err != nil {
			log.Printf("Scan error: %v", err)
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

// escapeLike makes % and _ in user input match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
