package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"storefront/internal/models"

	"github.com/google/uuid"
)

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// CreateOrder writes the order, its items and the stock decrements in one
// transaction and returns the stored order with its items.
//
// Each decrement only applies while stock still covers the quantity, so an
// order racing another one for the same product fails with *StockError
// instead of overselling. Any error rolls the whole transaction back.
func (r *OrderRepo) CreateOrder(ctx context.Context, newOrder *models.NewOrder) (*models.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin order tx: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	var orderID uuid.UUID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, description, total_price)
		VALUES ($1, $2, $3)
		RETURNING id`,
		newOrder.UserID, newOrder.Description, newOrder.TotalPrice,
	).Scan(&orderID)
	if err != nil {
		log.Printf("Error creating order: %v", err)
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for _, line := range newOrder.Lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)`,
			orderID, line.ProductID, line.Quantity, line.Price,
		)
		if err != nil {
			log.Printf("Error adding order item: %v", err)
			return nil, fmt.Errorf("insert order item %s: %w", line.ProductID, err)
		}
	}

	for _, line := range newOrder.Lines {
		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $2, updated_at = now()
			WHERE id = $1 AND stock >= $2`,
			line.ProductID, line.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("decrement stock %s: %w", line.ProductID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, &StockError{ProductID: line.ProductID}
		}
	}

	order, err := r.orderByID(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit order: %w", err)
	}
	return order, nil
}

func (r *OrderRepo) orderByID(ctx context.Context, q querier, id uuid.UUID) (*models.Order, error) {
	query := `
		SELECT id, user_id, description, total_price, status, created_at, updated_at
		FROM orders
		WHERE id = $1`

	var order models.Order
	err := q.QueryRowContext(ctx, query, id).Scan(
		&order.ID, &order.UserID, &order.Description, &order.TotalPrice,
		&order.Status, &order.CreatedAt, &order.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", id, err)
	}

	order.Items, err = r.orderItems(ctx, q, id)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepo) orderItems(ctx context.Context, q querier, orderID uuid.UUID) ([]models.OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price,
			p.id, p.name, p.image_url
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY p.name, oi.id`

	rows, err := q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("order items %s: %w", orderID, err)
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price,
			&item.Product.ID, &item.Product.Name, &item.Product.ImageURL,
		)
		if err != nil {
			log.Printf("Scan error: %v", err)
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UserOrders returns the user's orders newest first with the total quantity
// of their items.
func (r *OrderRepo) UserOrders(ctx context.Context, userID uuid.UUID) ([]models.OrderSummary, error) {
	query := `
		SELECT o.id, o.status, o.total_price, o.created_at,
			COALESCE(SUM(oi.quantity), 0)
		FROM orders o
		LEFT JOIN order_items oi ON oi.order_id = o.id
		WHERE o.user_id = $1
		GROUP BY o.id
		ORDER BY o.created_at DESC, o.id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("user orders: %w", err)
	}
	defer rows.Close()

	orders := []models.OrderSummary{}
	for rows.Next() {
		var s models.OrderSummary
		if err := rows.Scan(&s.ID, &s.Status, &s.TotalPrice, &s.CreatedAt, &s.ItemsCount); err != nil {
			log.Printf("Scan error: %v", err)
			return nil, err
		}
		orders = append(orders, s)
	}
	return orders, rows.Err()
}
