package db

import (
	"context"
	"database/sql"
	"log"

	"github.com/shopspring/decimal"
)

type seedProduct struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
}

var sampleProducts = []seedProduct{
	{"Samsung Galaxy Buds", "Wireless earbuds", decimal.NewFromInt(2999), 20, "Audio"},
	{"Apple iPhone 15", "Latest iPhone", decimal.NewFromInt(45000), 3, "Mobile"},
	{"Sandisk SSD 1TB", "Fast storage", decimal.NewFromInt(5999), 12, "Storage"},
	{"Galaxy Tab S9", "Android tablet", decimal.NewFromInt(25000), 7, "Tablet"},
}

// SeedProducts inserts the sample catalog when the products table is empty.
func SeedProducts(ctx context.Context, db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, err
	}
	if count > 0 {
		log.Printf("Products table already has %d rows, skipping seed", count)
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for _, p := range sampleProducts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (name, description, price, stock, category)
			VALUES ($1, $2, $3, $4, $5)`,
			p.Name, p.Description, p.Price, p.Stock, p.Category,
		)
		if err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	log.Printf("Seeded %d sample products", len(sampleProducts))
	return len(sampleProducts), nil
}
