package db

import (
	"context"
	"database/sql"
	"log"
	"storefront/internal/config"
	"time"

	_ "github.com/lib/pq"
)

func NewPostgresDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Printf("Error connecting to postgres: %v", err)
		db.Close()
		return nil, err
	}
	log.Printf("Connected to postgres")
	return db, nil
}
