package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/db"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "E-commerce backend: catalog, accounts and order placement",
	Long: `storefront serves the REST API for products, users and orders.

Commands:
  serve    - start the HTTP server
  migrate  - apply pending schema migrations
  seed     - insert sample products into an empty catalog`,
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// connect loads the configuration and opens the database.
func connect(ctx context.Context) (*config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	conn, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, conn, nil
}
