package main

import (
	"storefront/internal/db"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample products when the catalog is empty",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, conn, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer conn.Close()

		_, err = db.SeedProducts(cmd.Context(), conn)
		return err
	},
}
