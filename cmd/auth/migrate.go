package main

import (
	"github.com/spf13/cobra"

	"github.com/triadacafetera/triada/internal/auth/app"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending migrations to the configured sqlite or postgres database.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg := app.LoadConfig()

	cmd.Println("Running migrations...")
	db, err := app.OpenStore(cmd.Context(), cfg, app.NewLogger(cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	cmd.Println("Migrations completed successfully")
	return nil
}
