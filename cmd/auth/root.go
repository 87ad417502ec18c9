package main

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/triadacafetera/triada/internal/auth/app"
)

// Global flags available to all subcommands.
var envFile string

// NewRootCmd creates the root command. With no subcommand it serves.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Triada authentication service",
		Long: `Account registration, login and session verification for the
Triada booking backend.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadEnvFile(envFile)
		},
		RunE: runServe,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file loaded before reading configuration")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewHashPasswordCmd())
	cmd.AddCommand(NewUserCmd())

	return cmd
}

// loadEnvFile populates unset variables from path. A missing file is not
// an error; variables already in the environment win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := app.LoadConfig()

	application, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	return application.Run()
}
