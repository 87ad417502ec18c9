package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/triadacafetera/triada/internal/auth/app"
	"github.com/triadacafetera/triada/internal/auth/service"
)

// NewUserCmd creates the user subcommand group for operator account
// maintenance.
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newSetActiveCmd("activate", "Reactivate an account", true))
	cmd.AddCommand(newSetActiveCmd("deactivate", "Deactivate an account", false))
	return cmd
}

func newSetActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.LoadConfig()
			db, err := app.OpenStore(cmd.Context(), cfg, app.NewLogger(cfg))
			if err != nil {
				return err
			}
			defer db.Close()

			svc := &service.AuthService{Store: db}
			u, err := svc.SetActive(cmd.Context(), args[0], active)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d) active=%t\n", u.Username, u.ID, u.Active)
			return nil
		},
	}
}
