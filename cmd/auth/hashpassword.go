package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/triadacafetera/triada/internal/auth/app"
	"github.com/triadacafetera/triada/pkg/cryptox"
)

// NewHashPasswordCmd creates the hash-password subcommand. The password is
// read from the first argument or, when absent, the first line of stdin.
func NewHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd, args)
			if err != nil {
				return err
			}

			if cost := app.LoadConfig().BcryptCost; cost > 0 {
				cryptox.SetCost(cost)
			}

			hash, err := cryptox.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func readPassword(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	sc := bufio.NewScanner(cmd.InOrStdin())
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", errors.New("no password given")
	}
	password := strings.TrimRight(sc.Text(), "\r")
	if password == "" {
		return "", errors.New("no password given")
	}
	return password, nil
}
