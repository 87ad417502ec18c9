// Package main is the entry point for the Triada auth service.
package main

import (
	"os"

	"github.com/triadacafetera/triada/internal/auth/app"
)

// Version information set at build time.
var version = "dev"

func main() {
	if version != "dev" {
		app.BuildVersion = version
	}

	cmd := NewRootCmd()
	cmd.Version = app.BuildVersion

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
