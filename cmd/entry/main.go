package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/entry-inc/entry/internal/interfaces/cli/migrate"
	"github.com/entry-inc/entry/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "entry",
		Short: "Entry - authentication and session lifecycle service",
		Long:  `Entry is an authentication service with rotating refresh tokens, signed cookie transport, and migration tooling.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
