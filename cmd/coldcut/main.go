// Command coldcut is the storefront's entry point: it serves the API and
// carries the operational subcommands (migrations, seeding, queue work).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coldcutclub/storefront/internal/server"
)

func main() {
	root := &cobra.Command{
		Use:   "coldcut",
		Short: "ColdCut Club storefront",
	}

	root.AddCommand(
		serveCmd(),
		migrateCmd(),
		migrateRollbackCmd(),
		migrateStatusCmd(),
		seedCmd(),
		queueWorkCmd(),
		routeListCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.Run()
		},
	}
}
