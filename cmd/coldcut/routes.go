package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coldcutclub/storefront/app/routes"
	"github.com/coldcutclub/storefront/pkg/database"
)

func routeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route:list",
		Short: "Print the registered routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.Connect(); err != nil {
				return err
			}
			r := routes.Build()
			for _, info := range r.Routes() {
				fmt.Printf("%-7s %-45s %s\n", info.Method, info.Path, info.Name)
			}
			return nil
		},
	}
}
