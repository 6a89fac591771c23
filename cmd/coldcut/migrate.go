package main

import (
	"fmt"

	"github.com/spf13/cobra"

	_ "github.com/coldcutclub/storefront/database/migrations"
	"github.com/coldcutclub/storefront/database/seeders"
	"github.com/coldcutclub/storefront/pkg/database"
	"github.com/coldcutclub/storefront/pkg/migration"
)

func withDB(run func(*migration.Runner) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := database.Connect(); err != nil {
			return err
		}
		return run(migration.NewRunner(database.DB))
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE:  withDB(func(r *migration.Runner) error { return r.Run() }),
	}
}

func migrateRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate:rollback",
		Short: "Roll back the last migration batch",
		RunE:  withDB(func(r *migration.Runner) error { return r.Rollback() }),
	}
}

func migrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate:status",
		Short: "Show which migrations have run",
		RunE: withDB(func(r *migration.Runner) error {
			entries, err := r.Status()
			if err != nil {
				return err
			}
			for _, e := range entries {
				state := "pending"
				if e.Applied {
					state = fmt.Sprintf("batch %d at %s", e.Batch, e.AppliedAt.Format("2006-01-02 15:04"))
				}
				fmt.Printf("%-50s %s\n", e.Name, state)
			}
			return nil
		}),
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the catalog and an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.Connect(); err != nil {
				return err
			}
			return seeders.Run(database.DB)
		},
	}
}
