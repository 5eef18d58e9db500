package main

import (
	"github.com/spf13/cobra"

	"github.com/campusprint/printhub/database/seeders"
	"github.com/campusprint/printhub/pkg/app"
	"github.com/campusprint/printhub/pkg/migration"
)

// dbCommand builds a command that needs only the database. The connection
// is closed when run returns.
func dbCommand(use, short string, run func(cmd *cobra.Command, a *app.App, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.BootDB()
			if err != nil {
				return err
			}
			defer a.Close()
			return run(cmd, a, args)
		},
	}
}

var migrateCmd = dbCommand("migrate", "Run all pending database migrations",
	func(cmd *cobra.Command, a *app.App, _ []string) error {
		if err := migration.New(a.DB).Run(); err != nil {
			return err
		}
		if seed, _ := cmd.Flags().GetBool("seed"); seed {
			return seeders.RunAll(a.DB)
		}
		return nil
	})

var migrateRollbackCmd = dbCommand("migrate:rollback", "Roll back the last batch of migrations",
	func(_ *cobra.Command, a *app.App, _ []string) error {
		return migration.New(a.DB).Rollback()
	})

var migrateStatusCmd = dbCommand("migrate:status", "Show which migrations have run",
	func(cmd *cobra.Command, a *app.App, _ []string) error {
		return migration.New(a.DB).Status(cmd.OutOrStdout())
	})

var seedCmd = dbCommand("seed [name...]", "Run database seeders (all of them when no name is given)",
	func(_ *cobra.Command, a *app.App, args []string) error {
		return seeders.Run(a.DB, args...)
	})

func init() {
	migrateCmd.Flags().Bool("seed", false, "run every seeder after migrating")
	seedCmd.ValidArgs = seeders.Names()
}
