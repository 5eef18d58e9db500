package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import migrations so their init() funcs run and register themselves.
	_ "github.com/campusprint/printhub/database/migrations"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "printhub",
	Short:        "Campus print and delivery service",
	Long:         "printhub runs the ordering API and the operator tasks around it.",
	SilenceUsage: true,
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)
	rootCmd.AddCommand(scheduleListCmd)

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	// Operators
	rootCmd.AddCommand(vendorCreateCmd)
	rootCmd.AddCommand(vendorSessionsPruneCmd)
	rootCmd.AddCommand(pricingSetCmd)
	rootCmd.AddCommand(identityCodeCmd)
}
