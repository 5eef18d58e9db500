package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/campusprint/printhub/config"
	"github.com/campusprint/printhub/internal/kernel"
	"github.com/campusprint/printhub/pkg/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and the housekeeping tasks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			config.Set("APP_PORT", port)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := app.Boot(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		services := kernel.NewServices(a)
		if quiet, _ := cmd.Flags().GetBool("no-housekeeping"); !quiet {
			sched := kernel.Housekeeping(services, config.SessionPruneInterval())
			sched.Start(ctx)
			defer sched.Wait()
		}
		return a.Serve(ctx, kernel.Routes(a, services))
	},
}

var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "Print every registered route",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// The table is built without opening any connection.
		routes := kernel.Build(&app.App{}).Routes()

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(routes)
		}

		tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		fmt.Fprintln(tw, "METHOD\tPATH\tNAME")
		for _, r := range routes {
			name := r.Name
			if name == "" {
				name = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Method, r.Path, name)
		}
		return tw.Flush()
	},
}

var scheduleListCmd = &cobra.Command{
	Use:   "schedule:list",
	Short: "Print the housekeeping tasks serve runs",
	Run: func(cmd *cobra.Command, _ []string) {
		sched := kernel.Housekeeping(kernel.NewServices(&app.App{}), config.SessionPruneInterval())
		for _, line := range sched.List() {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	},
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (overrides APP_PORT)")
	serveCmd.Flags().Bool("no-housekeeping", false, "do not run scheduled tasks in this process")
	routeListCmd.Flags().Bool("json", false, "print JSON instead of a table")
}
