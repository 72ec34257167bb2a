package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/vrtravel/reconcli/internal/dashboard"
)

func newDashboardCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Serve the local status dashboard",
		Long:  "Starts a local HTTP server exposing the scene cache, the live workflow state, and an SSE event stream.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			a, err := buildApp(configPath, out)
			if err != nil {
				return err
			}
			defer a.close()

			if port == 0 {
				port = a.cfg.Dashboard.Port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return dashboard.Start(ctx, dashboard.StartOpts{
				Store: a.store,
				Bus:   a.bus,
				Port:  port,
				Out:   out,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (defaults to dashboard.port from config)")
	return cmd
}
