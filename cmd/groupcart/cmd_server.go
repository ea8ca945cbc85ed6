package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/groupcart/pkg/app"
	"github.com/shashiranjanraj/groupcart/pkg/logger"
)

// groupcart serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API (and the gRPC health probe when GRPC_PORT is set)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := app.Boot(ctx, logger.L)
		if err != nil {
			return err
		}
		return a.Serve(ctx)
	},
}

// groupcart route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.RouteList(cmd.OutOrStdout())
	},
}
