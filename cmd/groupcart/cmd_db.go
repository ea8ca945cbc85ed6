package main

import (
	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/groupcart/pkg/app"
	"github.com/shashiranjanraj/groupcart/pkg/logger"
)

// groupcart migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Migrate(cmd.OutOrStdout(), logger.L)
	},
}

// groupcart migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Rollback(cmd.OutOrStdout(), logger.L)
	},
}

// groupcart migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.MigrationStatus(cmd.OutOrStdout(), logger.L)
	},
}

// groupcart seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the demo group (join code DEMO42)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Seed(cmd.Context(), cmd.OutOrStdout())
	},
}
