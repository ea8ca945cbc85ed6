package main

import (
	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/groupcart/pkg/app"
	"github.com/shashiranjanraj/groupcart/pkg/logger"
)

// groupcart invoices:send <order-id>
var invoicesSendCmd = &cobra.Command{
	Use:   "invoices:send <order-id>",
	Short: "Email the invoices of an order to everyone not yet served",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.SendInvoices(cmd.Context(), args[0], cmd.OutOrStdout(), logger.L)
	},
}
