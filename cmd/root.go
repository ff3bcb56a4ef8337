package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docscan/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "docscan",
	Short: "docscan - extract structured data from scanned business documents",
	Long: `docscan runs optical character recognition over photographed or scanned
business documents (invoices, receipts, purchase orders, bills) and parses
the recognized text into structured fields: document number, date, amounts,
vendor name and address.

Use "serve" to run the HTTP service or "scan" to process a single image.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Use --help to see available commands and options.")
	},
}

// Execute dispatches the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().Err(err).Msg("command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
