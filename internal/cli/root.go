// Package cli wires the zenspend commands: the web server, backup
// import/export, and cache maintenance.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var flagPassphrase string

var rootCmd = &cobra.Command{
	Use:   "zenspend",
	Short: "Mindful personal budgeting with an offline-first web UI",
	Long: `zenspend tracks expenses against a monthly budget and turns the
numbers into calm signals: how much is safe to spend today, when the
budget runs out, and what impulse buys really cost. Running it starts
a local web server; the UI keeps working without a network connection.`,
	RunE: runServe,
}

// Execute is the entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
