// Biancactl talks directly to a Candy Bianca washer over its local HTTP API.
//
// It reads the current status, sends start and stop commands and lists the
// known programs without going through the bridge daemon.
//
// Usage:
//
//	biancactl [command] --host <address> [flags]
//
// See 'biancactl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "biancactl",
	Short: "Candy Bianca washer control utility",
	Long: `A standalone utility for Candy Bianca washer-dryers.

Reads the machine status, starts and stops programs and probes hosts
using the washer's local HTTP endpoints.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
