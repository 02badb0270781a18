package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vantage",
	Short: "Vantage - credit spread decision engine",
	Long: `Vantage scans option chains for credit spread candidates, scores them
against a weighted factor set, and monitors open positions for exit and
risk signals.

Usage:
  go run ./cmd/vantage [command]

Examples:
  go run ./cmd/vantage scan AAPL --ips conservative
  go run ./cmd/vantage monitor check <position-id>
  go run ./cmd/vantage monitor all
  go run ./cmd/vantage scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
