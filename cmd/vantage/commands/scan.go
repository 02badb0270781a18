package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vantage-labs/vantage/internal/contracts"
)

var scanCmd = &cobra.Command{
	Use:   "scan [symbol]",
	Short: "Scan a symbol for credit spread candidates",
	Long: `Scan fetches the option chain for a symbol, enumerates vertical credit
spreads, scores each against the selected factor set, and prints the top
candidates per ranking view.

Example:
  go run ./cmd/vantage scan AAPL --ips conservative
  go run ./cmd/vantage scan SPY --ips income --top 10`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

var (
	scanIPSID string
	scanTop   int
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanIPSID, "ips", "default", "factor set id")
	scanCmd.Flags().IntVar(&scanTop, "top", 10, "candidates to display")
}

func runScan(cmd *cobra.Command, args []string) error {
	symbol := strings.ToUpper(args[0])

	application, err := initApp()
	if err != nil {
		return err
	}
	defer application.Close()

	result, err := application.engine.Scan(context.Background(), symbol, scanIPSID)
	if err != nil {
		return fmt.Errorf("scan %s: %w", symbol, err)
	}

	fmt.Printf("=== Scan: %s (ips: %s) ===\n\n", symbol, scanIPSID)
	fmt.Printf("Examined: %d  Candidates: %d\n", result.Examined, len(result.Scored))

	if len(result.Rejections) > 0 {
		fmt.Println("\nRejections:")
		for reason, count := range result.Rejections {
			fmt.Printf("  %-25s %d\n", reason, count)
		}
	}

	fmt.Println("\nTop by composite score:")
	printCandidates(result.Views.ByComposite, scanTop)

	fmt.Println("\nTop by expected value per dollar:")
	printCandidates(result.Views.ByEVPerDollar, scanTop)

	fmt.Println("\nDiversified short-list:")
	printCandidates(result.Diversified, scanTop)

	return nil
}

func printCandidates(candidates []contracts.ScoredCandidate, limit int) {
	if len(candidates) == 0 {
		fmt.Println("  (none)")
		return
	}
	if limit > len(candidates) {
		limit = len(candidates)
	}

	fmt.Printf("  %-24s %8s %8s %8s %8s %8s  %s\n",
		"SPREAD", "CREDIT", "POP", "YIELD", "IPS", "COMP", "TIER")
	for _, c := range candidates[:limit] {
		fmt.Printf("  %-24s %8.2f %7.1f%% %8.1f %8.1f %8.1f  %s\n",
			fmt.Sprintf("%s %s %.0f/%.0f %s",
				c.Symbol, c.Strategy, c.ShortLeg.Strike, c.LongLeg.Strike,
				c.Expiration.Format("01/02")),
			c.EntryCredit, c.PoP*100,
			c.YieldScore, c.IPSScore, c.CompositeScore, c.Tier)
	}
}
