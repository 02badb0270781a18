package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vantage-labs/vantage/internal/contracts"
	"github.com/vantage-labs/vantage/internal/monitor"
)

var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "List open positions",
	Long: `Positions lists active credit spreads with their last known P/L.

Example:
  go run ./cmd/vantage positions
  go run ./cmd/vantage positions --watch-only`,
	RunE: runPositions,
}

var positionsWatchOnly bool

func init() {
	rootCmd.AddCommand(positionsCmd)
	positionsCmd.Flags().BoolVar(&positionsWatchOnly, "watch-only", false, "show only watch-set positions")
}

func runPositions(cmd *cobra.Command, args []string) error {
	application, err := initApp()
	if err != nil {
		return err
	}
	defer application.Close()

	ctx := context.Background()
	active, err := application.positions.GetActive(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	cfg := contracts.DefaultMonitorConfig()

	shown := 0
	fmt.Printf("%-10s %-6s %-10s %12s %4s %10s %9s  %s\n",
		"ID", "SYM", "STRATEGY", "STRIKES", "DTE", "P/L $", "P/L %", "CHECKED")
	for i := range active {
		pos := &active[i]

		if positionsWatchOnly {
			last, _ := application.results.GetLatest(ctx, pos.ID)
			if !monitor.InWatchSet(pos, last, now, cfg) {
				continue
			}
		}
		shown++

		checked := "-"
		if !pos.LastCheckedAt.IsZero() {
			checked = pos.LastCheckedAt.Format("01/02 15:04")
		}
		fmt.Printf("%-10s %-6s %-10s %12s %4d %10.2f %8.1f%%  %s\n",
			shortID(pos.ID), pos.Symbol, pos.Strategy,
			fmt.Sprintf("%.0f/%.0f", pos.ShortStrike, pos.LongStrike),
			pos.DTE(now), pos.PLDollar, pos.PLPercent, checked)
	}

	fmt.Printf("\n%d position(s)\n", shown)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
