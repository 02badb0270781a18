package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vantage-labs/vantage/internal/contracts"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Monitor open positions",
	Long: `Monitor refreshes live quotes and intelligence for open positions,
computes P/L against exit thresholds, and surfaces risk alerts.

Subcommands:
  check    - refresh one position
  all      - refresh every active position
  watch    - refresh only watch-set positions
  history  - show recent snapshots for a position

Example:
  go run ./cmd/vantage monitor check 4f2a... --force
  go run ./cmd/vantage monitor all
  go run ./cmd/vantage monitor history 4f2a... --days 7`,
}

var monitorCheckCmd = &cobra.Command{
	Use:   "check [position-id]",
	Short: "Refresh one position",
	Args:  cobra.ExactArgs(1),
	RunE:  runMonitorCheck,
}

var monitorAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Refresh every active position",
	RunE:  runMonitorAll,
}

var monitorWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Refresh only watch-set positions",
	RunE:  runMonitorWatch,
}

var monitorHistoryCmd = &cobra.Command{
	Use:   "history [position-id]",
	Short: "Show recent snapshots for a position",
	Args:  cobra.ExactArgs(1),
	RunE:  runMonitorHistory,
}

var (
	monitorForce       bool
	monitorHistoryDays int
)

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.AddCommand(monitorCheckCmd)
	monitorCmd.AddCommand(monitorAllCmd)
	monitorCmd.AddCommand(monitorWatchCmd)
	monitorCmd.AddCommand(monitorHistoryCmd)

	monitorCheckCmd.Flags().BoolVar(&monitorForce, "force", false, "refresh even when the cached result is fresh")
	monitorAllCmd.Flags().BoolVar(&monitorForce, "force", false, "refresh even when cached results are fresh")
	monitorHistoryCmd.Flags().IntVar(&monitorHistoryDays, "days", 7, "days of history")
}

func runMonitorCheck(cmd *cobra.Command, args []string) error {
	application, err := initApp()
	if err != nil {
		return err
	}
	defer application.Close()

	result, err := application.monitor.Check(context.Background(), args[0], monitorForce)
	if err != nil {
		return err
	}

	printResult(result)
	return nil
}

func runMonitorAll(cmd *cobra.Command, args []string) error {
	return runSweep(false)
}

func runMonitorWatch(cmd *cobra.Command, args []string) error {
	return runSweep(true)
}

func runSweep(watchOnly bool) error {
	application, err := initApp()
	if err != nil {
		return err
	}
	defer application.Close()

	batch, err := application.monitor.CheckAll(context.Background(), watchOnly, monitorForce)
	if err != nil {
		return err
	}

	fmt.Printf("Checked: %d  Failed: %d  Exit signals: %d  Paid calls: %d  (%s)\n",
		batch.Checked, batch.Failed, batch.Exits, batch.PaidCalls, batch.Elapsed.Round(time.Millisecond))
	return nil
}

func runMonitorHistory(cmd *cobra.Command, args []string) error {
	application, err := initApp()
	if err != nil {
		return err
	}
	defer application.Close()

	since := time.Now().AddDate(0, 0, -monitorHistoryDays)
	history, err := application.results.GetHistory(context.Background(), args[0], since)
	if err != nil {
		return err
	}

	if len(history) == 0 {
		fmt.Println("No snapshots in range")
		return nil
	}

	fmt.Printf("%-20s %10s %10s %10s  %s\n", "CHECKED AT", "P/L $", "P/L %", "RISK", "EXIT")
	for i := range history {
		r := &history[i]
		exit := "-"
		if r.PL.ShouldExit {
			exit = string(r.PL.ExitType)
		}
		fmt.Printf("%-20s %10.2f %9.1f%% %10s  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.PL.PLDollar, r.PL.PLPercent, r.RiskLevel, exit)
	}
	return nil
}

func printResult(r *contracts.MonitorResult) {
	fmt.Printf("=== %s (%s) ===\n", r.Symbol, r.PositionID)
	if r.FromCache {
		fmt.Printf("(cached, as of %s)\n", r.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("Held %d days, %d DTE\n", r.DaysHeld, r.DTE)
	fmt.Printf("Spread mid: %.2f  P/L: $%.2f (%.1f%%)\n", r.PL.SpreadMid, r.PL.PLDollar, r.PL.PLPercent)
	fmt.Printf("Risk level: %s\n", r.RiskLevel)

	if r.PL.ShouldExit {
		fmt.Printf("\nEXIT SIGNAL (%s): %s\n", r.PL.ExitType, r.PL.ExitReason)
	}

	if len(r.Alerts) > 0 {
		fmt.Println("\nAlerts:")
		for _, a := range r.Alerts {
			fmt.Printf("  [%-8s] %s: %s\n", a.Severity, a.Type, a.Message)
		}
	}

	fmt.Println("\nRecommendations:")
	for _, rec := range r.Recommendations {
		fmt.Printf("  - %s\n", rec)
	}

	if r.Degraded {
		fmt.Println("\nNote: some intelligence categories were unavailable")
	}
}
