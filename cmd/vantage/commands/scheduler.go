package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vantage-labs/vantage/internal/scheduler"
	"github.com/vantage-labs/vantage/internal/scheduler/jobs"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run scheduled monitoring jobs",
	Long: `Scheduler runs the monitoring jobs on their cron schedules:

- monitor_sweep: full refresh of active positions after market close
- watch_set_refresh: hourly refresh of watch-set positions during market hours

Subcommands:
  start   - start the scheduler daemon
  list    - list registered jobs
  run     - run one job immediately

Example:
  go run ./cmd/vantage scheduler start
  go run ./cmd/vantage scheduler run monitor_sweep`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler daemon",
	RunE:  runSchedulerStart,
}

var schedulerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered jobs",
	RunE:  runSchedulerList,
}

var schedulerRunCmd = &cobra.Command{
	Use:   "run [job_name]",
	Short: "Run one job immediately",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedulerJob,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func initScheduler() (*scheduler.Scheduler, *app, error) {
	application, err := initApp()
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(application.log)
	if err := sched.AddJob(jobs.NewMonitorSweepJob(application.monitor, application.log)); err != nil {
		return nil, nil, err
	}
	if err := sched.AddJob(jobs.NewWatchSetJob(application.monitor, application.log)); err != nil {
		return nil, nil, err
	}

	return sched, application, nil
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	sched, application, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer application.Close()

	sched.Start()

	fmt.Println("Scheduler started. Registered jobs:")
	for _, jobName := range sched.Jobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	return nil
}

func runSchedulerList(cmd *cobra.Command, args []string) error {
	sched, application, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer application.Close()

	fmt.Println("Registered jobs:")
	for jobName, stat := range sched.Stats() {
		fmt.Printf("  %-20s %s\n", jobName, stat.Schedule)
	}
	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	sched, application, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer application.Close()

	jobName := args[0]
	fmt.Printf("Running job: %s\n", jobName)

	return sched.RunJobNow(jobName)
}
