package jobs

import (
	"context"

	"github.com/vantage-labs/vantage/internal/monitor"
	"github.com/vantage-labs/vantage/pkg/logger"
)

// MonitorSweepJob refreshes every active position on a daily schedule
type MonitorSweepJob struct {
	monitor *monitor.Monitor
	logger  *logger.Logger
}

func NewMonitorSweepJob(m *monitor.Monitor, log *logger.Logger) *MonitorSweepJob {
	return &MonitorSweepJob{monitor: m, logger: log}
}

func (j *MonitorSweepJob) Name() string {
	return "monitor_sweep"
}

// Schedule runs after the market close, weekdays
func (j *MonitorSweepJob) Schedule() string {
	return "0 30 16 * * MON-FRI"
}

func (j *MonitorSweepJob) Run(ctx context.Context) error {
	batch, err := j.monitor.CheckAll(ctx, false, true)
	if err != nil {
		return err
	}
	if batch.Failed > 0 {
		j.logger.WithField("failed", batch.Failed).Warn("sweep finished with failures")
	}
	return nil
}

// WatchSetJob refreshes only watch-set positions at a tighter cadence
type WatchSetJob struct {
	monitor *monitor.Monitor
	logger  *logger.Logger
}

func NewWatchSetJob(m *monitor.Monitor, log *logger.Logger) *WatchSetJob {
	return &WatchSetJob{monitor: m, logger: log}
}

func (j *WatchSetJob) Name() string {
	return "watch_set_refresh"
}

// Schedule runs hourly during market hours, weekdays
func (j *WatchSetJob) Schedule() string {
	return "0 0 10-16 * * MON-FRI"
}

func (j *WatchSetJob) Run(ctx context.Context) error {
	_, err := j.monitor.CheckAll(ctx, true, true)
	return err
}
