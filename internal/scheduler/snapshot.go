// Package scheduler runs the periodic spreadsheet snapshot of the database
package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Snapshotter writes one workbook per organization into dir
type Snapshotter interface {
	Snapshot(ctx context.Context, dir string, now time.Time) ([]string, error)
}

// SnapshotJob exports the database on a cron schedule
type SnapshotJob struct {
	source Snapshotter
	dir    string
	logger *zap.Logger
	now    func() time.Time
}

// NewSnapshotJob creates a job writing into dir
func NewSnapshotJob(source Snapshotter, dir string, logger *zap.Logger) *SnapshotJob {
	return &SnapshotJob{
		source: source,
		dir:    dir,
		logger: logger,
		now:    time.Now,
	}
}

// RunOnce takes one snapshot; failures are logged
func (j *SnapshotJob) RunOnce(ctx context.Context) {
	if err := os.MkdirAll(j.dir, 0755); err != nil {
		j.logger.Error("Failed to create export directory", zap.String("dir", j.dir), zap.Error(err))
		return
	}

	j.logger.Info("Starting snapshot export", zap.String("dir", j.dir))
	written, err := j.source.Snapshot(ctx, j.dir, j.now())
	if err != nil {
		j.logger.Error("Snapshot export failed", zap.Error(err), zap.Int("written", len(written)))
		return
	}
	j.logger.Info("Snapshot export finished", zap.Strings("files", written))
}

// Run takes a snapshot immediately and then on every tick of schedule until ctx is done
func (j *SnapshotJob) Run(ctx context.Context, schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid export schedule %q: %w", schedule, err)
	}

	j.RunOnce(ctx)

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { j.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to set up cron job: %w", err)
	}

	j.logger.Info("Snapshot export scheduled", zap.String("schedule", schedule))
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	j.logger.Info("Snapshot scheduler stopped")
	return nil
}
