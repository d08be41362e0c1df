package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingSnapshotter struct {
	mu    sync.Mutex
	calls int
	dirs  []string
	err   error
}

func (c *countingSnapshotter) Snapshot(ctx context.Context, dir string, now time.Time) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.dirs = append(c.dirs, dir)
	return nil, c.err
}

func (c *countingSnapshotter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestRunOnceCreatesDirectory(t *testing.T) {
	source := &countingSnapshotter{}
	dir := filepath.Join(t.TempDir(), "exports", "daily")

	NewSnapshotJob(source, dir, zap.NewNop()).RunOnce(context.Background())

	assert.Equal(t, 1, source.count())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRunOnceSurvivesFailure(t *testing.T) {
	source := &countingSnapshotter{err: errors.New("disk full")}
	job := NewSnapshotJob(source, t.TempDir(), zap.NewNop())
	job.RunOnce(context.Background())
	job.RunOnce(context.Background())
	assert.Equal(t, 2, source.count())
}

func TestRunRejectsInvalidSchedule(t *testing.T) {
	source := &countingSnapshotter{}
	err := NewSnapshotJob(source, t.TempDir(), zap.NewNop()).Run(context.Background(), "every day")
	assert.Error(t, err)
	assert.Zero(t, source.count())
}

func TestRunSnapshotsAtStartupAndStops(t *testing.T) {
	source := &countingSnapshotter{}
	job := NewSnapshotJob(source, t.TempDir(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- job.Run(ctx, "0 2 * * *") }()

	require.Eventually(t, func() bool { return source.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, 1, source.count())
}
