// internal/app/system/workers/runner_test.go
package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chikahq/partnerhub/internal/app/system/tasks"
	"go.uber.org/zap"
)

func TestRunnerRunsAndStops(t *testing.T) {
	var ticks atomic.Int64
	job := tasks.Job{
		Name:     "test-tick",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			ticks.Add(1)
			return nil
		},
	}

	r := NewRunner(zap.NewNop(), job)
	r.Start()
	time.Sleep(100 * time.Millisecond)
	r.Stop()

	if got := ticks.Load(); got == 0 {
		t.Fatal("job never ran")
	}
	after := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	if ticks.Load() != after {
		t.Fatal("job kept running after Stop")
	}
}

func TestRunnerKeepsScheduleOnError(t *testing.T) {
	var runs atomic.Int64
	job := tasks.Job{
		Name:     "test-fail",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return errors.New("boom")
		},
	}

	r := NewRunner(zap.NewNop(), job)
	r.Start()
	time.Sleep(60 * time.Millisecond)
	r.Stop()

	if runs.Load() < 2 {
		t.Fatalf("expected repeated runs despite errors, got %d", runs.Load())
	}
}
