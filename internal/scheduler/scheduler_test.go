package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/avssa/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	runs     atomic.Int32
	fail     bool
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }
func (j *stubJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.fail {
		return fmt.Errorf("job failed")
	}
	return nil
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(logger.NewNop())

	job := &stubJob{name: "daily-screen", schedule: "0 10 16 * * MON-FRI"}
	require.NoError(t, s.AddJob(job))

	// 중복 등록 거부
	err := s.AddJob(&stubJob{name: "daily-screen", schedule: "0 0 0 * * *"})
	assert.Error(t, err)
}

func TestScheduler_AddJob_InvalidSpec(t *testing.T) {
	s := New(logger.NewNop())

	err := s.AddJob(&stubJob{name: "broken", schedule: "not a cron spec"})
	assert.Error(t, err)
}

func TestScheduler_RunJob(t *testing.T) {
	s := New(logger.NewNop())
	s.retryDelay = time.Millisecond

	job := &stubJob{name: "daily-screen", schedule: "0 10 16 * * MON-FRI"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("daily-screen"))

	// runJob은 고루틴에서 실행된다
	require.Eventually(t, func() bool {
		return len(s.History("daily-screen")) == 1
	}, time.Second, 10*time.Millisecond)

	history := s.History("daily-screen")
	assert.True(t, history[0].Success)
	assert.Equal(t, int32(1), job.runs.Load())
}

func TestScheduler_RunJob_NotFound(t *testing.T) {
	s := New(logger.NewNop())
	assert.Error(t, s.RunJob("missing"))
}

func TestScheduler_RetriesOnFailure(t *testing.T) {
	s := New(logger.NewNop())
	s.maxRetries = 2
	s.retryDelay = time.Millisecond

	job := &stubJob{name: "daily-screen", schedule: "0 10 16 * * MON-FRI", fail: true}
	require.NoError(t, s.AddJob(job))
	require.NoError(t, s.RunJob("daily-screen"))

	require.Eventually(t, func() bool {
		return len(s.History("daily-screen")) == 1
	}, time.Second, 10*time.Millisecond)

	history := s.History("daily-screen")
	assert.False(t, history[0].Success)
	assert.Equal(t, "job failed", history[0].Error)
	assert.Equal(t, int32(3), job.runs.Load(), "1 run + 2 retries")
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(logger.NewNop())
	require.NoError(t, s.AddJob(&stubJob{name: "daily-screen", schedule: "0 10 16 * * MON-FRI"}))

	s.Start()
	s.Stop()
}
