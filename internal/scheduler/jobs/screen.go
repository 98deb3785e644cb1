package jobs

import (
	"context"

	"github.com/wonny/avssa/pkg/logger"
)

// ScreenPipeline runs one full screening pass: load snapshot, evaluate
// criteria, classify indices, write outputs.
type ScreenPipeline func(ctx context.Context) error

// ScreenJob wraps the screening pipeline as a scheduled job.
type ScreenJob struct {
	schedule string
	pipeline ScreenPipeline
	logger   *logger.Logger
}

// NewScreenJob creates the daily screening job.
func NewScreenJob(schedule string, pipeline ScreenPipeline, log *logger.Logger) *ScreenJob {
	return &ScreenJob{
		schedule: schedule,
		pipeline: pipeline,
		logger:   log,
	}
}

// Name returns the job name.
func (j *ScreenJob) Name() string {
	return "daily-screen"
}

// Schedule returns the cron spec.
func (j *ScreenJob) Schedule() string {
	return j.schedule
}

// Run executes one screening pass.
func (j *ScreenJob) Run(ctx context.Context) error {
	j.logger.Info("Running daily screen job")
	return j.pipeline(ctx)
}
