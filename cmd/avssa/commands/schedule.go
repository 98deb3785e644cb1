package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/avssa/internal/scheduler"
	"github.com/wonny/avssa/internal/scheduler/jobs"
)

// scheduleCmd keeps the daily screening job running on a cron schedule.
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "일일 평가 스케줄러 실행",
	Long: `장 마감 후 평가를 cron 스케줄로 반복 실행한다. 기본 스케줄은
SCHEDULE_CRON 환경 변수로 조정한다 (초 필드 포함, 기본 평일 16:10).

Example:
  go run ./cmd/avssa schedule
  SCHEDULE_CRON="0 30 16 * * MON-FRI" go run ./cmd/avssa schedule`,
	RunE: runSchedule,
}

var scheduleRunNow bool

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&snapshotFile, "snapshot", "", "snapshot file (default: RESULTS_DIR/kis/kis_latest.json)")
	scheduleCmd.Flags().BoolVar(&scheduleRunNow, "run-now", false, "run the screen job once immediately on startup")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	pipeline := func(ctx context.Context) error {
		_, err := runPipeline(ctx, cfg, log)
		return err
	}

	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewScreenJob(cfg.ScheduleCron, pipeline, log)); err != nil {
		return err
	}

	if scheduleRunNow {
		if err := sched.RunJob("daily-screen"); err != nil {
			log.WithError(err).Error("Initial screen run failed")
		}
	}

	sched.Start()
	defer sched.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.WithField("signal", sig.String()).Info("Scheduler stopping")
	return nil
}
