package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/avssa/internal/api"
	"github.com/wonny/avssa/internal/api/handlers"
)

// serveCmd exposes the latest run results over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "결과 조회 API 서버 실행",
	Long: `최신 평가 결과(criteria_data.json, market_status.json)를 읽기 전용
HTTP API로 제공한다.

Example:
  go run ./cmd/avssa serve
  PORT=8090 go run ./cmd/avssa serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	results := handlers.NewResultsHandler(cfg.ResultsDir, log)
	server := api.New(cfg, log, api.NewRouter(results, log))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
