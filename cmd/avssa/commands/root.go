package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/avssa/pkg/config"
	"github.com/wonny/avssa/pkg/logger"
)

var (
	// Global flags
	snapshotFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "avssa",
	Short: "AVSSA - AI Vision Stock Signal Analyzer 평가 엔진",
	Long: `AVSSA 결정적 평가 엔진 CLI

수집된 스냅샷 데이터를 8개 기준 + 공매도 경고로 평가하고
지수 이동평균 정배열/역배열 상태를 판정한다.

Usage:
  go run ./cmd/avssa [command]

Examples:
  go run ./cmd/avssa screen --snapshot results/kis/kis_latest.json
  go run ./cmd/avssa market --index-bars results/kis/index_bars.json
  go run ./cmd/avssa serve
  go run ./cmd/avssa schedule`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// setup loads config and builds the logger shared by every command.
func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, logger.New(cfg), nil
}
