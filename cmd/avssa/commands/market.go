package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/avssa/internal/report"
	"github.com/wonny/avssa/internal/runner"
	"github.com/wonny/avssa/internal/screener"
	"github.com/wonny/avssa/internal/snapshot"
)

// marketCmd classifies the index regime without running the stock screen.
var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "지수 이동평균 기반 시장 상태 판정",
	Long: `KOSPI/KOSDAQ 일봉 데이터로 EMA 정배열/역배열/혼조를 판정한다.

Example:
  go run ./cmd/avssa market --index-bars results/kis/index_bars.json`,
	RunE: runMarket,
}

var marketIndexBars string

func init() {
	rootCmd.AddCommand(marketCmd)

	marketCmd.Flags().StringVar(&marketIndexBars, "index-bars", "", "index day-bar file (required)")
	marketCmd.MarkFlagRequired("index-bars")
}

func runMarket(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	loader := snapshot.NewLoader(log)
	indexBars, err := loader.LoadIndexBars(marketIndexBars)
	if err != nil {
		return err
	}

	r := runner.New(screener.NewEvaluator(log), 1, log)
	statuses := r.ClassifyIndices(indexBars)
	if len(statuses) == 0 {
		return fmt.Errorf("no index data in %s", marketIndexBars)
	}

	if err := report.NewWriter(cfg.ResultsDir, log).WriteMarketStatus(statuses); err != nil {
		return err
	}

	for name, verdict := range statuses {
		fmt.Printf("%s: %s (%s)\n", name, verdict.Status, verdict.Reason)
	}
	return nil
}
