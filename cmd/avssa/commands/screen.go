package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/avssa/internal/contracts"
	"github.com/wonny/avssa/internal/external/naver"
	"github.com/wonny/avssa/internal/report"
	"github.com/wonny/avssa/internal/runner"
	"github.com/wonny/avssa/internal/screener"
	"github.com/wonny/avssa/internal/snapshot"
	"github.com/wonny/avssa/internal/store"
	"github.com/wonny/avssa/pkg/config"
	"github.com/wonny/avssa/pkg/database"
	"github.com/wonny/avssa/pkg/httputil"
	"github.com/wonny/avssa/pkg/logger"
)

// screenCmd runs one full evaluation pass over the latest snapshot.
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "8개 기준 평가 실행",
	Long: `수집된 kis_latest.json 스냅샷을 8개 기준 + 공매도 경고로 평가하고
결과(criteria_data.json, analysis_*.json, report_*.md)를 저장한다.

Example:
  go run ./cmd/avssa screen
  go run ./cmd/avssa screen --snapshot results/kis/kis_latest.json --markdown`,
	RunE: runScreen,
}

var (
	screenShortSelling string
	screenIndexBars    string
	screenMarkdown     bool
	screenNews         bool
)

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringVar(&snapshotFile, "snapshot", "", "snapshot file (default: RESULTS_DIR/kis/kis_latest.json)")
	screenCmd.Flags().StringVar(&screenShortSelling, "short-selling", "", "short-selling data file (optional)")
	screenCmd.Flags().StringVar(&screenIndexBars, "index-bars", "", "index day-bar file for regime classification (optional)")
	screenCmd.Flags().BoolVar(&screenMarkdown, "markdown", false, "also write the markdown report")
	screenCmd.Flags().BoolVar(&screenNews, "news", false, "annotate all-met candidates with latest news (requires Naver credentials)")
}

func runScreen(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	result, err := runPipeline(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	if screenMarkdown {
		if err := report.NewWriter(cfg.ResultsDir, log).WriteMarkdown(result); err != nil {
			return err
		}
	}

	return nil
}

// runPipeline executes one screening pass: load → evaluate → classify →
// write, with optional database persistence. Shared with the schedule
// command.
func runPipeline(ctx context.Context, cfg *config.Config, log *logger.Logger) (*contracts.RunResult, error) {
	path := snapshotFile
	if path == "" {
		path = filepath.Join(cfg.ResultsDir, "kis", "kis_latest.json")
	}

	loader := snapshot.NewLoader(log)
	batch, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if len(batch.Snapshots) == 0 {
		return nil, fmt.Errorf("snapshot %s contains no stocks", path)
	}

	if screenShortSelling != "" {
		if err := loader.LoadShortSelling(screenShortSelling, batch.Snapshots); err != nil {
			log.WithError(err).Warn("Short-selling data unavailable, alerts skipped")
		}
	}

	r := runner.New(screener.NewEvaluator(log), cfg.Concurrency, log)
	reports := r.Run(ctx, batch.Snapshots, batch.Rankings)

	result := &contracts.RunResult{
		Date:        time.Now().Format("2006-01-02"),
		TotalStocks: len(reports),
		Reports:     reports,
	}

	if screenIndexBars != "" {
		indexBars, err := loader.LoadIndexBars(screenIndexBars)
		if err != nil {
			log.WithError(err).Warn("Index bars unavailable, regime classification skipped")
		} else {
			result.MarketStatus = r.ClassifyIndices(indexBars)
		}
	}

	writer := report.NewWriter(cfg.ResultsDir, log)
	if err := writer.WriteRun(result); err != nil {
		return nil, err
	}

	if screenNews {
		if err := annotateNews(ctx, cfg, log, writer, batch.Snapshots, result); err != nil {
			log.WithError(err).Warn("News annotation failed")
		}
	}

	if cfg.HasDatabase() {
		if err := persistRun(ctx, cfg, log, result); err != nil {
			// 저장 실패는 파일 산출물이 있으므로 치명적이지 않다
			log.WithError(err).Error("Failed to persist run to database")
		}
	}

	return result, nil
}

// annotateNews fetches the latest headlines for every all-met candidate
// and writes the dated news file.
func annotateNews(
	ctx context.Context,
	cfg *config.Config,
	log *logger.Logger,
	writer *report.Writer,
	snapshots map[string]*contracts.StockSnapshot,
	result *contracts.RunResult,
) error {
	client := naver.NewNewsClient(cfg, httputil.New(log), log)
	if !client.IsConfigured() {
		return fmt.Errorf("NAVER_CLIENT_ID/NAVER_CLIENT_SECRET not set")
	}

	news := make(map[string][]naver.NewsItem)
	for code, r := range result.Reports {
		if !r.AllMet {
			continue
		}
		query := code
		if s, ok := snapshots[code]; ok && s.Name != "" {
			query = s.Name
		}
		items, err := client.SearchNews(ctx, query, 3)
		if err != nil {
			log.WithError(err).WithField("code", code).Warn("News lookup failed, skipping")
			continue
		}
		if len(items) > 0 {
			news[code] = items
		}
	}

	return writer.WriteNews(result.Date, news)
}

func persistRun(ctx context.Context, cfg *config.Config, log *logger.Logger, result *contracts.RunResult) error {
	db, err := database.New(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := store.NewResultsRepository(db.Pool)
	runDate, err := time.ParseInLocation("2006-01-02", result.Date, time.Local)
	if err != nil {
		return err
	}

	if err := repo.SaveCriteriaRun(ctx, runDate, result.Reports); err != nil {
		return err
	}
	if len(result.MarketStatus) > 0 {
		if err := repo.SaveMarketStatus(ctx, runDate, result.MarketStatus); err != nil {
			return err
		}
	}

	log.WithField("date", result.Date).Info("Run persisted to database")
	return nil
}
