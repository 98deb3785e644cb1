// Package report writes the per-run output files consumed by the
// downstream AI-vision review step.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wonny/avssa/internal/contracts"
	"github.com/wonny/avssa/internal/external/naver"
	"github.com/wonny/avssa/internal/runner"
	"github.com/wonny/avssa/pkg/logger"
)

// Writer persists run results under the configured results directory.
type Writer struct {
	dir    string
	logger *logger.Logger
}

// NewWriter creates a report writer rooted at dir.
func NewWriter(dir string, log *logger.Logger) *Writer {
	return &Writer{dir: dir, logger: log}
}

// WriteRun writes criteria_data.json, market_status.json and the dated
// analysis record, then logs the run summary.
func (w *Writer) WriteRun(result *contracts.RunResult) error {
	kisDir := filepath.Join(w.dir, "kis")
	if err := os.MkdirAll(kisDir, 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}

	if err := writeJSON(filepath.Join(kisDir, "criteria_data.json"), result.Reports); err != nil {
		return err
	}

	if len(result.MarketStatus) > 0 {
		if err := writeJSON(filepath.Join(kisDir, "market_status.json"), result.MarketStatus); err != nil {
			return err
		}
	}

	outDir := filepath.Join(w.dir, "analysis")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create analysis dir: %w", err)
	}
	if err := writeJSON(filepath.Join(outDir, fmt.Sprintf("analysis_%s.json", result.Date)), result); err != nil {
		return err
	}

	summary := runner.Summarize(result.Reports)
	w.logger.WithFields(map[string]interface{}{
		"total":        summary.Total,
		"all_met":      summary.AllMet,
		"short_alerts": summary.ShortAlerts,
	}).Info("Run results written")
	for _, key := range contracts.PrimaryCriteria {
		w.logger.Infof("  %s: %d/%d", key, summary.MetPerCriterion[key], summary.Total)
	}

	return nil
}

// WriteNews writes the per-candidate news annotations
// (news_YYYY-MM-DD.json, 코드별 최신 뉴스).
func (w *Writer) WriteNews(date string, news map[string][]naver.NewsItem) error {
	if len(news) == 0 {
		return nil
	}

	outDir := filepath.Join(w.dir, "analysis")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create analysis dir: %w", err)
	}
	if err := writeJSON(filepath.Join(outDir, fmt.Sprintf("news_%s.json", date)), news); err != nil {
		return err
	}

	w.logger.WithField("stocks", len(news)).Info("News annotations written")
	return nil
}

// WriteMarketStatus writes market_status.json alone, for runs that only
// classify the index regime.
func (w *Writer) WriteMarketStatus(statuses map[string]*contracts.RegimeVerdict) error {
	kisDir := filepath.Join(w.dir, "kis")
	if err := os.MkdirAll(kisDir, 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	if err := writeJSON(filepath.Join(kisDir, "market_status.json"), statuses); err != nil {
		return err
	}
	w.logger.WithField("indices", len(statuses)).Info("Market status written")
	return nil
}

// WriteMarkdown renders the candidate table report
// (report_YYYY-MM-DD.md, 전 기준 충족 종목 우선).
func (w *Writer) WriteMarkdown(result *contracts.RunResult) error {
	lines := []string{
		"# AI 주식 분석 리포트",
		fmt.Sprintf("\n생성 시간: %s\n", time.Now().Format("2006-01-02 15:04:05")),
		"| 코드 | 충족 | ALL MET | 주요 사유 |",
		"|------|------|---------|-----------|",
	}

	for _, code := range sortedByMetCount(result.Reports) {
		r := result.Reports[code]
		allMet := ""
		if r.AllMet {
			allMet = "**O**"
		}
		lines = append(lines, fmt.Sprintf("| %s | %d/8 | %s | %s |",
			code, r.MetCount(), allMet, topReason(r)))
	}

	path := filepath.Join(w.dir, "analysis", fmt.Sprintf("report_%s.md", result.Date))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("write markdown report: %w", err)
	}

	w.logger.WithField("path", path).Info("Markdown report written")
	return nil
}

// sortedByMetCount orders codes by met count descending, code ascending.
func sortedByMetCount(reports map[string]*contracts.CriteriaReport) []string {
	codes := make([]string, 0, len(reports))
	for code := range reports {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		mi, mj := reports[codes[i]].MetCount(), reports[codes[j]].MetCount()
		if mi != mj {
			return mi > mj
		}
		return codes[i] < codes[j]
	})
	return codes
}

// topReason picks the first met criterion's reason for the table, falling
// back to the high-breakout reason.
func topReason(r *contracts.CriteriaReport) string {
	for _, key := range contracts.PrimaryCriteria {
		if v, ok := r.Criteria[key]; ok && v.Met {
			return strings.ReplaceAll(v.Reason, "\n", " ")
		}
	}
	if v, ok := r.Criteria[contracts.CriterionHighBreakout]; ok {
		return v.Reason
	}
	return ""
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
