package runner

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wonny/avssa/internal/contracts"
	"github.com/wonny/avssa/internal/regime"
	"github.com/wonny/avssa/internal/screener"
	"github.com/wonny/avssa/pkg/logger"
)

const defaultConcurrency = 8

// Runner applies the criteria evaluator across all known stock codes and the
// regime classifier across the tracked indices, producing one output record
// per invocation.
// ⭐ SSOT: 배치 평가 오케스트레이션은 여기서만
type Runner struct {
	evaluator   *screener.Evaluator
	concurrency int
	logger      *logger.Logger
}

// New creates a batch runner. concurrency <= 0 falls back to the default.
func New(evaluator *screener.Evaluator, concurrency int, log *logger.Logger) *Runner {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Runner{
		evaluator:   evaluator,
		concurrency: concurrency,
		logger:      log,
	}
}

// Run evaluates every snapshot against the 8 criteria + alert.
//
// The TOP30 set is built once, before any worker starts; afterwards all
// shared state is read-only, so stocks are evaluated in parallel.
func (r *Runner) Run(
	ctx context.Context,
	snapshots map[string]*contracts.StockSnapshot,
	rankings map[string][]contracts.RankingEntry,
) map[string]*contracts.CriteriaReport {
	top30 := screener.BuildTop30(rankings)

	r.logger.WithFields(map[string]interface{}{
		"stock_count": len(snapshots),
		"top30_count": len(top30),
		"workers":     r.concurrency,
	}).Info("Starting criteria evaluation")

	codes := make([]string, 0, len(snapshots))
	for code := range snapshots {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	jobs := make(chan string)
	type result struct {
		code   string
		report *contracts.CriteriaReport
	}
	results := make(chan result)

	var wg sync.WaitGroup
	for i := 0; i < r.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for code := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results <- result{code: code, report: r.evaluator.Evaluate(snapshots[code], top30)}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, code := range codes {
			select {
			case <-ctx.Done():
				return
			case jobs <- code:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	reports := make(map[string]*contracts.CriteriaReport, len(snapshots))
	allMet := 0
	for res := range results {
		reports[res.code] = res.report
		if res.report.AllMet {
			allMet++
		}
	}

	r.logger.WithFields(map[string]interface{}{
		"total":   len(reports),
		"all_met": allMet,
	}).Info("Criteria evaluation completed")

	return reports
}

// ClassifyIndices runs the regime classifier once per tracked index,
// independently, and attaches run metadata (evaluated_at, data_days).
// Map keys are index display names (KOSPI, KOSDAQ).
func (r *Runner) ClassifyIndices(indexBars map[string][]contracts.IndexBar) map[string]*contracts.RegimeVerdict {
	now := time.Now()
	out := make(map[string]*contracts.RegimeVerdict, len(indexBars))

	for code, bars := range indexBars {
		name := regime.IndexName(code)
		verdict := regime.NewClassifier(name).Classify(bars)
		verdict.EvaluatedAt = now
		verdict.DataDays = len(bars)
		out[name] = verdict

		r.logger.WithFields(map[string]interface{}{
			"index":     name,
			"status":    verdict.Status,
			"data_days": verdict.DataDays,
		}).Info("Classified index regime")
	}

	return out
}

// Summary aggregates per-criterion met counts over a finished run.
type Summary struct {
	Total           int            `json:"total"`
	AllMet          int            `json:"all_met"`
	ShortAlerts     int            `json:"short_alerts"`
	MetPerCriterion map[string]int `json:"met_per_criterion"`
}

// Summarize computes the per-criterion summary logged after each run.
func Summarize(reports map[string]*contracts.CriteriaReport) Summary {
	s := Summary{
		Total:           len(reports),
		MetPerCriterion: make(map[string]int, len(contracts.PrimaryCriteria)),
	}
	for _, report := range reports {
		if report.AllMet {
			s.AllMet++
		}
		if report.ShortSellingAlert != nil && report.ShortSellingAlert.Met {
			s.ShortAlerts++
		}
		for _, key := range contracts.PrimaryCriteria {
			if v, ok := report.Criteria[key]; ok && v.Met {
				s.MetPerCriterion[key]++
			}
		}
	}
	return s
}
