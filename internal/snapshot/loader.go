// Package snapshot materializes evaluation inputs from the acquisition
// layer's KIS payload (kis_latest.json). The payload is deep and loosely
// typed, so fields are extracted with gjson paths instead of struct decoding.
package snapshot

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/wonny/avssa/internal/contracts"
	"github.com/wonny/avssa/pkg/logger"
)

// Loader reads the raw KIS acquisition output into evaluator inputs.
// ⭐ SSOT: kis_latest.json 파싱은 여기서만
type Loader struct {
	logger *logger.Logger
}

// NewLoader creates a snapshot loader.
func NewLoader(log *logger.Logger) *Loader {
	return &Loader{logger: log}
}

// Batch is one fully materialized evaluation input set.
type Batch struct {
	Snapshots map[string]*contracts.StockSnapshot
	Rankings  map[string][]contracts.RankingEntry
}

// LoadFile reads and parses a kis_latest.json file.
func (l *Loader) LoadFile(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	return l.Load(data)
}

// Load parses a raw KIS payload.
//
// Structure: stock_details.{code}.{current_price, daily_chart.ohlcv,
// investor_trend(_estimate), program_trading(_daily)} plus
// rankings.{kospi,kosdaq}[].
func (l *Loader) Load(data []byte) (*Batch, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("snapshot payload is not valid JSON")
	}

	root := gjson.ParseBytes(data)

	batch := &Batch{
		Snapshots: make(map[string]*contracts.StockSnapshot),
		Rankings:  make(map[string][]contracts.RankingEntry),
	}

	root.Get("stock_details").ForEach(func(code, details gjson.Result) bool {
		batch.Snapshots[code.String()] = parseStock(code.String(), details)
		return true
	})

	root.Get("rankings").ForEach(func(market, entries gjson.Result) bool {
		var list []contracts.RankingEntry
		entries.ForEach(func(_, e gjson.Result) bool {
			list = append(list, contracts.RankingEntry{
				Code:         e.Get("code").String(),
				Name:         e.Get("name").String(),
				TradingValue: e.Get("trading_value").Float(),
			})
			return true
		})
		batch.Rankings[market.String()] = list
		return true
	})

	l.logger.WithFields(map[string]interface{}{
		"stocks":  len(batch.Snapshots),
		"markets": len(batch.Rankings),
	}).Info("Loaded KIS snapshot")

	return batch, nil
}

// parseStock maps one stock_details entry onto a StockSnapshot, applying the
// acquisition layer's field-preference rules.
func parseStock(code string, details gjson.Result) *contracts.StockSnapshot {
	cp := details.Get("current_price")

	s := &contracts.StockSnapshot{
		Code:         code,
		Name:         cp.Get("name").String(),
		CurrentPrice: cp.Get("current_price").Float(),
		PrevClose:    cp.Get("prev_close").Float(),
		Week52High:   cp.Get("high_52week").Float(),
		MarketCap:    cp.Get("market_cap").Float(), // 억원
	}

	details.Get("daily_chart.ohlcv").ForEach(func(_, bar gjson.Result) bool {
		s.DailyBars = append(s.DailyBars, contracts.DailyBar{
			Date:       bar.Get("date").String(),
			Open:       bar.Get("open").Float(),
			High:       bar.Get("high").Float(),
			Low:        bar.Get("low").Float(),
			Close:      bar.Get("close").Float(),
			Volume:     bar.Get("volume").Int(),
			ChangeRate: bar.Get("change_rate").Float(),
		})
		return true
	})

	// 외국인/기관 수급: 추정치 우선
	if details.Get("investor_trend_estimate.is_estimated").Bool() {
		est := details.Get("investor_trend_estimate.estimated_data")
		s.ForeignNet = est.Get("foreign_net").Float()
		s.InstitutionNet = est.Get("institution_net").Float()
	} else {
		today := details.Get("investor_trend.daily_investor_trend.0")
		s.ForeignNet = today.Get("foreign_net").Float()
		s.InstitutionNet = today.Get("organ_net").Float()
	}

	// 프로그램 매매: 일별 데이터 우선, 없으면 체결 데이터 합산 fallback
	if daily := details.Get("program_trading_daily.program_trading_daily"); daily.Exists() && len(daily.Array()) > 0 {
		s.ProgramNetVolume = daily.Get("0.net_volume").Float()
	} else {
		var sum float64
		details.Get("program_trading.program_trading").ForEach(func(_, p gjson.Result) bool {
			sum += p.Get("net_volume").Float()
			return true
		})
		s.ProgramNetVolume = sum
	}

	return s
}

// LoadIndexBars parses an index day-bar file into a most-recent-first
// sequence keyed by index code (market_status 수집 산출물).
func (l *Loader) LoadIndexBars(path string) (map[string][]contracts.IndexBar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index bars file: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("index bars payload is not valid JSON")
	}

	out := make(map[string][]contracts.IndexBar)
	gjson.ParseBytes(data).ForEach(func(indexCode, bars gjson.Result) bool {
		var list []contracts.IndexBar
		bars.ForEach(func(_, bar gjson.Result) bool {
			list = append(list, contracts.IndexBar{
				Date:   bar.Get("date").String(),
				Open:   bar.Get("open").Float(),
				High:   bar.Get("high").Float(),
				Low:    bar.Get("low").Float(),
				Close:  bar.Get("close").Float(),
				Volume: bar.Get("volume").Int(),
			})
			return true
		})
		out[indexCode.String()] = list
		return true
	})

	return out, nil
}

// LoadShortSelling parses the short-selling collection output
// ({code: {short_ratio, short_qty}}) and merges ratios into snapshots.
func (l *Loader) LoadShortSelling(path string, snapshots map[string]*contracts.StockSnapshot) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read short selling file: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("short selling payload is not valid JSON")
	}

	merged := 0
	gjson.ParseBytes(data).ForEach(func(code, entry gjson.Result) bool {
		if s, ok := snapshots[code.String()]; ok {
			if ratio := entry.Get("short_ratio").Float(); ratio > 0 {
				s.ShortRatio = ratio
				merged++
			}
		}
		return true
	})

	l.logger.WithField("merged", merged).Info("Merged short-selling ratios")
	return nil
}
