package contracts

import "time"

// Criterion keys in CriteriaReport. Fixed set of 8; the short-selling alert
// is reported alongside but never aggregated.
const (
	CriterionHighBreakout       = "high_breakout"
	CriterionMomentumHistory    = "momentum_history"
	CriterionResistanceBreakout = "resistance_breakout"
	CriterionMAAlignment        = "ma_alignment"
	CriterionSupplyDemand       = "supply_demand"
	CriterionProgramTrading     = "program_trading"
	CriterionTop30TradingValue  = "top30_trading_value"
	CriterionMarketCapRange     = "market_cap_range"
)

// PrimaryCriteria lists the 8 aggregated criterion keys in evaluation order.
var PrimaryCriteria = []string{
	CriterionHighBreakout,
	CriterionMomentumHistory,
	CriterionResistanceBreakout,
	CriterionMAAlignment,
	CriterionSupplyDemand,
	CriterionProgramTrading,
	CriterionTop30TradingValue,
	CriterionMarketCapRange,
}

// CriterionVerdict is the immutable result of one criterion check.
// Extras beyond met/reason are criterion-specific and omitted elsewhere.
type CriterionVerdict struct {
	Met    bool   `json:"met"`
	Reason string `json:"reason"`

	// high_breakout
	Is52WHigh *bool `json:"is_52w_high,omitempty"`

	// momentum_history
	HadLimitUp   *bool `json:"had_limit_up,omitempty"`
	Had15PctRise *bool `json:"had_15pct_rise,omitempty"`

	// ma_alignment
	MAValues map[string]float64 `json:"ma_values,omitempty"`

	// resistance_breakout (돌파한 경계, 최대 3개, 오름차순)
	BrokenLevels []float64 `json:"broken_levels,omitempty"`
}

// CriteriaReport maps the 8 criterion keys to verdicts for one stock,
// plus an optional short-selling alert excluded from aggregation.
type CriteriaReport struct {
	Code     string                      `json:"code"`
	Criteria map[string]CriterionVerdict `json:"criteria"`

	// 공매도 경고 (all_met 집계에서 제외)
	ShortSellingAlert *CriterionVerdict `json:"short_selling_alert,omitempty"`

	AllMet bool `json:"all_met"`
}

// ComputeAllMet returns the AND over exactly the 8 primary criteria.
// The short-selling alert and missing keys count as unmet only for the
// keys the report is required to carry.
func (r *CriteriaReport) ComputeAllMet() bool {
	for _, key := range PrimaryCriteria {
		v, ok := r.Criteria[key]
		if !ok || !v.Met {
			return false
		}
	}
	return true
}

// MetCount returns how many of the 8 primary criteria are met.
func (r *CriteriaReport) MetCount() int {
	n := 0
	for _, key := range PrimaryCriteria {
		if v, ok := r.Criteria[key]; ok && v.Met {
			n++
		}
	}
	return n
}

// RegimeStatus is the directional alignment state of an index.
type RegimeStatus string

const (
	RegimeBullish RegimeStatus = "bullish" // 정배열
	RegimeBearish RegimeStatus = "bearish" // 역배열
	RegimeMixed   RegimeStatus = "mixed"   // 혼조
	RegimeUnknown RegimeStatus = "unknown"
)

// RegimeVerdict classifies one index's moving-average alignment.
// EvaluatedAt and DataDays are run metadata attached by the caller,
// not by the classifier.
type RegimeVerdict struct {
	Status   RegimeStatus       `json:"status"`
	Current  float64            `json:"current,omitempty"`
	MAValues map[string]float64 `json:"ma_values"`
	Reason   string             `json:"reason"`

	EvaluatedAt time.Time `json:"evaluated_at,omitempty"`
	DataDays    int       `json:"data_days,omitempty"`
}

// RunResult is the output record of one batch invocation.
type RunResult struct {
	Date         string                     `json:"date"` // YYYY-MM-DD
	TotalStocks  int                        `json:"total_stocks"`
	Reports      map[string]*CriteriaReport `json:"reports"`
	MarketStatus map[string]*RegimeVerdict  `json:"market_status,omitempty"` // key: index name
}
