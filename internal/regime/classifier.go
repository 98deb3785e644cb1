package regime

import (
	"fmt"
	"strings"

	"github.com/wonny/avssa/internal/contracts"
	"github.com/wonny/avssa/internal/indicator"
)

// Tracked composite indices (KIS 업종 코드).
const (
	IndexKOSPI  = "0001"
	IndexKOSDAQ = "2001"
)

// IndexName maps an index code to its display name.
func IndexName(code string) string {
	switch code {
	case IndexKOSPI:
		return "KOSPI"
	case IndexKOSDAQ:
		return "KOSDAQ"
	default:
		return code
	}
}

// Classifier classifies one index's moving-average alignment as
// bullish (정배열), bearish (역배열), mixed (혼조) or unknown.
//
// Exponential moving averages are used for the regime call: the EMA variant
// reacts to the latest closes a full SMA window would dilute, which is the
// behavior wanted for a same-day market gate covering both indices.
type Classifier struct {
	indexName string
}

// NewClassifier creates a classifier for the named index. The name only
// feeds reason strings; every classification is a pure function of its bars.
func NewClassifier(indexName string) *Classifier {
	return &Classifier{indexName: indexName}
}

// Classify evaluates a most-recent-first index bar sequence.
// Run metadata (evaluated_at, data_days) is attached by the caller.
func (c *Classifier) Classify(bars []contracts.IndexBar) *contracts.RegimeVerdict {
	if len(bars) == 0 {
		return &contracts.RegimeVerdict{
			Status:   contracts.RegimeUnknown,
			Reason:   "데이터 없음",
			MAValues: map[string]float64{},
		}
	}

	current := bars[0].Close

	closes := indicator.ClosesChronological(bars)
	if len(closes) < 20 {
		return &contracts.RegimeVerdict{
			Status:   contracts.RegimeUnknown,
			Current:  round2(current),
			Reason:   fmt.Sprintf("데이터 부족 (%d일)", len(closes)),
			MAValues: map[string]float64{},
		}
	}

	var available []int
	maValues := make(map[string]float64)
	vals := []float64{current}

	for _, p := range indicator.StandardPeriods {
		ema, ok := indicator.EMA(closes, p)
		if !ok {
			continue
		}
		available = append(available, p)
		maValues[fmt.Sprintf("MA%d", p)] = round2(ema)
		vals = append(vals, ema)
	}

	isBullish := strictlyDescending(vals)
	isBearish := strictlyAscending(vals)

	var status contracts.RegimeStatus
	var reason string
	switch {
	case isBullish:
		status = contracts.RegimeBullish
		reason = fmt.Sprintf("%s 정배열 (현재가>%s)", c.indexName, chainLabel(available, ">"))
	case isBearish:
		status = contracts.RegimeBearish
		reason = fmt.Sprintf("%s 역배열 (현재가<%s)", c.indexName, chainLabel(available, "<"))
	default:
		status = contracts.RegimeMixed
		reason = fmt.Sprintf("%s 혼조 (정배열도 역배열도 아님)", c.indexName)
	}

	return &contracts.RegimeVerdict{
		Status:   status,
		Current:  round2(current),
		MAValues: maValues,
		Reason:   reason,
	}
}

func chainLabel(periods []int, op string) string {
	labels := make([]string, len(periods))
	for i, p := range periods {
		labels[i] = fmt.Sprintf("MA%d", p)
	}
	return strings.Join(labels, op)
}

func strictlyDescending(vals []float64) bool {
	for i := 0; i+1 < len(vals); i++ {
		if vals[i] <= vals[i+1] {
			return false
		}
	}
	return true
}

func strictlyAscending(vals []float64) bool {
	for i := 0; i+1 < len(vals); i++ {
		if vals[i] >= vals[i+1] {
			return false
		}
	}
	return true
}

func round2(v float64) float64 {
	if v < 0 {
		return float64(int64(v*100-0.5)) / 100
	}
	return float64(int64(v*100+0.5)) / 100
}
